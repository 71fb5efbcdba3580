package constituency

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/EmpoweredVote/constituency-core/internal/boundary"
	"github.com/EmpoweredVote/constituency-core/internal/metrics"
	"github.com/EmpoweredVote/constituency-core/internal/reports"
	"github.com/EmpoweredVote/constituency-core/internal/representatives"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OverrideRequest struct {
	State                     string `json:"state"`
	Constituency              string `json:"constituency"`
	ParliamentaryConstituency string `json:"parliamentary_constituency,omitempty"`
}

// OverrideResult carries what was written. MLA and MP are nil when the
// reference tables have no matching row.
type OverrideResult struct {
	Status     reports.Status          `json:"assignment_status"`
	Assignment reports.Assignment      `json:"assignment"`
	MLA        *representatives.Record `json:"mla"`
	MP         *representatives.Record `json:"mp"`
}

func (r OverrideRequest) normalized() OverrideRequest {
	return OverrideRequest{
		State:                     strings.TrimSpace(r.State),
		Constituency:              boundary.NormalizeName(r.Constituency),
		ParliamentaryConstituency: boundary.NormalizeName(r.ParliamentaryConstituency),
	}
}

func (r OverrideRequest) validate(maxLen int) error {
	if r.State == "" {
		return &ValidationError{Field: "state", Message: "is required"}
	}
	if r.Constituency == "" {
		return &ValidationError{Field: "constituency", Message: "is required"}
	}
	for _, f := range []struct{ name, value string }{
		{"state", r.State},
		{"constituency", r.Constituency},
		{"parliamentary_constituency", r.ParliamentaryConstituency},
	} {
		if utf8.RuneCountInString(f.value) > maxLen {
			return &ValidationError{Field: f.name, Message: fmt.Sprintf("must be at most %d characters", maxLen)}
		}
	}
	return nil
}

// Override applies an administrator's assignment unconditionally and marks
// the report manually_assigned. Representative lookups only fill in names;
// a missing row does not block the override.
func (s *Service) Override(ctx context.Context, id uuid.UUID, req OverrideRequest) (OverrideResult, error) {
	req = req.normalized()
	if err := req.validate(s.maxFieldLen); err != nil {
		return OverrideResult{}, err
	}

	a := reports.Assignment{
		State:                     req.State,
		Constituency:              req.Constituency,
		ParliamentaryConstituency: reports.PendingAssignment,
		Status:                    reports.StatusManuallyAssigned,
	}
	var res OverrideResult

	if s.reps != nil {
		if rec, ok := s.reps.MLA(ctx, req.State, req.Constituency); ok {
			a.MLAName = rec.Name
			res.MLA = &rec
		}
	}
	if req.ParliamentaryConstituency != "" {
		a.ParliamentaryConstituency = req.ParliamentaryConstituency
		if s.reps != nil {
			if rec, ok := s.reps.MP(ctx, req.State, req.ParliamentaryConstituency); ok {
				a.MPName = rec.Name
				res.MP = &rec
			}
		}
	}

	if err := s.store.ApplyManual(ctx, id, a); err != nil {
		return OverrideResult{}, err
	}
	metrics.Overrides.Inc()
	s.log.Info("constituency overridden",
		zap.Stringer("report_id", id),
		zap.String("state", a.State),
		zap.String("constituency", a.Constituency),
		zap.Bool("mla_found", res.MLA != nil),
		zap.Bool("mp_found", res.MP != nil))

	res.Status = a.Status
	res.Assignment = a
	return res, nil
}
