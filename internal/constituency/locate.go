package constituency

import (
	"context"
	"strings"

	"github.com/EmpoweredVote/constituency-core/internal/boundary"
	"github.com/EmpoweredVote/constituency-core/internal/representatives"
)

// Preview is what automatic resolution would derive for a coordinate. Raw
// names are the boundary dataset's spelling before normalization.
type Preview struct {
	State                        string                  `json:"state,omitempty"`
	Constituency                 string                  `json:"constituency,omitempty"`
	RawConstituency              string                  `json:"raw_constituency,omitempty"`
	ParliamentaryConstituency    string                  `json:"parliamentary_constituency,omitempty"`
	RawParliamentaryConstituency string                  `json:"raw_parliamentary_constituency,omitempty"`
	MLA                          *representatives.Record `json:"mla"`
	MP                           *representatives.Record `json:"mp"`
	Dataset                      boundary.Status         `json:"dataset"`
}

// Locate previews containment and lookups for a coordinate without
// touching any report.
func (s *Service) Locate(ctx context.Context, lat, lng float64) (Preview, error) {
	if !boundary.ValidCoordinate(lat, lng) {
		return Preview{}, &ValidationError{Field: "lat,lng", Message: "coordinate out of range"}
	}

	p := Preview{Dataset: boundary.CurrentStatus()}
	m := s.safeLocate(lat, lng)
	if m.Assembly != nil {
		p.State = strings.TrimSpace(m.Assembly.State)
		p.RawConstituency = m.Assembly.Name
		p.Constituency = boundary.NormalizeName(m.Assembly.Name)
	}
	if m.Parliamentary != nil {
		if p.State == "" {
			p.State = strings.TrimSpace(m.Parliamentary.State)
		}
		p.RawParliamentaryConstituency = m.Parliamentary.Name
		p.ParliamentaryConstituency = boundary.NormalizeName(m.Parliamentary.Name)
	}

	if s.reps == nil || p.State == "" {
		return p, nil
	}
	if p.Constituency != "" {
		if rec, ok := s.reps.MLA(ctx, p.State, p.Constituency); ok {
			p.MLA = &rec
		}
	}
	if p.ParliamentaryConstituency != "" {
		if rec, ok := s.reps.MP(ctx, p.State, p.ParliamentaryConstituency); ok {
			p.MP = &rec
		}
	}
	return p, nil
}
