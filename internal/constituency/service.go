// Package constituency assigns reports to assembly and parliamentary
// constituencies and their representatives.
package constituency

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/EmpoweredVote/constituency-core/internal/boundary"
	"github.com/EmpoweredVote/constituency-core/internal/metrics"
	"github.com/EmpoweredVote/constituency-core/internal/reports"
	"github.com/EmpoweredVote/constituency-core/internal/representatives"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the report persistence the service needs. *reports.GormStore
// implements it.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (reports.Report, error)
	ApplyAutomatic(ctx context.Context, id uuid.UUID, a reports.Assignment) (bool, error)
	ApplyManual(ctx context.Context, id uuid.UUID, a reports.Assignment) error
	CountByStatus(ctx context.Context) (map[reports.Status]int64, error)
	ListUntouched(ctx context.Context, after reports.Cursor, limit int) ([]reports.Report, error)
}

// Representatives resolves legislators; a failed read is reported as not
// found. representatives.Lookup implements it.
type Representatives interface {
	MLA(ctx context.Context, state, constituency string) (representatives.Record, bool)
	MP(ctx context.Context, state, parliamentaryConstituency string) (representatives.Record, bool)
}

// LocateFunc finds the boundary features containing a coordinate.
type LocateFunc func(lat, lng float64) boundary.Match

// Locker provides a cross-process lock. db.AdvisoryLocker implements it.
type Locker interface {
	TryLock(ctx context.Context, key string) (release func(), ok bool, err error)
}

type Options struct {
	// Locate defaults to the process-wide boundary dataset.
	Locate        LocateFunc
	Locker        Locker
	MaxFieldLen   int
	ReprocessRate float64
	BatchLimit    int
}

const (
	defaultMaxFieldLen = 100
	backgroundTimeout  = 30 * time.Second
)

type Service struct {
	store       Store
	reps        Representatives
	locate      LocateFunc
	locker      Locker
	maxFieldLen int
	rate        float64
	batchLimit  int

	reprocessing atomic.Bool
	log          *zap.Logger
}

func NewService(store Store, reps Representatives, opts Options) *Service {
	s := &Service{
		store:       store,
		reps:        reps,
		locate:      opts.Locate,
		locker:      opts.Locker,
		maxFieldLen: opts.MaxFieldLen,
		rate:        opts.ReprocessRate,
		batchLimit:  opts.BatchLimit,
		log:         zap.L().Named("constituency"),
	}
	if s.locate == nil {
		s.locate = boundary.Locate
	}
	if s.maxFieldLen <= 0 {
		s.maxFieldLen = defaultMaxFieldLen
	}
	return s
}

type Outcome string

const (
	OutcomeAutoAssigned Outcome = "auto_assigned"
	OutcomePending      Outcome = "pending_manual"
	OutcomeUnchanged    Outcome = "unchanged"
	OutcomeSkipped      Outcome = "skipped"
)

// Result of one automatic resolution. Assigned is true only when the report
// ends up auto_assigned.
type Result struct {
	Assigned   bool               `json:"assigned"`
	Outcome    Outcome            `json:"outcome"`
	Assignment reports.Assignment `json:"assignment"`
}

// Resolve runs automatic resolution for one report. Manually assigned
// reports are left alone. Containment and lookup failures degrade the
// result to pending_manual; only store failures are returned as errors.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID, lat, lng float64) (Result, error) {
	rep, err := s.store.Get(ctx, id)
	if err != nil {
		metrics.Resolutions.WithLabelValues("failed").Inc()
		return Result{}, err
	}

	current := rep.Assignment()
	if current.Status == reports.StatusManuallyAssigned {
		metrics.Resolutions.WithLabelValues(string(OutcomeSkipped)).Inc()
		s.log.Debug("report already manually assigned", zap.Stringer("report_id", id))
		return Result{Outcome: OutcomeSkipped, Assignment: current}, nil
	}

	next := s.derive(ctx, current, lat, lng)
	res := Result{
		Assigned:   next.Status == reports.StatusAutoAssigned,
		Outcome:    Outcome(next.Status),
		Assignment: next,
	}
	if next == current {
		res.Outcome = OutcomeUnchanged
		metrics.Resolutions.WithLabelValues(string(OutcomeUnchanged)).Inc()
		return res, nil
	}

	applied, err := s.store.ApplyAutomatic(ctx, id, next)
	if err != nil {
		metrics.Resolutions.WithLabelValues("failed").Inc()
		return Result{}, err
	}
	if !applied {
		// An override landed between the read and the write.
		metrics.Resolutions.WithLabelValues(string(OutcomeSkipped)).Inc()
		s.log.Info("automatic assignment superseded", zap.Stringer("report_id", id))
		return Result{Outcome: OutcomeSkipped}, nil
	}

	metrics.Resolutions.WithLabelValues(string(res.Outcome)).Inc()
	s.log.Info("report resolved",
		zap.Stringer("report_id", id),
		zap.String("status", string(next.Status)),
		zap.String("state", next.State),
		zap.String("constituency", next.Constituency),
		zap.String("parliamentary_constituency", next.ParliamentaryConstituency))
	return res, nil
}

// ResolveStored re-runs resolution with the report's own coordinates.
func (s *Service) ResolveStored(ctx context.Context, id uuid.UUID) (Result, error) {
	rep, err := s.store.Get(ctx, id)
	if err != nil {
		return Result{}, err
	}
	return s.Resolve(ctx, id, rep.Latitude, rep.Longitude)
}

// ResolveInBackground runs Resolve on its own goroutine and context, for
// callers that must not wait on or fail because of resolution. The returned
// channel is closed when the run finishes.
func (s *Service) ResolveInBackground(id uuid.UUID, lat, lng float64) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		if _, err := s.Resolve(ctx, id, lat, lng); err != nil {
			s.log.Error("background resolution failed", zap.Stringer("report_id", id), zap.Error(err))
		}
	}()
	return done
}

// derive computes the automatic assignment for a coordinate, starting from
// the current one. Location fields a collection cannot resolve keep their
// current value; representative names are always recomputed.
func (s *Service) derive(ctx context.Context, current reports.Assignment, lat, lng float64) reports.Assignment {
	next := current

	if !boundary.ValidCoordinate(lat, lng) {
		s.log.Warn("coordinate out of range", zap.Float64("lat", lat), zap.Float64("lng", lng))
	}
	m := s.safeLocate(lat, lng)
	if m.Assembly != nil {
		next.State = strings.TrimSpace(m.Assembly.State)
		next.Constituency = boundary.NormalizeName(m.Assembly.Name)
	}
	if m.Parliamentary != nil {
		if m.Assembly == nil {
			next.State = strings.TrimSpace(m.Parliamentary.State)
		}
		next.ParliamentaryConstituency = boundary.NormalizeName(m.Parliamentary.Name)
	}

	next.MLAName, next.MPName = "", ""
	if s.reps != nil && resolved(next.State) {
		if resolved(next.Constituency) {
			if rec, ok := s.reps.MLA(ctx, next.State, next.Constituency); ok {
				next.MLAName = rec.Name
			}
		}
		if resolved(next.ParliamentaryConstituency) {
			if rec, ok := s.reps.MP(ctx, next.State, next.ParliamentaryConstituency); ok {
				next.MPName = rec.Name
			}
		}
	}

	next.Status = reports.StatusPendingManual
	if next.MLAName != "" && next.MPName != "" {
		next.Status = reports.StatusAutoAssigned
	}
	return next
}

func (s *Service) safeLocate(lat, lng float64) (m boundary.Match) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("containment check panicked",
				zap.Any("panic", r), zap.Float64("lat", lat), zap.Float64("lng", lng))
			m = boundary.Match{}
		}
	}()
	return s.locate(lat, lng)
}

func resolved(v string) bool {
	return v != "" && v != reports.PendingAssignment
}

// Stats counts reports per assignment status. Every status is present.
func (s *Service) Stats(ctx context.Context) (map[reports.Status]int64, error) {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[reports.Status]int64, len(reports.Statuses))
	for _, st := range reports.Statuses {
		out[st] = counts[st]
	}
	return out, nil
}

// CheckApprovable returns ErrAssignmentPending while the report still needs
// a manual assignment.
func (s *Service) CheckApprovable(ctx context.Context, id uuid.UUID) (reports.Status, error) {
	rep, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if rep.AssignmentStatus == reports.StatusPendingManual {
		return rep.AssignmentStatus, ErrAssignmentPending
	}
	return rep.AssignmentStatus, nil
}
