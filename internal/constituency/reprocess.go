package constituency

import (
	"context"
	"fmt"

	"github.com/EmpoweredVote/constituency-core/internal/metrics"
	"github.com/EmpoweredVote/constituency-core/internal/reports"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	reprocessLockKey = "constituency:reprocess"
	defaultPageSize  = 500
)

type ReprocessOptions struct {
	// DryRun derives assignments without writing them.
	DryRun bool
	// Limit caps how many reports this run processes when positive.
	// Otherwise the run continues until no untouched report is left.
	Limit int
}

type Summary struct {
	Candidates   int  `json:"candidates"`
	AutoAssigned int  `json:"auto_assigned"`
	Pending      int  `json:"pending_manual"`
	Unchanged    int  `json:"unchanged"`
	Skipped      int  `json:"skipped"`
	Failed       int  `json:"failed"`
	DryRun       bool `json:"dry_run"`
}

// Reprocess re-runs automatic resolution, one report at a time, for
// reports whose location was never resolved. Candidates are read in pages
// of the configured batch limit and walked with a keyset cursor, so reports
// that stay unresolved never hide newer ones. Only one run may be active
// across all processes; a concurrent call returns ErrReprocessRunning.
// Running it twice with no data changes writes nothing the second time.
func (s *Service) Reprocess(ctx context.Context, opts ReprocessOptions) (Summary, error) {
	if !s.reprocessing.CompareAndSwap(false, true) {
		metrics.ReprocessRuns.WithLabelValues("busy").Inc()
		return Summary{}, ErrReprocessRunning
	}
	defer s.reprocessing.Store(false)

	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, reprocessLockKey)
		if err != nil {
			metrics.ReprocessRuns.WithLabelValues("error").Inc()
			return Summary{}, fmt.Errorf("acquire reprocess lock: %w", err)
		}
		if !ok {
			metrics.ReprocessRuns.WithLabelValues("busy").Inc()
			return Summary{}, ErrReprocessRunning
		}
		defer release()
	}

	pageSize := s.batchLimit
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if s.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.rate), 1)
	}

	sum := Summary{DryRun: opts.DryRun}
	var cursor reports.Cursor
pages:
	for {
		page, err := s.store.ListUntouched(ctx, cursor, pageSize)
		if err != nil {
			metrics.ReprocessRuns.WithLabelValues("error").Inc()
			return sum, err
		}
		if len(page) == 0 {
			break
		}

		for _, rep := range page {
			if opts.Limit > 0 && sum.Candidates >= opts.Limit {
				break pages
			}
			if err := limiter.Wait(ctx); err != nil {
				metrics.ReprocessRuns.WithLabelValues("error").Inc()
				return sum, fmt.Errorf("reprocess interrupted: %w", err)
			}
			sum.Candidates++
			s.reprocessOne(ctx, rep, opts.DryRun, &sum)
		}

		if len(page) < pageSize {
			break
		}
		cursor = reports.After(page[len(page)-1])
	}

	metrics.ReprocessRuns.WithLabelValues("ok").Inc()
	s.log.Info("reprocess finished",
		zap.Bool("dry_run", sum.DryRun),
		zap.Int("candidates", sum.Candidates),
		zap.Int("auto_assigned", sum.AutoAssigned),
		zap.Int("pending_manual", sum.Pending),
		zap.Int("unchanged", sum.Unchanged),
		zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed))
	return sum, nil
}

func (s *Service) reprocessOne(ctx context.Context, rep reports.Report, dryRun bool, sum *Summary) {
	if dryRun {
		current := rep.Assignment()
		next := s.derive(ctx, current, rep.Latitude, rep.Longitude)
		switch {
		case next == current:
			sum.Unchanged++
		case next.Status == reports.StatusAutoAssigned:
			sum.AutoAssigned++
		default:
			sum.Pending++
		}
		return
	}

	res, err := s.Resolve(ctx, rep.ID, rep.Latitude, rep.Longitude)
	if err != nil {
		sum.Failed++
		s.log.Warn("reprocess: report failed", zap.Stringer("report_id", rep.ID), zap.Error(err))
		return
	}
	switch res.Outcome {
	case OutcomeAutoAssigned:
		sum.AutoAssigned++
	case OutcomePending:
		sum.Pending++
	case OutcomeUnchanged:
		sum.Unchanged++
	case OutcomeSkipped:
		sum.Skipped++
	}
}
