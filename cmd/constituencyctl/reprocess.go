package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/EmpoweredVote/constituency-core/internal/boundary"
	"github.com/EmpoweredVote/constituency-core/internal/constituency"
	"github.com/EmpoweredVote/constituency-core/internal/db"
	"github.com/EmpoweredVote/constituency-core/internal/reports"
	"github.com/EmpoweredVote/constituency-core/internal/representatives"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func reprocessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reprocess",
		Short: "Re-run automatic resolution for never-assigned reports",
		Long: `Re-run automatic resolution for reports that are still pending and
whose state was never resolved. Manually assigned reports are never touched.

Example:
  constituencyctl reprocess --dry-run
  constituencyctl reprocess --limit 100 --rate 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			limit, _ := cmd.Flags().GetInt("limit")
			rate, _ := cmd.Flags().GetFloat64("rate")
			asJSON, _ := cmd.Flags().GetBool("json")

			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cmd.Flags().Changed("rate") {
				cfg.Reprocess.RatePerSecond = rate
			}

			// Without boundaries every report would come back unchanged, so a
			// failed load is fatal here rather than degraded.
			ds, err := boundary.Load(cfg.Boundaries)
			if err != nil {
				return fmt.Errorf("load boundaries: %w", err)
			}
			boundary.Publish(ds)

			db.Connect(cfg.DatabaseURL)
			svc := constituency.NewService(
				reports.NewGormStore(db.DB),
				representatives.NewLookup(representatives.GormDirectory{DB: db.DB}),
				constituency.Options{
					Locate:        ds.Locate,
					Locker:        db.AdvisoryLocker{DB: db.DB},
					ReprocessRate: cfg.Reprocess.RatePerSecond,
					BatchLimit:    cfg.Reprocess.BatchLimit,
				},
			)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			sum, err := svc.Reprocess(ctx, constituency.ReprocessOptions{DryRun: dryRun, Limit: limit})
			if err != nil {
				zap.L().Error("reprocess failed", zap.Error(err))
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(sum)
			}
			if dryRun {
				fmt.Println("Dry run, nothing written.")
			}
			fmt.Printf("Candidates:      %d\n", sum.Candidates)
			fmt.Printf("Auto-assigned:   %d\n", sum.AutoAssigned)
			fmt.Printf("Still pending:   %d\n", sum.Pending)
			fmt.Printf("Unchanged:       %d\n", sum.Unchanged)
			fmt.Printf("Skipped:         %d\n", sum.Skipped)
			fmt.Printf("Failed:          %d\n", sum.Failed)
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Derive assignments without writing them")
	cmd.Flags().Int("limit", 0, "Maximum reports to process in this run (default: all; REPROCESS_BATCH_LIMIT sets the page size)")
	cmd.Flags().Float64("rate", 0, "Reports per second, 0 or less for no throttling (default: REPROCESS_RATE_PER_SEC)")
	cmd.Flags().Bool("json", false, "Print the summary as JSON")
	return cmd
}
