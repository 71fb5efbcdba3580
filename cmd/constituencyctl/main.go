// Command constituencyctl runs constituency maintenance jobs outside the
// API server.
package main

import (
	"fmt"
	"os"

	"github.com/EmpoweredVote/constituency-core/internal/config"
	"github.com/EmpoweredVote/constituency-core/internal/db"
	"github.com/EmpoweredVote/constituency-core/internal/logger"
	"github.com/EmpoweredVote/constituency-core/internal/reports"
	"github.com/EmpoweredVote/constituency-core/internal/representatives"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "constituencyctl",
		Short: "Constituency resolution maintenance",
		Long: `constituencyctl runs maintenance jobs for constituency resolution:

  - reprocess reports that were never assigned
  - preview which constituency a coordinate resolves to
  - seed the MLA and MP reference tables from CSV`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().Bool("verbose", false, "Log at debug level")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(reprocessCmd())
	rootCmd.AddCommand(locateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads config and installs the logger. CLI output stays on stdout;
// the logger only carries diagnostics.
func setup(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	level := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	logger.Init(logger.Config{Level: level, Development: true})
	return cfg, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the reports and reference tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			db.Connect(cfg.DatabaseURL)
			if err := reports.Migrate(db.DB); err != nil {
				return err
			}
			if err := representatives.Migrate(db.DB); err != nil {
				return err
			}
			fmt.Println("Migrations applied")
			return nil
		},
	}
}
