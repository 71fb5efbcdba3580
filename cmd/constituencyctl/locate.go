package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/EmpoweredVote/constituency-core/internal/boundary"
	"github.com/EmpoweredVote/constituency-core/internal/constituency"
	"github.com/EmpoweredVote/constituency-core/internal/db"
	"github.com/EmpoweredVote/constituency-core/internal/representatives"
	"github.com/spf13/cobra"
)

func locateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Show which constituencies contain a coordinate",
		Long: `Show what automatic resolution would derive for a coordinate.

Representatives come from --mla-csv/--mp-csv when given, otherwise from the
database when DATABASE_URL is set. Nothing is written.

Example:
  constituencyctl locate --lat 20.47 --lng 84.23
  constituencyctl locate --lat 20.47 --lng 84.23 --mla-csv mlas.csv --mp-csv mps.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, _ := cmd.Flags().GetFloat64("lat")
			lng, _ := cmd.Flags().GetFloat64("lng")
			mlaCSV, _ := cmd.Flags().GetString("mla-csv")
			mpCSV, _ := cmd.Flags().GetString("mp-csv")

			cfg, err := setup(cmd)
			if err != nil {
				return err
			}

			ds, err := boundary.Load(cfg.Boundaries)
			if err != nil {
				// A single collection is still useful for a preview.
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
			boundary.Publish(ds)

			var dir representatives.Directory
			switch {
			case mlaCSV != "" || mpCSV != "":
				dir, err = memoryDirectory(mlaCSV, mpCSV)
				if err != nil {
					return err
				}
			case cfg.DatabaseURL != "":
				db.Connect(cfg.DatabaseURL)
				dir = representatives.GormDirectory{DB: db.DB}
			}

			svc := constituency.NewService(nil, representatives.NewLookup(dir), constituency.Options{Locate: ds.Locate})
			preview, err := svc.Locate(context.Background(), lat, lng)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(preview)
		},
	}

	cmd.Flags().Float64("lat", 0, "Latitude")
	cmd.Flags().Float64("lng", 0, "Longitude")
	cmd.Flags().String("mla-csv", "", "MLA reference CSV (state,constituency,name,party)")
	cmd.Flags().String("mp-csv", "", "MP reference CSV (state,parliamentary_constituency,name,party)")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}

func memoryDirectory(mlaCSV, mpCSV string) (*representatives.MemoryDirectory, error) {
	var mlas, mps []representatives.Row
	var err error
	if mlaCSV != "" {
		if mlas, err = representatives.ParseCSVFile(mlaCSV, representatives.TableMLA); err != nil {
			return nil, fmt.Errorf("%s: %w", mlaCSV, err)
		}
	}
	if mpCSV != "" {
		if mps, err = representatives.ParseCSVFile(mpCSV, representatives.TableMP); err != nil {
			return nil, fmt.Errorf("%s: %w", mpCSV, err)
		}
	}
	return representatives.NewMemoryDirectory(mlas, mps), nil
}
