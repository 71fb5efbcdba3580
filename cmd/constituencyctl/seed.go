package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/EmpoweredVote/constituency-core/internal/representatives"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

// seedTarget names the table and seat column for one reference table.
type seedTarget struct {
	table   string
	seatCol string
}

var seedTargets = map[representatives.Table]seedTarget{
	representatives.TableMLA: {table: "reference.mlas", seatCol: "constituency"},
	representatives.TableMP:  {table: "reference.mps", seatCol: "parliamentary_constituency"},
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-representatives",
		Short: "Load MLA or MP reference rows from CSV",
		Long: `Upsert MLA or MP reference rows from a CSV file. Rows are matched on
(state, seat) case-insensitively. With --replace the table is emptied first.
Everything runs in one transaction.

Run "constituencyctl migrate" first so the tables and indexes exist.

Example:
  constituencyctl seed-representatives --table mla --csv mlas.csv --dry-run
  constituencyctl seed-representatives --table mp --csv mps.csv --replace`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tableName, _ := cmd.Flags().GetString("table")
			csvPath, _ := cmd.Flags().GetString("csv")
			replace, _ := cmd.Flags().GetBool("replace")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			advisoryKey, _ := cmd.Flags().GetInt64("advisory-lock")

			table := representatives.Table(tableName)
			target, ok := seedTargets[table]
			if !ok {
				return fmt.Errorf("--table must be mla or mp, got %q", tableName)
			}

			rows, err := representatives.ParseCSVFile(csvPath, table)
			if err != nil {
				return fmt.Errorf("load csv: %w", err)
			}

			fmt.Println("Plan preview:")
			fmt.Printf("  Rows to upsert: %d\n", len(rows))
			fmt.Printf("  Table: %s (replace=%v)\n", target.table, replace)
			if dryRun {
				fmt.Println("Dry run: no changes made.")
				return nil
			}

			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			conn, err := sql.Open("pgx", cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer conn.Close()

			if err := conn.PingContext(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}

			before, after, err := seedRows(ctx, conn, target, rows, replace, advisoryKey)
			if err != nil {
				return err
			}
			fmt.Printf("Before: %d rows\n", before)
			fmt.Printf("After:  %d rows\n", after)
			fmt.Println("Seed complete")
			return nil
		},
	}

	cmd.Flags().String("table", "", "Reference table: mla or mp")
	cmd.Flags().String("csv", "", "Path to the CSV file")
	cmd.Flags().Bool("replace", false, "Delete existing rows before loading")
	cmd.Flags().Bool("dry-run", false, "Parse and validate only")
	cmd.Flags().Int64("advisory-lock", 0, "Optional Postgres advisory lock key; 0 disables")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

func seedRows(ctx context.Context, conn *sql.DB, target seedTarget, rows []representatives.Row, replace bool, advisoryKey int64) (before, after int, err error) {
	tx, err := conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op once committed
	}()

	if advisoryKey != 0 {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryKey); err != nil {
			return 0, 0, fmt.Errorf("advisory lock: %w", err)
		}
	}

	countQuery := `SELECT count(*) FROM ` + target.table
	if err := tx.QueryRowContext(ctx, countQuery).Scan(&before); err != nil {
		return 0, 0, fmt.Errorf("pre-count: %w", err)
	}

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+target.table); err != nil {
			return 0, 0, fmt.Errorf("clear %s: %w", target.table, err)
		}
	}

	upsert := fmt.Sprintf(`
		INSERT INTO %[1]s (state, %[2]s, name, party, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NOW())
		ON CONFLICT (LOWER(state), LOWER(%[2]s))
		DO UPDATE SET name = EXCLUDED.name, party = EXCLUDED.party, updated_at = NOW()`,
		target.table, target.seatCol)
	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return 0, 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.State, r.Seat, r.Name, r.Party); err != nil {
			return 0, 0, fmt.Errorf("row %d (%s/%s): %w", i+2, r.State, r.Seat, err)
		}
	}

	if err := tx.QueryRowContext(ctx, countQuery).Scan(&after); err != nil {
		return 0, 0, fmt.Errorf("post-count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit: %w", err)
	}
	return before, after, nil
}
