package reports

import (
	"fmt"

	"github.com/EmpoweredVote/constituency-core/internal/db"
	"gorm.io/gorm"
)

func Migrate(d *gorm.DB) error {
	if err := db.EnsureSchema(d, "reports"); err != nil {
		return fmt.Errorf("ensure schema reports: %w", err)
	}
	if err := d.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}
	if err := d.AutoMigrate(&Report{}); err != nil {
		return fmt.Errorf("auto-migrate reports: %w", err)
	}

	// Reprocessing scans exactly this predicate.
	if err := d.Exec(`CREATE INDEX IF NOT EXISTS reports_untouched_keyset_idx
		ON reports.reports (created_at, id)
		WHERE assignment_status = 'pending_manual' AND state = 'Pending Assignment'`).Error; err != nil {
		return fmt.Errorf("create untouched index: %w", err)
	}
	return nil
}
