package representatives

import (
	"fmt"

	"github.com/EmpoweredVote/constituency-core/internal/db"
	"gorm.io/gorm"
)

// Migrate creates the reference schema and tables. The tables are owned by
// the reference-data pipeline; migrating here only guarantees they exist.
func Migrate(d *gorm.DB) error {
	if err := db.EnsureSchema(d, "reference"); err != nil {
		return fmt.Errorf("ensure schema reference: %w", err)
	}
	if err := d.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}
	if err := d.AutoMigrate(&MLA{}, &MP{}); err != nil {
		return fmt.Errorf("auto-migrate reference tables: %w", err)
	}

	// Case-insensitive uniqueness per seat, matching how lookups compare.
	for _, stmt := range []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS mlas_seat_ci_unique
		 ON reference.mlas (LOWER(state), LOWER(constituency))`,
		`CREATE UNIQUE INDEX IF NOT EXISTS mps_seat_ci_unique
		 ON reference.mps (LOWER(state), LOWER(parliamentary_constituency))`,
	} {
		if err := d.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create seat index: %w", err)
		}
	}
	return nil
}
