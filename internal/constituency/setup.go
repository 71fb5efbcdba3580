package constituency

import (
	"github.com/EmpoweredVote/constituency-core/internal/config"
	"github.com/EmpoweredVote/constituency-core/internal/db"
	"github.com/EmpoweredVote/constituency-core/internal/reports"
	"github.com/EmpoweredVote/constituency-core/internal/representatives"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Init migrates the tables this module reads and writes and builds a
// Service backed by d.
func Init(cfg config.Config, d *gorm.DB) (*Service, error) {
	if err := reports.Migrate(d); err != nil {
		return nil, err
	}
	if err := representatives.Migrate(d); err != nil {
		return nil, err
	}

	svc := NewService(
		reports.NewGormStore(d),
		representatives.NewLookup(representatives.GormDirectory{DB: d}),
		Options{
			Locker:        db.AdvisoryLocker{DB: d},
			MaxFieldLen:   cfg.OverrideMaxFieldLen,
			ReprocessRate: cfg.Reprocess.RatePerSecond,
			BatchLimit:    cfg.Reprocess.BatchLimit,
		},
	)

	zap.L().Named("constituency").Info("Constituency module initialized")
	return svc, nil
}
