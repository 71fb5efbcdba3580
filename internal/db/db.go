package db

import (
	"context"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(dsn string) {
	if dsn == "" {
		zap.L().Fatal("DATABASE_URL is empty")
	}

	// Surface slow queries; reference lookups should stay well under this.
	lg := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             100 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: lg,
	})
	if err != nil {
		zap.L().Fatal("Failed to connect to database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		zap.L().Fatal("Failed to get sql.DB", zap.Error(err))
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	DB = db
	zap.L().Info("Connected to database")
}

// AdvisoryLocker hands out session-level Postgres advisory locks. Each lock
// pins one pooled connection until it is released, since the lock belongs
// to the session that took it.
type AdvisoryLocker struct {
	DB *gorm.DB
}

// TryLock takes the lock for key without blocking. ok is false when another
// session holds it. The returned release func must be called exactly once.
func (l AdvisoryLocker) TryLock(ctx context.Context, key string) (release func(), ok bool, err error) {
	sqlDB, err := l.DB.DB()
	if err != nil {
		return nil, false, err
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock(hashtext($1))`, key).Scan(&ok); err != nil {
		conn.Close()
		return nil, false, err
	}
	if !ok {
		conn.Close()
		return nil, false, nil
	}

	release = func() {
		var dummy bool
		if err := conn.QueryRowContext(context.Background(), `SELECT pg_advisory_unlock(hashtext($1))`, key).Scan(&dummy); err != nil {
			zap.L().Warn("advisory unlock failed", zap.String("key", key), zap.Error(err))
		}
		conn.Close()
	}
	return release, true, nil
}
