package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/katuripu/katuripu/backend/config"
	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/utils"
)

// InitDB opens the configured database and tunes the connection pool.
func InitDB(cfg *config.Config, log *utils.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DBDriver)
	}

	level := gormLogger.Warn
	if cfg.Env == config.EnvDev {
		level = gormLogger.Info
	}
	gl := gormLogger.New(
		zap.NewStdLog(log.Zap()),
		gormLogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gl})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == config.DriverSQLite {
		// sqlite serialises writers; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	log.Info("Database connected", "driver", cfg.DBDriver)
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
