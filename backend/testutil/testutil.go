// Package testutil opens throwaway databases and seeds fixtures for tests.
package testutil

import (
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/utils"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error
)

func Logger(tb testing.TB) *utils.Logger {
	tb.Helper()
	return utils.NewNopLogger()
}

// DB returns a fresh, migrated in-memory sqlite database private to the test.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

// Postgres returns a shared database from TEST_POSTGRES_DSN and skips the
// test when it is not set.
func Postgres(tb testing.TB) *gorm.DB {
	tb.Helper()
	pgOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			pgErr = errMissingDSN
			return
		}
		pgDB, pgErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if pgErr != nil {
			return
		}
		pgErr = pgDB.AutoMigrate(models.All()...)
	})
	if errors.Is(pgErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run postgres integration tests")
	}
	if pgErr != nil {
		tb.Fatalf("failed to init test db: %v", pgErr)
	}
	return pgDB
}

// Tx opens a transaction rolled back when the test ends.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
