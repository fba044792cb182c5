package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/katuripu/katuripu/backend/cache"
	"github.com/katuripu/katuripu/backend/testutil"
)

var ctx = context.Background()

func newServices(t *testing.T) (*Services, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	rc := NewRoadmapCache(cache.NewMemory(), time.Minute, log)
	return New(db, rc, log), db
}

func freezeTime(t *testing.T, at time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = prev })
}

var errInjected = errors.New("injected failure")

// failReadsOn makes every read of table fail on db.
func failReadsOn(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	err := db.Callback().Query().Before("gorm:query").Register("test:fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errInjected)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }
func strPtr(v string) *string {
	return &v
}
