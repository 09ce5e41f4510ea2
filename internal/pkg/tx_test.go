package pkg

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/simp-lee/shopadmin/internal/domain"
)

// newTxTestDB opens an in-memory SQLite database with the activity table.
// One connection keeps every statement on the same in-memory database.
func newTxTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&domain.Activity{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func countActivities(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&domain.Activity{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestWithTx_Commit(t *testing.T) {
	db := newTxTestDB(t)

	err := WithTx(context.Background(), db, func(tx *gorm.DB) error {
		return tx.Create(&domain.Activity{Resource: "products", Verb: "create", Outcome: domain.OutcomeSuccess}).Error
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if n := countActivities(t, db); n != 1 {
		t.Fatalf("rows = %d; want 1", n)
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db := newTxTestDB(t)

	fnErr := errors.New("something went wrong")
	err := WithTx(context.Background(), db, func(tx *gorm.DB) error {
		if err := tx.Create(&domain.Activity{Resource: "orders", Verb: "delete", Outcome: domain.OutcomeSuccess}).Error; err != nil {
			t.Fatalf("insert: %v", err)
		}
		return fnErr
	})
	if !errors.Is(err, fnErr) {
		t.Fatalf("err = %v; want fn error", err)
	}
	if n := countActivities(t, db); n != 0 {
		t.Fatalf("rows = %d after rollback; want 0", n)
	}
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := newTxTestDB(t)

	defer func() {
		if r := recover(); r != "kaboom" {
			t.Fatalf("recover() = %v; want kaboom", r)
		}
		if n := countActivities(t, db); n != 0 {
			t.Fatalf("rows = %d after panic; want 0", n)
		}
	}()

	WithTx(context.Background(), db, func(tx *gorm.DB) error {
		if err := tx.Create(&domain.Activity{Resource: "brands", Verb: "update", Outcome: domain.OutcomeFailure}).Error; err != nil {
			t.Fatalf("insert: %v", err)
		}
		panic("kaboom")
	})
}

func TestWithTx_CanceledContext(t *testing.T) {
	db := newTxTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := WithTx(ctx, db, func(tx *gorm.DB) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if called {
		t.Error("fn must not run when the transaction cannot begin")
	}
}
