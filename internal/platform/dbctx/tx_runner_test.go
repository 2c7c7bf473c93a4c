package dbctx

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type note struct {
	ID   uint `gorm:"primaryKey"`
	Body string
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&note{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestGormTxRunner_CommitAndRollback(t *testing.T) {
	db := openDB(t)
	runner := NewGormTxRunner(db)
	ctx := context.Background()

	if err := runner.InTx(ctx, func(dbc Context) error {
		return dbc.DB(db).Create(&note{Body: "kept"}).Error
	}); err != nil {
		t.Fatalf("InTx commit: %v", err)
	}

	boom := errors.New("boom")
	err := runner.InTx(ctx, func(dbc Context) error {
		if err := dbc.DB(db).Create(&note{Body: "dropped"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx rollback: expected boom, got %v", err)
	}

	var bodies []string
	if err := db.Model(&note{}).Order("id").Pluck("body", &bodies).Error; err != nil {
		t.Fatalf("pluck: %v", err)
	}
	if len(bodies) != 1 || bodies[0] != "kept" {
		t.Fatalf("expected only the committed row, got %v", bodies)
	}
}

func TestGormTxRunner_NilDB(t *testing.T) {
	if err := NewGormTxRunner(nil).InTx(context.Background(), func(Context) error { return nil }); err == nil {
		t.Fatal("expected an error for a nil db")
	}
}
