package jobs

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/skillsprint-backend/internal/data/repos/testutil"
	types "github.com/yungbote/skillsprint-backend/internal/domain/generation"
)

func TestGenerationRequestRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.TxCtx(tx)

	repo := NewGenerationRequestRepo(db, testutil.Logger(t))

	req := &types.GenerationRequest{UserID: uuid.New()}
	if err := repo.Create(dbc, req); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if req.ID == uuid.Nil || req.Status != types.StatusPending {
		t.Fatalf("Create: expected id and pending status, got id=%s status=%s", req.ID, req.Status)
	}

	status, err := repo.GetStatus(dbc, req.ID)
	if err != nil || status != types.StatusPending {
		t.Fatalf("GetStatus: status=%s err=%v", status, err)
	}

	if _, err := repo.GetStatus(dbc, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetStatus unknown: expected ErrRecordNotFound, got %v", err)
	}
	if _, err := repo.GetByID(dbc, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetByID unknown: expected ErrRecordNotFound, got %v", err)
	}

	// pending -> processing only succeeds once
	ok, err := repo.UpdateFieldsIfStatus(dbc, req.ID, []types.Status{types.StatusPending}, map[string]interface{}{
		"status":   string(types.StatusProcessing),
		"progress": 5,
	})
	if err != nil || !ok {
		t.Fatalf("UpdateFieldsIfStatus: ok=%v err=%v", ok, err)
	}
	ok, err = repo.UpdateFieldsIfStatus(dbc, req.ID, []types.Status{types.StatusPending}, map[string]interface{}{
		"status": string(types.StatusProcessing),
	})
	if err != nil || ok {
		t.Fatalf("UpdateFieldsIfStatus second: expected no-op, ok=%v err=%v", ok, err)
	}

	// an external cancel wins over later progress writes
	if err := repo.UpdateFields(dbc, req.ID, map[string]interface{}{"status": string(types.StatusCancelled)}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	ok, err = repo.UpdateFieldsUnlessStatus(dbc, req.ID, types.TerminalStatuses, map[string]interface{}{
		"progress": 60,
	})
	if err != nil || ok {
		t.Fatalf("UpdateFieldsUnlessStatus: expected guarded no-op, ok=%v err=%v", ok, err)
	}

	got, err := repo.GetByID(dbc, req.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != types.StatusCancelled || got.Progress != 5 {
		t.Fatalf("GetByID: expected cancelled at 5, got %s at %d", got.Status, got.Progress)
	}
}

func TestGenerationRequestRepo_UnlessSingleStatus(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.TxCtx(tx)
	repo := NewGenerationRequestRepo(db, testutil.Logger(t))

	req := testutil.SeedGenerationRequest(t, tx, types.StatusProcessing)

	ok, err := repo.UpdateFieldsUnlessStatus(dbc, req.ID, []types.Status{types.StatusCompleted}, map[string]interface{}{
		"status":         string(types.StatusCancelled),
		"status_message": "Generation cancelled",
	})
	if err != nil || !ok {
		t.Fatalf("UpdateFieldsUnlessStatus: ok=%v err=%v", ok, err)
	}
	status, err := repo.GetStatus(dbc, req.ID)
	if err != nil || status != types.StatusCancelled {
		t.Fatalf("GetStatus: status=%s err=%v", status, err)
	}
}

func TestGenerationRequestRepo_ListStale(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.TxCtx(tx)
	repo := NewGenerationRequestRepo(db, testutil.Logger(t))

	now := time.Now()
	older := testutil.SeedGenerationRequest(t, tx, types.StatusProcessing)
	old := testutil.SeedGenerationRequest(t, tx, types.StatusProcessing)
	testutil.SeedGenerationRequest(t, tx, types.StatusProcessing)
	pendingOld := testutil.SeedGenerationRequest(t, tx, types.StatusPending)

	for id, at := range map[uuid.UUID]time.Time{
		older.ID:      now.Add(-3 * time.Hour),
		old.ID:        now.Add(-2 * time.Hour),
		pendingOld.ID: now.Add(-5 * time.Hour),
	} {
		if err := tx.Model(&types.GenerationRequest{}).Where("id = ?", id).UpdateColumn("updated_at", at).Error; err != nil {
			t.Fatalf("backdate: %v", err)
		}
	}

	rows, err := repo.ListStale(dbc, types.StatusProcessing, now.Add(-time.Hour), nil, 0)
	if err != nil {
		t.Fatalf("ListStale: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != older.ID || rows[1].ID != old.ID {
		t.Fatalf("ListStale: expected [older old], got %d rows", len(rows))
	}

	rows, err = repo.ListStale(dbc, types.StatusProcessing, now.Add(-time.Hour), nil, 1)
	if err != nil || len(rows) != 1 || rows[0].ID != older.ID {
		t.Fatalf("ListStale limit: rows=%d err=%v", len(rows), err)
	}

	// the id filter applies before the limit
	rows, err = repo.ListStale(dbc, types.StatusProcessing, now.Add(-time.Hour), []uuid.UUID{old.ID}, 1)
	if err != nil || len(rows) != 1 || rows[0].ID != old.ID {
		t.Fatalf("ListStale ids+limit: rows=%d err=%v", len(rows), err)
	}

	rows, err = repo.ListStale(dbc, types.StatusPending, now.Add(-time.Hour), nil, 0)
	if err != nil || len(rows) != 1 || rows[0].ID != pendingOld.ID {
		t.Fatalf("ListStale pending: rows=%d err=%v", len(rows), err)
	}
}
