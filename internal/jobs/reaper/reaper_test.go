package reaper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	jobsrepo "github.com/yungbote/skillsprint-backend/internal/data/repos/jobs"
	"github.com/yungbote/skillsprint-backend/internal/data/repos/testutil"
	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
	"github.com/yungbote/skillsprint-backend/internal/jobs/runtime"
)

type snapRecorder struct {
	snaps []generation.Snapshot
}

func (r *snapRecorder) RequestUpdated(_ uuid.UUID, snap generation.Snapshot) {
	r.snaps = append(r.snaps, snap)
}

func backdate(t *testing.T, db *gorm.DB, id uuid.UUID, age time.Duration) {
	t.Helper()
	require.NoError(t, db.Model(&generation.GenerationRequest{}).Where("id = ?", id).
		UpdateColumn("updated_at", time.Now().Add(-age)).Error)
}

func TestReapFailsOnlyStaleProcessingRows(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := jobsrepo.NewGenerationRequestRepo(db, log)

	stale := testutil.SeedGenerationRequest(t, db, generation.StatusProcessing)
	fresh := testutil.SeedGenerationRequest(t, db, generation.StatusProcessing)
	pending := testutil.SeedGenerationRequest(t, db, generation.StatusPending)
	backdate(t, db, stale.ID, 2*time.Hour)
	backdate(t, db, pending.ID, 2*time.Hour)

	rec := &snapRecorder{}
	res, err := Reap(context.Background(), log, repo, rec, Options{OlderThan: time.Hour})
	require.NoError(t, err)
	assert.Equal(t, Result{Scanned: 1, Failed: 1}, res)

	got, err := repo.GetByID(testutil.Ctx(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, generation.StatusFailed, got.Status)
	assert.Equal(t, runtime.MsgFailed, got.StatusMessage)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "generation abandoned")

	for _, id := range []uuid.UUID{fresh.ID, pending.ID} {
		row, err := repo.GetByID(testutil.Ctx(), id)
		require.NoError(t, err)
		assert.NotEqual(t, generation.StatusFailed, row.Status)
	}

	require.Len(t, rec.snaps, 1)
	assert.Equal(t, stale.ID, rec.snaps[0].ID)
	assert.Equal(t, generation.StatusFailed, rec.snaps[0].Status)
}

func TestReapDryRunLeavesRows(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := jobsrepo.NewGenerationRequestRepo(db, log)

	stale := testutil.SeedGenerationRequest(t, db, generation.StatusProcessing)
	backdate(t, db, stale.ID, 2*time.Hour)

	res, err := Reap(context.Background(), log, repo, nil, Options{OlderThan: time.Hour, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, Result{Scanned: 1}, res)

	status, err := repo.GetStatus(testutil.Ctx(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, generation.StatusProcessing, status)
}

func TestReapRestrictsToIDs(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := jobsrepo.NewGenerationRequestRepo(db, log)

	a := testutil.SeedGenerationRequest(t, db, generation.StatusProcessing)
	b := testutil.SeedGenerationRequest(t, db, generation.StatusProcessing)
	backdate(t, db, a.ID, 2*time.Hour)
	backdate(t, db, b.ID, 2*time.Hour)

	res, err := Reap(context.Background(), log, repo, nil, Options{OlderThan: time.Hour, IDs: []uuid.UUID{b.ID}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)

	status, err := repo.GetStatus(testutil.Ctx(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, generation.StatusProcessing, status)
}

func TestReapIDsBeforeLimit(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := jobsrepo.NewGenerationRequestRepo(db, log)

	oldest := testutil.SeedGenerationRequest(t, db, generation.StatusProcessing)
	named := testutil.SeedGenerationRequest(t, db, generation.StatusProcessing)
	backdate(t, db, oldest.ID, 3*time.Hour)
	backdate(t, db, named.ID, 2*time.Hour)

	res, err := Reap(context.Background(), log, repo, nil, Options{OlderThan: time.Hour, Limit: 1, IDs: []uuid.UUID{named.ID}})
	require.NoError(t, err)
	assert.Equal(t, Result{Scanned: 1, Failed: 1}, res)

	status, err := repo.GetStatus(testutil.Ctx(), named.ID)
	require.NoError(t, err)
	assert.Equal(t, generation.StatusFailed, status)
	status, err = repo.GetStatus(testutil.Ctx(), oldest.ID)
	require.NoError(t, err)
	assert.Equal(t, generation.StatusProcessing, status)
}

func TestReapRejectsNonPositiveAge(t *testing.T) {
	_, err := Reap(context.Background(), testutil.Logger(t), nil, nil, Options{})
	require.Error(t, err)
}
