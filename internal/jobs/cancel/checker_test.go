package cancel

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	jobsrepo "github.com/yungbote/skillsprint-backend/internal/data/repos/jobs"
	"github.com/yungbote/skillsprint-backend/internal/data/repos/testutil"
	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
	"github.com/yungbote/skillsprint-backend/internal/platform/dbctx"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

type failingReader struct{}

func (failingReader) GetStatus(dbctx.Context, uuid.UUID) (generation.Status, error) {
	return "", errors.New("connection refused")
}

func TestChecker(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := jobsrepo.NewGenerationRequestRepo(db, log)
	checker := NewChecker(repo, log)
	ctx := context.Background()

	cancelled := testutil.SeedGenerationRequest(t, db, generation.StatusCancelled)
	running := testutil.SeedGenerationRequest(t, db, generation.StatusProcessing)
	done := testutil.SeedGenerationRequest(t, db, generation.StatusCompleted)

	if !checker.IsCancelled(ctx, cancelled.ID) {
		t.Fatalf("expected cancelled row to report cancelled")
	}
	if checker.IsCancelled(ctx, running.ID) {
		t.Fatalf("processing row reported cancelled")
	}
	if checker.IsCancelled(ctx, done.ID) {
		t.Fatalf("completed row reported cancelled")
	}
	if checker.IsCancelled(ctx, uuid.New()) {
		t.Fatalf("unknown row reported cancelled")
	}
	if checker.IsCancelled(ctx, uuid.Nil) {
		t.Fatalf("nil id reported cancelled")
	}
}

func TestChecker_FailsOpenOnReadError(t *testing.T) {
	checker := NewChecker(failingReader{}, testutil.Logger(t))
	if checker.IsCancelled(context.Background(), uuid.New()) {
		t.Fatalf("read error must count as not cancelled")
	}
}

func observedLogger() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.NewFromCore(core), logs
}

func TestChecker_WarnsOnReadError(t *testing.T) {
	log, logs := observedLogger()
	checker := NewChecker(failingReader{}, log)
	id := uuid.New()

	assert.False(t, checker.IsCancelled(context.Background(), id))

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	assert.Equal(t, id.String(), warns[0].ContextMap()["request_id"])
	assert.Contains(t, warns[0].ContextMap()["error"], "connection refused")
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestChecker_UnknownRowIsQuiet(t *testing.T) {
	db := testutil.DB(t)
	log, logs := observedLogger()
	checker := NewChecker(jobsrepo.NewGenerationRequestRepo(db, log), log)

	assert.False(t, checker.IsCancelled(context.Background(), uuid.New()))

	for _, e := range logs.All() {
		assert.Less(t, e.Level, zapcore.WarnLevel, "unexpected %s log: %s", e.Level, e.Message)
	}
}
