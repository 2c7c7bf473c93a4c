package reaper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	jobsrepo "github.com/yungbote/skillsprint-backend/internal/data/repos/jobs"
	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
	"github.com/yungbote/skillsprint-backend/internal/jobs/runtime"
	"github.com/yungbote/skillsprint-backend/internal/platform/dbctx"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

type Options struct {
	OlderThan time.Duration
	Limit     int
	DryRun    bool
	// IDs restricts the pass to these requests when non-empty.
	IDs []uuid.UUID
}

type Result struct {
	Scanned int
	Failed  int
}

// Reap marks processing rows that have not been written for opts.OlderThan as failed.
// Rows are only stranded this way when a process died mid-run; the worker never picks
// them up again.
func Reap(ctx context.Context, log *logger.Logger, repo jobsrepo.GenerationRequestRepo, notify runtime.Notifier, opts Options) (Result, error) {
	if opts.OlderThan <= 0 {
		return Result{}, fmt.Errorf("older-than must be positive, got %s", opts.OlderThan)
	}
	dbc := dbctx.Context{Ctx: ctx}
	cutoff := time.Now().Add(-opts.OlderThan)

	rows, err := repo.ListStale(dbc, generation.StatusProcessing, cutoff, opts.IDs, opts.Limit)
	if err != nil {
		return Result{}, fmt.Errorf("list stale requests: %w", err)
	}

	res := Result{Scanned: len(rows)}
	for _, row := range rows {
		if opts.DryRun {
			log.Info("Would fail stale request", "request_id", row.ID, "updated_at", row.UpdatedAt)
			continue
		}
		msg := fmt.Sprintf("generation abandoned: no progress since %s", row.UpdatedAt.UTC().Format(time.RFC3339))
		ok, err := repo.UpdateFieldsIfStatus(dbc, row.ID, []generation.Status{generation.StatusProcessing}, map[string]interface{}{
			"status":         string(generation.StatusFailed),
			"status_message": runtime.MsgFailed,
			"error_message":  msg,
		})
		if err != nil {
			return res, fmt.Errorf("fail request %s: %w", row.ID, err)
		}
		if !ok {
			continue
		}
		res.Failed++
		log.Info("Failed stale request", "request_id", row.ID)

		if notify != nil {
			if fresh, err := repo.GetByID(dbc, row.ID); err == nil {
				notify.RequestUpdated(fresh.UserID, fresh.Snapshot())
			}
		}
	}
	return res, nil
}
