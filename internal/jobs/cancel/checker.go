// Package cancel answers whether a generation request was cancelled by its owner.
package cancel

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
	"github.com/yungbote/skillsprint-backend/internal/platform/dbctx"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

type StatusReader interface {
	GetStatus(dbc dbctx.Context, id uuid.UUID) (generation.Status, error)
}

type Checker struct {
	repo StatusReader
	log  *logger.Logger
}

func NewChecker(repo StatusReader, baseLog *logger.Logger) *Checker {
	return &Checker{repo: repo, log: baseLog.With("component", "CancelChecker")}
}

// IsCancelled fails open: a missing row or a read error counts as not cancelled.
func (c *Checker) IsCancelled(ctx context.Context, requestID uuid.UUID) bool {
	if c == nil || c.repo == nil || requestID == uuid.Nil {
		return false
	}
	status, err := c.repo.GetStatus(dbctx.Context{Ctx: ctx}, requestID)
	switch {
	case err == nil:
		return status == generation.StatusCancelled
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.log.Debug("Cancel check: request not found", "request_id", requestID.String())
	default:
		c.log.Warn("Cancel check failed, assuming not cancelled", "request_id", requestID.String(), "error", err)
	}
	return false
}
