package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/skillsprint-backend/internal/domain/learning"
	"github.com/yungbote/skillsprint-backend/internal/platform/dbctx"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

type ProgressSummary struct {
	CompletedSprints int
	AverageScore     float64
}

type SprintProgressRepo interface {
	Create(dbc dbctx.Context, rows []*types.UserSprintProgress) error
	// Summary counts completed sprints and averages their non-null scores.
	Summary(dbc dbctx.Context, userID uuid.UUID) (ProgressSummary, error)
}

type sprintProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSprintProgressRepo(db *gorm.DB, baseLog *logger.Logger) SprintProgressRepo {
	return &sprintProgressRepo{db: db, log: baseLog.With("repo", "SprintProgressRepo")}
}

func (r *sprintProgressRepo) Create(dbc dbctx.Context, rows []*types.UserSprintProgress) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).Create(&rows).Error
}

func (r *sprintProgressRepo) Summary(dbc dbctx.Context, userID uuid.UUID) (ProgressSummary, error) {
	var out ProgressSummary
	if userID == uuid.Nil {
		return out, nil
	}
	var row struct {
		Completed int64
		AvgScore  *float64
	}
	err := dbc.DB(r.db).
		Model(&types.UserSprintProgress{}).
		Select("COUNT(*) AS completed, AVG(score) AS avg_score").
		Where("user_id = ? AND completed = ?", userID, true).
		Scan(&row).Error
	if err != nil {
		return out, err
	}
	out.CompletedSprints = int(row.Completed)
	if row.AvgScore != nil {
		out.AverageScore = *row.AvgScore
	}
	return out, nil
}
