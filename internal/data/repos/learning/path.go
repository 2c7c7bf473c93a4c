package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/skillsprint-backend/internal/domain/learning"
	"github.com/yungbote/skillsprint-backend/internal/platform/dbctx"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

type LearningPathRepo interface {
	Create(dbc dbctx.Context, path *types.LearningPath) error
	// GetWithContent loads a path with modules and sprints ordered by order_index.
	GetWithContent(dbc dbctx.Context, id uuid.UUID) (*types.LearningPath, error)
}

type learningPathRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningPathRepo(db *gorm.DB, baseLog *logger.Logger) LearningPathRepo {
	return &learningPathRepo{db: db, log: baseLog.With("repo", "LearningPathRepo")}
}

func (r *learningPathRepo) Create(dbc dbctx.Context, path *types.LearningPath) error {
	if path == nil {
		return nil
	}
	return dbc.DB(r.db).Create(path).Error
}

func (r *learningPathRepo) GetWithContent(dbc dbctx.Context, id uuid.UUID) (*types.LearningPath, error) {
	var out types.LearningPath
	err := dbc.DB(r.db).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC").Order("created_at ASC")
		}).
		Preload("Modules.Sprints", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC").Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}
