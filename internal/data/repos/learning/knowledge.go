package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/skillsprint-backend/internal/domain/learning"
	"github.com/yungbote/skillsprint-backend/internal/platform/dbctx"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

const clauseAssociations = clause.Associations

type KnowledgeRepo interface {
	ListAreas(dbc dbctx.Context) ([]*types.KnowledgeArea, error)
	// CreateAreas skips areas whose name already exists.
	CreateAreas(dbc dbctx.Context, areas []*types.KnowledgeArea) error
	// ListProficiency returns the user's rows with KnowledgeArea preloaded.
	ListProficiency(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserKnowledgeProficiency, error)
	// CreateProficiency skips rows the user already has for that area.
	CreateProficiency(dbc dbctx.Context, rows []*types.UserKnowledgeProficiency) error
}

type knowledgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewKnowledgeRepo(db *gorm.DB, baseLog *logger.Logger) KnowledgeRepo {
	return &knowledgeRepo{db: db, log: baseLog.With("repo", "KnowledgeRepo")}
}

func (r *knowledgeRepo) ListAreas(dbc dbctx.Context) ([]*types.KnowledgeArea, error) {
	var out []*types.KnowledgeArea
	if err := dbc.DB(r.db).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *knowledgeRepo) CreateAreas(dbc dbctx.Context, areas []*types.KnowledgeArea) error {
	if len(areas) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&areas).Error
}

func (r *knowledgeRepo) ListProficiency(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserKnowledgeProficiency, error) {
	var out []*types.UserKnowledgeProficiency
	if userID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).
		Preload("KnowledgeArea").
		Where("user_id = ?", userID).
		Order("proficiency_score ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *knowledgeRepo) CreateProficiency(dbc dbctx.Context, rows []*types.UserKnowledgeProficiency) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Omit(clauseAssociations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}
