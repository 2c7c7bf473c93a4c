package learning

import (
	"gorm.io/gorm"

	types "github.com/yungbote/skillsprint-backend/internal/domain/learning"
	"github.com/yungbote/skillsprint-backend/internal/platform/dbctx"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

// PersonalizedPathRepo writes the personalized path hierarchy. Nested associations on the
// passed structs are not saved; each level is created explicitly.
type PersonalizedPathRepo interface {
	CreatePath(dbc dbctx.Context, path *types.PersonalizedLearningPath) error
	CreateModule(dbc dbctx.Context, module *types.PersonalizedModule) error
	CreateSprints(dbc dbctx.Context, sprints []*types.PersonalizedSprint) error
	CreateQuizQuestions(dbc dbctx.Context, questions []*types.PersonalizedQuizQuestion) error
}

type personalizedPathRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPersonalizedPathRepo(db *gorm.DB, baseLog *logger.Logger) PersonalizedPathRepo {
	return &personalizedPathRepo{db: db, log: baseLog.With("repo", "PersonalizedPathRepo")}
}

func (r *personalizedPathRepo) CreatePath(dbc dbctx.Context, path *types.PersonalizedLearningPath) error {
	if path == nil {
		return nil
	}
	return dbc.DB(r.db).Omit(clauseAssociations).Create(path).Error
}

func (r *personalizedPathRepo) CreateModule(dbc dbctx.Context, module *types.PersonalizedModule) error {
	if module == nil {
		return nil
	}
	return dbc.DB(r.db).Omit(clauseAssociations).Create(module).Error
}

func (r *personalizedPathRepo) CreateSprints(dbc dbctx.Context, sprints []*types.PersonalizedSprint) error {
	if len(sprints) == 0 {
		return nil
	}
	return dbc.DB(r.db).Omit(clauseAssociations).Create(&sprints).Error
}

func (r *personalizedPathRepo) CreateQuizQuestions(dbc dbctx.Context, questions []*types.PersonalizedQuizQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return dbc.DB(r.db).Omit(clauseAssociations).Create(&questions).Error
}
