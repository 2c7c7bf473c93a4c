package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
	"github.com/yungbote/skillsprint-backend/internal/domain/learning"
)

// Models lists every table the service owns, parents before children.
func Models() []any {
	return []any{
		// Generation jobs
		&generation.GenerationRequest{},

		// Base catalogue
		&learning.LearningPath{},
		&learning.Module{},
		&learning.Sprint{},
		&learning.UserSprintProgress{},

		// Knowledge tracking
		&learning.KnowledgeArea{},
		&learning.UserKnowledgeProficiency{},

		// Personalized copies
		&learning.PersonalizedLearningPath{},
		&learning.PersonalizedModule{},
		&learning.PersonalizedSprint{},
		&learning.PersonalizedQuizQuestion{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
