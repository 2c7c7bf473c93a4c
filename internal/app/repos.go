package app

import (
	"gorm.io/gorm"

	jobsrepo "github.com/yungbote/skillsprint-backend/internal/data/repos/jobs"
	learningrepo "github.com/yungbote/skillsprint-backend/internal/data/repos/learning"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

type Repos struct {
	GenerationRequest jobsrepo.GenerationRequestRepo
	LearningPath      learningrepo.LearningPathRepo
	PersonalizedPath  learningrepo.PersonalizedPathRepo
	Knowledge         learningrepo.KnowledgeRepo
	SprintProgress    learningrepo.SprintProgressRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		GenerationRequest: jobsrepo.NewGenerationRequestRepo(db, log),
		LearningPath:      learningrepo.NewLearningPathRepo(db, log),
		PersonalizedPath:  learningrepo.NewPersonalizedPathRepo(db, log),
		Knowledge:         learningrepo.NewKnowledgeRepo(db, log),
		SprintProgress:    learningrepo.NewSprintProgressRepo(db, log),
	}
}
