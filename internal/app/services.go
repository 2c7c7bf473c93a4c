package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/skillsprint-backend/internal/jobs/cancel"
	"github.com/yungbote/skillsprint-backend/internal/jobs/pipeline/course_generate"
	"github.com/yungbote/skillsprint-backend/internal/jobs/pipeline/personalized_path"
	"github.com/yungbote/skillsprint-backend/internal/jobs/runtime"
	"github.com/yungbote/skillsprint-backend/internal/jobs/worker"
	"github.com/yungbote/skillsprint-backend/internal/observability"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
	"github.com/yungbote/skillsprint-backend/internal/realtime"
	"github.com/yungbote/skillsprint-backend/internal/services"
)

type Services struct {
	Notifier         *realtime.GenerationNotifier
	Worker           *worker.Worker
	Generation       services.GenerationService
	PersonalizedPath services.PersonalizedPathService
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	repos Repos,
	clients Clients,
	hub *realtime.SSEHub,
	metrics *observability.Metrics,
) (Services, error) {
	log.Info("Wiring services...")

	var pub realtime.Publisher
	if clients.Bus != nil {
		pub = clients.Bus
	}
	notifier := realtime.NewGenerationNotifier(log, hub, pub, cfg.Bus.Kind, metrics)

	checker := cancel.NewChecker(repos.GenerationRequest, log)
	courseGen := course_generate.NewCourseGeneratePipeline(log, clients.LLM, checker, metrics)

	registry, err := runtime.NewRegistry(courseGen)
	if err != nil {
		return Services{}, fmt.Errorf("init job registry: %w", err)
	}

	w := worker.NewWorker(log, repos.GenerationRequest, registry, notifier, metrics, worker.Config{
		Concurrency: cfg.WorkerConcurrency,
		QueueSize:   cfg.WorkerQueueSize,
		JobType:     course_generate.JobType,
	})

	personal, err := personalized_path.NewPersonalizedPathPipeline(
		db,
		log,
		clients.LLM,
		repos.LearningPath,
		repos.PersonalizedPath,
		repos.Knowledge,
		repos.SprintProgress,
		metrics,
	)
	if err != nil {
		return Services{}, fmt.Errorf("init personalized path pipeline: %w", err)
	}

	return Services{
		Notifier:         notifier,
		Worker:           w,
		Generation:       services.NewGenerationService(db, log, repos.GenerationRequest, w, notifier),
		PersonalizedPath: services.NewPersonalizedPathService(log, personal),
	}, nil
}
