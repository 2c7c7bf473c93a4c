package personalized_path

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/skillsprint-backend/internal/domain/learning"
	"github.com/yungbote/skillsprint-backend/internal/observability"
	"github.com/yungbote/skillsprint-backend/internal/platform/dbctx"
)

var ErrBasePathNotFound = errors.New("base learning path not found")

type Result struct {
	PersonalizedPath    *learning.PersonalizedLearningPath `json:"personalizedPath"`
	PerformanceAnalysis PerformanceAnalysis                `json:"performanceAnalysis"`
}

// Run builds and stores a personalized copy of basePathID for userID and returns it.
// It blocks until every write is done.
func (p *PersonalizedPathPipeline) Run(ctx context.Context, userID, basePathID uuid.UUID) (*Result, error) {
	ctx, span := observability.StartSpan(ctx, "personalized_path.run",
		attribute.String("base_path_id", basePathID.String()))
	defer span.End()
	start := time.Now()

	res, err := p.run(ctx, userID, basePathID)
	if err != nil {
		span.RecordError(err)
		p.metrics.IncJobOutcome(PipelineName, "failed")
		p.log.Warn("Personalized path failed", "user_id", userID, "base_path_id", basePathID, "error", err)
		return nil, err
	}
	p.metrics.IncJobOutcome(PipelineName, "completed")
	p.metrics.ObserveStage(PipelineName, "run", "ok", time.Since(start))
	p.log.Info("Personalized path created",
		"user_id", userID,
		"personalized_path_id", res.PersonalizedPath.ID,
		"weak_areas", len(res.PerformanceAnalysis.WeakAreas),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (p *PersonalizedPathPipeline) run(ctx context.Context, userID, basePathID uuid.UUID) (*Result, error) {
	base, err := p.pathRepo.GetWithContent(dbctx.Context{Ctx: ctx}, basePathID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBasePathNotFound
		}
		return nil, fmt.Errorf("load base path: %w", err)
	}

	rows, err := p.ensureProficiency(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary, err := p.progressRepo.Summary(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("load sprint progress: %w", err)
	}
	analysis := analyze(rows, summary.CompletedSprints, summary.AverageScore)

	path := clonePath(userID, base)
	if len(analysis.WeakAreas) > 0 {
		contextID := fmt.Sprintf("%s/%s", userID, basePathID)
		mod, err := p.buildReinforcement(ctx, contextID, base.Title, analysis.WeakAreas, nextModuleIndex(path))
		if err != nil {
			return nil, err
		}
		path.Modules = append(path.Modules, mod)
	}

	if err := p.persist(ctx, path); err != nil {
		return nil, err
	}
	return &Result{PersonalizedPath: path, PerformanceAnalysis: analysis}, nil
}

// persist writes the whole hierarchy in one transaction, filling in parent ids on the way down.
func (p *PersonalizedPathPipeline) persist(ctx context.Context, path *learning.PersonalizedLearningPath) error {
	return p.tx.InTx(ctx, func(dbc dbctx.Context) error {
		if err := p.personalRepo.CreatePath(dbc, path); err != nil {
			return fmt.Errorf("create personalized path: %w", err)
		}
		for _, m := range path.Modules {
			m.PersonalizedPathID = path.ID
			if err := p.personalRepo.CreateModule(dbc, m); err != nil {
				return fmt.Errorf("create personalized module: %w", err)
			}
			for _, s := range m.Sprints {
				s.PersonalizedModuleID = m.ID
			}
			if err := p.personalRepo.CreateSprints(dbc, m.Sprints); err != nil {
				return fmt.Errorf("create personalized sprints: %w", err)
			}
			var questions []*learning.PersonalizedQuizQuestion
			for _, s := range m.Sprints {
				for _, q := range s.QuizQuestions {
					q.PersonalizedSprintID = s.ID
					questions = append(questions, q)
				}
			}
			if err := p.personalRepo.CreateQuizQuestions(dbc, questions); err != nil {
				return fmt.Errorf("create quiz questions: %w", err)
			}
		}
		return nil
	})
}
