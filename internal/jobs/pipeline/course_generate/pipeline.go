package course_generate

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
	"github.com/yungbote/skillsprint-backend/internal/jobs/runtime"
	"github.com/yungbote/skillsprint-backend/internal/observability"
)

var errCancelled = errors.New("generation cancelled")

type buildContext struct {
	jobCtx  *runtime.Context
	ctx     context.Context
	req     generation.CourseRequest
	outline *generation.CourseOutline
}

// Run drives one request from pending to a terminal status. Cancellation and per-sprint
// failures are normal outcomes and return nil; a non-nil error means the run stopped
// without a terminal write (not pending, or the process is shutting down).
func (p *CourseGeneratePipeline) Run(jobCtx *runtime.Context) error {
	if jobCtx == nil || jobCtx.Request == nil {
		return nil
	}
	spanCtx, span := observability.StartSpan(jobCtx.Ctx, "course_generate.run",
		attribute.String("request_id", jobCtx.RequestID().String()))
	defer span.End()
	jobCtx.Ctx = spanCtx

	start := time.Now()
	if err := jobCtx.Start(); err != nil {
		p.log.Info("Generation not started", "request_id", jobCtx.RequestID(), "error", err)
		return err
	}

	req, err := jobCtx.CourseRequest()
	if err != nil {
		p.fail(jobCtx, err)
		return nil
	}
	buildCtx := &buildContext{jobCtx: jobCtx, ctx: jobCtx.Ctx, req: req}

	// A) Outline
	if err := p.checkpoint(buildCtx); err != nil {
		return p.halt(buildCtx, err)
	}
	stageStart := time.Now()
	outline, err := p.stageOutline(buildCtx)
	if err != nil {
		p.metrics.ObserveStage(JobType, "outline", "error", time.Since(stageStart))
		if stop := p.checkpoint(buildCtx); stop != nil {
			return p.halt(buildCtx, stop)
		}
		p.fail(jobCtx, err)
		return nil
	}
	p.metrics.ObserveStage(JobType, "outline", "ok", time.Since(stageStart))
	buildCtx.outline = outline
	jobCtx.SaveCourseData(outline)
	jobCtx.Progress(20, "Course outline generated")

	// B) Sprints
	stageStart = time.Now()
	if err := p.stageSprints(buildCtx); err != nil {
		p.metrics.ObserveStage(JobType, "sprints", "stopped", time.Since(stageStart))
		return p.halt(buildCtx, err)
	}
	p.metrics.ObserveStage(JobType, "sprints", "ok", time.Since(stageStart))

	ok, err := jobCtx.Complete(outline)
	if err != nil {
		p.fail(jobCtx, err)
		return nil
	}
	if !ok {
		// the row went terminal under us; a client cancel is the only expected writer
		p.log.Info("Completion skipped, request already terminal", "request_id", jobCtx.RequestID())
		jobCtx.Cancel()
		p.metrics.IncJobOutcome(JobType, string(generation.StatusCancelled))
		return nil
	}
	p.metrics.IncJobOutcome(JobType, string(generation.StatusCompleted))
	p.log.Info("Course generation completed",
		"request_id", jobCtx.RequestID(),
		"modules", len(outline.Modules),
		"sprints", outline.SprintCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// checkpoint returns errCancelled for a client cancel, the context error for any other
// context cancellation, and nil to keep going.
func (p *CourseGeneratePipeline) checkpoint(buildCtx *buildContext) error {
	if buildCtx.jobCtx.CancelRequested() {
		return errCancelled
	}
	if err := buildCtx.ctx.Err(); err != nil {
		return err
	}
	if p.cancel.IsCancelled(buildCtx.ctx, buildCtx.jobCtx.RequestID()) {
		return errCancelled
	}
	return nil
}

func (p *CourseGeneratePipeline) halt(buildCtx *buildContext, err error) error {
	if errors.Is(err, errCancelled) {
		buildCtx.jobCtx.Cancel()
		p.metrics.IncJobOutcome(JobType, string(generation.StatusCancelled))
		p.log.Info("Course generation cancelled", "request_id", buildCtx.jobCtx.RequestID())
		return nil
	}
	p.metrics.IncJobOutcome(JobType, "interrupted")
	p.log.Warn("Course generation interrupted, request left processing",
		"request_id", buildCtx.jobCtx.RequestID(), "error", err)
	return err
}

func (p *CourseGeneratePipeline) fail(jobCtx *runtime.Context, err error) {
	if jobCtx.Fail(err) {
		p.metrics.IncJobOutcome(JobType, string(generation.StatusFailed))
	}
	p.log.Warn("Course generation failed", "request_id", jobCtx.RequestID(), "error", err)
}
