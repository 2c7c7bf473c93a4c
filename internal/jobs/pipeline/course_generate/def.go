package course_generate

import (
	"github.com/yungbote/skillsprint-backend/internal/jobs/cancel"
	"github.com/yungbote/skillsprint-backend/internal/llm"
	"github.com/yungbote/skillsprint-backend/internal/observability"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

const JobType = "course_generate"

type CourseGeneratePipeline struct {
	log         *logger.Logger
	ai          llm.Client
	cancel      *cancel.Checker
	metrics     *observability.Metrics
	temperature float64
}

func NewCourseGeneratePipeline(
	baseLog *logger.Logger,
	ai llm.Client,
	checker *cancel.Checker,
	metrics *observability.Metrics,
) *CourseGeneratePipeline {
	return &CourseGeneratePipeline{
		log:         baseLog.With("job", JobType),
		ai:          ai,
		cancel:      checker,
		metrics:     metrics,
		temperature: llm.DefaultTemperature,
	}
}

func (p *CourseGeneratePipeline) Type() string { return JobType }
