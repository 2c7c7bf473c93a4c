package course_generate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
	"github.com/yungbote/skillsprint-backend/internal/llm/repair"
)

var errEmptyOutline = errors.New("course outline contains no modules")

func (p *CourseGeneratePipeline) stageOutline(buildCtx *buildContext) (*generation.CourseOutline, error) {
	raw, err := p.ai.GenerateContent(buildCtx.ctx, outlinePrompt(buildCtx.req), p.temperature)
	if err != nil {
		return nil, fmt.Errorf("outline generation failed: %w", err)
	}

	var outline generation.CourseOutline
	res, err := repair.ParseInto(raw, buildCtx.jobCtx.RequestID().String(), &outline)
	if err != nil {
		return nil, err
	}
	p.countRepairs(res)

	modules := outline.Modules[:0]
	for _, m := range outline.Modules {
		if strings.TrimSpace(m.Title) == "" && len(m.Sprints) == 0 {
			continue
		}
		modules = append(modules, m)
	}
	outline.Modules = modules
	if len(outline.Modules) == 0 {
		return nil, errEmptyOutline
	}
	if strings.TrimSpace(outline.Title) == "" {
		outline.Title = buildCtx.req.Topic
	}
	return &outline, nil
}

func (p *CourseGeneratePipeline) countRepairs(res *repair.Result) {
	if res == nil {
		return
	}
	for _, name := range res.Repairs {
		p.metrics.IncParseRepair(name)
	}
}
