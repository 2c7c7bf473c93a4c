package course_generate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
	"github.com/yungbote/skillsprint-backend/internal/llm/repair"
)

var errEmptySprint = errors.New("sprint content has no usable blocks")

// stageSprints expands every stub in module order, then sprint order. It returns only
// checkpoint errors; sprint failures become placeholders.
func (p *CourseGeneratePipeline) stageSprints(buildCtx *buildContext) error {
	outline := buildCtx.outline
	total := outline.SprintCount()
	done := 0

	for mi := range outline.Modules {
		mod := outline.Modules[mi]
		for si := range mod.Sprints {
			if err := p.checkpoint(buildCtx); err != nil {
				return err
			}
			stub := mod.Sprints[si]

			sprint, err := p.generateSprint(buildCtx, mod, stub)
			if err != nil {
				if stop := p.checkpoint(buildCtx); stop != nil {
					return stop
				}
				p.log.Warn("Sprint generation failed, using placeholder",
					"request_id", buildCtx.jobCtx.RequestID(),
					"module", mi,
					"sprint", si,
					"title", stub.Title,
					"error", err,
				)
				p.metrics.IncPlaceholder()
				sprint = generation.PlaceholderSprint(stub)
			}
			outline.Modules[mi].Sprints[si] = sprint
			done++

			buildCtx.jobCtx.SaveCourseData(outline)
			buildCtx.jobCtx.Progress(20+80*done/total, fmt.Sprintf("Generated sprint %d of %d: %s", done, total, sprint.Title))
		}
	}
	return nil
}

func (p *CourseGeneratePipeline) generateSprint(buildCtx *buildContext, mod generation.Module, stub generation.Sprint) (generation.Sprint, error) {
	raw, err := p.ai.GenerateContent(buildCtx.ctx, sprintPrompt(buildCtx.req, buildCtx.outline, mod, stub), p.temperature)
	if err != nil {
		return generation.Sprint{}, err
	}

	var content generation.SprintContent
	res, err := repair.ParseInto(raw, buildCtx.jobCtx.RequestID().String(), &content)
	if err != nil {
		return generation.Sprint{}, err
	}
	p.countRepairs(res)

	content.Normalize()
	if len(content.Content) == 0 {
		return generation.Sprint{}, errEmptySprint
	}
	title := strings.TrimSpace(content.Title)
	if title == "" {
		title = stub.Title
	}
	quiz := content.Quiz
	if quiz == nil {
		quiz = []generation.QuizItem{}
	}
	return generation.Sprint{
		Title:       title,
		Description: stub.Description,
		Content:     content.Content,
		Quiz:        quiz,
	}, nil
}
