package personalized_path

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
	"github.com/yungbote/skillsprint-backend/internal/domain/learning"
	"github.com/yungbote/skillsprint-backend/internal/llm/repair"
)

const (
	ReinforcementModuleTitle = "Reinforcement: Focus Areas"
	reinforcementMinutes     = 15
)

var errNoQuestions = errors.New("no usable quiz questions")

// buildReinforcement generates one sprint per weak area, each with its quiz questions.
// Sprint failures become placeholders; quiz failures leave the sprint without questions.
func (p *PersonalizedPathPipeline) buildReinforcement(ctx context.Context, contextID, pathTitle string, weak []AreaScore, orderIndex int) (*learning.PersonalizedModule, error) {
	names := make([]string, 0, len(weak))
	for _, w := range weak {
		names = append(names, w.Name)
	}
	mod := &learning.PersonalizedModule{
		Title:       ReinforcementModuleTitle,
		Description: "Targeted practice on " + strings.Join(names, ", "),
		OrderIndex:  orderIndex,
		IsGenerated: true,
	}

	for i, area := range weak {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		areaID := area.ID

		sprint, err := p.generateSprint(ctx, contextID, pathTitle, area)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			p.log.Warn("Reinforcement sprint failed, using placeholder", "area", area.Name, "error", err)
			p.metrics.IncPlaceholder()
			sprint = generation.PlaceholderSprint(generation.Sprint{
				Title:       area.Name + " Review",
				Description: area.Description,
			})
		}
		body, err := json.Marshal(sprint)
		if err != nil {
			return nil, fmt.Errorf("encode reinforcement sprint: %w", err)
		}
		ps := &learning.PersonalizedSprint{
			KnowledgeAreaID:  &areaID,
			Title:            sprint.Title,
			Description:      sprint.Description,
			OrderIndex:       i,
			Content:          datatypes.JSON(body),
			EstimatedMinutes: reinforcementMinutes,
			IsGenerated:      true,
		}

		questions, err := p.generateQuiz(ctx, contextID, pathTitle, area)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			p.log.Warn("Quiz generation failed, skipping questions", "area", area.Name, "error", err)
		}
		for qi, q := range questions {
			opts, err := json.Marshal(q.Options)
			if err != nil {
				return nil, fmt.Errorf("encode quiz options: %w", err)
			}
			ps.QuizQuestions = append(ps.QuizQuestions, &learning.PersonalizedQuizQuestion{
				KnowledgeAreaID: &areaID,
				Question:        q.Question,
				Options:         datatypes.JSON(opts),
				CorrectAnswer:   q.CorrectAnswer,
				Explanation:     q.Explanation,
				OrderIndex:      qi,
				IsGenerated:     true,
			})
		}
		mod.Sprints = append(mod.Sprints, ps)
	}
	return mod, nil
}

func (p *PersonalizedPathPipeline) generateSprint(ctx context.Context, contextID, pathTitle string, area AreaScore) (generation.Sprint, error) {
	raw, err := p.ai.GenerateContent(ctx, reinforcementSprintPrompt(pathTitle, area), p.temperature)
	if err != nil {
		return generation.Sprint{}, err
	}
	var content generation.SprintContent
	if _, err := repair.ParseInto(raw, contextID, &content); err != nil {
		return generation.Sprint{}, err
	}
	content.Normalize()
	if len(content.Content) == 0 {
		return generation.Sprint{}, fmt.Errorf("reinforcement sprint for %s has no content", area.Name)
	}
	title := strings.TrimSpace(content.Title)
	if title == "" {
		title = area.Name + " Review"
	}
	return generation.Sprint{
		Title:       title,
		Description: area.Description,
		Content:     content.Content,
		Quiz:        []generation.QuizItem{},
	}, nil
}

func (p *PersonalizedPathPipeline) generateQuiz(ctx context.Context, contextID, pathTitle string, area AreaScore) ([]generation.QuizItem, error) {
	raw, err := p.ai.GenerateContent(ctx, quizPrompt(pathTitle, area), p.temperature)
	if err != nil {
		return nil, err
	}
	var items []generation.QuizItem
	if _, err := repair.ParseInto(raw, contextID, &items); err != nil {
		return nil, err
	}
	// reuse the sprint normalizer for its quiz rules
	holder := generation.SprintContent{Quiz: items}
	holder.Normalize()
	if len(holder.Quiz) == 0 {
		return nil, errNoQuestions
	}
	return holder.Quiz, nil
}
