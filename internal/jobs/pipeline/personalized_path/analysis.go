package personalized_path

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/skillsprint-backend/internal/domain/learning"
	"github.com/yungbote/skillsprint-backend/internal/platform/dbctx"
)

const (
	focusAreaCount      = 3
	bootstrapScoreMin   = 0.3
	bootstrapScoreSpan  = 0.5
	bootstrapConfidence = 0.1
)

type AreaScore struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	ProficiencyScore float64   `json:"proficiencyScore"`
	ConfidenceLevel  float64   `json:"confidenceLevel"`
}

type PerformanceAnalysis struct {
	WeakAreas        []AreaScore `json:"weakAreas"`
	StrongAreas      []AreaScore `json:"strongAreas"`
	RecommendedFocus []uuid.UUID `json:"recommendedFocus"`
	CompletedSprints int         `json:"completedSprints"`
	AverageScore     float64     `json:"averageScore"`
}

// ensureProficiency returns the user's proficiency rows, seeding random cold-start scores
// when the user has none.
func (p *PersonalizedPathPipeline) ensureProficiency(ctx context.Context, userID uuid.UUID) ([]*learning.UserKnowledgeProficiency, error) {
	rows, err := p.knowledge.ListProficiency(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("load proficiency: %w", err)
	}
	if len(rows) > 0 {
		return rows, nil
	}

	seededRows := 0
	err = p.tx.InTx(ctx, func(dbc dbctx.Context) error {
		// a concurrent bootstrap for the same user may have committed since the read above
		existing, err := p.knowledge.ListProficiency(dbc, userID)
		if err != nil {
			return fmt.Errorf("load proficiency: %w", err)
		}
		if len(existing) > 0 {
			return nil
		}

		areas, err := p.knowledge.ListAreas(dbc)
		if err != nil {
			return fmt.Errorf("load knowledge areas: %w", err)
		}
		if len(areas) == 0 {
			defaults := make([]*learning.KnowledgeArea, 0, len(p.defaults))
			for _, d := range p.defaults {
				defaults = append(defaults, &learning.KnowledgeArea{Name: d.Name, Description: d.Description, Category: d.Category})
			}
			if err := p.knowledge.CreateAreas(dbc, defaults); err != nil {
				return fmt.Errorf("create default knowledge areas: %w", err)
			}
			// ids of rows skipped on conflict belong to another writer; read them back
			if areas, err = p.knowledge.ListAreas(dbc); err != nil {
				return fmt.Errorf("reload knowledge areas: %w", err)
			}
			p.log.Info("Seeded default knowledge areas", "count", len(areas))
		}

		seeded := make([]*learning.UserKnowledgeProficiency, 0, len(areas))
		for _, a := range areas {
			seeded = append(seeded, &learning.UserKnowledgeProficiency{
				UserID:           userID,
				KnowledgeAreaID:  a.ID,
				ProficiencyScore: bootstrapScoreMin + p.randFloat()*bootstrapScoreSpan,
				ConfidenceLevel:  bootstrapConfidence,
			})
		}
		if err := p.knowledge.CreateProficiency(dbc, seeded); err != nil {
			return fmt.Errorf("create proficiency: %w", err)
		}
		seededRows = len(seeded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if seededRows > 0 {
		p.log.Info("Bootstrapped knowledge proficiency", "user_id", userID, "areas", seededRows)
	}

	return p.knowledge.ListProficiency(dbctx.Context{Ctx: ctx}, userID)
}

// analyze ranks areas by score. Weak areas are the lowest scores ascending, strong areas
// the highest scores descending.
func analyze(rows []*learning.UserKnowledgeProficiency, completed int, avg float64) PerformanceAnalysis {
	scores := make([]AreaScore, 0, len(rows))
	for _, r := range rows {
		s := AreaScore{ID: r.KnowledgeAreaID, ProficiencyScore: r.ProficiencyScore, ConfidenceLevel: r.ConfidenceLevel}
		if r.KnowledgeArea != nil {
			s.Name = r.KnowledgeArea.Name
			s.Description = r.KnowledgeArea.Description
		}
		scores = append(scores, s)
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].ProficiencyScore != scores[j].ProficiencyScore {
			return scores[i].ProficiencyScore < scores[j].ProficiencyScore
		}
		return scores[i].Name < scores[j].Name
	})

	n := focusAreaCount
	if len(scores) < n {
		n = len(scores)
	}
	out := PerformanceAnalysis{
		WeakAreas:        append([]AreaScore{}, scores[:n]...),
		StrongAreas:      make([]AreaScore, 0, n),
		RecommendedFocus: make([]uuid.UUID, 0, n),
		CompletedSprints: completed,
		AverageScore:     avg,
	}
	for i := len(scores) - 1; i >= len(scores)-n; i-- {
		out.StrongAreas = append(out.StrongAreas, scores[i])
	}
	for _, w := range out.WeakAreas {
		out.RecommendedFocus = append(out.RecommendedFocus, w.ID)
	}
	return out
}
