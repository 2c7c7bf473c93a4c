package testutil

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
	"github.com/yungbote/skillsprint-backend/internal/domain/learning"
)

func SeedGenerationRequest(tb testing.TB, tx *gorm.DB, status generation.Status) *generation.GenerationRequest {
	tb.Helper()
	payload, _ := json.Marshal(generation.CourseRequest{
		Topic:    "Photosynthesis",
		Audience: "high school students",
		Level:    "beginner",
		Duration: "2 weeks",
		Goals:    "understand the light reactions",
	})
	r := &generation.GenerationRequest{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Status:      status,
		RequestData: datatypes.JSON(payload),
	}
	if err := tx.Create(r).Error; err != nil {
		tb.Fatalf("seed generation request: %v", err)
	}
	return r
}

// SeedPath creates a path with the given number of sprints per module.
func SeedPath(tb testing.TB, tx *gorm.DB, sprintsPerModule ...int) *learning.LearningPath {
	tb.Helper()
	p := &learning.LearningPath{ID: uuid.New(), Title: "Intro to Biology", Description: "base path"}
	if err := tx.Create(p).Error; err != nil {
		tb.Fatalf("seed path: %v", err)
	}
	for mi, n := range sprintsPerModule {
		m := &learning.Module{ID: uuid.New(), PathID: p.ID, Title: "Module", OrderIndex: mi}
		if err := tx.Omit("Sprints").Create(m).Error; err != nil {
			tb.Fatalf("seed module: %v", err)
		}
		for si := 0; si < n; si++ {
			s := &learning.Sprint{
				ID:               uuid.New(),
				ModuleID:         m.ID,
				Title:            "Sprint",
				OrderIndex:       si,
				Content:          datatypes.JSON([]byte(`{"blocks":[]}`)),
				EstimatedMinutes: 15,
			}
			if err := tx.Create(s).Error; err != nil {
				tb.Fatalf("seed sprint: %v", err)
			}
			m.Sprints = append(m.Sprints, s)
		}
		p.Modules = append(p.Modules, m)
	}
	return p
}

func SeedKnowledgeArea(tb testing.TB, tx *gorm.DB, name string) *learning.KnowledgeArea {
	tb.Helper()
	k := &learning.KnowledgeArea{ID: uuid.New(), Name: name, Description: name + " basics"}
	if err := tx.Create(k).Error; err != nil {
		tb.Fatalf("seed knowledge area: %v", err)
	}
	return k
}

func SeedProficiency(tb testing.TB, tx *gorm.DB, userID, areaID uuid.UUID, score float64) *learning.UserKnowledgeProficiency {
	tb.Helper()
	p := &learning.UserKnowledgeProficiency{
		ID:               uuid.New(),
		UserID:           userID,
		KnowledgeAreaID:  areaID,
		ProficiencyScore: score,
		ConfidenceLevel:  0.5,
	}
	if err := tx.Omit("KnowledgeArea").Create(p).Error; err != nil {
		tb.Fatalf("seed proficiency: %v", err)
	}
	return p
}
