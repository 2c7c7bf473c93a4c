package personalized_path

import (
	"github.com/google/uuid"

	"github.com/yungbote/skillsprint-backend/internal/domain/learning"
)

// clonePath copies the base path's modules and sprints in order. Content is copied as-is.
func clonePath(userID uuid.UUID, base *learning.LearningPath) *learning.PersonalizedLearningPath {
	baseID := base.ID
	path := &learning.PersonalizedLearningPath{
		UserID:         userID,
		OriginalPathID: &baseID,
		Title:          base.Title,
		Description:    base.Description,
		IsCustom:       true,
	}
	for _, m := range base.Modules {
		if m == nil {
			continue
		}
		moduleID := m.ID
		pm := &learning.PersonalizedModule{
			OriginalModuleID: &moduleID,
			Title:            m.Title,
			Description:      m.Description,
			OrderIndex:       m.OrderIndex,
		}
		for _, s := range m.Sprints {
			if s == nil {
				continue
			}
			sprintID := s.ID
			pm.Sprints = append(pm.Sprints, &learning.PersonalizedSprint{
				OriginalSprintID: &sprintID,
				Title:            s.Title,
				Description:      s.Description,
				OrderIndex:       s.OrderIndex,
				Content:          s.Content,
				EstimatedMinutes: s.EstimatedMinutes,
			})
		}
		path.Modules = append(path.Modules, pm)
	}
	return path
}

func nextModuleIndex(path *learning.PersonalizedLearningPath) int {
	next := 0
	for _, m := range path.Modules {
		if m.OrderIndex >= next {
			next = m.OrderIndex + 1
		}
	}
	return next
}
