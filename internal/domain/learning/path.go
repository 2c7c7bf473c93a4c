package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LearningPath is a curated base path that personalized paths are cloned from.
type LearningPath struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	Difficulty  string    `gorm:"column:difficulty" json:"difficulty,omitempty"`
	Modules     []*Module `gorm:"foreignKey:PathID;references:ID" json:"modules,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (LearningPath) TableName() string { return "learning_paths" }

func (p *LearningPath) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Module struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PathID      uuid.UUID `gorm:"type:uuid;not null;index" json:"path_id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	OrderIndex  int       `gorm:"column:order_index;not null;default:0" json:"order_index"`
	Sprints     []*Sprint `gorm:"foreignKey:ModuleID;references:ID" json:"sprints,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Module) TableName() string { return "modules" }

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type Sprint struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"module_id"`
	Title            string         `gorm:"column:title;not null" json:"title"`
	Description      string         `gorm:"column:description" json:"description"`
	OrderIndex       int            `gorm:"column:order_index;not null;default:0" json:"order_index"`
	Content          datatypes.JSON `gorm:"column:content;type:jsonb" json:"content"`
	EstimatedMinutes int            `gorm:"column:estimated_minutes" json:"estimated_minutes"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (Sprint) TableName() string { return "sprints" }

func (s *Sprint) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// UserSprintProgress records a user's completion and score on a sprint.
type UserSprintProgress struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	SprintID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"sprint_id"`
	Completed   bool       `gorm:"column:completed;not null;default:false" json:"completed"`
	Score       *float64   `gorm:"column:score" json:"score,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (UserSprintProgress) TableName() string { return "user_sprint_progress" }

func (p *UserSprintProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
