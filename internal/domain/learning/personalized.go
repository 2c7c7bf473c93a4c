package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PersonalizedLearningPath struct {
	ID             uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID             `gorm:"type:uuid;not null;index" json:"user_id"`
	OriginalPathID *uuid.UUID            `gorm:"type:uuid;column:original_path_id;index" json:"original_path_id,omitempty"`
	Title          string                `gorm:"column:title;not null" json:"title"`
	Description    string                `gorm:"column:description" json:"description"`
	IsCustom       bool                  `gorm:"column:is_custom;not null;default:true" json:"is_custom"`
	Modules        []*PersonalizedModule `gorm:"foreignKey:PersonalizedPathID;references:ID" json:"modules,omitempty"`
	CreatedAt      time.Time             `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time             `gorm:"not null" json:"updated_at"`
}

func (PersonalizedLearningPath) TableName() string { return "personalized_learning_paths" }

func (p *PersonalizedLearningPath) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type PersonalizedModule struct {
	ID                 uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	PersonalizedPathID uuid.UUID             `gorm:"type:uuid;not null;index" json:"personalized_path_id"`
	OriginalModuleID   *uuid.UUID            `gorm:"type:uuid;column:original_module_id" json:"original_module_id,omitempty"`
	Title              string                `gorm:"column:title;not null" json:"title"`
	Description        string                `gorm:"column:description" json:"description"`
	OrderIndex         int                   `gorm:"column:order_index;not null;default:0" json:"order_index"`
	IsGenerated        bool                  `gorm:"column:is_generated;not null;default:false" json:"is_generated"`
	Sprints            []*PersonalizedSprint `gorm:"foreignKey:PersonalizedModuleID;references:ID" json:"sprints,omitempty"`
	CreatedAt          time.Time             `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time             `gorm:"not null" json:"updated_at"`
}

func (PersonalizedModule) TableName() string { return "personalized_modules" }

func (m *PersonalizedModule) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type PersonalizedSprint struct {
	ID                   uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	PersonalizedModuleID uuid.UUID                   `gorm:"type:uuid;not null;index" json:"personalized_module_id"`
	OriginalSprintID     *uuid.UUID                  `gorm:"type:uuid;column:original_sprint_id" json:"original_sprint_id,omitempty"`
	KnowledgeAreaID      *uuid.UUID                  `gorm:"type:uuid;column:knowledge_area_id" json:"knowledge_area_id,omitempty"`
	Title                string                      `gorm:"column:title;not null" json:"title"`
	Description          string                      `gorm:"column:description" json:"description"`
	OrderIndex           int                         `gorm:"column:order_index;not null;default:0" json:"order_index"`
	Content              datatypes.JSON              `gorm:"column:content;type:jsonb" json:"content"`
	EstimatedMinutes     int                         `gorm:"column:estimated_minutes" json:"estimated_minutes"`
	IsGenerated          bool                        `gorm:"column:is_generated;not null;default:false" json:"is_generated"`
	QuizQuestions        []*PersonalizedQuizQuestion `gorm:"foreignKey:PersonalizedSprintID;references:ID" json:"quiz_questions,omitempty"`
	CreatedAt            time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time                   `gorm:"not null" json:"updated_at"`
}

func (PersonalizedSprint) TableName() string { return "personalized_sprints" }

func (s *PersonalizedSprint) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type PersonalizedQuizQuestion struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PersonalizedSprintID uuid.UUID      `gorm:"type:uuid;not null;index" json:"personalized_sprint_id"`
	KnowledgeAreaID      *uuid.UUID     `gorm:"type:uuid;column:knowledge_area_id" json:"knowledge_area_id,omitempty"`
	Question             string         `gorm:"column:question;not null" json:"question"`
	Options              datatypes.JSON `gorm:"column:options;type:jsonb" json:"options"`
	CorrectAnswer        int            `gorm:"column:correct_answer;not null" json:"correct_answer"`
	Explanation          string         `gorm:"column:explanation" json:"explanation"`
	OrderIndex           int            `gorm:"column:order_index;not null;default:0" json:"order_index"`
	IsGenerated          bool           `gorm:"column:is_generated;not null;default:true" json:"is_generated"`
	CreatedAt            time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null" json:"updated_at"`
}

func (PersonalizedQuizQuestion) TableName() string { return "personalized_quiz_questions" }

func (q *PersonalizedQuizQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
