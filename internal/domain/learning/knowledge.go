package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type KnowledgeArea struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	Category    string    `gorm:"column:category" json:"category,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (KnowledgeArea) TableName() string { return "knowledge_areas" }

func (k *KnowledgeArea) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

// UserKnowledgeProficiency is a user's estimated mastery (0.0-1.0) of one knowledge area.
type UserKnowledgeProficiency struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_knowledge_area" json:"user_id"`
	KnowledgeAreaID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_knowledge_area" json:"knowledge_area_id"`
	KnowledgeArea    *KnowledgeArea `gorm:"foreignKey:KnowledgeAreaID;references:ID" json:"knowledge_area,omitempty"`
	ProficiencyScore float64        `gorm:"column:proficiency_score;not null" json:"proficiency_score"`
	ConfidenceLevel  float64        `gorm:"column:confidence_level;not null;default:0" json:"confidence_level"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (UserKnowledgeProficiency) TableName() string { return "user_knowledge_proficiency" }

func (p *UserKnowledgeProficiency) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
