package generation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// TerminalStatuses are never left once entered.
var TerminalStatuses = []Status{StatusCompleted, StatusFailed, StatusCancelled}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether s -> next moves forward.
// pending -> processing -> {completed|failed|cancelled}; pending may also be cancelled directly.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusCancelled
	case StatusProcessing:
		return next.Terminal()
	default:
		return false
	}
}

// GenerationRequest is one course-generation job. The running pipeline is its only writer;
// clients read it and may set status to cancelled.
type GenerationRequest struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Status           Status         `gorm:"column:status;type:text;not null;index" json:"status"`
	Progress         int            `gorm:"column:progress;not null;default:0" json:"progress"`
	StatusMessage    string         `gorm:"column:status_message" json:"status_message"`
	RequestData      datatypes.JSON `gorm:"column:request_data;type:jsonb" json:"request_data"`
	ContentGenerated bool           `gorm:"column:content_generated;not null;default:false" json:"content_generated"`
	CourseData       datatypes.JSON `gorm:"column:course_data;type:jsonb" json:"course_data,omitempty"`
	ErrorMessage     *string        `gorm:"column:error_message" json:"error_message"`
	CreatedAt        time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (GenerationRequest) TableName() string { return "course_generation_requests" }

func (r *GenerationRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = StatusPending
	}
	return nil
}

// Snapshot is the observable part of a request pushed to subscribers on every change.
type Snapshot struct {
	ID               uuid.UUID `json:"id"`
	Status           Status    `json:"status"`
	Progress         int       `json:"progress"`
	StatusMessage    string    `json:"status_message"`
	ContentGenerated bool      `json:"content_generated"`
	ErrorMessage     *string   `json:"error_message"`
}

func (r *GenerationRequest) Snapshot() Snapshot {
	return Snapshot{
		ID:               r.ID,
		Status:           r.Status,
		Progress:         r.Progress,
		StatusMessage:    r.StatusMessage,
		ContentGenerated: r.ContentGenerated,
		ErrorMessage:     r.ErrorMessage,
	}
}
