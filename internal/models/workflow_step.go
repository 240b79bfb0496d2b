package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkflowStep is one entry in a workflow's ordered prompt chain.
type WorkflowStep struct {
	ID         uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	WorkflowID uuid.UUID `gorm:"type:uuid;not null;index" json:"workflow_id"`
	PromptID   uuid.UUID `gorm:"type:uuid;not null;index" json:"prompt_id"`
	Order      int       `gorm:"column:step_order;not null" json:"order"`
	Name       string    `gorm:"type:varchar(255)" json:"name"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	Workflow Workflow `gorm:"foreignKey:WorkflowID" json:"workflow,omitempty"`
	Prompt   Prompt   `gorm:"foreignKey:PromptID" json:"prompt,omitempty"`
}

func (s *WorkflowStep) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
