package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WorkflowHistory mirrors PromptHistory for workflows: append-only rows
// holding the pre-change state.
type WorkflowHistory struct {
	ID            uuid.UUID      `gorm:"type:uuid;primarykey" json:"id"`
	WorkflowID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"workflow_id"`
	ChangedByID   *uuid.UUID     `gorm:"type:uuid" json:"changed_by"`
	ChangeSummary string         `gorm:"type:text;not null" json:"change_summary"`
	Snapshot      datatypes.JSON `gorm:"not null" json:"snapshot"`
	CreatedAt     time.Time      `json:"created_at"`

	// Relations
	Workflow  Workflow `gorm:"foreignKey:WorkflowID" json:"workflow,omitempty"`
	ChangedBy *User    `gorm:"foreignKey:ChangedByID" json:"changed_by_user,omitempty"`
}

func (h *WorkflowHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
