package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PromptHistory is an append-only trail of prior prompt versions. Each row
// stores the state the prompt had *before* the change it records.
type PromptHistory struct {
	ID            uuid.UUID      `gorm:"type:uuid;primarykey" json:"id"`
	PromptID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"prompt_id"`
	ChangedByID   *uuid.UUID     `gorm:"type:uuid" json:"changed_by"`
	ChangeSummary string         `gorm:"type:text;not null" json:"change_summary"`
	Snapshot      datatypes.JSON `gorm:"not null" json:"snapshot"`
	CreatedAt     time.Time      `json:"created_at"`

	// Relations
	Prompt    Prompt `gorm:"foreignKey:PromptID" json:"prompt,omitempty"`
	ChangedBy *User  `gorm:"foreignKey:ChangedByID" json:"changed_by_user,omitempty"`
}

func (h *PromptHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
