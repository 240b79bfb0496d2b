package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PromptCategory is the Prompt <-> Category join. Rows are only ever
// created or replaced wholesale, so there is no updated_at column.
type PromptCategory struct {
	ID         uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	PromptID   uuid.UUID `gorm:"type:uuid;not null;index" json:"prompt_id"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	Prompt   Prompt   `gorm:"foreignKey:PromptID" json:"prompt,omitempty"`
	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (pc *PromptCategory) BeforeCreate(tx *gorm.DB) error {
	if pc.ID == uuid.Nil {
		pc.ID = uuid.New()
	}
	return nil
}
