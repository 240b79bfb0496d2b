package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamPrompt is the sharing grant of a prompt to a team. No updated_at;
// grants are created or replaced wholesale.
type TeamPrompt struct {
	ID        uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	TeamID    uuid.UUID `gorm:"type:uuid;not null;index" json:"team_id"`
	PromptID  uuid.UUID `gorm:"type:uuid;not null;index" json:"prompt_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Team   Team   `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Prompt Prompt `gorm:"foreignKey:PromptID" json:"prompt,omitempty"`
}

func (tp *TeamPrompt) BeforeCreate(tx *gorm.DB) error {
	if tp.ID == uuid.Nil {
		tp.ID = uuid.New()
	}
	return nil
}
