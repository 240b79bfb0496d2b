package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkflowTeam is the sharing grant of a workflow to a team.
type WorkflowTeam struct {
	ID         uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	TeamID     uuid.UUID `gorm:"type:uuid;not null;index" json:"team_id"`
	WorkflowID uuid.UUID `gorm:"type:uuid;not null;index" json:"workflow_id"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	Team     Team     `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Workflow Workflow `gorm:"foreignKey:WorkflowID" json:"workflow,omitempty"`
}

func (wt *WorkflowTeam) BeforeCreate(tx *gorm.DB) error {
	if wt.ID == uuid.Nil {
		wt.ID = uuid.New()
	}
	return nil
}
