package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Workflow struct {
	ID             uuid.UUID  `gorm:"type:uuid;primarykey" json:"id"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"organization_id"`
	CreatedByID    *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	FolderID       *uuid.UUID `gorm:"type:uuid" json:"folder_id"`
	Name           string     `gorm:"type:varchar(255);not null" json:"name"`
	Description    string     `gorm:"type:text" json:"description"`
	Visibility     Visibility `gorm:"type:varchar(20);not null;default:'PRIVATE'" json:"visibility"`
	IsActive       bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Organization Organization   `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	CreatedBy    *User          `gorm:"foreignKey:CreatedByID" json:"created_by_user,omitempty"`
	Folder       *Folder        `gorm:"foreignKey:FolderID" json:"folder,omitempty"`
	Steps        []WorkflowStep `gorm:"foreignKey:WorkflowID" json:"steps,omitempty"`
	SharedTeams  []WorkflowTeam `gorm:"foreignKey:WorkflowID" json:"shared_teams,omitempty"`
}

func (w *Workflow) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
