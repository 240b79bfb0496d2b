package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FolderType string

const (
	FolderTypePrivate FolderType = "PRIVATE"
	FolderTypeTeam    FolderType = "TEAM"
)

type Folder struct {
	ID             uuid.UUID  `gorm:"type:uuid;primarykey" json:"id"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"organization_id"`
	ParentID       *uuid.UUID `gorm:"type:uuid" json:"parent_id"`
	UserID         *uuid.UUID `gorm:"type:uuid" json:"user_id"`
	TeamID         *uuid.UUID `gorm:"type:uuid" json:"team_id"`
	Name           string     `gorm:"type:varchar(255);not null" json:"name"`
	FolderType     FolderType `gorm:"type:varchar(20);not null;default:'PRIVATE'" json:"folder_type"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Parent       *Folder      `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
}

func (f *Folder) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
