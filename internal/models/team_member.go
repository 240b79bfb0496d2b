package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeamRole string

const (
	TeamRoleOwner  TeamRole = "OWNER"
	TeamRoleMember TeamRole = "MEMBER"
	TeamRoleViewer TeamRole = "VIEWER"
)

type TeamMember struct {
	ID     uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	TeamID uuid.UUID `gorm:"type:uuid;not null;index" json:"team_id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Role   TeamRole  `gorm:"type:varchar(50);not null" json:"role"`
	// IsActive false marks a soft removal; the row stays for audit.
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Team Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
