package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Organization struct {
	ID             uuid.UUID  `gorm:"type:uuid;primarykey" json:"id"`
	Name           string     `gorm:"type:varchar(255);not null" json:"name"`
	Description    string     `gorm:"type:text" json:"description"`
	IsActive       bool       `gorm:"not null;default:true" json:"is_active"`
	IsTrial        bool       `gorm:"not null;default:false" json:"is_trial"`
	TrialStartDate *time.Time `json:"trial_start_date"`
	TrialEndDate   *time.Time `json:"trial_end_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Members    []OrganizationMember `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
	Teams      []Team               `gorm:"foreignKey:OrganizationID" json:"teams,omitempty"`
	Categories []Category           `gorm:"foreignKey:OrganizationID" json:"categories,omitempty"`
	Prompts    []Prompt             `gorm:"foreignKey:OrganizationID" json:"prompts,omitempty"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
