package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	IsActive bool      `json:"is_active"`
}

// UserTeamDTO is the team summary embedded in user responses
type UserTeamDTO struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	Role           models.TeamRole `json:"role"`
}

// UserWithTeamsDTO represents a user with their active team memberships
type UserWithTeamsDTO struct {
	UserDTO
	Teams     []UserTeamDTO `json:"teams"`
	CreatedAt time.Time     `json:"created_at"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users      []UserWithTeamsDTO `json:"users"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalCount int64              `json:"total_count"`
	TotalPages int                `json:"total_pages"`
}

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	IsTrial     bool      `json:"is_trial"`
	CreatedAt   time.Time `json:"created_at"`
}

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	ParentID       *uuid.UUID `json:"parent_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
		IsActive: user.IsActive,
	}
}

// ToUserWithTeamsDTO converts a user with preloaded team memberships. Only
// active memberships are expected to be preloaded.
func ToUserWithTeamsDTO(user models.User) UserWithTeamsDTO {
	teams := make([]UserTeamDTO, 0, len(user.TeamMemberships))
	for _, tm := range user.TeamMemberships {
		teams = append(teams, UserTeamDTO{
			ID:             tm.TeamID,
			Name:           tm.Team.Name,
			OrganizationID: tm.Team.OrganizationID,
			Role:           tm.Role,
		})
	}
	return UserWithTeamsDTO{
		UserDTO:   ToUserDTO(user),
		Teams:     teams,
		CreatedAt: user.CreatedAt,
	}
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:          org.ID,
		Name:        org.Name,
		Description: org.Description,
		IsActive:    org.IsActive,
		IsTrial:     org.IsTrial,
		CreatedAt:   org.CreatedAt,
	}
}

// ToTeamDTO converts a Team model to TeamDTO
func ToTeamDTO(team models.Team) TeamDTO {
	return TeamDTO{
		ID:             team.ID,
		OrganizationID: team.OrganizationID,
		ParentID:       team.ParentID,
		Name:           team.Name,
		Description:    team.Description,
		IsActive:       team.IsActive,
		CreatedAt:      team.CreatedAt,
	}
}
