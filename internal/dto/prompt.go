package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/models"
)

// CategoryRefDTO is the category summary embedded in prompt responses
type CategoryRefDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// TeamRefDTO is the team summary embedded in prompt and workflow responses
type TeamRefDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// PromptDTO represents a prompt in API responses
type PromptDTO struct {
	ID             uuid.UUID         `json:"id"`
	OrganizationID uuid.UUID         `json:"organization_id"`
	CreatedBy      *uuid.UUID        `json:"created_by"`
	CreatedByName  string            `json:"created_by_name,omitempty"`
	FolderID       *uuid.UUID        `json:"folder_id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Prompt         string            `json:"prompt"`
	Model          string            `json:"model"`
	Visibility     models.Visibility `json:"visibility"`
	Categories     []CategoryRefDTO  `json:"categories"`
	SharedTeams    []TeamRefDTO      `json:"shared_teams"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// PromptListResponse represents a paginated list of prompts
type PromptListResponse struct {
	Prompts    []PromptDTO `json:"prompts"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalCount int64       `json:"total_count"`
	TotalPages int         `json:"total_pages"`
}

// HistoryDTO represents a prompt or workflow history row
type HistoryDTO struct {
	ID            uuid.UUID       `json:"id"`
	ChangedBy     *uuid.UUID      `json:"changed_by"`
	ChangedByName string          `json:"changed_by_name,omitempty"`
	ChangeSummary string          `json:"change_summary"`
	Snapshot      json.RawMessage `json:"snapshot"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToPromptDTO converts a Prompt model to PromptDTO
func ToPromptDTO(prompt models.Prompt) PromptDTO {
	dto := PromptDTO{
		ID:             prompt.ID,
		OrganizationID: prompt.OrganizationID,
		CreatedBy:      prompt.CreatedByID,
		FolderID:       prompt.FolderID,
		Name:           prompt.Name,
		Description:    prompt.Description,
		Prompt:         prompt.Prompt,
		Model:          prompt.Model,
		Visibility:     prompt.Visibility,
		Categories:     []CategoryRefDTO{},
		SharedTeams:    []TeamRefDTO{},
		CreatedAt:      prompt.CreatedAt,
		UpdatedAt:      prompt.UpdatedAt,
	}

	if prompt.CreatedBy != nil {
		dto.CreatedByName = prompt.CreatedBy.Name
	}
	for _, pc := range prompt.Categories {
		dto.Categories = append(dto.Categories, CategoryRefDTO{
			ID:   pc.CategoryID,
			Name: pc.Category.Name,
		})
	}
	for _, tp := range prompt.SharedTeams {
		dto.SharedTeams = append(dto.SharedTeams, TeamRefDTO{
			ID:   tp.TeamID,
			Name: tp.Team.Name,
		})
	}

	return dto
}

// ToPromptHistoryDTO converts a PromptHistory model to HistoryDTO
func ToPromptHistoryDTO(history models.PromptHistory) HistoryDTO {
	dto := HistoryDTO{
		ID:            history.ID,
		ChangedBy:     history.ChangedByID,
		ChangeSummary: history.ChangeSummary,
		Snapshot:      json.RawMessage(history.Snapshot),
		CreatedAt:     history.CreatedAt,
	}
	if history.ChangedBy != nil {
		dto.ChangedByName = history.ChangedBy.Name
	}
	return dto
}
