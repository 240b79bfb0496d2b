package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/models"
)

// WorkflowStepDTO represents one step of a workflow
type WorkflowStepDTO struct {
	ID         uuid.UUID `json:"id"`
	PromptID   uuid.UUID `json:"prompt_id"`
	PromptName string    `json:"prompt_name,omitempty"`
	Order      int       `json:"order"`
	Name       string    `json:"name"`
}

// WorkflowDTO represents a workflow in API responses
type WorkflowDTO struct {
	ID             uuid.UUID         `json:"id"`
	OrganizationID uuid.UUID         `json:"organization_id"`
	CreatedBy      *uuid.UUID        `json:"created_by"`
	CreatedByName  string            `json:"created_by_name,omitempty"`
	FolderID       *uuid.UUID        `json:"folder_id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Visibility     models.Visibility `json:"visibility"`
	Steps          []WorkflowStepDTO `json:"steps"`
	SharedTeams    []TeamRefDTO      `json:"shared_teams"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// WorkflowListResponse represents a paginated list of workflows
type WorkflowListResponse struct {
	Workflows  []WorkflowDTO `json:"workflows"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalCount int64         `json:"total_count"`
	TotalPages int           `json:"total_pages"`
}

// ToWorkflowDTO converts a Workflow model to WorkflowDTO
func ToWorkflowDTO(workflow models.Workflow) WorkflowDTO {
	dto := WorkflowDTO{
		ID:             workflow.ID,
		OrganizationID: workflow.OrganizationID,
		CreatedBy:      workflow.CreatedByID,
		FolderID:       workflow.FolderID,
		Name:           workflow.Name,
		Description:    workflow.Description,
		Visibility:     workflow.Visibility,
		Steps:          []WorkflowStepDTO{},
		SharedTeams:    []TeamRefDTO{},
		CreatedAt:      workflow.CreatedAt,
		UpdatedAt:      workflow.UpdatedAt,
	}

	if workflow.CreatedBy != nil {
		dto.CreatedByName = workflow.CreatedBy.Name
	}
	for _, step := range workflow.Steps {
		dto.Steps = append(dto.Steps, WorkflowStepDTO{
			ID:         step.ID,
			PromptID:   step.PromptID,
			PromptName: step.Prompt.Name,
			Order:      step.Order,
			Name:       step.Name,
		})
	}
	for _, wt := range workflow.SharedTeams {
		dto.SharedTeams = append(dto.SharedTeams, TeamRefDTO{
			ID:   wt.TeamID,
			Name: wt.Team.Name,
		})
	}

	return dto
}

// ToWorkflowHistoryDTO converts a WorkflowHistory model to HistoryDTO
func ToWorkflowHistoryDTO(history models.WorkflowHistory) HistoryDTO {
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
