package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrWorkflowNotFound     = errors.New("workflow not found")
	ErrWorkflowNameRequired = errors.New("workflow name is required")
	ErrInvalidWorkflowStep  = errors.New("workflow step references an unknown prompt")
)

// WorkflowService handles workflow business logic
type WorkflowService struct {
	workflowRepo repository.WorkflowRepository
	promptRepo   repository.PromptRepository
	orgRepo      repository.OrganizationRepository
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(workflowRepo repository.WorkflowRepository, promptRepo repository.PromptRepository, orgRepo repository.OrganizationRepository) *WorkflowService {
	return &WorkflowService{
		workflowRepo: workflowRepo,
		promptRepo:   promptRepo,
		orgRepo:      orgRepo,
	}
}

// WorkflowStepInput is one step in a caller-supplied step list.
type WorkflowStepInput struct {
	PromptID uuid.UUID `json:"prompt_id"`
	Order    int       `json:"order"`
	Name     string    `json:"name"`
}

// ListWorkflowsInput represents filters for listing workflows
type ListWorkflowsInput struct {
	ActorID        uuid.UUID
	OrganizationID *uuid.UUID
	TeamID         *uuid.UUID
	Visibility     *models.Visibility
	CreatedByID    *uuid.UUID
	FolderID       *uuid.UUID
	RootFolder     bool
	Search         string
	OrderBy        string
	Page           int
	PageSize       int
}

// CreateWorkflowInput represents input for creating a workflow
type CreateWorkflowInput struct {
	ActorID        uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Description    string
	Visibility     models.Visibility
	FolderID       *uuid.UUID
	Steps          []WorkflowStepInput
	TeamIDs        []uuid.UUID
}

// UpdateWorkflowInput represents input for updating a workflow. A non-nil
// step list replaces the existing steps wholesale.
type UpdateWorkflowInput struct {
	ActorID     uuid.UUID
	Name        *string
	Description *string
	Visibility  *models.Visibility
	FolderID    *uuid.UUID
	ClearFolder bool
	Steps       *[]WorkflowStepInput
	TeamIDs     *[]uuid.UUID
}

var workflowPreloads = []string{"CreatedBy", "Folder", "Steps", "Steps.Prompt", "SharedTeams.Team"}

// ListWorkflows returns workflows inside the actor's organizations.
func (s *WorkflowService) ListWorkflows(input ListWorkflowsInput) ([]models.Workflow, int64, error) {
	orgIDs, err := resolveAccessibleOrganizationIDs(s.orgRepo, input.ActorID, input.OrganizationID)
	if err != nil {
		return nil, 0, err
	}
	if len(orgIDs) == 0 {
		return []models.Workflow{}, 0, nil
	}

	workflows, total, err := s.workflowRepo.List(repository.WorkflowFilter{
		OrganizationIDs: orgIDs,
		OrganizationID:  input.OrganizationID,
		TeamID:          input.TeamID,
		Visibility:      input.Visibility,
		CreatedByID:     input.CreatedByID,
		FolderID:        input.FolderID,
		RootFolder:      input.RootFolder,
		Search:          input.Search,
		OrderBy:         input.OrderBy,
		Page:            input.Page,
		PageSize:        input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workflows: %w", err)
	}
	return workflows, total, nil
}

// GetWorkflow returns a workflow the actor can see, 404 otherwise.
func (s *WorkflowService) GetWorkflow(workflowID, actorID uuid.UUID) (*models.Workflow, error) {
	workflow, err := s.workflowRepo.FindByID(workflowID, workflowPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to find workflow: %w", err)
	}

	if _, err := s.orgRepo.FindMember(workflow.OrganizationID, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to verify organization membership: %w", err)
	}

	return workflow, nil
}

// CreateWorkflow creates a workflow with its steps and team associations.
func (s *WorkflowService) CreateWorkflow(input CreateWorkflowInput) (*models.Workflow, error) {
	if input.Name == "" {
		return nil, ErrWorkflowNameRequired
	}

	if _, err := s.orgRepo.FindMember(input.OrganizationID, input.ActorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotOrganizationMember
		}
		return nil, fmt.Errorf("failed to verify organization membership: %w", err)
	}

	if input.Visibility == "" {
		input.Visibility = models.VisibilityPrivate
	}

	steps, err := s.buildSteps(input.Steps, input.OrganizationID)
	if err != nil {
		return nil, err
	}

	workflow := &models.Workflow{
		OrganizationID: input.OrganizationID,
		CreatedByID:    &input.ActorID,
		FolderID:       input.FolderID,
		Name:           input.Name,
		Description:    input.Description,
		Visibility:     input.Visibility,
		IsActive:       true,
	}

	if err := s.workflowRepo.Create(workflow, steps, input.TeamIDs); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return s.workflowRepo.FindByID(workflow.ID, workflowPreloads...)
}

// UpdateWorkflow applies field changes and records one pre-update history
// row when anything changed. Step comparison is order-sensitive.
func (s *WorkflowService) UpdateWorkflow(workflowID uuid.UUID, input UpdateWorkflowInput) (*models.Workflow, error) {
	workflow, err := s.workflowRepo.FindByID(workflowID, "Steps", "SharedTeams")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to find workflow: %w", err)
	}

	if _, err := s.orgRepo.FindMember(workflow.OrganizationID, input.ActorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to verify organization membership: %w", err)
	}

	snapshot := snapshotWorkflow(workflow)
	var changed []string

	if input.Name != nil && *input.Name != workflow.Name {
		if *input.Name == "" {
			return nil, ErrWorkflowNameRequired
		}
		workflow.Name = *input.Name
		changed = append(changed, "name")
	}
	if input.Description != nil && *input.Description != workflow.Description {
		workflow.Description = *input.Description
		changed = append(changed, "description")
	}
	if input.Visibility != nil && *input.Visibility != workflow.Visibility {
		workflow.Visibility = *input.Visibility
		changed = append(changed, "visibility")
	}
	if input.ClearFolder {
		if workflow.FolderID != nil {
			workflow.FolderID = nil
			changed = append(changed, "folder")
		}
	} else if input.FolderID != nil {
		if workflow.FolderID == nil || *workflow.FolderID != *input.FolderID {
			workflow.FolderID = input.FolderID
			changed = append(changed, "folder")
		}
	}

	if input.TeamIDs != nil && !equalStringSlices(snapshot.TeamIDs, sortedIDStrings(*input.TeamIDs)) {
		changed = append(changed, "teams")
	}

	var newSteps *[]models.WorkflowStep
	if input.Steps != nil {
		steps, err := s.buildSteps(*input.Steps, workflow.OrganizationID)
		if err != nil {
			return nil, err
		}
		newSteps = &steps

		newSnaps := make([]workflowStepSnap, 0, len(steps))
		for _, step := range steps {
			newSnaps = append(newSnaps, workflowStepSnap{
				PromptID: step.PromptID.String(),
				Order:    step.Order,
				Name:     step.Name,
			})
		}
		if !equalStepSnaps(snapshot.Steps, newSnaps) {
			changed = append(changed, "steps")
		}
	}

	var history *models.WorkflowHistory
	if len(changed) > 0 {
		raw, err := marshalSnapshot(snapshot)
		if err != nil {
			return nil, err
		}
		history = &models.WorkflowHistory{
			WorkflowID:    workflow.ID,
			ChangedByID:   &input.ActorID,
			ChangeSummary: changeSummary(changed),
			Snapshot:      raw,
		}
	}

	if err := s.workflowRepo.Update(workflow, newSteps, input.TeamIDs, history); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return s.workflowRepo.FindByID(workflow.ID, workflowPreloads...)
}

// DeleteWorkflow removes a workflow with its steps, joins and history.
func (s *WorkflowService) DeleteWorkflow(workflowID, actorID uuid.UUID) error {
	if _, err := s.GetWorkflow(workflowID, actorID); err != nil {
		return err
	}

	if err := s.workflowRepo.Delete(workflowID); err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}

// ListHistory returns a workflow's history rows, newest first.
func (s *WorkflowService) ListHistory(workflowID, actorID uuid.UUID) ([]models.WorkflowHistory, error) {
	if _, err := s.GetWorkflow(workflowID, actorID); err != nil {
		return nil, err
	}

	history, err := s.workflowRepo.ListHistory(workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow history: %w", err)
	}
	return history, nil
}

// buildSteps turns caller input into step rows, sorted by order, after
// verifying every referenced prompt belongs to the same organization.
func (s *WorkflowService) buildSteps(inputs []WorkflowStepInput, organizationID uuid.UUID) ([]models.WorkflowStep, error) {
	steps := make([]models.WorkflowStep, 0, len(inputs))
	for _, in := range inputs {
		prompt, err := s.promptRepo.FindByID(in.PromptID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidWorkflowStep
			}
			return nil, fmt.Errorf("failed to verify step prompt: %w", err)
		}
		if prompt.OrganizationID != organizationID {
			return nil, ErrInvalidWorkflowStep
		}

		steps = append(steps, models.WorkflowStep{
			PromptID: in.PromptID,
			Order:    in.Order,
			Name:     in.Name,
		})
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].Order < steps[j].Order })
	return steps, nil
}
