package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrPromptNotFound     = errors.New("prompt not found")
	ErrPromptNameRequired = errors.New("prompt name is required")
	ErrPromptBodyRequired = errors.New("prompt body is required")
)

// PromptService handles prompt business logic
type PromptService struct {
	promptRepo repository.PromptRepository
	orgRepo    repository.OrganizationRepository
	aiService  *AIService
}

// NewPromptService creates a new PromptService
func NewPromptService(promptRepo repository.PromptRepository, orgRepo repository.OrganizationRepository, aiService *AIService) *PromptService {
	return &PromptService{
		promptRepo: promptRepo,
		orgRepo:    orgRepo,
		aiService:  aiService,
	}
}

// ListPromptsInput represents filters for listing prompts
type ListPromptsInput struct {
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

// CreatePromptInput represents input for creating a prompt
type CreatePromptInput struct {
	ActorID        uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Description    string
	Prompt         string
	Model          string
	Visibility     models.Visibility
	FolderID       *uuid.UUID
	CategoryIDs    []uuid.UUID
	TeamIDs        []uuid.UUID
}

// UpdatePromptInput represents input for updating a prompt. Nil fields are
// left untouched; a non-nil empty id slice clears the association set.
type UpdatePromptInput struct {
	ActorID     uuid.UUID
	Name        *string
	Description *string
	Prompt      *string
	Model       *string
	Visibility  *models.Visibility
	FolderID    *uuid.UUID
	ClearFolder bool
	CategoryIDs *[]uuid.UUID
	TeamIDs     *[]uuid.UUID
}

var promptPreloads = []string{"CreatedBy", "Folder", "Categories.Category", "SharedTeams.Team"}

// ListPrompts returns prompts inside the actor's organizations, narrowed by
// the provided filters.
func (s *PromptService) ListPrompts(input ListPromptsInput) ([]models.Prompt, int64, error) {
	orgIDs, err := resolveAccessibleOrganizationIDs(s.orgRepo, input.ActorID, input.OrganizationID)
	if err != nil {
		return nil, 0, err
	}
	if len(orgIDs) == 0 {
		return []models.Prompt{}, 0, nil
	}

	prompts, total, err := s.promptRepo.List(repository.PromptFilter{
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
		return nil, 0, fmt.Errorf("failed to list prompts: %w", err)
	}
	return prompts, total, nil
}

// GetPrompt returns a prompt the actor can see. Prompts outside the actor's
// organizations stay indistinguishable from missing ones.
func (s *PromptService) GetPrompt(promptID, actorID uuid.UUID) (*models.Prompt, error) {
	prompt, err := s.promptRepo.FindByID(promptID, promptPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromptNotFound
		}
		return nil, fmt.Errorf("failed to find prompt: %w", err)
	}

	if _, err := s.orgRepo.FindMember(prompt.OrganizationID, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromptNotFound
		}
		return nil, fmt.Errorf("failed to verify organization membership: %w", err)
	}

	return prompt, nil
}

// CreatePrompt creates a prompt with its category and team associations.
func (s *PromptService) CreatePrompt(input CreatePromptInput) (*models.Prompt, error) {
	if input.Name == "" {
		return nil, ErrPromptNameRequired
	}
	if input.Prompt == "" {
		return nil, ErrPromptBodyRequired
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

	prompt := &models.Prompt{
		OrganizationID: input.OrganizationID,
		CreatedByID:    &input.ActorID,
		FolderID:       input.FolderID,
		Name:           input.Name,
		Description:    input.Description,
		Prompt:         input.Prompt,
		Model:          input.Model,
		Visibility:     input.Visibility,
		IsActive:       true,
	}

	if err := s.promptRepo.Create(prompt, input.CategoryIDs, input.TeamIDs); err != nil {
		return nil, fmt.Errorf("failed to create prompt: %w", err)
	}

	return s.promptRepo.FindByID(prompt.ID, promptPreloads...)
}

// UpdatePrompt applies field changes and, when anything actually changed,
// records one history row holding the pre-update state.
func (s *PromptService) UpdatePrompt(promptID uuid.UUID, input UpdatePromptInput) (*models.Prompt, error) {
	prompt, err := s.promptRepo.FindByID(promptID, "Categories", "SharedTeams")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromptNotFound
		}
		return nil, fmt.Errorf("failed to find prompt: %w", err)
	}

	if _, err := s.orgRepo.FindMember(prompt.OrganizationID, input.ActorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromptNotFound
		}
		return nil, fmt.Errorf("failed to verify organization membership: %w", err)
	}

	snapshot := snapshotPrompt(prompt)
	var changed []string

	if input.Name != nil && *input.Name != prompt.Name {
		if *input.Name == "" {
			return nil, ErrPromptNameRequired
		}
		prompt.Name = *input.Name
		changed = append(changed, "name")
	}
	if input.Description != nil && *input.Description != prompt.Description {
		prompt.Description = *input.Description
		changed = append(changed, "description")
	}
	if input.Prompt != nil && *input.Prompt != prompt.Prompt {
		if *input.Prompt == "" {
			return nil, ErrPromptBodyRequired
		}
		prompt.Prompt = *input.Prompt
		changed = append(changed, "prompt")
	}
	if input.Model != nil && *input.Model != prompt.Model {
		prompt.Model = *input.Model
		changed = append(changed, "model")
	}
	if input.Visibility != nil && *input.Visibility != prompt.Visibility {
		prompt.Visibility = *input.Visibility
		changed = append(changed, "visibility")
	}
	if input.ClearFolder {
		if prompt.FolderID != nil {
			prompt.FolderID = nil
			changed = append(changed, "folder")
		}
	} else if input.FolderID != nil {
		if prompt.FolderID == nil || *prompt.FolderID != *input.FolderID {
			prompt.FolderID = input.FolderID
			changed = append(changed, "folder")
		}
	}

	if input.CategoryIDs != nil && !equalStringSlices(snapshot.CategoryIDs, sortedIDStrings(*input.CategoryIDs)) {
		changed = append(changed, "categories")
	}
	if input.TeamIDs != nil && !equalStringSlices(snapshot.TeamIDs, sortedIDStrings(*input.TeamIDs)) {
		changed = append(changed, "teams")
	}

	var history *models.PromptHistory
	if len(changed) > 0 {
		raw, err := marshalSnapshot(snapshot)
		if err != nil {
			return nil, err
		}
		history = &models.PromptHistory{
			PromptID:      prompt.ID,
			ChangedByID:   &input.ActorID,
			ChangeSummary: changeSummary(changed),
			Snapshot:      raw,
		}
	}

	if err := s.promptRepo.Update(prompt, input.CategoryIDs, input.TeamIDs, history); err != nil {
		return nil, fmt.Errorf("failed to update prompt: %w", err)
	}

	return s.promptRepo.FindByID(prompt.ID, promptPreloads...)
}

// DeletePrompt removes a prompt together with its joins and history.
func (s *PromptService) DeletePrompt(promptID, actorID uuid.UUID) error {
	if _, err := s.GetPrompt(promptID, actorID); err != nil {
		return err
	}

	if err := s.promptRepo.Delete(promptID); err != nil {
		return fmt.Errorf("failed to delete prompt: %w", err)
	}

	return nil
}

// ListHistory returns a prompt's history rows, newest first.
func (s *PromptService) ListHistory(promptID, actorID uuid.UUID) ([]models.PromptHistory, error) {
	if _, err := s.GetPrompt(promptID, actorID); err != nil {
		return nil, err
	}

	history, err := s.promptRepo.ListHistory(promptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt history: %w", err)
	}
	return history, nil
}

// RunPrompt sends the stored prompt body to the configured model and returns
// the completion text.
func (s *PromptService) RunPrompt(ctx context.Context, promptID, actorID uuid.UUID, extraInput string) (string, error) {
	if s.aiService == nil {
		return "", ErrAIServiceNotConfigured
	}

	prompt, err := s.GetPrompt(promptID, actorID)
	if err != nil {
		return "", err
	}

	output, err := s.aiService.Complete(ctx, prompt.Model, prompt.Prompt, extraInput)
	if err != nil {
		return "", fmt.Errorf("failed to run prompt: %w", err)
	}
	return output, nil
}
