package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrFolderNotFound     = errors.New("folder not found")
	ErrFolderNameRequired = errors.New("folder name is required")
	ErrFolderOwnParent    = errors.New("folder cannot be its own parent")
)

// FolderService handles folder business logic
type FolderService struct {
	folderRepo repository.FolderRepository
	orgRepo    repository.OrganizationRepository
}

// NewFolderService creates a new FolderService
func NewFolderService(folderRepo repository.FolderRepository, orgRepo repository.OrganizationRepository) *FolderService {
	return &FolderService{
		folderRepo: folderRepo,
		orgRepo:    orgRepo,
	}
}

// CreateFolderInput represents input for creating a folder
type CreateFolderInput struct {
	ActorID        uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	FolderType     models.FolderType
	ParentID       *uuid.UUID
	TeamID         *uuid.UUID
}

// ListFolders returns folders in the actor's organizations.
func (s *FolderService) ListFolders(actorID uuid.UUID, organizationID *uuid.UUID) ([]models.Folder, error) {
	orgIDs, err := resolveAccessibleOrganizationIDs(s.orgRepo, actorID, organizationID)
	if err != nil {
		return nil, err
	}
	if len(orgIDs) == 0 {
		return []models.Folder{}, nil
	}

	folders, err := s.folderRepo.List(orgIDs, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return folders, nil
}

// GetFolder returns a folder the actor can see.
func (s *FolderService) GetFolder(folderID, actorID uuid.UUID) (*models.Folder, error) {
	folder, err := s.folderRepo.FindByID(folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFolderNotFound
		}
		return nil, fmt.Errorf("failed to find folder: %w", err)
	}

	if _, err := s.orgRepo.FindMember(folder.OrganizationID, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFolderNotFound
		}
		return nil, fmt.Errorf("failed to verify organization membership: %w", err)
	}

	return folder, nil
}

// CreateFolder creates a folder owned by the actor or shared with a team.
func (s *FolderService) CreateFolder(input CreateFolderInput) (*models.Folder, error) {
	if input.Name == "" {
		return nil, ErrFolderNameRequired
	}

	if _, err := s.orgRepo.FindMember(input.OrganizationID, input.ActorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotOrganizationMember
		}
		return nil, fmt.Errorf("failed to verify organization membership: %w", err)
	}

	folderType := input.FolderType
	if folderType == "" {
		folderType = models.FolderTypePrivate
	}

	folder := &models.Folder{
		OrganizationID: input.OrganizationID,
		ParentID:       input.ParentID,
		TeamID:         input.TeamID,
		Name:           input.Name,
		FolderType:     folderType,
	}
	if folderType == models.FolderTypePrivate {
		folder.UserID = &input.ActorID
	}

	if err := s.folderRepo.Create(folder); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}
	return folder, nil
}

// UpdateFolder updates a folder's name and parent.
func (s *FolderService) UpdateFolder(folderID, actorID uuid.UUID, name *string, parentID *uuid.UUID, clearParent bool) (*models.Folder, error) {
	folder, err := s.GetFolder(folderID, actorID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		if *name == "" {
			return nil, ErrFolderNameRequired
		}
		folder.Name = *name
	}
	if clearParent {
		folder.ParentID = nil
	} else if parentID != nil {
		if *parentID == folder.ID {
			return nil, ErrFolderOwnParent
		}
		folder.ParentID = parentID
	}

	if err := s.folderRepo.Update(folder); err != nil {
		return nil, fmt.Errorf("failed to update folder: %w", err)
	}
	return folder, nil
}

// DeleteFolder removes a folder. Contained prompts, workflows and child
// folders fall back to the root.
func (s *FolderService) DeleteFolder(folderID, actorID uuid.UUID) error {
	if _, err := s.GetFolder(folderID, actorID); err != nil {
		return err
	}

	if err := s.folderRepo.Delete(folderID); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	return nil
}
