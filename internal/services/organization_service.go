package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrOrganizationNotFound       = errors.New("organization not found")
	ErrInvalidOrganizationName    = errors.New("organization name cannot be empty")
	ErrAlreadyOrganizationMember  = errors.New("user is already a member")
	ErrOrganizationMemberNotFound = errors.New("organization member not found")
	ErrNotOrganizationMember      = errors.New("user is not a member of the organization")
)

// OrganizationService provides business logic for organization operations.
type OrganizationService struct {
	orgRepo  repository.OrganizationRepository
	userRepo repository.UserRepository
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgRepo repository.OrganizationRepository, userRepo repository.UserRepository) *OrganizationService {
	return &OrganizationService{
		orgRepo:  orgRepo,
		userRepo: userRepo,
	}
}

// CreateOrganizationInput represents parameters to create a new organization.
type CreateOrganizationInput struct {
	Name        string
	Description string
	CreatorID   uuid.UUID
}

// CreateOrganization creates an organization, its default team, and the
// creator's admin membership. The repository runs all three in a single
// transaction so a failed membership leaves no orphaned organization.
func (s *OrganizationService) CreateOrganization(input CreateOrganizationInput) (*models.Organization, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidOrganizationName
	}

	org := &models.Organization{
		Name:        input.Name,
		Description: input.Description,
		IsActive:    true,
	}

	if err := s.orgRepo.Create(org, input.CreatorID); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	return org, nil
}

// ListOrganizationsForUser returns organizations the user belongs to.
func (s *OrganizationService) ListOrganizationsForUser(userID uuid.UUID) ([]models.OrganizationMember, error) {
	memberships, err := s.orgRepo.ListMembersByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return memberships, nil
}

// GetOrganizationWithMembers returns an organization and all of its members.
func (s *OrganizationService) GetOrganizationWithMembers(orgID uuid.UUID) (*models.Organization, []models.OrganizationMember, error) {
	org, err := s.orgRepo.FindByID(orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrOrganizationNotFound
		}
		return nil, nil, fmt.Errorf("failed to find organization: %w", err)
	}

	members, err := s.orgRepo.ListMembers(orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list organization members: %w", err)
	}

	return org, members, nil
}

// UpdateOrganizationInput holds the updatable organization fields.
type UpdateOrganizationInput struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// UpdateOrganization updates an organization's mutable fields.
func (s *OrganizationService) UpdateOrganization(orgID uuid.UUID, input UpdateOrganizationInput) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidOrganizationName
		}
		org.Name = *input.Name
	}
	if input.Description != nil {
		org.Description = *input.Description
	}
	if input.IsActive != nil {
		org.IsActive = *input.IsActive
	}

	if err := s.orgRepo.Update(org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	return org, nil
}

// DeleteOrganization removes an organization and everything it owns.
func (s *OrganizationService) DeleteOrganization(orgID uuid.UUID) error {
	if _, err := s.orgRepo.FindByID(orgID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrganizationNotFound
		}
		return fmt.Errorf("failed to find organization: %w", err)
	}

	if err := s.orgRepo.Delete(orgID); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	return nil
}

// AddMemberInput identifies the user to add by email.
type AddMemberInput struct {
	OrganizationID uuid.UUID
	Email          string
	Role           models.OrganizationRole
}

// AddMember adds an existing user to the organization. Enrollment in the
// default team happens inside the repository transaction.
func (s *OrganizationService) AddMember(input AddMemberInput) (*models.OrganizationMember, error) {
	if _, err := s.orgRepo.FindByID(input.OrganizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.orgRepo.FindMember(input.OrganizationID, user.ID); err == nil {
		return nil, ErrAlreadyOrganizationMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	role := input.Role
	if role == "" {
		role = models.RoleMember
	}

	member := &models.OrganizationMember{
		OrganizationID: input.OrganizationID,
		UserID:         user.ID,
		Role:           role,
	}

	if err := s.orgRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member to organization: %w", err)
	}

	return member, nil
}

// ListMembers returns all members of an organization.
func (s *OrganizationService) ListMembers(orgID uuid.UUID) ([]models.OrganizationMember, error) {
	if _, err := s.orgRepo.FindByID(orgID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	members, err := s.orgRepo.ListMembers(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organization members: %w", err)
	}
	return members, nil
}

// resolveAccessibleOrganizationIDs returns the organization IDs the user can
// access, narrowed to one when an explicit filter is supplied.
func resolveAccessibleOrganizationIDs(orgRepo repository.OrganizationRepository, userID uuid.UUID, organizationID *uuid.UUID) ([]uuid.UUID, error) {
	if organizationID != nil {
		if _, err := orgRepo.FindMember(*organizationID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotOrganizationMember
			}
			return nil, fmt.Errorf("failed to verify organization membership: %w", err)
		}
		return []uuid.UUID{*organizationID}, nil
	}

	memberships, err := orgRepo.ListMembersByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch organization memberships: %w", err)
	}

	orgIDs := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		orgIDs = append(orgIDs, m.OrganizationID)
	}

	return orgIDs, nil
}
