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
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryNameRequired = errors.New("category name is required")
)

// CategoryService handles category business logic
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	orgRepo      repository.OrganizationRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository, orgRepo repository.OrganizationRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		orgRepo:      orgRepo,
	}
}

// ListCategories returns categories in the actor's organizations.
func (s *CategoryService) ListCategories(actorID uuid.UUID, organizationID *uuid.UUID) ([]models.Category, error) {
	orgIDs, err := resolveAccessibleOrganizationIDs(s.orgRepo, actorID, organizationID)
	if err != nil {
		return nil, err
	}
	if len(orgIDs) == 0 {
		return []models.Category{}, nil
	}

	categories, err := s.categoryRepo.List(orgIDs, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategory returns a category the actor can see.
func (s *CategoryService) GetCategory(categoryID, actorID uuid.UUID) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	if _, err := s.orgRepo.FindMember(category.OrganizationID, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to verify organization membership: %w", err)
	}

	return category, nil
}

// CreateCategory creates a category in an organization the actor belongs to.
func (s *CategoryService) CreateCategory(actorID, organizationID uuid.UUID, name, description string) (*models.Category, error) {
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	if _, err := s.orgRepo.FindMember(organizationID, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotOrganizationMember
		}
		return nil, fmt.Errorf("failed to verify organization membership: %w", err)
	}

	category := &models.Category{
		OrganizationID: organizationID,
		Name:           name,
		Description:    description,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// UpdateCategory updates a category's name and description.
func (s *CategoryService) UpdateCategory(categoryID, actorID uuid.UUID, name, description *string) (*models.Category, error) {
	category, err := s.GetCategory(categoryID, actorID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		if *name == "" {
			return nil, ErrCategoryNameRequired
		}
		category.Name = *name
	}
	if description != nil {
		category.Description = *description
	}

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes a category and its prompt joins.
func (s *CategoryService) DeleteCategory(categoryID, actorID uuid.UUID) error {
	if _, err := s.GetCategory(categoryID, actorID); err != nil {
		return err
	}

	if err := s.categoryRepo.Delete(categoryID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
