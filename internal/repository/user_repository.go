package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/database"
	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/utils"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateUser is returned when creating the user fails inside the admin create transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrCreateMembership is returned when creating the organization membership fails inside the admin create transaction.
	ErrCreateMembership = errors.New("user repository: create organization member failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// CreateWithMembership creates a user, their organization membership, and the
// default-team enrollment atomically.
func (r *GormUserRepository) CreateWithMembership(user *models.User, member *models.OrganizationMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}

		member.UserID = user.ID
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateMembership, err)
		}

		return enrollInDefaultTeam(tx, member.OrganizationID, user.ID)
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves users belonging to the caller's organizations, sorted by
// name, with team memberships preloaded for the team summary in responses.
func (r *GormUserRepository) List(filter UserFilter) ([]models.User, int64, error) {
	if len(filter.OrganizationIDs) == 0 {
		return []models.User{}, 0, nil
	}

	membershipOrgs := filter.OrganizationIDs
	if filter.OrganizationID != nil {
		membershipOrgs = []uuid.UUID{*filter.OrganizationID}
	}

	membership := r.db.Model(&models.OrganizationMember{}).
		Select("1").
		Where("organization_members.user_id = users.id").
		Where("organization_members.organization_id IN ?", membershipOrgs)

	query := r.db.Model(&models.User{}).Where("EXISTS (?)", membership)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("users.name ASC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	var users []models.User
	if err := listQuery.
		Preload("TeamMemberships", "is_active = ?", true).
		Preload("TeamMemberships.Team").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update updates a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}
