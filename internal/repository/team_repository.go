package repository

import (
	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/database"
	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/utils"
	"gorm.io/gorm"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// Create creates a new team
func (r *GormTeamRepository) Create(team *models.Team) error {
	return r.db.Create(team).Error
}

// FindByID finds a team by ID
func (r *GormTeamRepository) FindByID(id uuid.UUID) (*models.Team, error) {
	var team models.Team
	if err := r.db.First(&team, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// List retrieves teams with filtering and pagination
func (r *GormTeamRepository) List(filter TeamFilter) ([]models.Team, int64, error) {
	query := r.db.Model(&models.Team{})

	if filter.OrganizationID != nil {
		query = query.Where("organization_id = ?", *filter.OrganizationID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	switch filter.OrderBy {
	case "name":
		listQuery = listQuery.Order("name ASC")
	default:
		listQuery = listQuery.Order("created_at DESC")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	var teams []models.Team
	if err := listQuery.Find(&teams).Error; err != nil {
		return nil, 0, err
	}

	return teams, total, nil
}

// Update updates a team
func (r *GormTeamRepository) Update(team *models.Team) error {
	return r.db.Save(team).Error
}

// Delete removes a team and its membership rows in a transaction
func (r *GormTeamRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&models.TeamPrompt{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&models.WorkflowTeam{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Team{}, "id = ?", id).Error
	})
}

// ListMembers lists all membership rows of a team
func (r *GormTeamRepository) ListMembers(teamID uuid.UUID) ([]models.TeamMember, error) {
	var members []models.TeamMember
	if err := r.db.Preload("User").
		Where("team_id = ?", teamID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// FindMember finds a membership row regardless of its active flag
func (r *GormTeamRepository) FindMember(teamID, userID uuid.UUID) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// AddMember creates a membership row
func (r *GormTeamRepository) AddMember(member *models.TeamMember) error {
	return r.db.Create(member).Error
}

// SaveMember persists changes to an existing membership row
func (r *GormTeamRepository) SaveMember(member *models.TeamMember) error {
	return r.db.Save(member).Error
}

// RemoveMember hard-deletes a membership row
func (r *GormTeamRepository) RemoveMember(teamID, userID uuid.UUID) error {
	return r.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMember{}).Error
}

// CountActiveMemberships counts a user's active memberships across the active
// teams of one organization. This backs the last-team guard.
func (r *GormTeamRepository) CountActiveMemberships(userID, organizationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.TeamMember{}).
		Joins("JOIN teams ON teams.id = team_members.team_id").
		Where("team_members.user_id = ?", userID).
		Where("team_members.is_active = ?", true).
		Where("teams.organization_id = ?", organizationID).
		Where("teams.is_active = ?", true).
		Count(&count).Error
	return count, err
}
