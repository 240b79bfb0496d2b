package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/models"
	"gorm.io/gorm"
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// Create creates an organization, its default team, and the creator's admin
// membership in one transaction, so a failure anywhere rolls back the whole
// unit. The default team shares the organization's name; later member
// enrollment looks it up by that name.
func (r *GormOrganizationRepository) Create(org *models.Organization, creatorID uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return fmt.Errorf("create organization: %w", err)
		}

		team := &models.Team{
			OrganizationID: org.ID,
			Name:           org.Name,
			Description:    fmt.Sprintf("Default team for %s", org.Name),
			IsActive:       true,
		}
		if err := tx.Create(team).Error; err != nil {
			return fmt.Errorf("create default team: %w", err)
		}

		member := &models.OrganizationMember{
			OrganizationID: org.ID,
			UserID:         creatorID,
			Role:           models.RoleAdmin,
		}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("create creator membership: %w", err)
		}

		teamMember := &models.TeamMember{
			TeamID:   team.ID,
			UserID:   creatorID,
			Role:     models.TeamRoleMember,
			IsActive: true,
		}
		if err := tx.Create(teamMember).Error; err != nil {
			return fmt.Errorf("create default team membership: %w", err)
		}

		return nil
	})
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.First(&org, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// Update updates an organization
func (r *GormOrganizationRepository) Update(org *models.Organization) error {
	return r.db.Save(org).Error
}

// Delete deletes an organization and all related data in a transaction
func (r *GormOrganizationRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var teamIDs []uuid.UUID
		if err := tx.Model(&models.Team{}).Where("organization_id = ?", id).
			Pluck("id", &teamIDs).Error; err != nil {
			return err
		}
		if len(teamIDs) > 0 {
			if err := tx.Where("team_id IN ?", teamIDs).Delete(&models.TeamMember{}).Error; err != nil {
				return err
			}
			if err := tx.Where("team_id IN ?", teamIDs).Delete(&models.TeamPrompt{}).Error; err != nil {
				return err
			}
			if err := tx.Where("team_id IN ?", teamIDs).Delete(&models.WorkflowTeam{}).Error; err != nil {
				return err
			}
		}

		var promptIDs []uuid.UUID
		if err := tx.Model(&models.Prompt{}).Where("organization_id = ?", id).
			Pluck("id", &promptIDs).Error; err != nil {
			return err
		}
		if len(promptIDs) > 0 {
			if err := tx.Where("prompt_id IN ?", promptIDs).Delete(&models.PromptCategory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("prompt_id IN ?", promptIDs).Delete(&models.TeamPrompt{}).Error; err != nil {
				return err
			}
			if err := tx.Where("prompt_id IN ?", promptIDs).Delete(&models.PromptHistory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("prompt_id IN ?", promptIDs).Delete(&models.WorkflowStep{}).Error; err != nil {
				return err
			}
		}

		var workflowIDs []uuid.UUID
		if err := tx.Model(&models.Workflow{}).Where("organization_id = ?", id).
			Pluck("id", &workflowIDs).Error; err != nil {
			return err
		}
		if len(workflowIDs) > 0 {
			if err := tx.Where("workflow_id IN ?", workflowIDs).Delete(&models.WorkflowStep{}).Error; err != nil {
				return err
			}
			if err := tx.Where("workflow_id IN ?", workflowIDs).Delete(&models.WorkflowTeam{}).Error; err != nil {
				return err
			}
			if err := tx.Where("workflow_id IN ?", workflowIDs).Delete(&models.WorkflowHistory{}).Error; err != nil {
				return err
			}
		}

		for _, m := range []interface{}{
			&models.Prompt{},
			&models.Workflow{},
			&models.Category{},
			&models.Folder{},
			&models.Team{},
			&models.OrganizationMember{},
		} {
			if err := tx.Where("organization_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Organization{}, "id = ?", id).Error
	})
}

// AddMember adds a member to an organization and enrolls them in the default
// team within the same transaction.
func (r *GormOrganizationRepository) AddMember(member *models.OrganizationMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("create organization member: %w", err)
		}
		return enrollInDefaultTeam(tx, member.OrganizationID, member.UserID)
	})
}

// FindMember finds a specific organization member
func (r *GormOrganizationRepository) FindMember(organizationID, userID uuid.UUID) (*models.OrganizationMember, error) {
	var member models.OrganizationMember
	if err := r.db.Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of an organization
func (r *GormOrganizationRepository) ListMembers(organizationID uuid.UUID) ([]models.OrganizationMember, error) {
	var members []models.OrganizationMember
	if err := r.db.Preload("User").
		Where("organization_id = ?", organizationID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListMembersByUserID lists all organizations a user is a member of
func (r *GormOrganizationRepository) ListMembersByUserID(userID uuid.UUID) ([]models.OrganizationMember, error) {
	var memberships []models.OrganizationMember
	if err := r.db.Preload("Organization").
		Where("user_id = ?", userID).
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// FindCommonMembership returns the actor's membership row in the earliest
// organization shared with the target.
func (r *GormOrganizationRepository) FindCommonMembership(actorID, targetID uuid.UUID) (*models.OrganizationMember, error) {
	targetOrgs := r.db.Model(&models.OrganizationMember{}).
		Select("organization_id").
		Where("user_id = ?", targetID)

	var member models.OrganizationMember
	if err := r.db.Where("user_id = ? AND organization_id IN (?)", actorID, targetOrgs).
		Order("created_at ASC").
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// enrollInDefaultTeam adds the user to the organization's default team, the
// team sharing the organization's name. A missing default team is a no-op; an
// existing membership row, active or not, is left untouched.
func enrollInDefaultTeam(tx *gorm.DB, organizationID, userID uuid.UUID) error {
	var org models.Organization
	if err := tx.First(&org, "id = ?", organizationID).Error; err != nil {
		return fmt.Errorf("load organization: %w", err)
	}

	var team models.Team
	err := tx.Where("organization_id = ? AND name = ?", org.ID, org.Name).First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find default team: %w", err)
	}

	var existing models.TeamMember
	err = tx.Where("team_id = ? AND user_id = ?", team.ID, userID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check team membership: %w", err)
	}

	member := &models.TeamMember{
		TeamID:   team.ID,
		UserID:   userID,
		Role:     models.TeamRoleMember,
		IsActive: true,
	}
	if err := tx.Create(member).Error; err != nil {
		return fmt.Errorf("create default team membership: %w", err)
	}
	return nil
}
