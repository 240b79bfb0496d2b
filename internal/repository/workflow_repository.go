package repository

import (
	"strings"

	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/database"
	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/utils"
	"gorm.io/gorm"
)

// GormWorkflowRepository is a GORM implementation of WorkflowRepository
type GormWorkflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository creates a new WorkflowRepository
func NewWorkflowRepository(db *gorm.DB) WorkflowRepository {
	return &GormWorkflowRepository{db: db}
}

// Create creates a workflow with its steps and team joins in one transaction
func (r *GormWorkflowRepository) Create(workflow *models.Workflow, steps []models.WorkflowStep, teamIDs []uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workflow).Error; err != nil {
			return err
		}
		if err := insertWorkflowSteps(tx, workflow.ID, steps); err != nil {
			return err
		}
		return insertWorkflowTeams(tx, workflow.ID, teamIDs)
	})
}

// FindByID finds a workflow by ID with optional preloading
func (r *GormWorkflowRepository) FindByID(id uuid.UUID, preload ...string) (*models.Workflow, error) {
	query := r.db
	for _, p := range preload {
		if p == "Steps" {
			query = query.Preload("Steps", func(db *gorm.DB) *gorm.DB {
				return db.Order("workflow_steps.step_order ASC")
			})
			continue
		}
		query = query.Preload(p)
	}

	var workflow models.Workflow
	if err := query.First(&workflow, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &workflow, nil
}

// List retrieves workflows with filtering and pagination
func (r *GormWorkflowRepository) List(filter WorkflowFilter) ([]models.Workflow, int64, error) {
	if len(filter.OrganizationIDs) == 0 {
		return []models.Workflow{}, 0, nil
	}

	query := r.db.Model(&models.Workflow{}).
		Where("workflows.organization_id IN ?", filter.OrganizationIDs)

	if filter.OrganizationID != nil {
		query = query.Where("workflows.organization_id = ?", *filter.OrganizationID)
	}
	if filter.TeamID != nil {
		shareSubQuery := r.db.Model(&models.WorkflowTeam{}).
			Select("1").
			Where("workflow_teams.workflow_id = workflows.id").
			Where("workflow_teams.team_id = ?", *filter.TeamID)
		query = query.Where("EXISTS (?)", shareSubQuery)
	}
	if filter.Visibility != nil {
		query = query.Where("workflows.visibility = ?", *filter.Visibility)
	}
	if filter.CreatedByID != nil {
		query = query.Where("workflows.created_by_id = ?", *filter.CreatedByID)
	}
	if filter.RootFolder {
		query = query.Where("workflows.folder_id IS NULL")
	} else if filter.FolderID != nil {
		query = query.Where("workflows.folder_id = ?", *filter.FolderID)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			r.db.Where("LOWER(workflows.name) LIKE ?", like).
				Or("LOWER(workflows.description) LIKE ?", like),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	switch filter.OrderBy {
	case "name":
		listQuery = listQuery.Order("workflows.name ASC")
	default:
		listQuery = listQuery.Order("workflows.created_at DESC")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	var workflows []models.Workflow
	if err := listQuery.
		Preload("CreatedBy").
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("workflow_steps.step_order ASC")
		}).
		Preload("Steps.Prompt").
		Preload("SharedTeams.Team").
		Find(&workflows).Error; err != nil {
		return nil, 0, err
	}

	return workflows, total, nil
}

// Update saves the workflow, replaces steps and team joins for non-nil
// slices, and writes the history row, all in one transaction.
func (r *GormWorkflowRepository) Update(workflow *models.Workflow, steps *[]models.WorkflowStep, teamIDs *[]uuid.UUID, history *models.WorkflowHistory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(workflow).Error; err != nil {
			return err
		}

		if steps != nil {
			if err := tx.Where("workflow_id = ?", workflow.ID).Delete(&models.WorkflowStep{}).Error; err != nil {
				return err
			}
			if err := insertWorkflowSteps(tx, workflow.ID, *steps); err != nil {
				return err
			}
		}

		if teamIDs != nil {
			if err := tx.Where("workflow_id = ?", workflow.ID).Delete(&models.WorkflowTeam{}).Error; err != nil {
				return err
			}
			if err := insertWorkflowTeams(tx, workflow.ID, *teamIDs); err != nil {
				return err
			}
		}

		if history != nil {
			if err := tx.Create(history).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete removes a workflow together with its steps, joins, and history
func (r *GormWorkflowRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workflow_id = ?", id).Delete(&models.WorkflowStep{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workflow_id = ?", id).Delete(&models.WorkflowTeam{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workflow_id = ?", id).Delete(&models.WorkflowHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Workflow{}, "id = ?", id).Error
	})
}

// ListHistory returns history rows for a workflow, newest first
func (r *GormWorkflowRepository) ListHistory(workflowID uuid.UUID) ([]models.WorkflowHistory, error) {
	var history []models.WorkflowHistory
	if err := r.db.Preload("ChangedBy").
		Where("workflow_id = ?", workflowID).
		Order("created_at DESC").
		Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

func insertWorkflowSteps(tx *gorm.DB, workflowID uuid.UUID, steps []models.WorkflowStep) error {
	for i := range steps {
		steps[i].ID = uuid.Nil
		steps[i].WorkflowID = workflowID
		if err := tx.Create(&steps[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func insertWorkflowTeams(tx *gorm.DB, workflowID uuid.UUID, teamIDs []uuid.UUID) error {
	for _, teamID := range teamIDs {
		join := &models.WorkflowTeam{WorkflowID: workflowID, TeamID: teamID}
		if err := tx.Create(join).Error; err != nil {
			return err
		}
	}
	return nil
}
