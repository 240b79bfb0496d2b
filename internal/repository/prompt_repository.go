package repository

import (
	"strings"

	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/database"
	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/utils"
	"gorm.io/gorm"
)

// GormPromptRepository is a GORM implementation of PromptRepository
type GormPromptRepository struct {
	db *gorm.DB
}

// NewPromptRepository creates a new PromptRepository
func NewPromptRepository(db *gorm.DB) PromptRepository {
	return &GormPromptRepository{db: db}
}

// Create creates a prompt with its category and team joins in one transaction
func (r *GormPromptRepository) Create(prompt *models.Prompt, categoryIDs, teamIDs []uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(prompt).Error; err != nil {
			return err
		}
		if err := insertPromptCategories(tx, prompt.ID, categoryIDs); err != nil {
			return err
		}
		return insertTeamPrompts(tx, prompt.ID, teamIDs)
	})
}

// FindByID finds a prompt by ID with optional preloading
func (r *GormPromptRepository) FindByID(id uuid.UUID, preload ...string) (*models.Prompt, error) {
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	var prompt models.Prompt
	if err := query.First(&prompt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &prompt, nil
}

// List retrieves prompts with filtering and pagination. The organization-id
// set is the caller's visibility boundary; an empty set short-circuits.
func (r *GormPromptRepository) List(filter PromptFilter) ([]models.Prompt, int64, error) {
	if len(filter.OrganizationIDs) == 0 {
		return []models.Prompt{}, 0, nil
	}

	query := r.db.Model(&models.Prompt{}).
		Where("prompts.organization_id IN ?", filter.OrganizationIDs)

	if filter.OrganizationID != nil {
		query = query.Where("prompts.organization_id = ?", *filter.OrganizationID)
	}
	if filter.TeamID != nil {
		shareSubQuery := r.db.Model(&models.TeamPrompt{}).
			Select("1").
			Where("team_prompts.prompt_id = prompts.id").
			Where("team_prompts.team_id = ?", *filter.TeamID)
		query = query.Where("EXISTS (?)", shareSubQuery)
	}
	if filter.Visibility != nil {
		query = query.Where("prompts.visibility = ?", *filter.Visibility)
	}
	if filter.CreatedByID != nil {
		query = query.Where("prompts.created_by_id = ?", *filter.CreatedByID)
	}
	if filter.RootFolder {
		query = query.Where("prompts.folder_id IS NULL")
	} else if filter.FolderID != nil {
		query = query.Where("prompts.folder_id = ?", *filter.FolderID)
	}
	if filter.Search != "" {
		// LOWER/LIKE keeps the search case-insensitive on both postgres
		// and the sqlite test database.
		like := "%" + strings.ToLower(filter.Search) + "%"
		categorySubQuery := r.db.Model(&models.PromptCategory{}).
			Select("1").
			Joins("JOIN categories ON categories.id = prompt_categories.category_id").
			Where("prompt_categories.prompt_id = prompts.id").
			Where("LOWER(categories.name) LIKE ?", like)
		query = query.Where(
			r.db.Where("LOWER(prompts.name) LIKE ?", like).
				Or("LOWER(prompts.description) LIKE ?", like).
				Or("LOWER(prompts.prompt) LIKE ?", like).
				Or("EXISTS (?)", categorySubQuery),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	switch filter.OrderBy {
	case "name":
		listQuery = listQuery.Order("prompts.name ASC")
	default:
		listQuery = listQuery.Order("prompts.created_at DESC")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	var prompts []models.Prompt
	if err := listQuery.
		Preload("CreatedBy").
		Preload("Categories.Category").
		Preload("SharedTeams.Team").
		Find(&prompts).Error; err != nil {
		return nil, 0, err
	}

	return prompts, total, nil
}

// Update saves the prompt, replaces join rows for any non-nil id slice, and
// writes the history row, all in one transaction so a failure rolls back the
// whole unit.
func (r *GormPromptRepository) Update(prompt *models.Prompt, categoryIDs, teamIDs *[]uuid.UUID, history *models.PromptHistory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(prompt).Error; err != nil {
			return err
		}

		if categoryIDs != nil {
			if err := tx.Where("prompt_id = ?", prompt.ID).Delete(&models.PromptCategory{}).Error; err != nil {
				return err
			}
			if err := insertPromptCategories(tx, prompt.ID, *categoryIDs); err != nil {
				return err
			}
		}

		if teamIDs != nil {
			if err := tx.Where("prompt_id = ?", prompt.ID).Delete(&models.TeamPrompt{}).Error; err != nil {
				return err
			}
			if err := insertTeamPrompts(tx, prompt.ID, *teamIDs); err != nil {
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

// Delete removes a prompt together with its joins and history
func (r *GormPromptRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prompt_id = ?", id).Delete(&models.PromptCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("prompt_id = ?", id).Delete(&models.TeamPrompt{}).Error; err != nil {
			return err
		}
		if err := tx.Where("prompt_id = ?", id).Delete(&models.PromptHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("prompt_id = ?", id).Delete(&models.WorkflowStep{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Prompt{}, "id = ?", id).Error
	})
}

// ListHistory returns history rows for a prompt, newest first
func (r *GormPromptRepository) ListHistory(promptID uuid.UUID) ([]models.PromptHistory, error) {
	var history []models.PromptHistory
	if err := r.db.Preload("ChangedBy").
		Where("prompt_id = ?", promptID).
		Order("created_at DESC").
		Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

func insertPromptCategories(tx *gorm.DB, promptID uuid.UUID, categoryIDs []uuid.UUID) error {
	for _, categoryID := range categoryIDs {
		join := &models.PromptCategory{PromptID: promptID, CategoryID: categoryID}
		if err := tx.Create(join).Error; err != nil {
			return err
		}
	}
	return nil
}

func insertTeamPrompts(tx *gorm.DB, promptID uuid.UUID, teamIDs []uuid.UUID) error {
	for _, teamID := range teamIDs {
		join := &models.TeamPrompt{PromptID: promptID, TeamID: teamID}
		if err := tx.Create(join).Error; err != nil {
			return err
		}
	}
	return nil
}
