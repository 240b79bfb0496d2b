package repository

import (
	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/models"
	"gorm.io/gorm"
)

// GormFolderRepository is a GORM implementation of FolderRepository
type GormFolderRepository struct {
	db *gorm.DB
}

// NewFolderRepository creates a new FolderRepository
func NewFolderRepository(db *gorm.DB) FolderRepository {
	return &GormFolderRepository{db: db}
}

func (r *GormFolderRepository) Create(folder *models.Folder) error {
	return r.db.Create(folder).Error
}

func (r *GormFolderRepository) FindByID(id uuid.UUID) (*models.Folder, error) {
	var folder models.Folder
	if err := r.db.First(&folder, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &folder, nil
}

func (r *GormFolderRepository) List(organizationIDs []uuid.UUID, organizationID *uuid.UUID) ([]models.Folder, error) {
	if len(organizationIDs) == 0 {
		return []models.Folder{}, nil
	}

	query := r.db.Where("organization_id IN ?", organizationIDs)
	if organizationID != nil {
		query = query.Where("organization_id = ?", *organizationID)
	}

	var folders []models.Folder
	if err := query.Order("name ASC").Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *GormFolderRepository) Update(folder *models.Folder) error {
	return r.db.Save(folder).Error
}

// Delete removes a folder; prompts keep their folder_id cleared so they fall
// back to the root.
func (r *GormFolderRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Prompt{}).
			Where("folder_id = ?", id).
			Update("folder_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Workflow{}).
			Where("folder_id = ?", id).
			Update("folder_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Folder{}).
			Where("parent_id = ?", id).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Folder{}, "id = ?", id).Error
	})
}
