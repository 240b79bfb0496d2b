package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Prompt indexes for filtering and search pre-selection
		{"prompts", "idx_prompts_organization_id", "organization_id"},
		{"prompts", "idx_prompts_created_by_id", "created_by_id"},
		{"prompts", "idx_prompts_folder_id", "folder_id"},
		{"prompts", "idx_prompts_visibility", "visibility"},
		{"prompts", "idx_prompts_created_at", "created_at"},

		// Workflow indexes
		{"workflows", "idx_workflows_organization_id", "organization_id"},
		{"workflows", "idx_workflows_created_by_id", "created_by_id"},
		{"workflows", "idx_workflows_created_at", "created_at"},

		// Membership lookups used on nearly every request
		{"organization_members", "idx_org_members_org_user", "organization_id, user_id"},
		{"team_members", "idx_team_members_team_user", "team_id, user_id"},

		// Default-team lookup by (organization, name)
		{"teams", "idx_teams_org_name", "organization_id, name"},

		// Sharing joins
		{"team_prompts", "idx_team_prompts_team_id", "team_id"},
		{"workflow_teams", "idx_workflow_teams_team_id", "team_id"},

		// History trails are read newest-first per entity
		{"prompt_histories", "idx_prompt_histories_prompt_id", "prompt_id"},
		{"workflow_histories", "idx_workflow_histories_workflow_id", "workflow_id"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
