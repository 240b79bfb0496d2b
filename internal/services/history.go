package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/models"
	"gorm.io/datatypes"
)

// promptSnapshot captures a prompt's state before an update. Association
// sets are stored as sorted string ids so snapshots compare stably.
type promptSnapshot struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Prompt      string            `json:"prompt"`
	Model       string            `json:"model"`
	Visibility  models.Visibility `json:"visibility"`
	FolderID    *string           `json:"folder_id"`
	CategoryIDs []string          `json:"category_ids"`
	TeamIDs     []string          `json:"team_ids"`
}

// workflowSnapshot captures a workflow's state before an update. Steps keep
// their order because step order is part of a workflow's meaning.
type workflowSnapshot struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Visibility  models.Visibility  `json:"visibility"`
	FolderID    *string            `json:"folder_id"`
	TeamIDs     []string           `json:"team_ids"`
	Steps       []workflowStepSnap `json:"steps"`
}

type workflowStepSnap struct {
	PromptID string `json:"prompt_id"`
	Order    int    `json:"order"`
	Name     string `json:"name"`
}

func snapshotPrompt(p *models.Prompt) promptSnapshot {
	categoryIDs := make([]uuid.UUID, 0, len(p.Categories))
	for _, pc := range p.Categories {
		categoryIDs = append(categoryIDs, pc.CategoryID)
	}
	teamIDs := make([]uuid.UUID, 0, len(p.SharedTeams))
	for _, tp := range p.SharedTeams {
		teamIDs = append(teamIDs, tp.TeamID)
	}
	return promptSnapshot{
		Name:        p.Name,
		Description: p.Description,
		Prompt:      p.Prompt,
		Model:       p.Model,
		Visibility:  p.Visibility,
		FolderID:    uuidPtrString(p.FolderID),
		CategoryIDs: sortedIDStrings(categoryIDs),
		TeamIDs:     sortedIDStrings(teamIDs),
	}
}

func snapshotWorkflow(w *models.Workflow) workflowSnapshot {
	teamIDs := make([]uuid.UUID, 0, len(w.SharedTeams))
	for _, wt := range w.SharedTeams {
		teamIDs = append(teamIDs, wt.TeamID)
	}
	steps := make([]workflowStepSnap, 0, len(w.Steps))
	for _, s := range w.Steps {
		steps = append(steps, workflowStepSnap{
			PromptID: s.PromptID.String(),
			Order:    s.Order,
			Name:     s.Name,
		})
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].Order < steps[j].Order })
	return workflowSnapshot{
		Name:        w.Name,
		Description: w.Description,
		Visibility:  w.Visibility,
		FolderID:    uuidPtrString(w.FolderID),
		TeamIDs:     sortedIDStrings(teamIDs),
		Steps:       steps,
	}
}

// sortedIDStrings converts a uuid set to sorted strings for stable
// comparison and serialization.
func sortedIDStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	sort.Strings(out)
	return out
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// equalStringSlices reports element-wise equality. Callers sort both sides
// first when order does not matter.
func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStepSnaps(a, b []workflowStepSnap) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// changeSummary renders the human-readable history line, e.g.
// "Updated name, visibility, teams".
func changeSummary(changed []string) string {
	return "Updated " + strings.Join(changed, ", ")
}

func marshalSnapshot(snapshot any) (datatypes.JSON, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	return datatypes.JSON(raw), nil
}
