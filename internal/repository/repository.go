package repository

import (
	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/models"
)

// PromptFilter holds filtering options for listing prompts.
// OrganizationIDs is the caller's visibility boundary; every other field
// narrows the result set inside it.
type PromptFilter struct {
	OrganizationIDs []uuid.UUID
	OrganizationID  *uuid.UUID
	TeamID          *uuid.UUID
	Visibility      *models.Visibility
	CreatedByID     *uuid.UUID
	FolderID        *uuid.UUID
	RootFolder      bool
	Search          string
	OrderBy         string
	Page            int
	PageSize        int
}

// WorkflowFilter holds filtering options for listing workflows
type WorkflowFilter struct {
	OrganizationIDs []uuid.UUID
	OrganizationID  *uuid.UUID
	TeamID          *uuid.UUID
	Visibility      *models.Visibility
	CreatedByID     *uuid.UUID
	FolderID        *uuid.UUID
	RootFolder      bool
	Search          string
	OrderBy         string
	Page            int
	PageSize        int
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	OrganizationIDs []uuid.UUID
	OrganizationID  *uuid.UUID
	Page            int
	PageSize        int
}

// TeamFilter holds filtering options for listing teams
type TeamFilter struct {
	OrganizationID *uuid.UUID
	OrderBy        string
	Page           int
	PageSize       int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// CreateWithMembership creates a user, their organization membership, and
	// the default-team membership within a single transaction.
	CreateWithMembership(user *models.User, member *models.OrganizationMember) error

	// FindByID finds a user by ID
	FindByID(id uuid.UUID) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List retrieves users visible to the caller, sorted by name, with their
	// team memberships preloaded
	List(filter UserFilter) ([]models.User, int64, error)

	// Update updates a user
	Update(user *models.User) error
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// Create creates an organization together with its default team and the
	// creator's admin membership
	Create(org *models.Organization, creatorID uuid.UUID) error

	// FindByID finds an organization by ID
	FindByID(id uuid.UUID) (*models.Organization, error)

	// Update updates an organization
	Update(org *models.Organization) error

	// Delete deletes an organization and all data belonging to it
	Delete(id uuid.UUID) error

	// AddMember adds a member and enrolls them in the default team
	AddMember(member *models.OrganizationMember) error

	// FindMember finds a specific organization member
	FindMember(organizationID, userID uuid.UUID) (*models.OrganizationMember, error)

	// ListMembers lists all members of an organization
	ListMembers(organizationID uuid.UUID) ([]models.OrganizationMember, error)

	// ListMembersByUserID lists all organizations a user is a member of
	ListMembersByUserID(userID uuid.UUID) ([]models.OrganizationMember, error)

	// FindCommonMembership returns the actor's membership in the earliest
	// organization both actor and target belong to
	FindCommonMembership(actorID, targetID uuid.UUID) (*models.OrganizationMember, error)
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	Create(team *models.Team) error
	FindByID(id uuid.UUID) (*models.Team, error)
	List(filter TeamFilter) ([]models.Team, int64, error)
	Update(team *models.Team) error

	// Delete removes a team and its membership rows
	Delete(id uuid.UUID) error

	// ListMembers lists all membership rows of a team
	ListMembers(teamID uuid.UUID) ([]models.TeamMember, error)

	// FindMember finds a membership row regardless of its active flag
	FindMember(teamID, userID uuid.UUID) (*models.TeamMember, error)

	// AddMember creates a membership row
	AddMember(member *models.TeamMember) error

	// SaveMember persists changes to an existing membership row
	SaveMember(member *models.TeamMember) error

	// RemoveMember hard-deletes a membership row
	RemoveMember(teamID, userID uuid.UUID) error

	// CountActiveMemberships counts a user's active memberships across the
	// active teams of one organization
	CountActiveMemberships(userID, organizationID uuid.UUID) (int64, error)
}

// PromptRepository defines the interface for prompt data access
type PromptRepository interface {
	// Create creates a prompt with its category and team joins in one transaction
	Create(prompt *models.Prompt, categoryIDs, teamIDs []uuid.UUID) error

	// FindByID finds a prompt by ID with optional preloading
	FindByID(id uuid.UUID, preload ...string) (*models.Prompt, error)

	// List retrieves prompts with filtering and pagination
	List(filter PromptFilter) ([]models.Prompt, int64, error)

	// Update saves the prompt and, when the id slices are non-nil, replaces
	// the corresponding join rows wholesale. A non-nil history row is written
	// in the same transaction.
	Update(prompt *models.Prompt, categoryIDs, teamIDs *[]uuid.UUID, history *models.PromptHistory) error

	// Delete removes a prompt and its joins and history
	Delete(id uuid.UUID) error

	// ListHistory returns history rows for a prompt, newest first
	ListHistory(promptID uuid.UUID) ([]models.PromptHistory, error)
}

// WorkflowRepository defines the interface for workflow data access
type WorkflowRepository interface {
	// Create creates a workflow with its steps and team joins in one transaction
	Create(workflow *models.Workflow, steps []models.WorkflowStep, teamIDs []uuid.UUID) error

	FindByID(id uuid.UUID, preload ...string) (*models.Workflow, error)
	List(filter WorkflowFilter) ([]models.Workflow, int64, error)

	// Update saves the workflow; non-nil steps/teamIDs replace the existing
	// sets wholesale; a non-nil history row is written in the same transaction.
	Update(workflow *models.Workflow, steps *[]models.WorkflowStep, teamIDs *[]uuid.UUID, history *models.WorkflowHistory) error

	Delete(id uuid.UUID) error
	ListHistory(workflowID uuid.UUID) ([]models.WorkflowHistory, error)
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(category *models.Category) error
	FindByID(id uuid.UUID) (*models.Category, error)
	List(organizationIDs []uuid.UUID, organizationID *uuid.UUID) ([]models.Category, error)
	Update(category *models.Category) error
	Delete(id uuid.UUID) error
}

// FolderRepository defines the interface for folder data access
type FolderRepository interface {
	Create(folder *models.Folder) error
	FindByID(id uuid.UUID) (*models.Folder, error)
	List(organizationIDs []uuid.UUID, organizationID *uuid.UUID) ([]models.Folder, error)
	Update(folder *models.Folder) error
	Delete(id uuid.UUID) error
}
