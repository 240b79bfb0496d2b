package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrInvalidTeamName    = errors.New("team name cannot be empty")
	ErrAlreadyTeamMember  = errors.New("user is already in the team")
	ErrTeamMemberNotFound = errors.New("member not found in team")
	ErrUserNotInOrg       = errors.New("user is not a member of the organization")
)

// TeamService provides business logic for team operations.
type TeamService struct {
	teamRepo repository.TeamRepository
	orgRepo  repository.OrganizationRepository
	userRepo repository.UserRepository
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository, orgRepo repository.OrganizationRepository, userRepo repository.UserRepository) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		orgRepo:  orgRepo,
		userRepo: userRepo,
	}
}

// CreateTeamInput represents parameters to create a new team.
type CreateTeamInput struct {
	OrganizationID uuid.UUID
	ParentID       *uuid.UUID
	Name           string
	Description    string
	ActorID        uuid.UUID
}

// CreateTeam creates a team inside an organization the actor belongs to.
func (s *TeamService) CreateTeam(input CreateTeamInput) (*models.Team, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidTeamName
	}

	if _, err := s.orgRepo.FindByID(input.OrganizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	if _, err := s.orgRepo.FindMember(input.OrganizationID, input.ActorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotOrganizationMember
		}
		return nil, fmt.Errorf("failed to verify organization membership: %w", err)
	}

	team := &models.Team{
		OrganizationID: input.OrganizationID,
		ParentID:       input.ParentID,
		Name:           input.Name,
		Description:    input.Description,
		IsActive:       true,
	}

	if err := s.teamRepo.Create(team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return team, nil
}

// ListTeamsInput represents filters for listing teams.
type ListTeamsInput struct {
	ActorID        uuid.UUID
	OrganizationID *uuid.UUID
	OrderBy        string
	Page           int
	PageSize       int
}

// ListTeams returns teams visible to the actor. Without an organization
// filter, the listing is restricted to the actor's organizations.
func (s *TeamService) ListTeams(input ListTeamsInput) ([]models.Team, int64, error) {
	orgIDs, err := resolveAccessibleOrganizationIDs(s.orgRepo, input.ActorID, input.OrganizationID)
	if err != nil {
		return nil, 0, err
	}
	if len(orgIDs) == 0 {
		return []models.Team{}, 0, nil
	}

	// TeamFilter takes a single organization; when the actor belongs to
	// several, list each and merge. In practice the UI always filters by
	// organization, so the common path is a single query.
	if input.OrganizationID != nil {
		return s.teamRepo.List(repository.TeamFilter{
			OrganizationID: input.OrganizationID,
			OrderBy:        input.OrderBy,
			Page:           input.Page,
			PageSize:       input.PageSize,
		})
	}

	var all []models.Team
	var total int64
	for i := range orgIDs {
		teams, count, err := s.teamRepo.List(repository.TeamFilter{
			OrganizationID: &orgIDs[i],
			OrderBy:        input.OrderBy,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("failed to list teams: %w", err)
		}
		all = append(all, teams...)
		total += count
	}

	// Paginate the merged result so the metadata stays accurate.
	if input.Page > 0 && input.PageSize > 0 {
		offset := (input.Page - 1) * input.PageSize
		if offset >= len(all) {
			return []models.Team{}, total, nil
		}
		end := offset + input.PageSize
		if end > len(all) {
			end = len(all)
		}
		all = all[offset:end]
	}
	return all, total, nil
}

// GetTeam returns a team the actor can see.
func (s *TeamService) GetTeam(teamID, actorID uuid.UUID) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	if _, err := s.orgRepo.FindMember(team.OrganizationID, actorID); err != nil {
		// Report not-found rather than forbidden to avoid leaking existence.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to verify organization membership: %w", err)
	}

	return team, nil
}

// UpdateTeamInput holds the updatable team fields.
type UpdateTeamInput struct {
	Name        *string
	Description *string
	ParentID    *uuid.UUID
	IsActive    *bool
}

// UpdateTeam updates a team's mutable fields.
func (s *TeamService) UpdateTeam(teamID, actorID uuid.UUID, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.GetTeam(teamID, actorID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidTeamName
		}
		team.Name = *input.Name
	}
	if input.Description != nil {
		team.Description = *input.Description
	}
	if input.ParentID != nil {
		team.ParentID = input.ParentID
	}
	if input.IsActive != nil {
		team.IsActive = *input.IsActive
	}

	if err := s.teamRepo.Update(team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	return team, nil
}

// DeleteTeam removes a team.
func (s *TeamService) DeleteTeam(teamID, actorID uuid.UUID) error {
	if _, err := s.GetTeam(teamID, actorID); err != nil {
		return err
	}

	if err := s.teamRepo.Delete(teamID); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	return nil
}

// ListMembers returns the membership rows of a team.
func (s *TeamService) ListMembers(teamID, actorID uuid.UUID) ([]models.TeamMember, error) {
	if _, err := s.GetTeam(teamID, actorID); err != nil {
		return nil, err
	}

	members, err := s.teamRepo.ListMembers(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return members, nil
}

// AddMemberToTeamInput identifies the user to add to a team.
type AddMemberToTeamInput struct {
	TeamID  uuid.UUID
	UserID  uuid.UUID
	Role    models.TeamRole
	ActorID uuid.UUID
}

// AddMember adds a user to a team. The user must already be a member of the
// team's organization.
func (s *TeamService) AddMember(input AddMemberToTeamInput) (*models.TeamMember, error) {
	team, err := s.GetTeam(input.TeamID, input.ActorID)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.teamRepo.FindMember(input.TeamID, input.UserID); err == nil {
		return nil, ErrAlreadyTeamMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify team membership: %w", err)
	}

	if _, err := s.orgRepo.FindMember(team.OrganizationID, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotInOrg
		}
		return nil, fmt.Errorf("failed to verify organization membership: %w", err)
	}

	role := input.Role
	if role == "" {
		role = models.TeamRoleMember
	}

	member := &models.TeamMember{
		TeamID:   input.TeamID,
		UserID:   input.UserID,
		Role:     role,
		IsActive: true,
	}

	if err := s.teamRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add team member: %w", err)
	}

	return member, nil
}

// RemoveMember hard-deletes a user's membership row from a team. The soft,
// guarded removal lives on the user service as RemoveTeam.
func (s *TeamService) RemoveMember(teamID, userID, actorID uuid.UUID) error {
	if _, err := s.GetTeam(teamID, actorID); err != nil {
		return err
	}

	if _, err := s.teamRepo.FindMember(teamID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamMemberNotFound
		}
		return fmt.Errorf("failed to find team member: %w", err)
	}

	if err := s.teamRepo.RemoveMember(teamID, userID); err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}

	return nil
}
