package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/constants"
	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrNotAdmin            = errors.New("administrator role required")
	ErrLastActiveTeam      = errors.New("user must be assigned to at least one team")
	ErrNotActiveTeamMember = errors.New("user is not an active member of the team")
)

// UserService handles user administration: org-scoped listing, admin-gated
// create/update/soft-delete, and team assignment with the last-team guard.
type UserService struct {
	userRepo repository.UserRepository
	orgRepo  repository.OrganizationRepository
	teamRepo repository.TeamRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, orgRepo repository.OrganizationRepository, teamRepo repository.TeamRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		orgRepo:  orgRepo,
		teamRepo: teamRepo,
	}
}

// ListUsersInput represents filters for listing users.
type ListUsersInput struct {
	ActorID        uuid.UUID
	OrganizationID *uuid.UUID
	Page           int
	PageSize       int
}

// ListUsers returns users sharing at least one organization with the actor.
func (s *UserService) ListUsers(input ListUsersInput) ([]models.User, int64, error) {
	orgIDs, err := resolveAccessibleOrganizationIDs(s.orgRepo, input.ActorID, input.OrganizationID)
	if err != nil {
		return nil, 0, err
	}

	users, total, err := s.userRepo.List(repository.UserFilter{
		OrganizationIDs: orgIDs,
		OrganizationID:  input.OrganizationID,
		Page:            input.Page,
		PageSize:        input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// GetUser returns a user who shares at least one organization with the actor.
func (s *UserService) GetUser(targetID, actorID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.FindByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if targetID != actorID {
		if _, err := s.orgRepo.FindCommonMembership(actorID, targetID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to verify shared organization: %w", err)
		}
	}

	return user, nil
}

// CreateUserInput creates a user under an organization the actor administers.
type CreateUserInput struct {
	ActorID          uuid.UUID
	Name             string
	Email            string
	Password         string
	OrganizationID   uuid.UUID
	OrganizationRole models.OrganizationRole
}

// CreateUser creates a user plus their organization membership; default-team
// enrollment runs inside the repository transaction.
func (s *UserService) CreateUser(input CreateUserInput) (*models.User, error) {
	if err := s.requireAdmin(input.ActorID, &input.OrganizationID, nil); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	role := input.OrganizationRole
	if role == "" {
		role = models.RoleMember
	}

	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}
	member := &models.OrganizationMember{
		OrganizationID: input.OrganizationID,
		Role:           role,
	}

	if err := s.userRepo.CreateWithMembership(user, member); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// UpdateUserInput holds the updatable user fields.
type UpdateUserInput struct {
	ActorID        uuid.UUID
	TargetID       uuid.UUID
	OrganizationID *uuid.UUID
	Name           *string
	Email          *string
}

// UpdateUser updates another user; the actor must administer an organization
// shared with the target.
func (s *UserService) UpdateUser(input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(input.TargetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.requireAdmin(input.ActorID, input.OrganizationID, &input.TargetID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if existing, err := s.userRepo.FindByEmail(email); err == nil && existing.ID != user.ID {
			return nil, ErrEmailTaken
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		user.Email = email
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeactivateUser soft-deletes a user. Team memberships are deliberately left
// untouched; only visibility and authentication change.
func (s *UserService) DeactivateUser(actorID, targetID uuid.UUID, organizationID *uuid.UUID) error {
	user, err := s.userRepo.FindByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.requireAdmin(actorID, organizationID, &targetID); err != nil {
		return err
	}

	user.IsActive = false
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	return nil
}

// AssignTeam adds the target user to a team, reactivating a soft-removed
// membership row instead of duplicating it. A no-op when already active.
func (s *UserService) AssignTeam(actorID, targetID, teamID uuid.UUID) error {
	team, err := s.findActiveTeam(teamID)
	if err != nil {
		return err
	}

	if err := s.requireAdmin(actorID, &team.OrganizationID, nil); err != nil {
		return err
	}

	if _, err := s.orgRepo.FindMember(team.OrganizationID, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotInOrg
		}
		return fmt.Errorf("failed to verify organization membership: %w", err)
	}

	member, err := s.teamRepo.FindMember(teamID, targetID)
	switch {
	case err == nil:
		if member.IsActive {
			return nil
		}
		member.IsActive = true
		if err := s.teamRepo.SaveMember(member); err != nil {
			return fmt.Errorf("failed to reactivate team membership: %w", err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		member = &models.TeamMember{
			TeamID:   teamID,
			UserID:   targetID,
			Role:     models.TeamRoleMember,
			IsActive: true,
		}
		if err := s.teamRepo.AddMember(member); err != nil {
			return fmt.Errorf("failed to create team membership: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("failed to find team membership: %w", err)
	}
}

// RemoveTeam soft-removes the target from a team. Removal is rejected when
// the team is the target's last active team within the organization.
func (s *UserService) RemoveTeam(actorID, targetID, teamID uuid.UUID) error {
	team, err := s.findActiveTeam(teamID)
	if err != nil {
		return err
	}

	if err := s.requireAdmin(actorID, &team.OrganizationID, nil); err != nil {
		return err
	}

	member, err := s.teamRepo.FindMember(teamID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotActiveTeamMember
		}
		return fmt.Errorf("failed to find team membership: %w", err)
	}
	if !member.IsActive {
		return ErrNotActiveTeamMember
	}

	count, err := s.teamRepo.CountActiveMemberships(targetID, team.OrganizationID)
	if err != nil {
		return fmt.Errorf("failed to count team memberships: %w", err)
	}
	if count <= 1 {
		return ErrLastActiveTeam
	}

	member.IsActive = false
	if err := s.teamRepo.SaveMember(member); err != nil {
		return fmt.Errorf("failed to remove team membership: %w", err)
	}

	return nil
}

func (s *UserService) findActiveTeam(teamID uuid.UUID) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	if !team.IsActive {
		return nil, ErrTeamNotFound
	}
	return team, nil
}

// requireAdmin verifies the actor holds the ADMIN role in the given
// organization. When no organization is named, the first organization common
// to actor and target decides.
func (s *UserService) requireAdmin(actorID uuid.UUID, organizationID *uuid.UUID, targetID *uuid.UUID) error {
	var membership *models.OrganizationMember
	var err error

	switch {
	case organizationID != nil:
		membership, err = s.orgRepo.FindMember(*organizationID, actorID)
	case targetID != nil:
		membership, err = s.orgRepo.FindCommonMembership(actorID, *targetID)
	default:
		return ErrNotAdmin
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotAdmin
		}
		return fmt.Errorf("failed to verify admin role: %w", err)
	}

	if membership.Role != models.RoleAdmin {
		return ErrNotAdmin
	}
	return nil
}
