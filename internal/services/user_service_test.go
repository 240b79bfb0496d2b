package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type userServiceTestEnv struct {
	db      *gorm.DB
	userSvc *UserService
	orgSvc  *OrganizationService
}

func setupUserServiceTest(t *testing.T) userServiceTestEnv {
	t.Helper()
	db := setupServiceTestDB(t)
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	return userServiceTestEnv{
		db:      db,
		userSvc: NewUserService(userRepo, orgRepo, teamRepo),
		orgSvc:  NewOrganizationService(orgRepo, userRepo),
	}
}

// createOrgWithAdmin creates an organization named "Acme" with its default
// team and the given user as admin, returning the org and the default team.
func createOrgWithAdmin(t *testing.T, env userServiceTestEnv, admin *models.User) (*models.Organization, *models.Team) {
	t.Helper()
	org, err := env.orgSvc.CreateOrganization(CreateOrganizationInput{
		Name:      "Acme",
		CreatorID: admin.ID,
	})
	require.NoError(t, err)

	var team models.Team
	require.NoError(t, env.db.Where("organization_id = ? AND name = ?", org.ID, org.Name).
		First(&team).Error)
	return org, &team
}

func createExtraTeam(t *testing.T, env userServiceTestEnv, orgID uuid.UUID, name string) *models.Team {
	t.Helper()
	team := &models.Team{
		OrganizationID: orgID,
		Name:           name,
		IsActive:       true,
	}
	require.NoError(t, env.db.Create(team).Error)
	return team
}

func TestRemoveTeam_LastActiveTeamRejected(t *testing.T) {
	env := setupUserServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	_, defaultTeam := createOrgWithAdmin(t, env, alice)

	err := env.userSvc.RemoveTeam(alice.ID, alice.ID, defaultTeam.ID)
	require.ErrorIs(t, err, ErrLastActiveTeam)
}

func TestRemoveTeam_SoftRemovesMembership(t *testing.T) {
	env := setupUserServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	org, defaultTeam := createOrgWithAdmin(t, env, alice)
	extra := createExtraTeam(t, env, org.ID, "Engineering")

	require.NoError(t, env.userSvc.AssignTeam(alice.ID, alice.ID, extra.ID))
	require.NoError(t, env.userSvc.RemoveTeam(alice.ID, alice.ID, defaultTeam.ID))

	// The row is kept but deactivated, not deleted.
	var member models.TeamMember
	require.NoError(t, env.db.Where("team_id = ? AND user_id = ?", defaultTeam.ID, alice.ID).
		First(&member).Error)
	require.False(t, member.IsActive)
}

func TestRemoveTeam_InactiveMembership(t *testing.T) {
	env := setupUserServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	org, _ := createOrgWithAdmin(t, env, alice)
	extra := createExtraTeam(t, env, org.ID, "Engineering")

	err := env.userSvc.RemoveTeam(alice.ID, alice.ID, extra.ID)
	require.ErrorIs(t, err, ErrNotActiveTeamMember)
}

func TestAssignTeam_ReactivatesRemovedMembership(t *testing.T) {
	env := setupUserServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	org, defaultTeam := createOrgWithAdmin(t, env, alice)
	extra := createExtraTeam(t, env, org.ID, "Engineering")

	require.NoError(t, env.userSvc.AssignTeam(alice.ID, alice.ID, extra.ID))
	require.NoError(t, env.userSvc.RemoveTeam(alice.ID, alice.ID, defaultTeam.ID))
	require.NoError(t, env.userSvc.AssignTeam(alice.ID, alice.ID, defaultTeam.ID))

	// The original row is reused rather than a duplicate being created.
	var count int64
	require.NoError(t, env.db.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", defaultTeam.ID, alice.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	var member models.TeamMember
	require.NoError(t, env.db.Where("team_id = ? AND user_id = ?", defaultTeam.ID, alice.ID).
		First(&member).Error)
	require.True(t, member.IsActive)
}

func TestAssignTeam_AlreadyActiveIsNoOp(t *testing.T) {
	env := setupUserServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	_, defaultTeam := createOrgWithAdmin(t, env, alice)

	require.NoError(t, env.userSvc.AssignTeam(alice.ID, alice.ID, defaultTeam.ID))

	var count int64
	require.NoError(t, env.db.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", defaultTeam.ID, alice.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestAssignTeam_RequiresAdmin(t *testing.T) {
	env := setupUserServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	bob := createTestUser(t, env.db, "bob@example.com")
	org, defaultTeam := createOrgWithAdmin(t, env, alice)

	_, err := env.orgSvc.AddMember(AddMemberInput{
		OrganizationID: org.ID,
		Email:          "bob@example.com",
	})
	require.NoError(t, err)

	err = env.userSvc.AssignTeam(bob.ID, alice.ID, defaultTeam.ID)
	require.ErrorIs(t, err, ErrNotAdmin)
}

func TestAssignTeam_TargetOutsideOrganization(t *testing.T) {
	env := setupUserServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	carol := createTestUser(t, env.db, "carol@example.com")
	_, defaultTeam := createOrgWithAdmin(t, env, alice)

	err := env.userSvc.AssignTeam(alice.ID, carol.ID, defaultTeam.ID)
	require.ErrorIs(t, err, ErrUserNotInOrg)
}

func TestAssignTeam_InactiveTeam(t *testing.T) {
	env := setupUserServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	org, _ := createOrgWithAdmin(t, env, alice)

	team := &models.Team{
		OrganizationID: org.ID,
		Name:           "Retired",
	}
	require.NoError(t, env.db.Create(team).Error)
	require.NoError(t, env.db.Model(team).Update("is_active", false).Error)

	err := env.userSvc.AssignTeam(alice.ID, alice.ID, team.ID)
	require.ErrorIs(t, err, ErrTeamNotFound)
}

func TestDeactivateUser_KeepsTeamMemberships(t *testing.T) {
	env := setupUserServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	bob := createTestUser(t, env.db, "bob@example.com")
	org, defaultTeam := createOrgWithAdmin(t, env, alice)

	_, err := env.orgSvc.AddMember(AddMemberInput{
		OrganizationID: org.ID,
		Email:          "bob@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, env.userSvc.DeactivateUser(alice.ID, bob.ID, &org.ID))

	var user models.User
	require.NoError(t, env.db.First(&user, "id = ?", bob.ID).Error)
	require.False(t, user.IsActive)

	var member models.TeamMember
	require.NoError(t, env.db.Where("team_id = ? AND user_id = ?", defaultTeam.ID, bob.ID).
		First(&member).Error)
	require.True(t, member.IsActive)
}

func TestCreateUser_CreatesMembershipAndTeamEnrollment(t *testing.T) {
	env := setupUserServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	org, defaultTeam := createOrgWithAdmin(t, env, alice)

	user, err := env.userSvc.CreateUser(CreateUserInput{
		ActorID:        alice.ID,
		Name:           "Dana",
		Email:          "dana@example.com",
		Password:       "password123",
		OrganizationID: org.ID,
	})
	require.NoError(t, err)

	member, err := repository.NewOrganizationRepository(env.db).FindMember(org.ID, user.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleMember, member.Role)

	var teamMember models.TeamMember
	require.NoError(t, env.db.Where("team_id = ? AND user_id = ?", defaultTeam.ID, user.ID).
		First(&teamMember).Error)
	require.True(t, teamMember.IsActive)
}

func TestCreateUser_RequiresAdmin(t *testing.T) {
	env := setupUserServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	bob := createTestUser(t, env.db, "bob@example.com")
	org, _ := createOrgWithAdmin(t, env, alice)

	_, err := env.orgSvc.AddMember(AddMemberInput{
		OrganizationID: org.ID,
		Email:          "bob@example.com",
	})
	require.NoError(t, err)

	_, err = env.userSvc.CreateUser(CreateUserInput{
		ActorID:        bob.ID,
		Name:           "Dana",
		Email:          "dana@example.com",
		Password:       "password123",
		OrganizationID: org.ID,
	})
	require.ErrorIs(t, err, ErrNotAdmin)
}

func TestGetUser_RequiresSharedOrganization(t *testing.T) {
	env := setupUserServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	carol := createTestUser(t, env.db, "carol@example.com")
	createOrgWithAdmin(t, env, alice)

	_, err := env.userSvc.GetUser(carol.ID, alice.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	// Users can always read themselves.
	self, err := env.userSvc.GetUser(alice.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, alice.ID, self.ID)
}
