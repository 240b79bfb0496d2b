package services

import (
	"testing"

	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type teamServiceTestEnv struct {
	db      *gorm.DB
	teamSvc *TeamService
	orgSvc  *OrganizationService
}

func setupTeamServiceTest(t *testing.T) teamServiceTestEnv {
	t.Helper()
	db := setupServiceTestDB(t)
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	return teamServiceTestEnv{
		db:      db,
		teamSvc: NewTeamService(teamRepo, orgRepo, userRepo),
		orgSvc:  NewOrganizationService(orgRepo, userRepo),
	}
}

func TestCreateTeam_RequiresOrganizationMembership(t *testing.T) {
	env := setupTeamServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	carol := createTestUser(t, env.db, "carol@example.com")

	org, err := env.orgSvc.CreateOrganization(CreateOrganizationInput{
		Name:      "Acme",
		CreatorID: alice.ID,
	})
	require.NoError(t, err)

	_, err = env.teamSvc.CreateTeam(CreateTeamInput{
		OrganizationID: org.ID,
		Name:           "Engineering",
		ActorID:        carol.ID,
	})
	require.ErrorIs(t, err, ErrNotOrganizationMember)

	team, err := env.teamSvc.CreateTeam(CreateTeamInput{
		OrganizationID: org.ID,
		Name:           "Engineering",
		ActorID:        alice.ID,
	})
	require.NoError(t, err)
	require.True(t, team.IsActive)
}

func TestGetTeam_ForeignOrganizationLooksMissing(t *testing.T) {
	env := setupTeamServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	carol := createTestUser(t, env.db, "carol@example.com")

	org, err := env.orgSvc.CreateOrganization(CreateOrganizationInput{
		Name:      "Acme",
		CreatorID: alice.ID,
	})
	require.NoError(t, err)

	team, err := env.teamSvc.CreateTeam(CreateTeamInput{
		OrganizationID: org.ID,
		Name:           "Engineering",
		ActorID:        alice.ID,
	})
	require.NoError(t, err)

	_, err = env.teamSvc.GetTeam(team.ID, carol.ID)
	require.ErrorIs(t, err, ErrTeamNotFound)
}

func TestAddTeamMember_RequiresOrganizationMembership(t *testing.T) {
	env := setupTeamServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	carol := createTestUser(t, env.db, "carol@example.com")

	org, err := env.orgSvc.CreateOrganization(CreateOrganizationInput{
		Name:      "Acme",
		CreatorID: alice.ID,
	})
	require.NoError(t, err)

	team, err := env.teamSvc.CreateTeam(CreateTeamInput{
		OrganizationID: org.ID,
		Name:           "Engineering",
		ActorID:        alice.ID,
	})
	require.NoError(t, err)

	_, err = env.teamSvc.AddMember(AddMemberToTeamInput{
		TeamID:  team.ID,
		UserID:  carol.ID,
		ActorID: alice.ID,
	})
	require.ErrorIs(t, err, ErrUserNotInOrg)
}

func TestAddTeamMember_Duplicate(t *testing.T) {
	env := setupTeamServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")

	org, err := env.orgSvc.CreateOrganization(CreateOrganizationInput{
		Name:      "Acme",
		CreatorID: alice.ID,
	})
	require.NoError(t, err)

	team, err := env.teamSvc.CreateTeam(CreateTeamInput{
		OrganizationID: org.ID,
		Name:           "Engineering",
		ActorID:        alice.ID,
	})
	require.NoError(t, err)

	member, err := env.teamSvc.AddMember(AddMemberToTeamInput{
		TeamID:  team.ID,
		UserID:  alice.ID,
		ActorID: alice.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.TeamRoleMember, member.Role)

	_, err = env.teamSvc.AddMember(AddMemberToTeamInput{
		TeamID:  team.ID,
		UserID:  alice.ID,
		ActorID: alice.ID,
	})
	require.ErrorIs(t, err, ErrAlreadyTeamMember)
}

func TestListTeams_MergedListingPaginates(t *testing.T) {
	env := setupTeamServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")

	// Two organizations, each with a default team plus one extra.
	for _, name := range []string{"Acme", "Globex"} {
		org, err := env.orgSvc.CreateOrganization(CreateOrganizationInput{
			Name:      name,
			CreatorID: alice.ID,
		})
		require.NoError(t, err)

		_, err = env.teamSvc.CreateTeam(CreateTeamInput{
			OrganizationID: org.ID,
			Name:           name + " Engineering",
			ActorID:        alice.ID,
		})
		require.NoError(t, err)
	}

	teams, total, err := env.teamSvc.ListTeams(ListTeamsInput{
		ActorID:  alice.ID,
		Page:     1,
		PageSize: 3,
	})
	require.NoError(t, err)
	require.EqualValues(t, 4, total)
	require.Len(t, teams, 3)

	teams, total, err = env.teamSvc.ListTeams(ListTeamsInput{
		ActorID:  alice.ID,
		Page:     2,
		PageSize: 3,
	})
	require.NoError(t, err)
	require.EqualValues(t, 4, total)
	require.Len(t, teams, 1)
}

func TestRemoveMember_HardDeletesRow(t *testing.T) {
	env := setupTeamServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")

	org, err := env.orgSvc.CreateOrganization(CreateOrganizationInput{
		Name:      "Acme",
		CreatorID: alice.ID,
	})
	require.NoError(t, err)

	team, err := env.teamSvc.CreateTeam(CreateTeamInput{
		OrganizationID: org.ID,
		Name:           "Engineering",
		ActorID:        alice.ID,
	})
	require.NoError(t, err)

	_, err = env.teamSvc.AddMember(AddMemberToTeamInput{
		TeamID:  team.ID,
		UserID:  alice.ID,
		ActorID: alice.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.teamSvc.RemoveMember(team.ID, alice.ID, alice.ID))

	var count int64
	require.NoError(t, env.db.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", team.ID, alice.ID).
		Count(&count).Error)
	require.Zero(t, count)
}
