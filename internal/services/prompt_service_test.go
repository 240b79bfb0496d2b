package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type promptServiceTestEnv struct {
	db        *gorm.DB
	promptSvc *PromptService
	orgSvc    *OrganizationService
}

func setupPromptServiceTest(t *testing.T) promptServiceTestEnv {
	t.Helper()
	db := setupServiceTestDB(t)
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	promptRepo := repository.NewPromptRepository(db)
	return promptServiceTestEnv{
		db:        db,
		promptSvc: NewPromptService(promptRepo, orgRepo, nil),
		orgSvc:    NewOrganizationService(orgRepo, userRepo),
	}
}

func createPromptTestOrg(t *testing.T, env promptServiceTestEnv, name string, admin *models.User) *models.Organization {
	t.Helper()
	org, err := env.orgSvc.CreateOrganization(CreateOrganizationInput{
		Name:      name,
		CreatorID: admin.ID,
	})
	require.NoError(t, err)
	return org
}

func createTestCategory(t *testing.T, env promptServiceTestEnv, orgID uuid.UUID, name string) *models.Category {
	t.Helper()
	category := &models.Category{
		OrganizationID: orgID,
		Name:           name,
	}
	require.NoError(t, env.db.Create(category).Error)
	return category
}

func TestUpdatePrompt_RecordsHistorySnapshot(t *testing.T) {
	env := setupPromptServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	org := createPromptTestOrg(t, env, "Acme", alice)
	marketing := createTestCategory(t, env, org.ID, "Marketing")
	support := createTestCategory(t, env, org.ID, "Support")

	prompt, err := env.promptSvc.CreatePrompt(CreatePromptInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Greeting",
		Prompt:         "Say hello",
		Model:          "gpt-4o",
		CategoryIDs:    []uuid.UUID{marketing.ID},
	})
	require.NoError(t, err)

	newName := "Welcome"
	newCategories := []uuid.UUID{support.ID}
	_, err = env.promptSvc.UpdatePrompt(prompt.ID, UpdatePromptInput{
		ActorID:     alice.ID,
		Name:        &newName,
		CategoryIDs: &newCategories,
	})
	require.NoError(t, err)

	var history []models.PromptHistory
	require.NoError(t, env.db.Where("prompt_id = ?", prompt.ID).Find(&history).Error)
	require.Len(t, history, 1)
	require.Equal(t, "Updated name, categories", history[0].ChangeSummary)
	require.Equal(t, alice.ID, *history[0].ChangedByID)

	// The snapshot holds the state before the update.
	var snap promptSnapshot
	require.NoError(t, json.Unmarshal(history[0].Snapshot, &snap))
	require.Equal(t, "Greeting", snap.Name)
	require.Equal(t, []string{marketing.ID.String()}, snap.CategoryIDs)
}

func TestUpdatePrompt_NoChangeWritesNoHistory(t *testing.T) {
	env := setupPromptServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	org := createPromptTestOrg(t, env, "Acme", alice)

	prompt, err := env.promptSvc.CreatePrompt(CreatePromptInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Greeting",
		Prompt:         "Say hello",
		Model:          "gpt-4o",
	})
	require.NoError(t, err)

	sameName := "Greeting"
	sameBody := "Say hello"
	_, err = env.promptSvc.UpdatePrompt(prompt.ID, UpdatePromptInput{
		ActorID: alice.ID,
		Name:    &sameName,
		Prompt:  &sameBody,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, env.db.Model(&models.PromptHistory{}).
		Where("prompt_id = ?", prompt.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestUpdatePrompt_SameCategorySetWritesNoHistory(t *testing.T) {
	env := setupPromptServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	org := createPromptTestOrg(t, env, "Acme", alice)
	marketing := createTestCategory(t, env, org.ID, "Marketing")

	prompt, err := env.promptSvc.CreatePrompt(CreatePromptInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Greeting",
		Prompt:         "Say hello",
		Model:          "gpt-4o",
		CategoryIDs:    []uuid.UUID{marketing.ID},
	})
	require.NoError(t, err)

	sameCategories := []uuid.UUID{marketing.ID}
	_, err = env.promptSvc.UpdatePrompt(prompt.ID, UpdatePromptInput{
		ActorID:     alice.ID,
		CategoryIDs: &sameCategories,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, env.db.Model(&models.PromptHistory{}).
		Where("prompt_id = ?", prompt.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestGetPrompt_ForeignOrganizationLooksMissing(t *testing.T) {
	env := setupPromptServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	carol := createTestUser(t, env.db, "carol@example.com")
	org := createPromptTestOrg(t, env, "Acme", alice)
	createPromptTestOrg(t, env, "Globex", carol)

	prompt, err := env.promptSvc.CreatePrompt(CreatePromptInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Greeting",
		Prompt:         "Say hello",
		Model:          "gpt-4o",
	})
	require.NoError(t, err)

	_, err = env.promptSvc.GetPrompt(prompt.ID, carol.ID)
	require.ErrorIs(t, err, ErrPromptNotFound)
}

func TestListPrompts_ScopedToActorOrganizations(t *testing.T) {
	env := setupPromptServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	carol := createTestUser(t, env.db, "carol@example.com")
	acme := createPromptTestOrg(t, env, "Acme", alice)
	globex := createPromptTestOrg(t, env, "Globex", carol)

	_, err := env.promptSvc.CreatePrompt(CreatePromptInput{
		ActorID:        alice.ID,
		OrganizationID: acme.ID,
		Name:           "Acme prompt",
		Prompt:         "hello",
		Model:          "gpt-4o",
	})
	require.NoError(t, err)
	_, err = env.promptSvc.CreatePrompt(CreatePromptInput{
		ActorID:        carol.ID,
		OrganizationID: globex.ID,
		Name:           "Globex prompt",
		Prompt:         "hello",
		Model:          "gpt-4o",
	})
	require.NoError(t, err)

	prompts, total, err := env.promptSvc.ListPrompts(ListPromptsInput{ActorID: alice.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, prompts, 1)
	require.Equal(t, "Acme prompt", prompts[0].Name)
}

func TestListPrompts_NoMembershipsReturnsEmpty(t *testing.T) {
	env := setupPromptServiceTest(t)
	dave := createTestUser(t, env.db, "dave@example.com")

	prompts, total, err := env.promptSvc.ListPrompts(ListPromptsInput{ActorID: dave.ID})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, prompts)
}

type promptListFixture struct {
	alice  *models.User
	bob    *models.User
	team   *models.Team
	folder *models.Folder
	filed  *models.Prompt
	shared *models.Prompt
}

// createPromptListFixture builds two prompts under one organization: one filed
// in a folder with a category, one at the root shared with the default team.
func createPromptListFixture(t *testing.T, env promptServiceTestEnv) promptListFixture {
	t.Helper()
	alice := createTestUser(t, env.db, "alice@example.com")
	bob := createTestUser(t, env.db, "bob@example.com")
	org := createPromptTestOrg(t, env, "Acme", alice)

	_, err := env.orgSvc.AddMember(AddMemberInput{
		OrganizationID: org.ID,
		Email:          "bob@example.com",
	})
	require.NoError(t, err)

	var team models.Team
	require.NoError(t, env.db.
		Where("organization_id = ? AND name = ?", org.ID, "Acme").
		First(&team).Error)

	folder := &models.Folder{
		OrganizationID: org.ID,
		UserID:         &alice.ID,
		Name:           "Inbox",
		FolderType:     models.FolderTypePrivate,
	}
	require.NoError(t, env.db.Create(folder).Error)

	marketing := createTestCategory(t, env, org.ID, "Marketing")

	filed, err := env.promptSvc.CreatePrompt(CreatePromptInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Onboarding Email",
		Prompt:         "Write a welcome note",
		Model:          "gpt-4o",
		FolderID:       &folder.ID,
		CategoryIDs:    []uuid.UUID{marketing.ID},
	})
	require.NoError(t, err)

	shared, err := env.promptSvc.CreatePrompt(CreatePromptInput{
		ActorID:        bob.ID,
		OrganizationID: org.ID,
		Name:           "Churn Analysis",
		Prompt:         "Analyze retention cohorts",
		Model:          "gpt-4o",
		Visibility:     models.VisibilityTeam,
		TeamIDs:        []uuid.UUID{team.ID},
	})
	require.NoError(t, err)

	return promptListFixture{alice: alice, bob: bob, team: &team, folder: folder, filed: filed, shared: shared}
}

func TestListPrompts_FiltersByCreatorAndFolder(t *testing.T) {
	env := setupPromptServiceTest(t)
	fix := createPromptListFixture(t, env)

	prompts, total, err := env.promptSvc.ListPrompts(ListPromptsInput{
		ActorID:     fix.alice.ID,
		CreatedByID: &fix.alice.ID,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, fix.filed.ID, prompts[0].ID)

	prompts, total, err = env.promptSvc.ListPrompts(ListPromptsInput{
		ActorID:  fix.alice.ID,
		FolderID: &fix.folder.ID,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, fix.filed.ID, prompts[0].ID)

	prompts, total, err = env.promptSvc.ListPrompts(ListPromptsInput{
		ActorID:    fix.alice.ID,
		RootFolder: true,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, fix.shared.ID, prompts[0].ID)
}

func TestListPrompts_FiltersByTeamShareAndVisibility(t *testing.T) {
	env := setupPromptServiceTest(t)
	fix := createPromptListFixture(t, env)

	prompts, total, err := env.promptSvc.ListPrompts(ListPromptsInput{
		ActorID: fix.alice.ID,
		TeamID:  &fix.team.ID,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, fix.shared.ID, prompts[0].ID)

	private := models.VisibilityPrivate
	prompts, total, err = env.promptSvc.ListPrompts(ListPromptsInput{
		ActorID:    fix.alice.ID,
		Visibility: &private,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, fix.filed.ID, prompts[0].ID)
}

func TestListPrompts_SearchMatchesBodyAndCategoryName(t *testing.T) {
	env := setupPromptServiceTest(t)
	fix := createPromptListFixture(t, env)

	prompts, total, err := env.promptSvc.ListPrompts(ListPromptsInput{
		ActorID: fix.alice.ID,
		Search:  "retention",
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, fix.shared.ID, prompts[0].ID)

	prompts, total, err = env.promptSvc.ListPrompts(ListPromptsInput{
		ActorID: fix.alice.ID,
		Search:  "Marketing",
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, fix.filed.ID, prompts[0].ID)

	// Search ignores case.
	prompts, total, err = env.promptSvc.ListPrompts(ListPromptsInput{
		ActorID: fix.alice.ID,
		Search:  "CHURN",
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, fix.shared.ID, prompts[0].ID)
}

func TestListPrompts_OrderByName(t *testing.T) {
	env := setupPromptServiceTest(t)
	fix := createPromptListFixture(t, env)

	prompts, _, err := env.promptSvc.ListPrompts(ListPromptsInput{
		ActorID: fix.alice.ID,
		OrderBy: "name",
	})
	require.NoError(t, err)
	require.Len(t, prompts, 2)
	require.Equal(t, fix.shared.ID, prompts[0].ID)
	require.Equal(t, fix.filed.ID, prompts[1].ID)
}

func TestRunPrompt_WithoutAIService(t *testing.T) {
	env := setupPromptServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	org := createPromptTestOrg(t, env, "Acme", alice)

	prompt, err := env.promptSvc.CreatePrompt(CreatePromptInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Greeting",
		Prompt:         "Say hello",
		Model:          "gpt-4o",
	})
	require.NoError(t, err)

	_, err = env.promptSvc.RunPrompt(context.Background(), prompt.ID, alice.ID, "")
	require.ErrorIs(t, err, ErrAIServiceNotConfigured)
}

func TestDeletePrompt_RemovesJoinsAndHistory(t *testing.T) {
	env := setupPromptServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	org := createPromptTestOrg(t, env, "Acme", alice)
	marketing := createTestCategory(t, env, org.ID, "Marketing")

	prompt, err := env.promptSvc.CreatePrompt(CreatePromptInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Greeting",
		Prompt:         "Say hello",
		Model:          "gpt-4o",
		CategoryIDs:    []uuid.UUID{marketing.ID},
	})
	require.NoError(t, err)

	newBody := "Say goodbye"
	_, err = env.promptSvc.UpdatePrompt(prompt.ID, UpdatePromptInput{
		ActorID: alice.ID,
		Prompt:  &newBody,
	})
	require.NoError(t, err)

	require.NoError(t, env.promptSvc.DeletePrompt(prompt.ID, alice.ID))

	var promptCount, joinCount, historyCount int64
	env.db.Model(&models.Prompt{}).Where("id = ?", prompt.ID).Count(&promptCount)
	env.db.Model(&models.PromptCategory{}).Where("prompt_id = ?", prompt.ID).Count(&joinCount)
	env.db.Model(&models.PromptHistory{}).Where("prompt_id = ?", prompt.ID).Count(&historyCount)
	require.Zero(t, promptCount)
	require.Zero(t, joinCount)
	require.Zero(t, historyCount)
}
