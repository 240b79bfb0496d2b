package services

import (
	"testing"

	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type folderServiceTestEnv struct {
	db        *gorm.DB
	folderSvc *FolderService
	promptSvc *PromptService
	orgSvc    *OrganizationService
}

func setupFolderServiceTest(t *testing.T) folderServiceTestEnv {
	t.Helper()
	db := setupServiceTestDB(t)
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	folderRepo := repository.NewFolderRepository(db)
	promptRepo := repository.NewPromptRepository(db)
	return folderServiceTestEnv{
		db:        db,
		folderSvc: NewFolderService(folderRepo, orgRepo),
		promptSvc: NewPromptService(promptRepo, orgRepo, nil),
		orgSvc:    NewOrganizationService(orgRepo, userRepo),
	}
}

func TestCreateFolder_DefaultsToPrivateOwnedByActor(t *testing.T) {
	env := setupFolderServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	org, err := env.orgSvc.CreateOrganization(CreateOrganizationInput{
		Name:      "Acme",
		CreatorID: alice.ID,
	})
	require.NoError(t, err)

	folder, err := env.folderSvc.CreateFolder(CreateFolderInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Drafts",
	})
	require.NoError(t, err)
	require.Equal(t, models.FolderTypePrivate, folder.FolderType)
	require.NotNil(t, folder.UserID)
	require.Equal(t, alice.ID, *folder.UserID)
}

func TestUpdateFolder_RejectsSelfParent(t *testing.T) {
	env := setupFolderServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	org, err := env.orgSvc.CreateOrganization(CreateOrganizationInput{
		Name:      "Acme",
		CreatorID: alice.ID,
	})
	require.NoError(t, err)

	folder, err := env.folderSvc.CreateFolder(CreateFolderInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Drafts",
	})
	require.NoError(t, err)

	_, err = env.folderSvc.UpdateFolder(folder.ID, alice.ID, nil, &folder.ID, false)
	require.ErrorIs(t, err, ErrFolderOwnParent)
}

func TestDeleteFolder_ContentsFallBackToRoot(t *testing.T) {
	env := setupFolderServiceTest(t)
	alice := createTestUser(t, env.db, "alice@example.com")
	org, err := env.orgSvc.CreateOrganization(CreateOrganizationInput{
		Name:      "Acme",
		CreatorID: alice.ID,
	})
	require.NoError(t, err)

	parent, err := env.folderSvc.CreateFolder(CreateFolderInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Parent",
	})
	require.NoError(t, err)

	child, err := env.folderSvc.CreateFolder(CreateFolderInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Child",
		ParentID:       &parent.ID,
	})
	require.NoError(t, err)

	prompt, err := env.promptSvc.CreatePrompt(CreatePromptInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Greeting",
		Prompt:         "Say hello",
		Model:          "gpt-4o",
		FolderID:       &parent.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.folderSvc.DeleteFolder(parent.ID, alice.ID))

	var reloadedChild models.Folder
	require.NoError(t, env.db.First(&reloadedChild, "id = ?", child.ID).Error)
	require.Nil(t, reloadedChild.ParentID)

	var reloadedPrompt models.Prompt
	require.NoError(t, env.db.First(&reloadedPrompt, "id = ?", prompt.ID).Error)
	require.Nil(t, reloadedPrompt.FolderID)
}

func TestCategoryAccess_ScopedToOrganizations(t *testing.T) {
	db := setupServiceTestDB(t)
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	categorySvc := NewCategoryService(categoryRepo, orgRepo)
	orgSvc := NewOrganizationService(orgRepo, userRepo)

	alice := createTestUser(t, db, "alice@example.com")
	carol := createTestUser(t, db, "carol@example.com")
	org, err := orgSvc.CreateOrganization(CreateOrganizationInput{
		Name:      "Acme",
		CreatorID: alice.ID,
	})
	require.NoError(t, err)

	category, err := categorySvc.CreateCategory(alice.ID, org.ID, "Marketing", "")
	require.NoError(t, err)

	_, err = categorySvc.GetCategory(category.ID, carol.ID)
	require.ErrorIs(t, err, ErrCategoryNotFound)

	categories, err := categorySvc.ListCategories(alice.ID, nil)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	require.Equal(t, "Marketing", categories[0].Name)
}
