package services

import (
	"encoding/json"
	"testing"

	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type workflowServiceTestEnv struct {
	db          *gorm.DB
	workflowSvc *WorkflowService
	promptSvc   *PromptService
	orgSvc      *OrganizationService
}

func setupWorkflowServiceTest(t *testing.T) workflowServiceTestEnv {
	t.Helper()
	db := setupServiceTestDB(t)
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	promptRepo := repository.NewPromptRepository(db)
	workflowRepo := repository.NewWorkflowRepository(db)
	return workflowServiceTestEnv{
		db:          db,
		workflowSvc: NewWorkflowService(workflowRepo, promptRepo, orgRepo),
		promptSvc:   NewPromptService(promptRepo, orgRepo, nil),
		orgSvc:      NewOrganizationService(orgRepo, userRepo),
	}
}

func createWorkflowFixture(t *testing.T, env workflowServiceTestEnv) (*models.User, *models.Organization, *models.Prompt, *models.Prompt) {
	t.Helper()
	alice := createTestUser(t, env.db, "alice@example.com")
	org, err := env.orgSvc.CreateOrganization(CreateOrganizationInput{
		Name:      "Acme",
		CreatorID: alice.ID,
	})
	require.NoError(t, err)

	first, err := env.promptSvc.CreatePrompt(CreatePromptInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Draft",
		Prompt:         "Write a draft",
		Model:          "gpt-4o",
	})
	require.NoError(t, err)

	second, err := env.promptSvc.CreatePrompt(CreatePromptInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Review",
		Prompt:         "Review the draft",
		Model:          "gpt-4o",
	})
	require.NoError(t, err)

	return alice, org, first, second
}

func TestCreateWorkflow_SortsStepsByOrder(t *testing.T) {
	env := setupWorkflowServiceTest(t)
	alice, org, first, second := createWorkflowFixture(t, env)

	workflow, err := env.workflowSvc.CreateWorkflow(CreateWorkflowInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Publishing",
		Steps: []WorkflowStepInput{
			{PromptID: second.ID, Order: 2, Name: "Review"},
			{PromptID: first.ID, Order: 1, Name: "Draft"},
		},
	})
	require.NoError(t, err)
	require.Len(t, workflow.Steps, 2)
	require.Equal(t, first.ID, workflow.Steps[0].PromptID)
	require.Equal(t, second.ID, workflow.Steps[1].PromptID)
}

func TestCreateWorkflow_RejectsForeignPromptStep(t *testing.T) {
	env := setupWorkflowServiceTest(t)
	alice, org, _, _ := createWorkflowFixture(t, env)

	carol := createTestUser(t, env.db, "carol@example.com")
	globex, err := env.orgSvc.CreateOrganization(CreateOrganizationInput{
		Name:      "Globex",
		CreatorID: carol.ID,
	})
	require.NoError(t, err)

	foreign, err := env.promptSvc.CreatePrompt(CreatePromptInput{
		ActorID:        carol.ID,
		OrganizationID: globex.ID,
		Name:           "Foreign",
		Prompt:         "hello",
		Model:          "gpt-4o",
	})
	require.NoError(t, err)

	_, err = env.workflowSvc.CreateWorkflow(CreateWorkflowInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Publishing",
		Steps: []WorkflowStepInput{
			{PromptID: foreign.ID, Order: 1, Name: "Foreign"},
		},
	})
	require.ErrorIs(t, err, ErrInvalidWorkflowStep)
}

func TestUpdateWorkflow_StepReorderRecordsHistory(t *testing.T) {
	env := setupWorkflowServiceTest(t)
	alice, org, first, second := createWorkflowFixture(t, env)

	workflow, err := env.workflowSvc.CreateWorkflow(CreateWorkflowInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Publishing",
		Steps: []WorkflowStepInput{
			{PromptID: first.ID, Order: 1, Name: "Draft"},
			{PromptID: second.ID, Order: 2, Name: "Review"},
		},
	})
	require.NoError(t, err)

	reordered := []WorkflowStepInput{
		{PromptID: second.ID, Order: 1, Name: "Review"},
		{PromptID: first.ID, Order: 2, Name: "Draft"},
	}
	_, err = env.workflowSvc.UpdateWorkflow(workflow.ID, UpdateWorkflowInput{
		ActorID: alice.ID,
		Steps:   &reordered,
	})
	require.NoError(t, err)

	var history []models.WorkflowHistory
	require.NoError(t, env.db.Where("workflow_id = ?", workflow.ID).Find(&history).Error)
	require.Len(t, history, 1)
	require.Equal(t, "Updated steps", history[0].ChangeSummary)

	// The snapshot keeps the prior step order.
	var snap workflowSnapshot
	require.NoError(t, json.Unmarshal(history[0].Snapshot, &snap))
	require.Len(t, snap.Steps, 2)
	require.Equal(t, first.ID.String(), snap.Steps[0].PromptID)
	require.Equal(t, second.ID.String(), snap.Steps[1].PromptID)
}

func TestUpdateWorkflow_IdenticalStepsWriteNoHistory(t *testing.T) {
	env := setupWorkflowServiceTest(t)
	alice, org, first, second := createWorkflowFixture(t, env)

	workflow, err := env.workflowSvc.CreateWorkflow(CreateWorkflowInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Publishing",
		Steps: []WorkflowStepInput{
			{PromptID: first.ID, Order: 1, Name: "Draft"},
			{PromptID: second.ID, Order: 2, Name: "Review"},
		},
	})
	require.NoError(t, err)

	same := []WorkflowStepInput{
		{PromptID: first.ID, Order: 1, Name: "Draft"},
		{PromptID: second.ID, Order: 2, Name: "Review"},
	}
	_, err = env.workflowSvc.UpdateWorkflow(workflow.ID, UpdateWorkflowInput{
		ActorID: alice.ID,
		Steps:   &same,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, env.db.Model(&models.WorkflowHistory{}).
		Where("workflow_id = ?", workflow.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestUpdateWorkflow_NameChangeSummary(t *testing.T) {
	env := setupWorkflowServiceTest(t)
	alice, org, _, _ := createWorkflowFixture(t, env)

	workflow, err := env.workflowSvc.CreateWorkflow(CreateWorkflowInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Publishing",
	})
	require.NoError(t, err)

	newName := "Release"
	newDescription := "Release pipeline"
	_, err = env.workflowSvc.UpdateWorkflow(workflow.ID, UpdateWorkflowInput{
		ActorID:     alice.ID,
		Name:        &newName,
		Description: &newDescription,
	})
	require.NoError(t, err)

	var history []models.WorkflowHistory
	require.NoError(t, env.db.Where("workflow_id = ?", workflow.ID).Find(&history).Error)
	require.Len(t, history, 1)
	require.Equal(t, "Updated name, description", history[0].ChangeSummary)

	var snap workflowSnapshot
	require.NoError(t, json.Unmarshal(history[0].Snapshot, &snap))
	require.Equal(t, "Publishing", snap.Name)
}

func TestGetWorkflow_LoadsFolder(t *testing.T) {
	env := setupWorkflowServiceTest(t)
	alice, org, _, _ := createWorkflowFixture(t, env)

	folder := &models.Folder{
		OrganizationID: org.ID,
		UserID:         &alice.ID,
		Name:           "Pipelines",
		FolderType:     models.FolderTypePrivate,
	}
	require.NoError(t, env.db.Create(folder).Error)

	created, err := env.workflowSvc.CreateWorkflow(CreateWorkflowInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Publishing",
		FolderID:       &folder.ID,
	})
	require.NoError(t, err)

	workflow, err := env.workflowSvc.GetWorkflow(created.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, workflow.Folder)
	require.Equal(t, folder.ID, workflow.Folder.ID)
}

func TestGetWorkflow_ForeignOrganizationLooksMissing(t *testing.T) {
	env := setupWorkflowServiceTest(t)
	alice, org, _, _ := createWorkflowFixture(t, env)
	carol := createTestUser(t, env.db, "carol@example.com")

	workflow, err := env.workflowSvc.CreateWorkflow(CreateWorkflowInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Publishing",
	})
	require.NoError(t, err)

	_, err = env.workflowSvc.GetWorkflow(workflow.ID, carol.ID)
	require.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestDeleteWorkflow_RemovesStepsAndHistory(t *testing.T) {
	env := setupWorkflowServiceTest(t)
	alice, org, first, _ := createWorkflowFixture(t, env)

	workflow, err := env.workflowSvc.CreateWorkflow(CreateWorkflowInput{
		ActorID:        alice.ID,
		OrganizationID: org.ID,
		Name:           "Publishing",
		Steps: []WorkflowStepInput{
			{PromptID: first.ID, Order: 1, Name: "Draft"},
		},
	})
	require.NoError(t, err)

	newName := "Release"
	_, err = env.workflowSvc.UpdateWorkflow(workflow.ID, UpdateWorkflowInput{
		ActorID: alice.ID,
		Name:    &newName,
	})
	require.NoError(t, err)

	require.NoError(t, env.workflowSvc.DeleteWorkflow(workflow.ID, alice.ID))

	var workflowCount, stepCount, historyCount int64
	env.db.Model(&models.Workflow{}).Where("id = ?", workflow.ID).Count(&workflowCount)
	env.db.Model(&models.WorkflowStep{}).Where("workflow_id = ?", workflow.ID).Count(&stepCount)
	env.db.Model(&models.WorkflowHistory{}).Where("workflow_id = ?", workflow.ID).Count(&historyCount)
	require.Zero(t, workflowCount)
	require.Zero(t, stepCount)
	require.Zero(t, historyCount)
}
