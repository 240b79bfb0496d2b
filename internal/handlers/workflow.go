package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/dto"
	apierrors "github.com/promptbox/promptbox/internal/errors"
	"github.com/promptbox/promptbox/internal/middleware"
	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/services"
	"github.com/promptbox/promptbox/internal/utils"
)

// WorkflowHandler coordinates workflow HTTP handlers.
type WorkflowHandler struct {
	workflowService *services.WorkflowService
}

// NewWorkflowHandler creates a new WorkflowHandler.
func NewWorkflowHandler(workflowService *services.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflowService: workflowService}
}

// ListWorkflows returns workflows in the caller's organizations.
func (h *WorkflowHandler) ListWorkflows(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	input := services.ListWorkflowsInput{
		ActorID: userID,
		Search:  c.Query("search"),
		OrderBy: c.Query("ordering"),
	}

	if raw := c.Query("organization_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid organization_id")
			return
		}
		input.OrganizationID = &id
	}
	if raw := c.Query("team_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid team_id")
			return
		}
		input.TeamID = &id
	}
	if raw := c.Query("visibility"); raw != "" {
		visibility := models.Visibility(raw)
		input.Visibility = &visibility
	}
	if raw := c.Query("created_by"); raw != "" {
		if raw == "me" {
			input.CreatedByID = &userID
		} else {
			id, err := uuid.Parse(raw)
			if err != nil {
				apierrors.BadRequest(c, "Invalid created_by")
				return
			}
			input.CreatedByID = &id
		}
	}
	if raw := c.Query("folder_id"); raw != "" {
		if raw == "root" {
			input.RootFolder = true
		} else {
			id, err := uuid.Parse(raw)
			if err != nil {
				apierrors.BadRequest(c, "Invalid folder_id")
				return
			}
			input.FolderID = &id
		}
	}

	pagination := utils.GetPaginationParams(c)
	input.Page = pagination.Page
	input.PageSize = pagination.Limit

	workflows, total, err := h.workflowService.ListWorkflows(input)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	workflowDTOs := make([]dto.WorkflowDTO, len(workflows))
	for i, workflow := range workflows {
		workflowDTOs[i] = dto.ToWorkflowDTO(workflow)
	}

	totalPages := int((total + int64(pagination.Limit) - 1) / int64(pagination.Limit))
	c.JSON(http.StatusOK, dto.WorkflowListResponse{
		Workflows:  workflowDTOs,
		Page:       pagination.Page,
		PageSize:   pagination.Limit,
		TotalCount: total,
		TotalPages: totalPages,
	})
}

// GetWorkflow returns a workflow with its ordered steps.
func (h *WorkflowHandler) GetWorkflow(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	workflowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	workflow, err := h.workflowService.GetWorkflow(workflowID, userID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkflowDTO(*workflow))
}

// CreateWorkflow creates a workflow with its steps and team associations.
func (h *WorkflowHandler) CreateWorkflow(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateWorkflowRequest struct {
		OrganizationID uuid.UUID                    `json:"organization_id" binding:"required"`
		Name           string                       `json:"name" binding:"required"`
		Description    string                       `json:"description"`
		Visibility     models.Visibility            `json:"visibility"`
		FolderID       *uuid.UUID                   `json:"folder_id"`
		Steps          []services.WorkflowStepInput `json:"steps"`
		TeamIDs        []uuid.UUID                  `json:"team_ids"`
	}

	var req CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	workflow, err := h.workflowService.CreateWorkflow(services.CreateWorkflowInput{
		ActorID:        userID,
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Description:    req.Description,
		Visibility:     req.Visibility,
		FolderID:       req.FolderID,
		Steps:          req.Steps,
		TeamIDs:        req.TeamIDs,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkflowDTO(*workflow))
}

// UpdateWorkflow updates a workflow; a supplied step list replaces the
// existing steps wholesale.
func (h *WorkflowHandler) UpdateWorkflow(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	workflowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateWorkflowRequest struct {
		Name        *string                       `json:"name"`
		Description *string                       `json:"description"`
		Visibility  *models.Visibility            `json:"visibility"`
		FolderID    *uuid.UUID                    `json:"folder_id"`
		ClearFolder bool                          `json:"clear_folder"`
		Steps       *[]services.WorkflowStepInput `json:"steps"`
		TeamIDs     *[]uuid.UUID                  `json:"team_ids"`
	}

	var req UpdateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	workflow, err := h.workflowService.UpdateWorkflow(workflowID, services.UpdateWorkflowInput{
		ActorID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
		FolderID:    req.FolderID,
		ClearFolder: req.ClearFolder,
		Steps:       req.Steps,
		TeamIDs:     req.TeamIDs,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkflowDTO(*workflow))
}

// DeleteWorkflow removes a workflow with its steps, joins and history.
func (h *WorkflowHandler) DeleteWorkflow(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	workflowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.workflowService.DeleteWorkflow(workflowID, userID); err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListHistory returns a workflow's change history, newest first.
func (h *WorkflowHandler) ListHistory(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	workflowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	history, err := h.workflowService.ListHistory(workflowID, userID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	historyDTOs := make([]dto.HistoryDTO, len(history))
	for i, row := range history {
		historyDTOs[i] = dto.ToWorkflowHistoryDTO(row)
	}

	c.JSON(http.StatusOK, gin.H{"history": historyDTOs})
}

func respondWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrWorkflowNameRequired),
		errors.Is(err, services.ErrInvalidWorkflowStep):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrWorkflowNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotOrganizationMember):
		apierrors.NotFound(c, "Workflow not found")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
