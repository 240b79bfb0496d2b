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

// PromptHandler coordinates prompt HTTP handlers.
type PromptHandler struct {
	promptService *services.PromptService
}

// NewPromptHandler creates a new PromptHandler.
func NewPromptHandler(promptService *services.PromptService) *PromptHandler {
	return &PromptHandler{promptService: promptService}
}

// ListPrompts returns prompts in the caller's organizations, narrowed by the
// query filters. created_by accepts "me", folder_id accepts "root".
func (h *PromptHandler) ListPrompts(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	input := services.ListPromptsInput{
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

	prompts, total, err := h.promptService.ListPrompts(input)
	if err != nil {
		respondPromptError(c, err)
		return
	}

	promptDTOs := make([]dto.PromptDTO, len(prompts))
	for i, prompt := range prompts {
		promptDTOs[i] = dto.ToPromptDTO(prompt)
	}

	totalPages := int((total + int64(pagination.Limit) - 1) / int64(pagination.Limit))
	c.JSON(http.StatusOK, dto.PromptListResponse{
		Prompts:    promptDTOs,
		Page:       pagination.Page,
		PageSize:   pagination.Limit,
		TotalCount: total,
		TotalPages: totalPages,
	})
}

// GetPrompt returns a prompt with its categories and shared teams.
func (h *PromptHandler) GetPrompt(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	promptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	prompt, err := h.promptService.GetPrompt(promptID, userID)
	if err != nil {
		respondPromptError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPromptDTO(*prompt))
}

// CreatePrompt creates a prompt; the caller becomes its author.
func (h *PromptHandler) CreatePrompt(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreatePromptRequest struct {
		OrganizationID uuid.UUID         `json:"organization_id" binding:"required"`
		Name           string            `json:"name" binding:"required"`
		Description    string            `json:"description"`
		Prompt         string            `json:"prompt" binding:"required"`
		Model          string            `json:"model"`
		Visibility     models.Visibility `json:"visibility"`
		FolderID       *uuid.UUID        `json:"folder_id"`
		CategoryIDs    []uuid.UUID       `json:"category_ids"`
		TeamIDs        []uuid.UUID       `json:"team_ids"`
	}

	var req CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	prompt, err := h.promptService.CreatePrompt(services.CreatePromptInput{
		ActorID:        userID,
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Description:    req.Description,
		Prompt:         req.Prompt,
		Model:          req.Model,
		Visibility:     req.Visibility,
		FolderID:       req.FolderID,
		CategoryIDs:    req.CategoryIDs,
		TeamIDs:        req.TeamIDs,
	})
	if err != nil {
		respondPromptError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToPromptDTO(*prompt))
}

// UpdatePrompt updates a prompt; a history row records the prior state when
// anything changed.
func (h *PromptHandler) UpdatePrompt(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	promptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdatePromptRequest struct {
		Name        *string            `json:"name"`
		Description *string            `json:"description"`
		Prompt      *string            `json:"prompt"`
		Model       *string            `json:"model"`
		Visibility  *models.Visibility `json:"visibility"`
		FolderID    *uuid.UUID         `json:"folder_id"`
		ClearFolder bool               `json:"clear_folder"`
		CategoryIDs *[]uuid.UUID       `json:"category_ids"`
		TeamIDs     *[]uuid.UUID       `json:"team_ids"`
	}

	var req UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	prompt, err := h.promptService.UpdatePrompt(promptID, services.UpdatePromptInput{
		ActorID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Prompt:      req.Prompt,
		Model:       req.Model,
		Visibility:  req.Visibility,
		FolderID:    req.FolderID,
		ClearFolder: req.ClearFolder,
		CategoryIDs: req.CategoryIDs,
		TeamIDs:     req.TeamIDs,
	})
	if err != nil {
		respondPromptError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPromptDTO(*prompt))
}

// DeletePrompt removes a prompt with its joins and history.
func (h *PromptHandler) DeletePrompt(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	promptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.promptService.DeletePrompt(promptID, userID); err != nil {
		respondPromptError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListHistory returns a prompt's change history, newest first.
func (h *PromptHandler) ListHistory(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	promptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	history, err := h.promptService.ListHistory(promptID, userID)
	if err != nil {
		respondPromptError(c, err)
		return
	}

	historyDTOs := make([]dto.HistoryDTO, len(history))
	for i, row := range history {
		historyDTOs[i] = dto.ToPromptHistoryDTO(row)
	}

	c.JSON(http.StatusOK, gin.H{"history": historyDTOs})
}

// RunPrompt executes the stored prompt against the configured model.
func (h *PromptHandler) RunPrompt(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	promptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type RunPromptRequest struct {
		Input string `json:"input"`
	}

	// the body is optional
	var req RunPromptRequest
	_ = c.ShouldBindJSON(&req)

	output, err := h.promptService.RunPrompt(c.Request.Context(), promptID, userID, req.Input)
	if err != nil {
		respondPromptError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"output": output})
}

func respondPromptError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPromptNameRequired),
		errors.Is(err, services.ErrPromptBodyRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrPromptNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotOrganizationMember):
		apierrors.NotFound(c, "Prompt not found")
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
