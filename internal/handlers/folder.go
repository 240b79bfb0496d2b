package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/promptbox/promptbox/internal/errors"
	"github.com/promptbox/promptbox/internal/middleware"
	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/services"
)

// FolderHandler coordinates folder HTTP handlers.
type FolderHandler struct {
	folderService *services.FolderService
}

// NewFolderHandler creates a new FolderHandler.
func NewFolderHandler(folderService *services.FolderService) *FolderHandler {
	return &FolderHandler{folderService: folderService}
}

// ListFolders returns folders in the caller's organizations.
func (h *FolderHandler) ListFolders(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var organizationID *uuid.UUID
	if raw := c.Query("organization_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid organization_id")
			return
		}
		organizationID = &id
	}

	folders, err := h.folderService.ListFolders(userID, organizationID)
	if err != nil {
		respondFolderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"folders": folders})
}

// GetFolder returns a single folder.
func (h *FolderHandler) GetFolder(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	folderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	folder, err := h.folderService.GetFolder(folderID, userID)
	if err != nil {
		respondFolderError(c, err)
		return
	}

	c.JSON(http.StatusOK, folder)
}

// CreateFolder creates a folder in one of the caller's organizations.
func (h *FolderHandler) CreateFolder(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateFolderRequest struct {
		OrganizationID uuid.UUID         `json:"organization_id" binding:"required"`
		Name           string            `json:"name" binding:"required"`
		FolderType     models.FolderType `json:"folder_type"`
		ParentID       *uuid.UUID        `json:"parent_id"`
		TeamID         *uuid.UUID        `json:"team_id"`
	}

	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	folder, err := h.folderService.CreateFolder(services.CreateFolderInput{
		ActorID:        userID,
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		FolderType:     req.FolderType,
		ParentID:       req.ParentID,
		TeamID:         req.TeamID,
	})
	if err != nil {
		respondFolderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, folder)
}

// UpdateFolder updates a folder's name and parent.
func (h *FolderHandler) UpdateFolder(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	folderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateFolderRequest struct {
		Name        *string    `json:"name"`
		ParentID    *uuid.UUID `json:"parent_id"`
		ClearParent bool       `json:"clear_parent"`
	}

	var req UpdateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	folder, err := h.folderService.UpdateFolder(folderID, userID, req.Name, req.ParentID, req.ClearParent)
	if err != nil {
		respondFolderError(c, err)
		return
	}

	c.JSON(http.StatusOK, folder)
}

// DeleteFolder removes a folder; its contents fall back to the root.
func (h *FolderHandler) DeleteFolder(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	folderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.folderService.DeleteFolder(folderID, userID); err != nil {
		respondFolderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondFolderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrFolderNameRequired),
		errors.Is(err, services.ErrFolderOwnParent):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrFolderNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotOrganizationMember):
		apierrors.NotFound(c, "Folder not found")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
