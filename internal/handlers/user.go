package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/constants"
	"github.com/promptbox/promptbox/internal/dto"
	apierrors "github.com/promptbox/promptbox/internal/errors"
	"github.com/promptbox/promptbox/internal/middleware"
	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/services"
	"github.com/promptbox/promptbox/internal/utils"
)

// UserHandler coordinates user administration HTTP handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers returns users sharing an organization with the caller, sorted by
// name, with their active team memberships embedded.
func (h *UserHandler) ListUsers(c *gin.Context) {
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

	pagination := utils.GetPaginationParams(c)

	users, total, err := h.userService.ListUsers(services.ListUsersInput{
		ActorID:        userID,
		OrganizationID: organizationID,
		Page:           pagination.Page,
		PageSize:       pagination.Limit,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	userDTOs := make([]dto.UserWithTeamsDTO, len(users))
	for i, user := range users {
		userDTOs[i] = dto.ToUserWithTeamsDTO(user)
	}

	totalPages := int((total + int64(pagination.Limit) - 1) / int64(pagination.Limit))
	c.JSON(http.StatusOK, dto.UserListResponse{
		Users:      userDTOs,
		Page:       pagination.Page,
		PageSize:   pagination.Limit,
		TotalCount: total,
		TotalPages: totalPages,
	})
}

// GetUser returns a user visible to the caller.
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(targetID, userID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// CreateUser creates a user inside an organization the caller administers.
func (h *UserHandler) CreateUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateUserRequest struct {
		Name           string                  `json:"name" binding:"required,max=255"`
		Email          string                  `json:"email" binding:"required,email"`
		Password       string                  `json:"password" binding:"required"`
		OrganizationID uuid.UUID               `json:"organization_id" binding:"required"`
		Role           models.OrganizationRole `json:"role"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.CreateUser(services.CreateUserInput{
		ActorID:          userID,
		Name:             req.Name,
		Email:            req.Email,
		Password:         req.Password,
		OrganizationID:   req.OrganizationID,
		OrganizationRole: req.Role,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// UpdateUser updates another user; admin only.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		Name           *string    `json:"name"`
		Email          *string    `json:"email"`
		OrganizationID *uuid.UUID `json:"organization_id"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateUser(services.UpdateUserInput{
		ActorID:        userID,
		TargetID:       targetID,
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Email:          req.Email,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser soft-deletes a user; admin only. Team memberships stay intact.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
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

	if err := h.userService.DeactivateUser(userID, targetID, organizationID); err != nil {
		respondUserError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AssignTeam adds the target user to a team; admin only.
func (h *UserHandler) AssignTeam(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type AssignTeamRequest struct {
		TeamID uuid.UUID `json:"team_id" binding:"required"`
	}

	var req AssignTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.userService.AssignTeam(userID, targetID, req.TeamID); err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Team assigned"})
}

// RemoveTeam soft-removes the target user from a team; admin only. The last
// active team in an organization cannot be removed.
func (h *UserHandler) RemoveTeam(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type RemoveTeamRequest struct {
		TeamID uuid.UUID `json:"team_id" binding:"required"`
	}

	var req RemoveTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.userService.RemoveTeam(userID, targetID, req.TeamID); err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Team removed"})
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrLastActiveTeam):
		apierrors.BusinessRuleViolation(c, "User must be assigned to at least one team")
	case errors.Is(err, services.ErrNotAdmin):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrUserNotInOrg):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrNotActiveTeamMember):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotOrganizationMember):
		apierrors.NotFound(c, "User not found")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
