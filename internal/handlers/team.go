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

// TeamHandler coordinates team HTTP handlers.
type TeamHandler struct {
	teamService *services.TeamService
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// ListTeams returns teams in the caller's organizations.
func (h *TeamHandler) ListTeams(c *gin.Context) {
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

	teams, total, err := h.teamService.ListTeams(services.ListTeamsInput{
		ActorID:        userID,
		OrganizationID: organizationID,
		OrderBy:        c.Query("ordering"),
		Page:           pagination.Page,
		PageSize:       pagination.Limit,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	teamDTOs := make([]dto.TeamDTO, len(teams))
	for i, team := range teams {
		teamDTOs[i] = dto.ToTeamDTO(team)
	}

	c.JSON(http.StatusOK, gin.H{
		"teams": teamDTOs,
		"pagination": utils.PaginationResponse{
			Page:  pagination.Page,
			Limit: pagination.Limit,
			Total: total,
		},
	})
}

// CreateTeam creates a team inside one of the caller's organizations.
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTeamRequest struct {
		OrganizationID uuid.UUID  `json:"organization_id" binding:"required"`
		ParentID       *uuid.UUID `json:"parent_id"`
		Name           string     `json:"name" binding:"required"`
		Description    string     `json:"description"`
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	team, err := h.teamService.CreateTeam(services.CreateTeamInput{
		OrganizationID: req.OrganizationID,
		ParentID:       req.ParentID,
		Name:           req.Name,
		Description:    req.Description,
		ActorID:        userID,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamDTO(*team))
}

// GetTeam returns a single team the caller can see.
func (h *TeamHandler) GetTeam(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	team, err := h.teamService.GetTeam(teamID, userID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*team))
}

// UpdateTeam updates a team's mutable fields.
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateTeamRequest struct {
		Name        *string    `json:"name"`
		Description *string    `json:"description"`
		ParentID    *uuid.UUID `json:"parent_id"`
		IsActive    *bool      `json:"is_active"`
	}

	var req UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	team, err := h.teamService.UpdateTeam(teamID, userID, services.UpdateTeamInput{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*team))
}

// DeleteTeam removes a team and its membership rows.
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.teamService.DeleteTeam(teamID, userID); err != nil {
		respondTeamError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMembers returns the membership rows of a team.
func (h *TeamHandler) ListMembers(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	members, err := h.teamService.ListMembers(teamID, userID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	memberDTOs := make([]dto.TeamMemberDTO, len(members))
	for i, m := range members {
		memberDTOs[i] = dto.ToTeamMemberDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{"members": memberDTOs})
}

// AddMember adds an organization member to the team.
func (h *TeamHandler) AddMember(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type AddMemberRequest struct {
		UserID uuid.UUID       `json:"user_id" binding:"required"`
		Role   models.TeamRole `json:"role"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.teamService.AddMember(services.AddMemberToTeamInput{
		TeamID:  teamID,
		UserID:  req.UserID,
		Role:    req.Role,
		ActorID: userID,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamMemberDTO(*member))
}

// RemoveMember hard-deletes a membership row from the team.
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type RemoveMemberRequest struct {
		UserID uuid.UUID `json:"user_id" binding:"required"`
	}

	var req RemoveMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.teamService.RemoveMember(teamID, req.UserID, userID); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

func respondTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidTeamName),
		errors.Is(err, services.ErrAlreadyTeamMember),
		errors.Is(err, services.ErrUserNotInOrg):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrTeamMemberNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrOrganizationNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotOrganizationMember):
		apierrors.NotFound(c, "Team not found")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
