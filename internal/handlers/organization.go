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
)

// OrganizationHandler coordinates organization HTTP handlers.
type OrganizationHandler struct {
	orgService *services.OrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

// CreateOrganization creates an organization. The creator becomes an ADMIN
// member and the default team is created alongside.
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateOrgRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.orgService.CreateOrganization(services.CreateOrganizationInput{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   userID,
	})
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrganizationDTO(*org))
}

// ListOrganizations returns the organizations the user belongs to, with
// their role in each.
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	memberships, err := h.orgService.ListOrganizationsForUser(userID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	orgs := make([]dto.OrganizationWithRoleDTO, len(memberships))
	for i, m := range memberships {
		orgs[i] = dto.ToOrganizationWithRoleDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}

// GetOrganization returns organization details with its member list. The
// organization and the caller's membership come from the access middleware.
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	orgInterface, _ := c.Get("organization")
	org := orgInterface.(models.Organization)

	memberInterface, _ := c.Get("organization_member")
	member := memberInterface.(models.OrganizationMember)

	_, members, err := h.orgService.GetOrganizationWithMembers(org.ID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	memberDTOs := make([]dto.OrganizationMemberDTO, len(members))
	for i, m := range members {
		memberDTOs[i] = dto.ToOrganizationMemberDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"organization": dto.ToOrganizationDTO(org),
		"members":      memberDTOs,
		"your_role":    member.Role,
	})
}

// UpdateOrganization updates an organization's mutable fields.
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	orgInterface, _ := c.Get("organization")
	org := orgInterface.(models.Organization)

	type UpdateOrgRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"is_active"`
	}

	var req UpdateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.orgService.UpdateOrganization(org.ID, services.UpdateOrganizationInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*updated))
}

// DeleteOrganization removes an organization and everything under it.
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	orgInterface, _ := c.Get("organization")
	org := orgInterface.(models.Organization)

	if err := h.orgService.DeleteOrganization(org.ID); err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddMember adds an existing user to the organization by email. The new
// member is auto-enrolled in the default team.
func (h *OrganizationHandler) AddMember(c *gin.Context) {
	orgInterface, _ := c.Get("organization")
	org := orgInterface.(models.Organization)

	type AddMemberRequest struct {
		Email string                  `json:"email" binding:"required,email"`
		Role  models.OrganizationRole `json:"role"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.orgService.AddMember(services.AddMemberInput{
		OrganizationID: org.ID,
		Email:          req.Email,
		Role:           req.Role,
	})
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationMemberDTO(*member))
}

// ListMembers returns all members of the organization.
func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	orgInterface, _ := c.Get("organization")
	org := orgInterface.(models.Organization)

	members, err := h.orgService.ListMembers(org.ID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	memberDTOs := make([]dto.OrganizationMemberDTO, len(members))
	for i, m := range members {
		memberDTOs[i] = dto.ToOrganizationMemberDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{"members": memberDTOs})
}

func respondOrganizationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidOrganizationName):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAlreadyOrganizationMember):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrOrganizationNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrOrganizationMemberNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotOrganizationMember):
		apierrors.NotFound(c, "Organization not found")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}

// parseIDParam parses a uuid path parameter shared by the resource handlers.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
