package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/database"
	apierrors "github.com/promptbox/promptbox/internal/errors"
	"github.com/promptbox/promptbox/internal/models"
)

// RequireOrganizationAccess checks if the user is a member of the organization
func RequireOrganizationAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			apierrors.BadRequest(c, "Invalid organization ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var org models.Organization
		if err := database.GetDB().First(&org, "id = ?", orgID).Error; err != nil {
			apierrors.NotFound(c, "Organization not found")
			c.Abort()
			return
		}

		var member models.OrganizationMember
		err = database.GetDB().
			Where("organization_id = ? AND user_id = ?", orgID, userID).
			First(&member).Error
		if err != nil {
			// Return 404 instead of 403 to avoid leaking organization existence
			apierrors.NotFound(c, "Organization not found")
			c.Abort()
			return
		}

		c.Set("organization", org)
		c.Set("organization_member", member)
		c.Next()
	}
}

// RequireOrganizationAdmin checks if the user administers the organization.
// Must run after RequireOrganizationAccess.
func RequireOrganizationAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		memberInterface, exists := c.Get("organization_member")
		if !exists {
			apierrors.Forbidden(c, "Organization access required")
			c.Abort()
			return
		}

		member, ok := memberInterface.(models.OrganizationMember)
		if !ok {
			apierrors.InternalError(c, "Invalid organization member data")
			c.Abort()
			return
		}

		if member.Role != models.RoleAdmin {
			apierrors.Forbidden(c, "Only organization admins can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}
