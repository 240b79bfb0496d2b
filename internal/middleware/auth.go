package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/constants"
	apierrors "github.com/promptbox/promptbox/internal/errors"
)

// RequireAuth checks if the user is authenticated via session. The session
// stores the user id as a string; it is parsed once here and placed in the
// request context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(constants.ContextKeyUserID)

		if raw == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		idStr, ok := raw.(string)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		userID, err := uuid.Parse(idStr)
		if err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return uuid.Nil, false
	}

	userID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	return userID, true
}
