package util

import (
	"github.com/gin-gonic/gin"
	"github.com/greenprint-app/greenprint-backend/internal/models"
)

// Context keys set by the authentication middleware.
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "user_id"
)

// GetUserFromContext returns the authenticated user placed in the context
// by the auth middleware. A missing or malformed entry responds with the
// standard unauthorized envelope and returns false; handlers just return.
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		RespondUnauthorized(c)
		return nil, false
	}
	user, ok := value.(*models.User)
	if !ok {
		RespondInternalError(c, "invalid user in request context")
		return nil, false
	}
	return user, true
}

// GetUserIDFromContext returns just the authenticated user's id, for
// handlers that never need the full row.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		RespondUnauthorized(c)
		return "", false
	}
	id, ok := value.(string)
	if !ok {
		RespondInternalError(c, "invalid user id in request context")
		return "", false
	}
	return id, true
}
