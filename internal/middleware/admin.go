package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/greenprint-app/greenprint-backend/internal/util"
)

// RequireAdmin aborts with 403 unless the authenticated user is an admin.
// Must run after the auth middleware has set the user in the context.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := util.GetUserFromContext(c)
		if !ok {
			c.Abort()
			return
		}
		if !user.IsAdmin {
			util.RespondForbidden(c, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
