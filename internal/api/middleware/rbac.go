package middleware

import (
	"net/http"

	"github.com/bakchoddost/bakchoddost/internal/auth"
	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/bakchoddost/bakchoddost/internal/rbac"
	"github.com/gin-gonic/gin"
)

// RequireAdmin ensures the authenticated user holds the admin role.
// It must run after the authentication middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get(auth.UserContextKey)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		isAdmin, err := rbac.IsAdmin(user.(*models.User).ID)
		if err != nil || !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
