package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/digital-menu/utils"
)

// Staff roles
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
	RoleChef  = "chef"
)

// RequireRoles lets the request through only when the authenticated role is
// one of roles. admin is always accepted. Must run after AuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := map[string]bool{RoleAdmin: true}
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			utils.RespondMessage(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}
		if r, _ := role.(string); !allowed[r] {
			utils.RespondMessage(c, http.StatusForbidden, "you don't have permission to access this resource")
			c.Abort()
			return
		}
		c.Next()
	}
}
