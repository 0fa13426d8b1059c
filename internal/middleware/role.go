package middleware

import (
	"net/http"

	"libportal/internal/domain"
	"libportal/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireRole must run after JWTAuth.
func RequireRole(required domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role == "" {
			response.Abort(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		if domain.Role(role) != required {
			response.Abort(c, http.StatusForbidden, "Acceso denegado")
			return
		}

		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}
