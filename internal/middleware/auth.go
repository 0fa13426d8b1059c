package middleware

import (
	"net/http"
	"strings"

	"libportal/internal/pkg/jwt"
	"libportal/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	CtxDNI  = "dni"
	CtxRole = "role"
)

// JWTAuth accepts "Authorization: Bearer <token>" signed by svc and puts the
// subject DNI and role on the context.
func JWTAuth(svc *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Abort(c, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if !strings.HasPrefix(h, "Bearer ") {
			response.Abort(c, http.StatusUnauthorized, "Invalid authorization header")
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" {
			response.Abort(c, http.StatusUnauthorized, "Empty token")
			return
		}

		claims, err := svc.ValidateToken(tokenStr)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		c.Set(CtxDNI, claims.Subject)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}
