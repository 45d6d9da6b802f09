package middlewares

import (
	"net/http"

	"github.com/geocoder89/clinicdesk/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RequireRole must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(allowed ...user.Role) gin.HandlerFunc {
	set := make(map[user.Role]struct{}, len(allowed))
	for _, r := range allowed {
		set[r] = struct{}{}
	}

	message := "Insufficient role for this action"
	if len(allowed) == 1 && allowed[0] == user.RoleSuperadmin {
		message = "Only superadmin can perform this action"
	}

	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "No token provided")
			return
		}
		if _, ok := set[role]; !ok {
			abortWithError(c, http.StatusForbidden, "FORBIDDEN", message)
			return
		}
		c.Next()
	}
}
