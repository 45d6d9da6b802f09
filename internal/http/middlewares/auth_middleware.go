package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/geocoder89/clinicdesk/internal/actorctx"
	"github.com/geocoder89/clinicdesk/internal/auth"
	"github.com/geocoder89/clinicdesk/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	tokens TokenVerifier
}

func NewAuthMiddleware(tokens TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth answers 401 when no bearer token is sent and 403 when the token does not verify.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "No token provided")
			return
		}

		claims, err := m.tokens.Verify(raw)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthorized) {
				abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "No token provided")
				return
			}
			abortWithError(c, http.StatusForbidden, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)

		ctx := actorctx.With(c.Request.Context(), actorctx.Actor{UserID: claims.UserID, Role: claims.Role})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, raw, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// Optional helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func RoleFromContext(c *gin.Context) (user.Role, bool) {
	v, ok := c.Get(CtxRole)
	if !ok {
		return "", false
	}
	role, ok := v.(user.Role)
	return role, ok
}
