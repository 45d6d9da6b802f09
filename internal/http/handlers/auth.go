package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/clinicdesk/internal/auth"
	"github.com/geocoder89/clinicdesk/internal/domain/user"
	"github.com/geocoder89/clinicdesk/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string, role user.Role) (auth.LoginResult, error)
}

type AuthHandler struct {
	auth Authenticator
}

func NewAuthHandler(a Authenticator) *AuthHandler {
	return &AuthHandler{auth: a}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

const invalidCredentialsMessage = "Invalid email, password, or role"

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req, "Email, password, and role are required") {
		return
	}

	// an unknown role gets the same answer as a wrong password
	role, err := user.ParseRole(req.Role)
	if err != nil {
		RespondError(ctx, http.StatusUnauthorized, "INVALID_CREDENTIALS", invalidCredentialsMessage, nil)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	res, err := h.auth.Login(cctx, req.Email, req.Password, role)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			RespondError(ctx, http.StatusUnauthorized, "INVALID_CREDENTIALS", invalidCredentialsMessage, nil)
			return
		}
		RespondInternal(ctx, "Internal server error", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Login successful",
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"user":      res.User,
	})
}

// Me echoes the identity carried by the bearer token.
func (h *AuthHandler) Me(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)
	role, _ := middlewares.RoleFromContext(ctx)

	if !ok {
		RespondError(ctx, http.StatusUnauthorized, "UNAUTHORIZED", "No token provided", nil)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":   id,
			"role": role,
		},
	})
}
