package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/geocoder89/clinicdesk/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	Create(ctx context.Context, in user.CreateInput) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, id int64, in user.UpdateInput) error
	Delete(ctx context.Context, id int64) error
}

type UsersHandler struct {
	users UserService
}

func NewUsersHandler(users UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *UsersHandler) Create(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req, "Missing required fields") {
		return
	}

	role, err := user.ParseRole(req.Role)
	if err != nil || !role.Registrable() {
		RespondBadRequest(ctx, "INVALID_ROLE", "Role must be admin or assistante", nil)
		return
	}

	created, err := h.users.Create(ctx.Request.Context(), user.CreateInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})

	if err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateEmail):
			RespondConflict(ctx, "DUPLICATE_EMAIL", "Email already exists")
		case errors.Is(err, user.ErrInvalidRole):
			RespondBadRequest(ctx, "INVALID_ROLE", "Role must be admin or assistante", nil)
		case errors.Is(err, user.ErrMissingFields):
			RespondBadRequest(ctx, "MISSING_FIELDS", "Missing required fields", nil)
		default:
			RespondInternal(ctx, "Internal server error", err)
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully",
		"userId":  created.ID,
		"user": gin.H{
			"name":  created.Name,
			"phone": created.Phone,
			"email": created.Email,
			"role":  created.Role,
		},
	})
}

func (h *UsersHandler) List(ctx *gin.Context) {
	users, err := h.users.List(ctx.Request.Context())

	if err != nil {
		RespondInternal(ctx, "Failed to fetch users", err)
		return
	}

	RespondWithETag(ctx, gin.H{
		"success": true,
		"users":   users,
	})
}

func (h *UsersHandler) Update(ctx *gin.Context) {
	// a malformed id cannot name an existing user
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		RespondNotFound(ctx, "USER_NOT_FOUND", "User not found")
		return
	}

	var req user.UpdateUserRequest

	if !BindJSON(ctx, &req, "Missing required fields (name, phone, email)") {
		return
	}

	in := user.UpdateInput{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	}

	if req.Role != "" {
		role, err := user.ParseRole(req.Role)
		if err != nil {
			RespondBadRequest(ctx, "INVALID_ROLE", "Role must be admin, assistante, or superadmin", nil)
			return
		}
		in.Role = &role
	}

	if req.Password != "" {
		pw := req.Password
		in.Password = &pw
	}

	err := h.users.Update(ctx.Request.Context(), id, in)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "USER_NOT_FOUND", "User not found")
		case errors.Is(err, user.ErrDuplicateEmail):
			RespondConflict(ctx, "DUPLICATE_EMAIL", "Email already exists")
		case errors.Is(err, user.ErrInvalidRole):
			RespondBadRequest(ctx, "INVALID_ROLE", "Role must be admin, assistante, or superadmin", nil)
		case errors.Is(err, user.ErrMissingFields):
			RespondBadRequest(ctx, "MISSING_FIELDS", "Missing required fields (name, phone, email)", nil)
		case errors.Is(err, user.ErrProtected):
			RespondForbidden(ctx, "Superadmin role and email cannot be changed")
		default:
			RespondInternal(ctx, "Failed to update user", err)
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User updated successfully",
		"userId":  id,
	})
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		RespondBadRequest(ctx, "INVALID_ID", "Invalid user ID", nil)
		return
	}

	err := h.users.Delete(ctx.Request.Context(), id)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "USER_NOT_FOUND", "User not found")
		case errors.Is(err, user.ErrProtected):
			RespondForbidden(ctx, "Cannot delete superadmin user")
		default:
			RespondInternal(ctx, "Failed to delete user", err)
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "User deleted successfully",
		"deletedId": id,
	})
}
