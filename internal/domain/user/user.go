package user

import (
	"errors"
	"strings"
)

// DefaultSuperadminEmail is the reserved address of the seeded privileged account.
const DefaultSuperadminEmail = "superadmin@gmail.com"

type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleAssistante Role = "assistante"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrInvalidRole    = errors.New("invalid role")
	ErrProtected      = errors.New("superadmin account is protected")
	ErrMissingFields  = errors.New("missing required fields")
)

func (r Role) IsValid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleAssistante:
		return true
	default:
		return false
	}
}

// Registrable reports whether accounts with this role can be created through registration.
func (r Role) Registrable() bool {
	return r == RoleAdmin || r == RoleAssistante
}

func ParseRole(raw string) (Role, error) {
	r := Role(strings.TrimSpace(raw))
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // never expose hash in JSON
	Role         Role   `json:"role"`
}

// Session is the sanitized view returned after a successful login.
type Session struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) Session() Session {
	return Session{ID: u.ID, Email: u.Email, Role: u.Role}
}

// IsReserved reports whether u is the protected superadmin row.
// Both checks are needed: either alone misses a row whose email or role was edited directly in the DB.
func (u User) IsReserved(reservedEmail string) bool {
	return u.Email == reservedEmail || u.Role == RoleSuperadmin
}

type CreateInput struct {
	Name     string
	Phone    string
	Email    string
	Password string
	Role     Role
}

// UpdateInput carries a full profile update. Nil Password/Role leave those columns untouched.
type UpdateInput struct {
	Name     string
	Phone    string
	Email    string
	Password *string
	Role     *Role
}

// UpdateFields is what a repository persists for an update, with the password already hashed.
type UpdateFields struct {
	Name         string
	Phone        string
	Email        string
	PasswordHash *string
	Role         *Role
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required,phone"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required,phone"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password"`
	Role     string `json:"role"`
}
