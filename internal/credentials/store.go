// Package credentials owns staff accounts: registration, profile updates,
// deletion and the seeded superadmin row.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geocoder89/clinicdesk/internal/domain/user"
)

type Repository interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByEmailAndRole(ctx context.Context, email string, role user.Role) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, id int64, f user.UpdateFields) error
	Delete(ctx context.Context, id int64) error
}

type Hasher interface {
	Hash(plain string) (string, error)
}

type Store struct {
	repo          Repository
	hasher        Hasher
	reservedEmail string
	log           *slog.Logger
}

func New(repo Repository, hasher Hasher, reservedEmail string, log *slog.Logger) *Store {
	if reservedEmail == "" {
		reservedEmail = user.DefaultSuperadminEmail
	}
	if log == nil {
		log = slog.Default()
	}

	return &Store{
		repo:          repo,
		hasher:        hasher,
		reservedEmail: reservedEmail,
		log:           log,
	}
}

func (s *Store) ReservedEmail() string {
	return s.reservedEmail
}

// Create registers an admin or assistante account. Superadmin accounts only come from EnsureSuperadmin.
func (s *Store) Create(ctx context.Context, in user.CreateInput) (user.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)

	if in.Name == "" || in.Phone == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return user.User{}, user.ErrMissingFields
	}

	if !in.Role.Registrable() {
		return user.User{}, user.ErrInvalidRole
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, user.User{
		Name:         in.Name,
		Phone:        in.Phone,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	})

	if err != nil {
		return user.User{}, err
	}

	s.log.InfoContext(ctx, "user created", "user_id", created.ID, "role", created.Role)

	return created, nil
}

// FindByEmailAndRole is the lookup used by login; the returned row carries the password hash.
func (s *Store) FindByEmailAndRole(ctx context.Context, email string, role user.Role) (user.User, error) {
	return s.repo.GetByEmailAndRole(ctx, email, role)
}

func (s *Store) List(ctx context.Context) ([]user.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		users[i].PasswordHash = ""
	}

	return users, nil
}

func (s *Store) Update(ctx context.Context, id int64, in user.UpdateInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)

	if in.Name == "" || in.Phone == "" || in.Email == "" {
		return user.ErrMissingFields
	}

	if in.Role != nil && !in.Role.IsValid() {
		return user.ErrInvalidRole
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if existing.IsReserved(s.reservedEmail) {
		if in.Role != nil && *in.Role != user.RoleSuperadmin {
			return user.ErrProtected
		}
		if in.Email != existing.Email {
			return user.ErrProtected
		}
	} else if in.Role != nil && *in.Role == user.RoleSuperadmin {
		return user.ErrProtected
	}

	fields := user.UpdateFields{
		Name:  in.Name,
		Phone: in.Phone,
		Email: in.Email,
		Role:  in.Role,
	}

	if in.Password != nil && *in.Password != "" {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		fields.PasswordHash = &hash
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "user updated", "user_id", id, "password_changed", fields.PasswordHash != nil)

	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if existing.IsReserved(s.reservedEmail) {
		s.log.WarnContext(ctx, "refused to delete protected account", "user_id", id)
		return user.ErrProtected
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "user deleted", "user_id", id)

	return nil
}

type Seed struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// EnsureSuperadmin creates the reserved account when no row with its email exists.
// An existing row is never touched.
func (s *Store) EnsureSuperadmin(ctx context.Context, seed Seed) (created bool, err error) {
	email := strings.TrimSpace(seed.Email)
	if email == "" {
		email = s.reservedEmail
	}

	if seed.Password == "" {
		return false, errors.New("superadmin seed password is empty")
	}

	_, err = s.repo.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return false, fmt.Errorf("lookup superadmin: %w", err)
	}

	hash, err := s.hasher.Hash(seed.Password)
	if err != nil {
		return false, fmt.Errorf("hash superadmin password: %w", err)
	}

	u, err := s.repo.Create(ctx, user.User{
		Name:         seed.Name,
		Phone:        seed.Phone,
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleSuperadmin,
	})

	switch {
	case errors.Is(err, user.ErrDuplicateEmail):
		// another instance seeded it first
		return false, nil
	case errors.Is(err, user.ErrProtected):
		s.log.WarnContext(ctx, "a superadmin with a different email already exists", "email", email)
		return false, nil
	case err != nil:
		return false, fmt.Errorf("create superadmin: %w", err)
	}

	s.log.InfoContext(ctx, "superadmin seeded", "user_id", u.ID)

	return true, nil
}
