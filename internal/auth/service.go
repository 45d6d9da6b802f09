package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/clinicdesk/internal/domain/user"
)

var (
	// ErrInvalidCredentials is returned for an unknown email, a wrong password and a role mismatch alike.
	ErrInvalidCredentials = errors.New("invalid email, password, or role")
	ErrUnauthorized       = errors.New("no token provided")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type CredentialFinder interface {
	FindByEmailAndRole(ctx context.Context, email string, role user.Role) (user.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

type LoginRecorder interface {
	ObserveLogin(result string)
}

type Service struct {
	users     CredentialFinder
	passwords PasswordHasher
	tokens    *Manager
	log       *slog.Logger
	metrics   LoginRecorder

	decoyOnce sync.Once
	decoyHash string
}

func NewService(users CredentialFinder, passwords PasswordHasher, tokens *Manager, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		log:       log,
	}
}

func (s *Service) WithMetrics(m LoginRecorder) *Service {
	s.metrics = m
	return s
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      user.Session
}

func (s *Service) Login(ctx context.Context, email, password string, role user.Role) (LoginResult, error) {
	// Same normalization as credentials.Store: surrounding whitespace only, case kept.
	email = strings.TrimSpace(email)

	found, err := s.users.FindByEmailAndRole(ctx, email, role)

	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			s.observe("error")
			return LoginResult{}, fmt.Errorf("lookup credentials: %w", err)
		}

		// spend the same hashing time as a real comparison
		s.compareDecoy(password)
		s.observe("rejected")
		return LoginResult{}, ErrInvalidCredentials
	}

	if err := s.passwords.Compare(found.PasswordHash, password); err != nil {
		s.log.InfoContext(ctx, "login rejected", "user_id", found.ID, "role", found.Role)
		s.observe("rejected")
		return LoginResult{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(found.ID, found.Role)

	if err != nil {
		s.observe("error")
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	s.observe("ok")

	return LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      found.Session(),
	}, nil
}

// Verify validates a raw bearer token and returns its claims.
func (s *Service) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)

	if raw == "" {
		return nil, ErrUnauthorized
	}

	claims, err := s.tokens.Parse(raw)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return claims, nil
}

func (s *Service) compareDecoy(password string) {
	s.decoyOnce.Do(func() {
		hash, err := s.passwords.Hash("decoy-password")
		if err == nil {
			s.decoyHash = hash
		}
	})

	if s.decoyHash != "" {
		_ = s.passwords.Compare(s.decoyHash, password)
	}
}

func (s *Service) observe(result string) {
	if s.metrics != nil {
		s.metrics.ObserveLogin(result)
	}
}
