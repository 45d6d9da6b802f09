package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost keeps a single verification in the tens of milliseconds.
const DefaultCost = 10

var ErrPasswordMismatch = errors.New("password does not match")

// Hash password hashes a plain text password with bcrypt at the given cost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// helper that compares a bcrypt hash with a plaintext password.
func CheckPassword(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))

	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}

	return err
}

// BcryptHasher binds a cost factor so services can depend on a small interface.
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) BcryptHasher {
	return BcryptHasher{Cost: cost}
}

func (h BcryptHasher) Hash(plain string) (string, error) {
	return HashPassword(plain, h.Cost)
}

func (h BcryptHasher) Compare(hash, plain string) error {
	return CheckPassword(hash, plain)
}
