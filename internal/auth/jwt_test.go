package auth

import (
	"testing"
	"time"

	"github.com/geocoder89/clinicdesk/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
)

func TestIssueParseRoundTrip(t *testing.T) {
	m := NewManager("test-secret-key", time.Hour)

	token, expiresAt, err := m.Issue(42, user.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if d := time.Until(expiresAt); d < 59*time.Minute || d > time.Hour {
		t.Fatalf("expected ~1h validity, got %v", d)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if claims.UserID != 42 || claims.Role != user.RoleAdmin {
		t.Fatalf("got claims {%d,%s}, want {42,admin}", claims.UserID, claims.Role)
	}
	if claims.Subject != "42" || claims.ID == "" {
		t.Fatalf("expected subject and jti to be set, got sub=%q jti=%q", claims.Subject, claims.ID)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	issuer := NewManager("test-secret-key", time.Hour, WithClock(func() time.Time { return issuedAt }))

	token, _, err := issuer.Issue(1, user.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	verifier := NewManager("test-secret-key", time.Hour)
	if _, err := verifier.Parse(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestParseAcceptsTokenJustBeforeExpiry(t *testing.T) {
	issuedAt := time.Now().Add(-59 * time.Minute)
	issuer := NewManager("test-secret-key", time.Hour, WithClock(func() time.Time { return issuedAt }))

	token, _, err := issuer.Issue(7, user.RoleAssistante)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := NewManager("test-secret-key", time.Hour).Parse(token)
	if err != nil {
		t.Fatalf("expected token within its hour to verify, got %v", err)
	}
	if claims.UserID != 7 || claims.Role != user.RoleAssistante {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := NewManager("secret-a", time.Hour).Issue(1, user.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := NewManager("secret-b", time.Hour).Parse(token); err == nil {
		t.Fatalf("expected signature mismatch to be rejected")
	}
}

func TestParseRejectsUnknownRoleClaim(t *testing.T) {
	secret := "test-secret-key"
	now := time.Now()

	claims := Claims{
		UserID: 3,
		Role:   user.Role("owner"),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	if _, err := NewManager(secret, time.Hour).Parse(token); err == nil {
		t.Fatalf("expected token with unknown role to be rejected")
	}
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	now := time.Now()
	claims := Claims{
		UserID: 1,
		Role:   user.RoleSuperadmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	if _, err := NewManager("test-secret-key", time.Hour).Parse(token); err == nil {
		t.Fatalf("expected alg=none token to be rejected")
	}
}

func TestDefaultTTLIsOneHour(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	for _, ttl := range []time.Duration{DefaultTTL, 0} {
		m := NewManager("test-secret-key", ttl, WithClock(func() time.Time { return now }))

		_, expiresAt, err := m.Issue(1, user.RoleAdmin)
		if err != nil {
			t.Fatalf("Issue error: %v", err)
		}
		if !expiresAt.Equal(now.Add(time.Hour)) {
			t.Fatalf("ttl %v: got expiry %v, want %v", ttl, expiresAt, now.Add(time.Hour))
		}
	}
}
