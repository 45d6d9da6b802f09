package config

import (
	"errors"
	"testing"

	"github.com/geocoder89/clinicdesk/internal/domain/user"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "STORE", "SUPERADMIN_EMAIL", "CORS_ALLOWED_ORIGINS", "API_PROTECT_ROUTES", "DATABASE_URL"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()

	if cfg.Env != "dev" || cfg.Port != 8080 {
		t.Fatalf("unexpected env/port: %q %d", cfg.Env, cfg.Port)
	}
	if cfg.Store != StorePostgres {
		t.Fatalf("expected postgres store by default, got %q", cfg.Store)
	}
	if cfg.Superadmin.Email != user.DefaultSuperadminEmail {
		t.Fatalf("unexpected superadmin email %q", cfg.Superadmin.Email)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.ProtectRoutes {
		t.Fatalf("routes must be open by default")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("STORE", "MEMORY")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("API_PROTECT_ROUTES", "true")
	t.Setenv("DATABASE_URL", "postgres://x@y/z")

	cfg := FromEnv()

	if !cfg.IsProd() || cfg.Port != 9090 {
		t.Fatalf("unexpected env/port: %q %d", cfg.Env, cfg.Port)
	}
	if cfg.Store != StoreMemory {
		t.Fatalf("expected memory store, got %q", cfg.Store)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.ProtectRoutes {
		t.Fatalf("expected protected routes")
	}
	if cfg.DBURL != "postgres://x@y/z" {
		t.Fatalf("DATABASE_URL should win, got %q", cfg.DBURL)
	}
}

func TestGetEnvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("PORT", "eighty")

	if got := getEnvInt("PORT", 8080); got != 8080 {
		t.Fatalf("got %d, want fallback 8080", got)
	}
}

func TestValidateRejectsDefaultSecretInProd(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		secret  string
		wantErr error
	}{
		{name: "prod with default secret", env: "prod", secret: DevJWTSecret, wantErr: ErrDefaultJWTSecret},
		{name: "prod with empty secret", env: "prod", secret: "", wantErr: ErrDefaultJWTSecret},
		{name: "prod with real secret", env: "prod", secret: "s3cr3t-from-vault"},
		{name: "dev with default secret", env: "dev", secret: DevJWTSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Env: tt.env, JWTSecret: tt.secret}
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromEnvUsesDevSecretWhenUnset(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_ENV", "prod")

	cfg := FromEnv()
	if cfg.JWTSecret != DevJWTSecret {
		t.Fatalf("got secret %q", cfg.JWTSecret)
	}
	if !errors.Is(cfg.Validate(), ErrDefaultJWTSecret) {
		t.Fatalf("prod config with the dev secret must not validate")
	}
}
