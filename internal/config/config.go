package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/clinicdesk/internal/domain/user"
	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Env   string
	Port  int
	DBURL string
	Store string

	DBMaxConns int

	JWTSecret string

	BcryptCost int

	Superadmin SuperadminSeed

	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	LoginRateLimit  int
	LoginRateWindow time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	OtelEnabled  bool
	OtelEndpoint string

	// ProtectRoutes puts the staff CRUD routes behind the token guard.
	ProtectRoutes bool
}

type SuperadminSeed struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// DevJWTSecret signs tokens when JWT_SECRET is unset. Validate rejects it in prod.
const DevJWTSecret = "dev-secret-change-me"

var ErrDefaultJWTSecret = errors.New("JWT_SECRET must be set when APP_ENV=prod")

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

// Validate reports settings that must not reach production.
func (c Config) Validate() error {
	if c.IsProd() && (c.JWTSecret == "" || c.JWTSecret == DevJWTSecret) {
		return ErrDefaultJWTSecret
	}
	return nil
}

// Load reads a .env file when present and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "err", err)
	}

	return FromEnv()
}

func FromEnv() Config {
	store := strings.ToLower(getEnv("STORE", StorePostgres))
	if store != StoreMemory {
		store = StorePostgres
	}

	return Config{
		Env:        getEnv("APP_ENV", "dev"),
		Port:       getEnvInt("PORT", 8080),
		DBURL:      buildDBURL(),
		Store:      store,
		DBMaxConns: getEnvInt("DB_MAX_CONNS", 10),

		JWTSecret: getEnv("JWT_SECRET", DevJWTSecret),

		BcryptCost: getEnvInt("BCRYPT_COST", 10),

		Superadmin: SuperadminSeed{
			Email:    getEnv("SUPERADMIN_EMAIL", user.DefaultSuperadminEmail),
			Password: getEnv("SUPERADMIN_PASSWORD", "pakosof10"),
			Name:     getEnv("SUPERADMIN_NAME", "Super Admin"),
			Phone:    getEnv("SUPERADMIN_PHONE", "0000000000"),
		},

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),

		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow: time.Duration(getEnvInt("LOGIN_RATE_WINDOW_SECONDS", 60)) * time.Second,

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_SECONDS", 30)) * time.Second,

		OtelEnabled:  getEnvBool("OTEL_ENABLED", false),
		OtelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		ProtectRoutes: getEnvBool("API_PROTECT_ROUTES", false),
	}
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "clinicdesk")
	pass := getEnv("DB_PASSWORD", "clinicdesk")
	name := getEnv("DB_NAME", "clinicdesk")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer in env, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean in env, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}
		return b
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return fallback
	}
	return out
}
