package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/geocoder89/clinicdesk/internal/config"
	"github.com/geocoder89/clinicdesk/internal/credentials"
	"github.com/geocoder89/clinicdesk/internal/db"
	"github.com/geocoder89/clinicdesk/internal/observability"
	"github.com/geocoder89/clinicdesk/internal/repo/postgres"
	"github.com/geocoder89/clinicdesk/internal/security"
)

// migrate applies the schema and seeds the superadmin without starting the API.
func main() {
	cfg := config.Load()
	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.ApplySchema(ctx, pool); err != nil {
		log.Error("schema apply failed", "err", err)
		os.Exit(1)
	}
	log.Info("schema applied")

	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	store := credentials.New(postgres.NewUsersRepo(pool, nil), hasher, cfg.Superadmin.Email, log)

	created, err := store.EnsureSuperadmin(ctx, credentials.Seed{
		Email:    cfg.Superadmin.Email,
		Password: cfg.Superadmin.Password,
		Name:     cfg.Superadmin.Name,
		Phone:    cfg.Superadmin.Phone,
	})
	if err != nil {
		log.Error("superadmin seed failed", "err", err)
		os.Exit(1)
	}

	log.Info("migrate complete", "superadmin_created", created)
}
