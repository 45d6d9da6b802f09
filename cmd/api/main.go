package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/clinicdesk/internal/auth"
	"github.com/geocoder89/clinicdesk/internal/cache"
	"github.com/geocoder89/clinicdesk/internal/config"
	"github.com/geocoder89/clinicdesk/internal/credentials"
	"github.com/geocoder89/clinicdesk/internal/db"
	httpx "github.com/geocoder89/clinicdesk/internal/http"
	"github.com/geocoder89/clinicdesk/internal/http/handlers"
	"github.com/geocoder89/clinicdesk/internal/ledger"
	"github.com/geocoder89/clinicdesk/internal/observability"
	"github.com/geocoder89/clinicdesk/internal/repo/memory"
	"github.com/geocoder89/clinicdesk/internal/repo/postgres"
	"github.com/geocoder89/clinicdesk/internal/security"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	startCtx, cancelStart := config.WithTimeout(15 * time.Second)
	defer cancelStart()

	shutdownTracer, err := observability.InitTracer(startCtx, observability.TracerConfig{
		Enabled:     cfg.OtelEnabled,
		Endpoint:    cfg.OtelEndpoint,
		Environment: cfg.Env,
	})
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	prom := observability.NewProm(observability.NewRegistry())

	var (
		usersRepo credentials.Repository
		apptsRepo ledger.Repository
		checks    []handlers.ReadinessCheck
	)

	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("using in-memory store; data is lost on restart")
		usersRepo = memory.NewUsersRepo()
		apptsRepo = memory.NewAppointmentsRepo()

	default:
		pool, err := db.NewPool(startCtx, cfg.DBURL, cfg.DBMaxConns)
		if err != nil {
			log.Error("database connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := db.ApplySchema(startCtx, pool); err != nil {
			log.Error("schema bootstrap failed", "err", err)
			os.Exit(1)
		}

		usersRepo = postgres.NewUsersRepo(pool, prom)
		apptsRepo = postgres.NewAppointmentsRepo(pool, prom)
		checks = append(checks, handlers.ReadinessCheck{Name: "postgres", Ping: pool.Ping})
	}

	var listCache cache.Store
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		defer rc.Close()

		if err := rc.Ping(startCtx); err != nil {
			log.Warn("redis not reachable at startup", "addr", cfg.RedisAddr, "err", err)
		}

		listCache = rc
		checks = append(checks, handlers.ReadinessCheck{Name: "redis", Ping: rc.Ping})
	} else {
		listCache = cache.New(cfg.CacheTTL)
	}

	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	store := credentials.New(usersRepo, hasher, cfg.Superadmin.Email, log)

	created, err := store.EnsureSuperadmin(startCtx, credentials.Seed{
		Email:    cfg.Superadmin.Email,
		Password: cfg.Superadmin.Password,
		Name:     cfg.Superadmin.Name,
		Phone:    cfg.Superadmin.Phone,
	})
	if err != nil {
		log.Error("superadmin seed failed", "err", err)
		os.Exit(1)
	}
	if created {
		log.Info("superadmin created", "email", cfg.Superadmin.Email)
	} else {
		log.Info("superadmin already exists")
	}

	tokens := auth.NewManager(cfg.JWTSecret, auth.DefaultTTL)
	authSvc := auth.NewService(store, hasher, tokens, log).WithMetrics(prom)

	appointments := ledger.New(apptsRepo, log,
		ledger.WithCache(listCache),
		ledger.WithMetrics(prom),
	)

	router := httpx.NewRouter(httpx.Deps{
		Log:             log,
		Config:          cfg,
		Prom:            prom,
		Auth:            authSvc,
		Users:           store,
		Ledger:          appointments,
		ReadinessChecks: checks,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
