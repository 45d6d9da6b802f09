package http

import (
	"log/slog"

	"github.com/geocoder89/clinicdesk/internal/config"
	"github.com/geocoder89/clinicdesk/internal/domain/user"
	"github.com/geocoder89/clinicdesk/internal/http/handlers"
	"github.com/geocoder89/clinicdesk/internal/http/middlewares"
	"github.com/geocoder89/clinicdesk/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// AuthService logs staff in and verifies their bearer tokens.
type AuthService interface {
	handlers.Authenticator
	middlewares.TokenVerifier
}

type Deps struct {
	Log    *slog.Logger
	Config config.Config
	Prom   *observability.Prom

	Auth   AuthService
	Users  handlers.UserService
	Ledger handlers.AppointmentLedger

	ReadinessChecks []handlers.ReadinessCheck
}

func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config

	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()

	// middleware

	if cfg.OtelEnabled {
		r.Use(otelgin.Middleware(observability.ServiceName))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.Recovery(log, !cfg.IsProd()))
	r.Use(handlers.ExposeErrorDetails(!cfg.IsProd()))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
		r.GET("/metrics", gin.WrapH(d.Prom.Handler()))
	}

	// operational routes
	h := handlers.NewHealthHandler(d.ReadinessChecks...)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	r.NoRoute(handlers.EndpointNotFound)

	authMW := middlewares.NewAuthMiddleware(d.Auth)
	loginLimiter := middlewares.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)

	authHandler := handlers.NewAuthHandler(d.Auth)
	usersHandler := handlers.NewUsersHandler(d.Users)
	appointmentsHandler := handlers.NewAppointmentsHandler(d.Ledger)

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())

	api.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
	api.GET("/me", authMW.RequireAuth(), authHandler.Me)

	// booking stays public: patients book without an account
	api.POST("/appointments", appointmentsHandler.Create)

	users := api.Group("/users")
	staff := api.Group("/appointments")

	if cfg.ProtectRoutes {
		users.Use(authMW.RequireAuth(), authMW.RequireRole(user.RoleSuperadmin))
		staff.Use(authMW.RequireAuth(), authMW.RequireRole(user.RoleSuperadmin, user.RoleAdmin, user.RoleAssistante))
	} else {
		log.Warn("staff routes are open; set API_PROTECT_ROUTES=true outside a trusted network")
	}

	users.POST("", usersHandler.Create)
	users.GET("", usersHandler.List)
	users.PUT("/:id", usersHandler.Update)
	users.DELETE("/:id", usersHandler.Delete)

	staff.GET("", appointmentsHandler.List)
	staff.PUT("/:id", appointmentsHandler.UpdateStatus)

	return r
}
