package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/calories-tracker/calories_tracker/internal/auth"
	"github.com/calories-tracker/calories_tracker/internal/bootstrap"
	"github.com/calories-tracker/calories_tracker/internal/config"
	"github.com/calories-tracker/calories_tracker/internal/hashing"
	"github.com/calories-tracker/calories_tracker/internal/identity"
	"github.com/calories-tracker/calories_tracker/internal/logging"
	"github.com/calories-tracker/calories_tracker/internal/middleware"
	"github.com/calories-tracker/calories_tracker/internal/records"
	"github.com/calories-tracker/calories_tracker/internal/session"
	"github.com/calories-tracker/calories_tracker/internal/tracker"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Sessions must survive restarts and be shared between instances outside of dev.
	if !d.Cfg.IsDev() && d.Cache == nil {
		return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(logging.Component(d.Logger, "http")))

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	credentialRepo, recordRepo, err := bootstrap.Repositories(d.Cfg, d.DB, d.Logger)
	if err != nil {
		return err
	}

	estimator, err := bootstrap.Estimator(d.Cfg)
	if err != nil {
		return err
	}

	var sessionStore session.Store
	if d.Cache != nil {
		sessionStore = session.NewRedisStore(d.Cache)
	} else {
		sessionStore = session.NewMemoryStore()
	}
	sessions := session.NewManager(sessionStore, d.Cfg.SessionTTL)

	identitySvc := identity.NewService(credentialRepo, hashing.New(d.Cfg.PasswordHasher), d.Logger)
	authSvc := auth.NewService(identitySvc, sessions)
	recordSvc := records.NewService(recordRepo, d.Logger)
	trackerSvc := tracker.NewService(estimator, recordSvc, d.Logger)

	identityHandler := identity.NewHandler(identitySvc, d.Logger)
	authHandler := auth.NewHandler(authSvc, sessions.TTL())
	trackerHandler := tracker.NewHandler(trackerSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals(middleware.RequestIDHeader).(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	requireSession := middleware.RequireSession(sessions)
	RegisterAuthRoutes(api, identityHandler, authHandler, middleware.LoginRateLimit(d.Cache, d.Cfg.LoginAttempts), requireSession)
	RegisterTrackerRoutes(api, trackerHandler, requireSession,
		middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, logging.Component(d.Logger, "idempotency")))

	return nil
}
