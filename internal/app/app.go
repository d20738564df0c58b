package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"scholarship-service/internal/application"
	"scholarship-service/internal/auth"
	"scholarship-service/internal/config"
	"scholarship-service/internal/db"
	"scholarship-service/internal/health"
	"scholarship-service/internal/logger"
	"scholarship-service/internal/messaging"
	"scholarship-service/internal/metrics"
	"scholarship-service/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
)

type App struct {
	config *config.Config
	router chi.Router
	server *http.Server
	logger *slog.Logger
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses JSON format
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	database := db.New(cfg.Database)

	ctx := context.Background()
	if err := db.RunMigrations(ctx, database, (*auth.User)(nil), (*application.Application)(nil)); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	m, err := metrics.New(otel.Meter(ServiceName))
	if err != nil {
		slogLogger.Warn("failed to initialize metrics", "error", err)
		m = metrics.NewMock()
	}

	// Apply CORS middleware globally
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// Health endpoints (no auth required)
	healthHandler := health.NewHandler()
	healthHandler.RegisterRoutes(app.router)

	// Auth setup
	tokenService := auth.NewTokenService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	userRepo := auth.NewRepository(database)
	authService := auth.NewService(userRepo, tokenService, cfg.Auth.BcryptCost, slogLogger)
	authHandler := auth.NewHandler(authService, slogLogger, m)

	// NATS producer setup (degraded mode when the broker is unavailable)
	natsProducer, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize NATS producer", "error", err)
		natsProducer = nil
	} else {
		slogLogger.Info("NATS producer initialized successfully")
	}

	// Application setup
	appRepo := application.NewRepository(database)
	var publisher application.EventPublisher
	if natsProducer != nil {
		publisher = natsProducer
	}
	appService := application.NewService(appRepo, publisher, slogLogger)
	appHandler := application.NewHandler(appService, slogLogger, m)

	app.router.Route("/api", func(r chi.Router) {
		// Public auth routes
		authHandler.RegisterRoutes(r)

		// Protected routes require a valid session cookie
		r.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(tokenService, slogLogger))
			authHandler.RegisterProtectedRoutes(pr)
			appHandler.RegisterRoutes(pr)
		})
	})

	slogLogger.Info("application initialized successfully")

	return app
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", a.config.Server.Port),
		Handler: a.router,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")
	return a.server.Shutdown(ctx)
}
