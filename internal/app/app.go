package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/config"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/dataprocessing"
	apperrors "github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/errors"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/exporter"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/infrastructure"
	customMiddleware "github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/middleware"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/services"
	handlers "github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/transport/http"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/validation"
)

// Application represents the main application container
type Application struct {
	Config         *config.Config
	Router         *chi.Mux
	Server         *http.Server
	Logger         *slog.Logger
	OTelProviders  *infrastructure.OTelProviders
	SessionService *services.SessionService
	HealthService  *services.HealthService
	ErrorHandler   *apperrors.ErrorHandler

	watcher *SourceWatcher
}

// NewApplication creates a new application instance with dependency injection.
// A nil cfg loads the configuration from the environment and config file.
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return newApplication(cfg, logger)
}

func newApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		ErrorHandler:  apperrors.NewErrorHandler(logger, false),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices wires the pipeline, exporter and session state together
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.NewPipelineMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	pipeline := dataprocessing.NewPipeline(a.Config.Ingestion, a.Logger, metrics)
	exp := exporter.NewExporter(a.Config.Ingestion.DelimiterRune(), a.Logger)

	a.SessionService = services.NewSessionService(pipeline, exp, a.Config.Analytics, metrics, a.Logger)
	a.HealthService = services.NewHealthService(config.AppVersion, a.SessionService, a.Logger)

	if a.Config.Source.Watch && a.Config.Source.Path != "" {
		a.watcher = NewSourceWatcher(a.Config.Source.Path, a.Config.Source.Debounce, a.SessionService, a.Logger)
	}

	a.Logger.Info("Services initialized")
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Security → CORS → RateLimit → Timeout
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		r.Route("/api", a.setupAPIRoutes)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Use(render.SetContentType(render.ContentTypeJSON))

	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	r.Get("/health", healthHandler.HealthCheck)
	r.Get("/health/live", healthHandler.LivenessCheck)

	sessionHandler := handlers.NewSessionHandler(a.SessionService, a.Logger, a.ErrorHandler, a.Config.Ingestion.MaxUploadBytes)
	r.Mount("/session", sessionHandler.Routes())

	clientLogHandler := handlers.NewClientLogHandler(a.Logger, a.ErrorHandler)
	r.Post("/logs", clientLogHandler.Handle)
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", customMiddleware.RequestIDHeader, "traceparent"},
		MaxAge:         300,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// LoadSource loads the configured source file into the session, if any
func (a *Application) LoadSource(ctx context.Context) error {
	path := a.Config.Source.Path
	if path == "" {
		return nil
	}

	if err := validation.NewFileValidator(a.Logger).ValidateSourceFile(path, a.Config.Ingestion.MaxUploadBytes); err != nil {
		return err
	}

	summary, err := a.SessionService.LoadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to load source %s: %w", path, err)
	}

	a.Logger.InfoContext(ctx, "Source file loaded",
		slog.String("path", path),
		slog.String("dataset_id", summary.DatasetID),
		slog.Int("rows", summary.RowCount))
	return nil
}

// Start starts the application
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	// A broken source file is not fatal; uploads still work
	if err := a.LoadSource(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup source load failed", slog.String("error", err.Error()))
	}

	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			return fmt.Errorf("failed to start source watcher: %w", err)
		}
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.Logger.ErrorContext(ctx, "Error closing source watcher", slog.String("error", err.Error()))
		}
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or the server fails
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(runCtx, cancel); err != nil {
		return err
	}

	<-runCtx.Done()
	a.Logger.InfoContext(runCtx, "Received shutdown signal")

	return a.Stop(runCtx)
}
