package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/sakura24999/data-analysis-dashboard/internal/config"
	apierrors "github.com/sakura24999/data-analysis-dashboard/internal/errors"
	"github.com/sakura24999/data-analysis-dashboard/internal/exporter"
	"github.com/sakura24999/data-analysis-dashboard/internal/infrastructure"
	customMiddleware "github.com/sakura24999/data-analysis-dashboard/internal/middleware"
	"github.com/sakura24999/data-analysis-dashboard/internal/report"
	"github.com/sakura24999/data-analysis-dashboard/internal/services"
	"github.com/sakura24999/data-analysis-dashboard/internal/session"
	handlers "github.com/sakura24999/data-analysis-dashboard/internal/transport/http"
	ws "github.com/sakura24999/data-analysis-dashboard/internal/websocket"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	WebSocketHub  *ws.Hub
	Sessions      *session.Store
	Services      *ServiceContainer
	FrontendFS    fs.FS // embedded index.html, app.js and style.css
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dataset    *services.DatasetService
	Explore    *services.ExploreService
	Preprocess *services.PreprocessService
	Analysis   *services.AnalysisService
	Report     *services.ReportService
	Chart      *services.ChartService
	Archive    *services.ReportArchive
	Health     *services.HealthService
}

// NewApplication creates a new application instance with dependency injection.
// frontendFS may be nil, in which case only the API is served.
func NewApplication(cfg *config.Config, frontendFS fs.FS) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppTitle),
		slog.String("version", config.Version))

	paths, err := cfg.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	logger.Info("Resolved application paths",
		slog.String("base_dir", paths.BaseDir),
		slog.String("reports_dir", paths.ReportsDir),
		slog.String("logs_dir", paths.LogsDir))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		FrontendFS:    frontendFS,
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices wires the session store, websocket hub and domain services
func (a *Application) initializeServices() {
	metrics := a.OTelProviders.Metrics

	a.WebSocketHub = ws.NewHub(a.Logger, metrics)
	a.Sessions = session.NewStore(a.Config.Session,
		session.WithMetrics(metrics),
		session.WithLogger(a.Logger))

	builder := report.NewBuilder(
		report.WithWorkers(a.Config.Analysis.Workers),
		report.WithLogger(a.Logger))

	a.Services = &ServiceContainer{
		Dataset:    services.NewDatasetService(a.Config, a.WebSocketHub, metrics, a.Logger),
		Explore:    services.NewExploreService(a.Config.Analysis.Workers, a.Logger),
		Preprocess: services.NewPreprocessService(a.WebSocketHub, metrics, a.Logger),
		Analysis:   services.NewAnalysisService(a.WebSocketHub, metrics, a.Logger),
		Report:     services.NewReportService(builder, exporter.NewCSVWriter(a.Paths), a.WebSocketHub, metrics, a.Logger),
		Chart:      services.NewChartService(metrics, a.Logger),
		Archive:    services.NewReportArchive(a.Paths.ReportsDir, a.Logger),
		Health:     services.NewHealthService(a.Paths.ReportsDir, a.Sessions, a.WebSocketHub, a.Logger),
	}

	a.Logger.Info("Services initialized",
		slog.Int("workers", a.Config.Analysis.Workers),
		slog.Int("max_sessions", a.Config.Session.MaxSessions))
}

// setupRouter configures the HTTP router.
// Ordering: RequestID → RealIP → OTel → Logger → Recoverer → SecurityHeaders → CORS → RateLimit
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// The websocket route must not see middleware that wraps the ResponseWriter
	r.With(
		customMiddleware.WebSocketTraceMiddleware(a.Logger),
		handlers.SessionMiddleware(a.Sessions, a.Config.Session, a.Logger),
	).Handle("/ws", handlers.NewWebSocketHandler(a.WebSocketHub, a.Config.WebSocket, a.Config.Security.AllowedOrigins, a.Logger))

	metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.WebSocketHub)
	r.Get("/metrics", metricsHandler.Prometheus)

	// Set on the root before any Mount so every subrouter inherits them.
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(errorHandler.Middleware)
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

		a.setupAPIRoutes(r, errorHandler, metricsHandler)
		a.setupHTMLRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *apierrors.ErrorHandler, metricsHandler *handlers.MetricsHandler) {
	validator := customMiddleware.NewValidator(a.Logger)
	svc := a.Services

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(svc.Health)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		r.Mount("/metrics", metricsHandler.Routes())
		r.Mount("/reports", handlers.NewArchiveHandler(svc.Archive, a.Logger, errorHandler).Routes())

		r.Group(func(r chi.Router) {
			r.Use(handlers.SessionMiddleware(a.Sessions, a.Config.Session, a.Logger))
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

			r.Mount("/dataset", handlers.NewDatasetHandler(svc.Dataset, a.Config, validator, a.Logger, errorHandler).Routes())
			r.Mount("/explore", handlers.NewExploreHandler(svc.Explore, validator, a.Logger, errorHandler).Routes())
			r.Mount("/preprocess", handlers.NewPreprocessHandler(svc.Preprocess, validator, a.Logger, errorHandler).Routes())
			r.Mount("/analysis", handlers.NewAnalysisHandler(svc.Analysis, validator, a.Logger, errorHandler).Routes())

			reportHandler := handlers.NewReportHandler(svc.Report, svc.Dataset, validator, a.Logger, errorHandler)
			r.Mount("/report", reportHandler.Routes())
			r.Mount("/export", reportHandler.ExportRoutes())

			r.Mount("/charts", handlers.NewChartHandler(svc.Chart, validator, a.Logger, errorHandler).Routes())
		})
	})
}

// setupHTMLRoutes serves the embedded single page UI
func (a *Application) setupHTMLRoutes(r chi.Router) {
	if a.FrontendFS == nil {
		a.Logger.Warn("No frontend filesystem provided, serving API only")
		return
	}

	r.Get("/", handlers.ServeIndex(a.FrontendFS, a.Logger))
	r.Handle("/static/*", http.StripPrefix("/static/", handlers.ServeStatic(a.FrontendFS)))
}

// getCORSConfig returns the CORS settings for a browser served from another origin
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	origins := append([]string{a.Config.Server.URL()}, a.Config.Security.AllowedOrigins...)

	a.Logger.Info("CORS enabled", slog.Any("allowed_origins", origins))

	return customMiddleware.CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts background workers and the HTTP server
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppTitle),
		slog.String("version", config.Version),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	a.WebSocketHub.Start()
	a.Sessions.Start()

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	url := a.Config.Server.URL()
	a.Logger.InfoContext(ctx, "Application started successfully", slog.String("address", url))

	if a.Config.Server.OpenBrowser {
		go a.openWhenReady(ctx, url)
	}

	return nil
}

// openWhenReady polls the health endpoint and opens the browser once the server answers
func (a *Application) openWhenReady(ctx context.Context, url string) {
	healthURL := url + "/api/health/ready"
	client := &http.Client{Timeout: 2 * time.Second}

	const maxRetries = 10
	for i := 0; i < maxRetries; i++ {
		select {
		case <-ctx.Done():
			a.Logger.InfoContext(ctx, "Browser opening cancelled, application shutting down")
			return
		default:
		}

		resp, err := client.Get(healthURL)
		if err == nil {
			resp.Body.Close()
		}
		if err == nil && resp.StatusCode == http.StatusOK {
			if err := openBrowser(url); err != nil {
				a.Logger.ErrorContext(ctx, "Failed to open browser",
					slog.String("error", err.Error()),
					slog.String("url", url))
				fmt.Printf("\n%s is running. Open %s in your browser.\n\n", config.AppTitle, url)
			}
			return
		}

		time.Sleep(500 * time.Millisecond)
	}

	a.Logger.ErrorContext(ctx, "Server did not become ready for browser opening",
		slog.String("url", url),
		slog.Int("max_retries", maxRetries))
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.WebSocketHub.Stop()
	a.Sessions.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return infrastructure.CloseLogFile()
}

// Run runs the application until interrupted or the server fails
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}

// performStartupHealthCheck verifies the writable directories
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	var warnings []string

	directories := map[string]string{
		"Reports": a.Paths.ReportsDir,
		"Logs":    a.Paths.LogsDir,
	}

	for name, dir := range directories {
		testFile := filepath.Join(dir, ".write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not writable: %s", name, dir))
			continue
		}
		os.Remove(testFile)
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}

// openBrowser opens the default browser, trying each platform method in turn
func openBrowser(url string) error {
	var lastErr error

	for _, method := range getBrowserOpenMethods(url) {
		slog.Info("Attempting to open browser",
			slog.String("method", method.name),
			slog.String("url", url))

		cmd := exec.Command(method.cmd, method.args...)
		if err := cmd.Start(); err != nil {
			lastErr = err
			slog.Warn("Browser open method failed",
				slog.String("method", method.name),
				slog.String("error", err.Error()))
			continue
		}
		go cmd.Wait()

		slog.Info("Browser opened successfully",
			slog.String("method", method.name),
			slog.String("url", url))
		return nil
	}

	return fmt.Errorf("failed to open browser after all attempts: %w", lastErr)
}

// browserMethod represents a method to open the browser
type browserMethod struct {
	name string
	cmd  string
	args []string
}

// getBrowserOpenMethods returns platform-specific browser opening methods
func getBrowserOpenMethods(url string) []browserMethod {
	switch runtime.GOOS {
	case "windows":
		return []browserMethod{
			{name: "rundll32", cmd: "rundll32", args: []string{"url.dll,FileProtocolHandler", url}},
			{name: "start_command", cmd: "cmd", args: []string{"/c", "start", "", url}},
		}
	case "darwin":
		return []browserMethod{
			{name: "open", cmd: "open", args: []string{url}},
		}
	default:
		return []browserMethod{
			{name: "xdg-open", cmd: "xdg-open", args: []string{url}},
			{name: "sensible-browser", cmd: "sensible-browser", args: []string{url}},
		}
	}
}
