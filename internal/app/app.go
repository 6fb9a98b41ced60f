package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"gradesheet/internal/config"
	"gradesheet/internal/dataprocessing"
	apperrors "gradesheet/internal/errors"
	"gradesheet/internal/infrastructure"
	customMiddleware "gradesheet/internal/middleware"
	"gradesheet/internal/services"
	handlers "gradesheet/internal/transport/http"
)

// BuildTime is set at link time with -ldflags "-X gradesheet/internal/app.BuildTime=..."
var BuildTime string

// multipartOverhead is the allowance on top of the upload limit for
// multipart boundaries and part headers.
const multipartOverhead = 64 << 10

// Application is the HTTP grade sheet service
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	GradeSheets   *services.GradeSheetService
	Health        *services.HealthService

	errorHandler *apperrors.ErrorHandler
	httpMetrics  *infrastructure.HTTPMetrics
}

// NewApplication wires the application from cfg. Telemetry providers are
// installed globally; Stop shuts them down.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		errorHandler:  apperrors.NewErrorHandler(logger, false),
	}

	if err := a.initializeServices(); err != nil {
		_ = providers.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.setupRouter()
	a.createServer()
	return a, nil
}

func (a *Application) initializeServices() error {
	pipelineMetrics, err := infrastructure.NewPipelineMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	a.httpMetrics, err = infrastructure.NewHTTPMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	pipeline := dataprocessing.NewPipeline(a.Logger,
		dataprocessing.WithTracer(a.OTelProviders.Tracer),
		dataprocessing.WithRecorder(pipelineMetrics),
		dataprocessing.WithProcessingOptions(dataprocessing.ProcessingOptions{ABCID: a.Config.Report.ABCID}),
	)
	a.GradeSheets = services.NewGradeSheetService(dataprocessing.NewReader(a.Logger), pipeline, a.Logger)
	a.Health = services.NewHealthService(config.AppVersion, BuildTime, a.Config.Report.OutputDir, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes.
// Order: RequestID, RealIP, Telemetry, Logger, Recoverer.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewTelemetry(a.OTelProviders.Tracer, a.httpMetrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.errorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
		r.Group(func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Mount("/health", healthHandler.Routes())
			r.Get("/version", healthHandler.Version)
		})

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
			if limit := a.Config.Server.MaxUploadBytes; limit > 0 {
				r.Use(customMiddleware.MaxBodySize(limit+multipartOverhead, a.errorHandler))
			}
			if rl := a.Config.RateLimit; rl.Enabled {
				r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.errorHandler, a.Logger).Handler)
			}

			gradeSheetHandler := handlers.NewGradeSheetHandler(
				a.GradeSheets,
				a.errorHandler,
				a.Logger,
				a.Config.Report.Format,
				a.Config.Server.MaxUploadBytes,
			)
			r.Mount("/gradesheets", gradeSheetHandler.Routes())
		})
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:              a.Config.Address(),
		Handler:           a.Router,
		ReadTimeout:       a.Config.Server.ReadTimeout,
		ReadHeaderTimeout: a.Config.Server.ReadTimeout,
		WriteTimeout:      a.Config.Server.WriteTimeout,
		IdleTimeout:       a.Config.Server.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Serve accepts connections on ln until Stop is called.
func (a *Application) Serve(ln net.Listener) error {
	a.Logger.Info("HTTP server listening",
		slog.String("address", ln.Addr().String()),
		slog.String("version", config.AppVersion))
	if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop drains in-flight requests and flushes telemetry.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	a.Logger.InfoContext(ctx, "shutdown complete")
	return nil
}

// Run listens on the configured address and serves until ctx is done or
// SIGINT/SIGTERM arrives, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Serve(ln)
	})
	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.WithoutCancel(ctx))
	})
	return g.Wait()
}
