// Package server provides the HTTP server and routing for the resource
// estimation gateway.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/helioncore/qrex/internal/config"
	"github.com/helioncore/qrex/internal/di"
	circuitshandlers "github.com/helioncore/qrex/internal/modules/circuits/handlers"
	jobshandlers "github.com/helioncore/qrex/internal/modules/jobs/handlers"
	reportshandlers "github.com/helioncore/qrex/internal/modules/reports/handlers"
	targetshandlers "github.com/helioncore/qrex/internal/modules/targets/handlers"
	"github.com/helioncore/qrex/internal/version"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Port      int
	DevMode   bool
	Container *di.Container // DI container with all services
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Config,
		container: cfg.Container,
	}

	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.Config.DataDir, cfg.Container)

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS - notebooks talk to the gateway from arbitrary origins
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// Unified events stream (SSE)
	eventsStreamHandler := NewEventsStreamHandler(s.container.EventBus, s.log)
	s.router.Get("/api/events/stream", eventsStreamHandler.ServeHTTP)

	// System monitoring and operations
	s.router.Route("/api/system", func(r chi.Router) {
		r.Get("/status", s.systemHandlers.HandleSystemStatus)
		r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
		r.Get("/disk", s.systemHandlers.HandleDiskUsage)

		r.Get("/backups", s.systemHandlers.HandleListBackups)
		r.Post("/backups/trigger", s.systemHandlers.HandleTriggerBackup)
		r.Post("/backups/{filename}/restore", s.systemHandlers.HandleStageRestore)
	})

	// Target profiles
	targetsHandler := targetshandlers.NewHandler(s.log)
	targetsHandler.RegisterRoutes(s.router)

	// Circuit generation
	circuitsHandler := circuitshandlers.NewHandler(s.log)
	circuitsHandler.RegisterRoutes(s.router)

	// Jobs - submission, polling, batches, frontier
	jobsHandler := jobshandlers.NewHandler(s.container.JobsService, s.container.WorkProcessor, s.log)
	jobsHandler.RegisterRoutes(s.router)

	// Formatted reports
	reportsHandler := reportshandlers.NewHandler(s.container.JobsService, s.log)
	reportsHandler.RegisterRoutes(s.router)

	// Work processor introspection and manual triggers
	s.container.WorkHandlers.RegisterRoutes(s.router)
}

// handleHealth responds to liveness probes
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","version":%q}`, version.Version)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
