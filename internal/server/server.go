// Package server provides the HTTP server and routing for Minty.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/minty/internal/config"
	"github.com/aristath/minty/internal/di"
	"github.com/aristath/minty/internal/modules/market"
	pagehandlers "github.com/aristath/minty/internal/modules/pages/handlers"
	"github.com/aristath/minty/internal/modules/portfolio"
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
	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.Container.CacheDB, cfg.Container.Registry)

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

	// Timeout (view streams are long-lived)
	s.router.Use(skipOnUpgrade(middleware.Timeout(60 * time.Second)))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(skipOnUpgrade(middleware.Compress(5)))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// System monitoring
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
		})

		// Dashboard views (stock and portfolio pages)
		viewHandler := pagehandlers.NewHandler(
			s.container.Registry,
			s.container.Backend,
			s.container.Engine,
			s.container.EventBus,
			s.viewConfig(),
			s.log,
		)
		viewHandler.RegisterRoutes(r)
	})
}

func (s *Server) allowedOrigins() []string {
	if s.cfg == nil || len(s.cfg.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return s.cfg.AllowedOrigins
}

func (s *Server) viewConfig() pagehandlers.Config {
	if s.cfg == nil {
		return pagehandlers.Config{}
	}
	return pagehandlers.Config{
		Stock: market.Config{RefreshInterval: s.cfg.StockEvery},
		Portfolio: portfolio.Config{
			FullInterval:  s.cfg.PortfolioEvery,
			PriceInterval: s.cfg.PriceEvery,
			Location:      s.cfg.Location,
		},
		DefaultToken: s.cfg.APIToken,
	}
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
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

// skipOnUpgrade bypasses mw for websocket upgrade requests
func skipOnUpgrade(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, r)
				return
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}
