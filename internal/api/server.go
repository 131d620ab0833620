// Package api provides the HTTP API server and handlers for the JumpChain
// search service.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jumpchainsearch/jumpchain-server/internal/config"
	"github.com/jumpchainsearch/jumpchain-server/internal/ratelimit"
	"github.com/jumpchainsearch/jumpchain-server/internal/store"
)

// Version reported by the API metadata.
const Version = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	store      store.Store
	services   *Services
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
	adminToken string

	// voteLimiter throttles vote casting and suggestion creation per
	// user so a single account cannot flood the consensus engine.
	voteLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, cfg *config.Config, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		MaxAge:         300,
	}))

	humaConfig := huma.DefaultConfig(cfg.Server.Name, Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:   "http",
			Scheme: "bearer",
		},
	}

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:       st,
		services:    services,
		router:      router,
		api:         api,
		logger:      logger,
		adminToken:  cfg.Server.AdminToken,
		voteLimiter: ratelimit.New(1, 10), // 1 rps sustained, burst of 10 per user
	}

	s.registerHealthRoutes()
	s.registerSearchRoutes()
	s.registerDocumentRoutes()
	s.registerTagRoutes()
	s.registerVotingRoutes()
	s.registerRuleRoutes()
	s.registerAdminRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Shutdown releases background resources held by the server.
func (s *Server) Shutdown() {
	s.voteLimiter.Stop()
}

// HTTPServer wraps the server in an http.Server with the configured
// timeouts, ready for ListenAndServe.
func (s *Server) HTTPServer(cfg config.ServerConfig) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
