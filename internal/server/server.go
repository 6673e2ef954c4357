// Package server assembles the pocketvibe HTTP surface.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pocketvibe/pocketvibe/internal/cache"
	"github.com/pocketvibe/pocketvibe/internal/config"
	"github.com/pocketvibe/pocketvibe/internal/contact"
	"github.com/pocketvibe/pocketvibe/internal/cssgen"
	"github.com/pocketvibe/pocketvibe/internal/db"
	"github.com/pocketvibe/pocketvibe/internal/events"
	"github.com/pocketvibe/pocketvibe/internal/push"
	"github.com/pocketvibe/pocketvibe/internal/showcase"
	"github.com/pocketvibe/pocketvibe/internal/sites"
	"github.com/pocketvibe/pocketvibe/internal/waitlist"
	"github.com/pocketvibe/pocketvibe/internal/web"
)

// Enqueuer hands generation jobs to the task queue.
type Enqueuer interface {
	EnqueueSiteGenerate(ctx context.Context, siteID, prompt string) error
	EnqueueCSSGenerate(ctx context.Context, cssID, prompt, baseCSS string) error
}

// Deps carries the shared infrastructure the HTTP surface is built on.
// Hub and Index are optional; the matching routes degrade gracefully
// when they are nil.
type Deps struct {
	DB      *db.DB
	Tasks   Enqueuer
	Cache   cache.Cache
	Hub     *events.Hub
	Index   *showcase.Index
	BaseCSS string
}

// Server is the pocketvibe web server.
type Server struct {
	cfg        *config.Config
	deps       Deps
	router     chi.Router
	httpServer *http.Server
	logger     zerolog.Logger
}

// New creates a server with all routes wired.
func New(cfg *config.Config, deps Deps, logger zerolog.Logger) *Server {
	if deps.Cache == nil {
		deps.Cache = cache.NewMemoryCache(time.Minute)
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Generated sites are meant to be embedded and shared anywhere.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if s.cfg.RateLimit.Requests > 0 {
		r.Use(generationRateLimit(s.cfg.RateLimit))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	siteStore := sites.NewStore(s.deps.DB)
	pushStore := push.NewStore(s.deps.DB)

	web.RegisterRoutes(r)
	sites.RegisterRoutes(r, siteStore, s.deps.Tasks, pushStore, s.deps.Cache, s.cfg.Cache, s.logger)
	cssgen.RegisterRoutes(r, cssgen.NewStore(s.deps.DB), s.deps.Tasks, s.deps.BaseCSS, s.logger)
	push.RegisterRoutes(r, pushStore, s.cfg.Push.VAPIDPublicKey, s.logger)
	waitlist.RegisterRoutes(r, waitlist.NewStore(s.deps.DB), s.logger)
	contact.RegisterRoutes(r, contact.NewStore(s.deps.DB), s.logger)
	showcase.RegisterRoutes(r, s.deps.Index, s.logger)
	if s.deps.Hub != nil {
		s.deps.Hub.RegisterRoutes(r)
	}

	return r
}

// generationRateLimit throttles the two LLM-backed endpoints per client IP.
// Everything else passes through untouched.
func generationRateLimit(cfg config.RateLimitConfig) func(http.Handler) http.Handler {
	limit := httprate.Limit(cfg.Requests, cfg.Window, httprate.WithKeyFuncs(httprate.KeyByIP))
	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost && (r.URL.Path == "/api/generate-site" || r.URL.Path == "/generate-css") {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured address and blocks until the
// listener fails or the server is shut down.
func (s *Server) Start() error {
	handler := http.Handler(s.router)
	if s.cfg.Telemetry.Enabled {
		handler = otelhttp.NewHandler(handler, "pocketvibe.http")
	}

	s.httpServer = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info().Str("addr", s.cfg.Listen).Msg("pocketvibe server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
