// Package api serves the area dataset and map sessions over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/district-map/internal/area"
	"github.com/sells-group/district-map/internal/mapsession"
	"github.com/sells-group/district-map/internal/metrics"
)

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	// RateLimitRPS is the per-client request rate. Zero disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
	// FeatureCacheSize bounds the encoded area cache. Zero uses 1024.
	FeatureCacheSize int
}

// Server holds the handlers' dependencies.
type Server struct {
	sessions *mapsession.Registry
	features *FeatureCache
	opts     Options
}

// New creates a Server over reg.
func New(reg *mapsession.Registry, opts Options) *Server {
	if opts.FeatureCacheSize <= 0 {
		opts.FeatureCacheSize = 1024
	}
	return &Server{
		sessions: reg,
		features: NewFeatureCache(opts.FeatureCacheSize),
		opts:     opts,
	}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		if s.opts.RateLimitRPS > 0 {
			r.Use(NewRateLimiter(s.opts.RateLimitRPS, s.opts.RateLimitBurst, 10*time.Minute).Middleware)
		}

		r.Route("/areas", func(r chi.Router) {
			r.Get("/", s.handleListAreas)
			r.Get("/{type}/{code}", s.handleGetArea)
		})
		r.Get("/debug/feature-cache", s.handleCacheStats)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/click", s.handleClick)
				r.Post("/zoom", s.handleZoom)
				r.Post("/pan", s.handlePan)
				r.Post("/query", s.handleQuery)
				r.Post("/compare", s.handleCompare)
				r.Delete("/selection", s.handleClearSelection)
				r.Get("/shapes", s.handleShapes)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	ds := s.sessions.Dataset()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
		"dong":     ds.Len(area.Dong),
		"gu":       ds.Len(area.Gu),
	})
}
