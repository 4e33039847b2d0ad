// Package api wires the HTTP surface: router, middleware, and route tree.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/summitathletics/summit-data/internal/api/handler"
	"github.com/summitathletics/summit-data/internal/cache"
	"github.com/summitathletics/summit-data/internal/config"
	"github.com/summitathletics/summit-data/internal/favorites"
	"github.com/summitathletics/summit-data/internal/store"
	"github.com/summitathletics/summit-data/internal/sync"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(pool *pgxpool.Pool, st *store.Store, engine *sync.Engine, coordinator *favorites.Coordinator, appCache *cache.Cache, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(pool, st, engine, coordinator, appCache, cfg)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Reference data
		r.Get("/schools", h.ListSchools)
		r.Get("/sports", h.ListSports)
		r.Get("/teams", h.ListTeams)
		r.Get("/sports/{sportId}/standings", h.GetStandings)

		// Schedule
		r.Get("/games", h.ListGames)
		r.Get("/games/{gameId}", h.GetGame)

		// News
		r.Get("/newsfeeds", h.ListNewsFeeds)
		r.Get("/newsfeeds/{feedId}/items", h.ListNewsItems)

		// Users and favorites
		r.Post("/users", h.CreateUser)
		r.Route("/users/{userId}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Post("/reconcile", h.ReconcileUser)
			r.Put("/favorites/teams/{teamId}", h.AddFavoriteTeam)
			r.Delete("/favorites/teams/{teamId}", h.RemoveFavoriteTeam)
			r.Put("/favorites/sports/{sportId}", h.AddFavoriteSport)
			r.Delete("/favorites/sports/{sportId}", h.RemoveFavoriteSport)
			r.Put("/favorites/schools/{schoolId}", h.AddFavoriteSchool)
			r.Delete("/favorites/schools/{schoolId}", h.RemoveFavoriteSchool)
		})

		// Operations
		r.Post("/sync", h.TriggerSync)
	})

	return r
}
