// Package handler provides HTTP handlers for all API endpoints. Handlers
// read from the local store and hand writes to the favorites coordinator
// or the sync engine; nothing here talks to the conference API directly.
package handler

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/summitathletics/summit-data/internal/api/respond"
	"github.com/summitathletics/summit-data/internal/cache"
	"github.com/summitathletics/summit-data/internal/config"
	"github.com/summitathletics/summit-data/internal/favorites"
	"github.com/summitathletics/summit-data/internal/store"
	"github.com/summitathletics/summit-data/internal/sync"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pool        *pgxpool.Pool
	store       *store.Store
	engine      *sync.Engine
	coordinator *favorites.Coordinator
	cache       *cache.Cache
	cfg         *config.Config
}

// New creates a Handler with shared dependencies.
func New(pool *pgxpool.Pool, st *store.Store, engine *sync.Engine, coordinator *favorites.Coordinator, c *cache.Cache, cfg *config.Config) *Handler {
	return &Handler{
		pool:        pool,
		store:       st,
		engine:      engine,
		coordinator: coordinator,
		cache:       c,
		cfg:         cfg,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"name":    "Summit Scores Data API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	var n int
	err := h.pool.QueryRow(r.Context(), "health_check").Scan(&n)
	if err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
