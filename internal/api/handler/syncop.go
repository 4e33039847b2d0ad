package handler

import (
	"net/http"

	"github.com/summitathletics/summit-data/internal/api/respond"
)

// TriggerSync runs a full sync against the conference API and drops the
// response cache so fresh data is immediately visible.
// @Summary Trigger a full sync
// @Tags sync
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /sync [post]
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	result := h.engine.SyncAll(r.Context())
	if result.Mutations() > 0 {
		h.cache.Invalidate("")
	}
	status := "ok"
	if len(result.Errors) > 0 {
		status = "partial"
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":     status,
		"summary":    result.Summary(),
		"mutations":  result.Mutations(),
		"durationMs": result.Duration.Milliseconds(),
		"errors":     result.Errors,
	})
}
