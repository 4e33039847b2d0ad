package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/summitathletics/summit-data/internal/api/respond"
	"github.com/summitathletics/summit-data/internal/cache"
	"github.com/summitathletics/summit-data/internal/model"
)

// cachedJSON serves a list endpoint through the response cache: fetch and
// marshal once per TTL window, honor If-None-Match on every hit.
func (h *Handler) cachedJSON(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, fetch func() (any, error)) {
	if data, etag, ok := h.cache.Get(key); ok {
		if r.Header.Get("If-None-Match") == etag {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	v, err := fetch()
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "STORE_READ_FAILED", err.Error())
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", err.Error())
		return
	}
	etag := h.cache.Set(key, data, ttl)
	if r.Header.Get("If-None-Match") == etag {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}

// intQueryParam parses an optional integer query parameter. A malformed
// value writes a 400 with the given code and returns ok=false; an absent
// parameter returns present=false with ok=true.
func intQueryParam(w http.ResponseWriter, r *http.Request, name, code string) (value int, present, ok bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, code, name+" must be an integer")
		return 0, false, false
	}
	return v, true, true
}

// ListSchools returns all cached schools.
// @Summary List schools
// @Tags reference
// @Produce json
// @Success 200 {array} schoolDTO
// @Router /schools [get]
func (h *Handler) ListSchools(w http.ResponseWriter, r *http.Request) {
	h.cachedJSON(w, r, "schools", cache.TTLReference, func() (any, error) {
		schools, err := h.store.ListSchools(r.Context())
		if err != nil {
			return nil, err
		}
		return mapSlice(schools, toSchoolDTO), nil
	})
}

// ListSports returns all cached sports.
// @Summary List sports
// @Tags reference
// @Produce json
// @Success 200 {array} sportDTO
// @Router /sports [get]
func (h *Handler) ListSports(w http.ResponseWriter, r *http.Request) {
	h.cachedJSON(w, r, "sports", cache.TTLReference, func() (any, error) {
		sports, err := h.store.ListSports(r.Context())
		if err != nil {
			return nil, err
		}
		return mapSlice(sports, toSportDTO), nil
	})
}

// ListTeams returns teams, optionally filtered by schoolId or sportId.
// @Summary List teams
// @Tags reference
// @Produce json
// @Param schoolId query int false "Filter by school"
// @Param sportId query int false "Filter by sport"
// @Success 200 {array} teamDTO
// @Failure 400 {object} respond.ErrorResponse
// @Router /teams [get]
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	schoolID, bySchool, ok := intQueryParam(w, r, "schoolId", "INVALID_SCHOOL_ID")
	if !ok {
		return
	}
	sportID, bySport, ok := intQueryParam(w, r, "sportId", "INVALID_SPORT_ID")
	if !ok {
		return
	}
	key := "teams?" + r.URL.RawQuery
	h.cachedJSON(w, r, key, cache.TTLReference, func() (any, error) {
		var (
			teams []model.Team
			err   error
		)
		switch {
		case bySchool:
			teams, err = h.store.ListTeamsBySchool(r.Context(), schoolID)
		case bySport:
			teams, err = h.store.ListTeamsBySport(r.Context(), sportID)
		default:
			teams, err = h.store.ListTeams(r.Context())
		}
		if err != nil {
			return nil, err
		}
		return mapSlice(teams, toTeamDTO), nil
	})
}
