package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/summitathletics/summit-data/internal/api/respond"
	"github.com/summitathletics/summit-data/internal/store"
)

type createUserRequest struct {
	ID       string `json:"id"`
	DeviceID string `json:"deviceId"`
}

// CreateUser registers a user and its device with the conference API and
// mirrors both locally.
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param body body createUserRequest true "User and device IDs"
// @Success 201 {object} userDTO
// @Failure 400 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "id is required")
		return
	}
	if err := h.coordinator.EnsureUser(r.Context(), req.ID, req.DeviceID); err != nil {
		respond.WriteError(w, http.StatusBadGateway, "USER_CREATE_FAILED", err.Error())
		return
	}
	user, err := h.store.GetUser(r.Context(), req.ID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "STORE_READ_FAILED", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, toUserDTO(user))
}

// GetUser returns a user with favorite sport and team IDs.
// @Summary Get user
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} userDTO
// @Failure 404 {object} respond.ErrorResponse
// @Router /users/{userId} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	user, err := h.store.GetUser(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "USER_NOT_FOUND", "no user with id "+userID)
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "STORE_READ_FAILED", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, toUserDTO(user))
}

// favoriteAction runs one favorites mutation and replies with the
// refreshed user. A failed local mirror write still returns 502; the
// reconcile pass repairs the drift.
func (h *Handler) favoriteAction(w http.ResponseWriter, r *http.Request, run func() error) {
	userID := chi.URLParam(r, "userId")
	if err := run(); err != nil {
		respond.WriteError(w, http.StatusBadGateway, "FAVORITE_UPDATE_FAILED", err.Error())
		return
	}
	user, err := h.store.GetUser(r.Context(), userID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "STORE_READ_FAILED", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, toUserDTO(user))
}

// AddFavoriteTeam follows a team for the user.
// @Summary Follow a team
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Param teamId path int true "Team ID"
// @Success 200 {object} userDTO
// @Failure 502 {object} respond.ErrorResponse
// @Router /users/{userId}/favorites/teams/{teamId} [put]
func (h *Handler) AddFavoriteTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := strconv.Atoi(chi.URLParam(r, "teamId"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_TEAM_ID", "team id must be an integer")
		return
	}
	h.favoriteAction(w, r, func() error {
		return h.coordinator.AddTeam(r.Context(), chi.URLParam(r, "userId"), teamID)
	})
}

// RemoveFavoriteTeam unfollows a team for the user.
// @Summary Unfollow a team
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Param teamId path int true "Team ID"
// @Success 200 {object} userDTO
// @Failure 502 {object} respond.ErrorResponse
// @Router /users/{userId}/favorites/teams/{teamId} [delete]
func (h *Handler) RemoveFavoriteTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := strconv.Atoi(chi.URLParam(r, "teamId"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_TEAM_ID", "team id must be an integer")
		return
	}
	h.favoriteAction(w, r, func() error {
		return h.coordinator.RemoveTeam(r.Context(), chi.URLParam(r, "userId"), teamID)
	})
}

// AddFavoriteSport follows a sport for the user.
// @Summary Follow a sport
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Param sportId path int true "Sport ID"
// @Success 200 {object} userDTO
// @Failure 502 {object} respond.ErrorResponse
// @Router /users/{userId}/favorites/sports/{sportId} [put]
func (h *Handler) AddFavoriteSport(w http.ResponseWriter, r *http.Request) {
	sportID, err := strconv.Atoi(chi.URLParam(r, "sportId"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_SPORT_ID", "sport id must be an integer")
		return
	}
	h.favoriteAction(w, r, func() error {
		return h.coordinator.AddSport(r.Context(), chi.URLParam(r, "userId"), sportID)
	})
}

// RemoveFavoriteSport unfollows a sport for the user.
// @Summary Unfollow a sport
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Param sportId path int true "Sport ID"
// @Success 200 {object} userDTO
// @Failure 502 {object} respond.ErrorResponse
// @Router /users/{userId}/favorites/sports/{sportId} [delete]
func (h *Handler) RemoveFavoriteSport(w http.ResponseWriter, r *http.Request) {
	sportID, err := strconv.Atoi(chi.URLParam(r, "sportId"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_SPORT_ID", "sport id must be an integer")
		return
	}
	h.favoriteAction(w, r, func() error {
		return h.coordinator.RemoveSport(r.Context(), chi.URLParam(r, "userId"), sportID)
	})
}

// AddFavoriteSchool follows every team a school fields.
// @Summary Follow all of a school's teams
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Param schoolId path int true "School ID"
// @Success 200 {object} userDTO
// @Failure 502 {object} respond.ErrorResponse
// @Router /users/{userId}/favorites/schools/{schoolId} [put]
func (h *Handler) AddFavoriteSchool(w http.ResponseWriter, r *http.Request) {
	schoolID, err := strconv.Atoi(chi.URLParam(r, "schoolId"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_SCHOOL_ID", "school id must be an integer")
		return
	}
	h.favoriteAction(w, r, func() error {
		return h.coordinator.AddSchoolTeams(r.Context(), chi.URLParam(r, "userId"), schoolID)
	})
}

// RemoveFavoriteSchool unfollows every team a school fields.
// @Summary Unfollow all of a school's teams
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Param schoolId path int true "School ID"
// @Success 200 {object} userDTO
// @Failure 502 {object} respond.ErrorResponse
// @Router /users/{userId}/favorites/schools/{schoolId} [delete]
func (h *Handler) RemoveFavoriteSchool(w http.ResponseWriter, r *http.Request) {
	schoolID, err := strconv.Atoi(chi.URLParam(r, "schoolId"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_SCHOOL_ID", "school id must be an integer")
		return
	}
	h.favoriteAction(w, r, func() error {
		return h.coordinator.RemoveSchoolTeams(r.Context(), chi.URLParam(r, "userId"), schoolID)
	})
}

// ReconcileUser re-derives the local favorites mirror from the conference
// API's user record.
// @Summary Reconcile favorites with the conference API
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} userDTO
// @Failure 502 {object} respond.ErrorResponse
// @Router /users/{userId}/reconcile [post]
func (h *Handler) ReconcileUser(w http.ResponseWriter, r *http.Request) {
	h.favoriteAction(w, r, func() error {
		return h.coordinator.Reconcile(r.Context(), chi.URLParam(r, "userId"))
	})
}
