package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/summitathletics/summit-data/internal/api/respond"
	"github.com/summitathletics/summit-data/internal/cache"
	"github.com/summitathletics/summit-data/internal/model"
	"github.com/summitathletics/summit-data/internal/standings"
	"github.com/summitathletics/summit-data/internal/store"
)

// ListGames returns games, optionally filtered by sportId. Results are
// embedded so the schedule screen needs a single request.
// @Summary List games
// @Tags games
// @Produce json
// @Param sportId query int false "Filter by sport"
// @Success 200 {array} gameDTO
// @Failure 400 {object} respond.ErrorResponse
// @Router /games [get]
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	sportID, filtered, ok := intQueryParam(w, r, "sportId", "INVALID_SPORT_ID")
	if !ok {
		return
	}
	key := "games?" + r.URL.RawQuery
	h.cachedJSON(w, r, key, cache.TTLSchedule, func() (any, error) {
		ctx := r.Context()
		var (
			games []model.Game
			err   error
		)
		if filtered {
			games, err = h.store.ListGamesBySport(ctx, sportID)
		} else {
			games, err = h.store.ListGames(ctx)
		}
		if err != nil {
			return nil, err
		}
		results, err := h.store.ListGameResults(ctx)
		if err != nil {
			return nil, err
		}
		byGame := make(map[string][]model.GameResult, len(games))
		for _, res := range results {
			byGame[res.GameID] = append(byGame[res.GameID], res)
		}
		out := make([]gameDTO, 0, len(games))
		for _, g := range games {
			out = append(out, toGameDTO(g, byGame[g.ID]))
		}
		return out, nil
	})
}

// GetGame returns a single game with its per-team results.
// @Summary Get game by ID
// @Tags games
// @Produce json
// @Param gameId path string true "Game ID"
// @Success 200 {object} gameDTO
// @Failure 404 {object} respond.ErrorResponse
// @Router /games/{gameId} [get]
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameId")
	game, err := h.store.GetGame(r.Context(), gameID)
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "GAME_NOT_FOUND", "no game with id "+gameID)
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "STORE_READ_FAILED", err.Error())
		return
	}
	results, err := h.store.ListGameResultsByGame(r.Context(), gameID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "STORE_READ_FAILED", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, toGameDTO(game, results))
}

// GetStandings computes conference standings for one sport from completed
// games.
// @Summary Conference standings for a sport
// @Tags games
// @Produce json
// @Param sportId path int true "Sport ID"
// @Success 200 {array} standingsRowDTO
// @Failure 404 {object} respond.ErrorResponse
// @Router /sports/{sportId}/standings [get]
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	sportID, err := strconv.Atoi(chi.URLParam(r, "sportId"))
	if err != nil {
		respond.WriteError(w, http.StatusNotFound, "SPORT_NOT_FOUND", "invalid sport id")
		return
	}
	key := "games/standings/" + strconv.Itoa(sportID)
	h.cachedJSON(w, r, key, cache.TTLSchedule, func() (any, error) {
		ctx := r.Context()
		sports, err := h.store.ListSports(ctx)
		if err != nil {
			return nil, err
		}
		var sport *model.Sport
		for i := range sports {
			if sports[i].ID == sportID {
				sport = &sports[i]
				break
			}
		}
		if sport == nil {
			return []standingsRowDTO{}, nil
		}
		teams, err := h.store.ListTeamsBySport(ctx, sportID)
		if err != nil {
			return nil, err
		}
		games, err := h.store.ListGamesBySport(ctx, sportID)
		if err != nil {
			return nil, err
		}
		results, err := h.store.ListGameResults(ctx)
		if err != nil {
			return nil, err
		}
		return toStandingsDTO(standings.Compute(*sport, teams, games, results)), nil
	})
}
