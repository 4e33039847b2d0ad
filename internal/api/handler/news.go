package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/summitathletics/summit-data/internal/api/respond"
	"github.com/summitathletics/summit-data/internal/cache"
)

// ListNewsFeeds returns all news feeds.
// @Summary List news feeds
// @Tags news
// @Produce json
// @Success 200 {array} newsFeedDTO
// @Router /newsfeeds [get]
func (h *Handler) ListNewsFeeds(w http.ResponseWriter, r *http.Request) {
	h.cachedJSON(w, r, "news/feeds", cache.TTLNews, func() (any, error) {
		feeds, err := h.store.ListNewsFeeds(r.Context())
		if err != nil {
			return nil, err
		}
		return mapSlice(feeds, toNewsFeedDTO), nil
	})
}

// ListNewsItems returns the items linked to one feed, newest first.
// @Summary List items for a feed
// @Tags news
// @Produce json
// @Param feedId path int true "Feed ID"
// @Success 200 {array} newsItemDTO
// @Failure 404 {object} respond.ErrorResponse
// @Router /newsfeeds/{feedId}/items [get]
func (h *Handler) ListNewsItems(w http.ResponseWriter, r *http.Request) {
	feedID, err := strconv.Atoi(chi.URLParam(r, "feedId"))
	if err != nil {
		respond.WriteError(w, http.StatusNotFound, "FEED_NOT_FOUND", "invalid feed id")
		return
	}
	key := "news/items/" + strconv.Itoa(feedID)
	h.cachedJSON(w, r, key, cache.TTLNews, func() (any, error) {
		items, err := h.store.ListNewsItemsByFeed(r.Context(), feedID)
		if err != nil {
			return nil, err
		}
		return mapSlice(items, toNewsItemDTO), nil
	})
}
