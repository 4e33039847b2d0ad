package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/summitathletics/summit-data/internal/model"
)

// --------------------------------------------------------------------------
// Read endpoints
// --------------------------------------------------------------------------

// ListSchools fetches all member schools.
func (c *Client) ListSchools(ctx context.Context) ([]model.School, error) {
	var wire []wireSchool
	if err := c.get(ctx, "/schools", nil, &wire); err != nil {
		return nil, err
	}
	return mapWire(wire, wireSchool.toModel), nil
}

// ListSports fetches all sports.
func (c *Client) ListSports(ctx context.Context) ([]model.Sport, error) {
	var wire []wireSport
	if err := c.get(ctx, "/sports", nil, &wire); err != nil {
		return nil, err
	}
	return mapWire(wire, wireSport.toModel), nil
}

// ListTeams fetches all teams across sports and schools.
func (c *Client) ListTeams(ctx context.Context) ([]model.Team, error) {
	var wire []wireTeam
	if err := c.get(ctx, "/teams", nil, &wire); err != nil {
		return nil, err
	}
	return mapWire(wire, wireTeam.toModel), nil
}

// ListGames fetches the full schedule. Cancelled games are omitted by the
// server unless includeCancelled is set.
func (c *Client) ListGames(ctx context.Context, includeCancelled bool) ([]model.Game, error) {
	var params url.Values
	if includeCancelled {
		params = url.Values{"includeCancelled": {"true"}}
	}
	var wire []wireGame
	if err := c.get(ctx, "/games", params, &wire); err != nil {
		return nil, err
	}
	return mapWire(wire, wireGame.toModel), nil
}

// ListGamesBySport fetches the schedule for one sport.
func (c *Client) ListGamesBySport(ctx context.Context, sportID int) ([]model.Game, error) {
	var wire []wireGame
	if err := c.get(ctx, fmt.Sprintf("/sports/%d/games", sportID), nil, &wire); err != nil {
		return nil, err
	}
	return mapWire(wire, wireGame.toModel), nil
}

// GetGamesBulk fetches a specific set of games by id in one call.
func (c *Client) GetGamesBulk(ctx context.Context, gameIDs []string) ([]model.Game, error) {
	var wire []wireGame
	if err := c.do(ctx, http.MethodPost, "/games/bulk", nil, gameIDs, &wire); err != nil {
		return nil, err
	}
	return mapWire(wire, wireGame.toModel), nil
}

// ListGameResults fetches all game results.
func (c *Client) ListGameResults(ctx context.Context) ([]model.GameResult, error) {
	var wire []wireGameResult
	if err := c.get(ctx, "/game_results", nil, &wire); err != nil {
		return nil, err
	}
	return mapWire(wire, wireGameResult.toModel), nil
}

// ListNewsFeeds fetches all news feeds.
func (c *Client) ListNewsFeeds(ctx context.Context) ([]model.NewsFeed, error) {
	var wire []wireNewsFeed
	if err := c.get(ctx, "/newsfeeds", nil, &wire); err != nil {
		return nil, err
	}
	return mapWire(wire, wireNewsFeed.toModel), nil
}

// ListNewsItems fetches the items of one feed.
func (c *Client) ListNewsItems(ctx context.Context, feedID int) ([]model.NewsItem, error) {
	var wire []wireNewsItem
	if err := c.get(ctx, fmt.Sprintf("/newsfeeds/%d/items", feedID), nil, &wire); err != nil {
		return nil, err
	}
	return mapWire(wire, wireNewsItem.toModel), nil
}

// GetUser fetches one user with their favorite sport/team ids.
func (c *Client) GetUser(ctx context.Context, userID string) (model.User, error) {
	var wire wireUser
	if err := c.get(ctx, "/users/"+url.PathEscape(userID), nil, &wire); err != nil {
		return model.User{}, err
	}
	return wire.toModel(), nil
}

// --------------------------------------------------------------------------
// Write endpoints — fire-and-forget beyond the returned error
// --------------------------------------------------------------------------

// UpsertUser creates or refreshes a user record.
func (c *Client) UpsertUser(ctx context.Context, userID string) error {
	body := map[string]string{"id": userID}
	return c.do(ctx, http.MethodPost, "/users", nil, body, nil)
}

// AddFavoriteSport registers a favorite sport for a user. Adding an
// already-favorited sport is idempotent server-side.
func (c *Client) AddFavoriteSport(ctx context.Context, userID string, sportID int) error {
	body := map[string]int{"sportId": sportID}
	return c.do(ctx, http.MethodPost, "/users/"+url.PathEscape(userID)+"/favorite_sports", nil, body, nil)
}

// RemoveFavoriteSport removes a favorite sport for a user.
func (c *Client) RemoveFavoriteSport(ctx context.Context, userID string, sportID int) error {
	path := fmt.Sprintf("/users/%s/favorite_sports/%d", url.PathEscape(userID), sportID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// AddFavoriteTeam registers a favorite team for a user.
func (c *Client) AddFavoriteTeam(ctx context.Context, userID string, teamID int) error {
	body := map[string]int{"teamId": teamID}
	return c.do(ctx, http.MethodPost, "/users/"+url.PathEscape(userID)+"/favorite_teams", nil, body, nil)
}

// RemoveFavoriteTeam removes a favorite team for a user.
func (c *Client) RemoveFavoriteTeam(ctx context.Context, userID string, teamID int) error {
	path := fmt.Sprintf("/users/%s/favorite_teams/%d", url.PathEscape(userID), teamID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func mapWire[W, M any](in []W, f func(W) M) []M {
	out := make([]M, 0, len(in))
	for _, w := range in {
		out = append(out, f(w))
	}
	return out
}
