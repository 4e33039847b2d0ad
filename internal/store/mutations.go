package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/summitathletics/summit-data/internal/model"
)

// writeTx is the pgx-backed Mutator. Every mutation records the touched
// (table, key) pair so Write can announce the change set on commit.
type writeTx struct {
	tx      pgx.Tx
	changes []Change
}

func (w *writeTx) exec(ctx context.Context, table, key, sql string, args ...any) error {
	if _, err := w.tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("%s %s: %w", table, key, err)
	}
	w.changes = append(w.changes, Change{Table: table, Key: key})
	return nil
}

// --------------------------------------------------------------------------
// School
// --------------------------------------------------------------------------

func (w *writeTx) InsertSchool(ctx context.Context, s model.School) error {
	return w.exec(ctx, "school", strconv.Itoa(s.ID), `
		INSERT INTO school (id, name, display_name, location, logo_url)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.Name, s.DisplayName, s.Location, s.LogoURL)
}

func (w *writeTx) UpdateSchool(ctx context.Context, s model.School) error {
	return w.exec(ctx, "school", strconv.Itoa(s.ID), `
		UPDATE school SET name = $2, display_name = $3, location = $4, logo_url = $5
		WHERE id = $1`,
		s.ID, s.Name, s.DisplayName, s.Location, s.LogoURL)
}

func (w *writeTx) DeleteSchool(ctx context.Context, id int) error {
	return w.exec(ctx, "school", strconv.Itoa(id), "DELETE FROM school WHERE id = $1", id)
}

// --------------------------------------------------------------------------
// Sport
// --------------------------------------------------------------------------

func (w *writeTx) InsertSport(ctx context.Context, s model.Sport) error {
	return w.exec(ctx, "sport", strconv.Itoa(s.ID), `
		INSERT INTO sport (id, name, gender, icon_url, news_feed_id, win_value)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.Name, string(s.Gender), s.IconURL, s.NewsFeedID, s.WinValue)
}

func (w *writeTx) UpdateSport(ctx context.Context, s model.Sport) error {
	return w.exec(ctx, "sport", strconv.Itoa(s.ID), `
		UPDATE sport SET name = $2, gender = $3, icon_url = $4, news_feed_id = $5, win_value = $6
		WHERE id = $1`,
		s.ID, s.Name, string(s.Gender), s.IconURL, s.NewsFeedID, s.WinValue)
}

func (w *writeTx) DeleteSport(ctx context.Context, id int) error {
	return w.exec(ctx, "sport", strconv.Itoa(id), "DELETE FROM sport WHERE id = $1", id)
}

// --------------------------------------------------------------------------
// Team
// --------------------------------------------------------------------------

func (w *writeTx) InsertTeam(ctx context.Context, t model.Team) error {
	return w.exec(ctx, "team", strconv.Itoa(t.ID), `
		INSERT INTO team (id, sport_id, school_id, is_conference)
		VALUES ($1, $2, $3, $4)`,
		t.ID, t.SportID, t.SchoolID, t.IsConference)
}

func (w *writeTx) UpdateTeam(ctx context.Context, t model.Team) error {
	return w.exec(ctx, "team", strconv.Itoa(t.ID), `
		UPDATE team SET sport_id = $2, school_id = $3, is_conference = $4
		WHERE id = $1`,
		t.ID, t.SportID, t.SchoolID, t.IsConference)
}

func (w *writeTx) DeleteTeam(ctx context.Context, id int) error {
	return w.exec(ctx, "team", strconv.Itoa(id), "DELETE FROM team WHERE id = $1", id)
}

// --------------------------------------------------------------------------
// Game
// --------------------------------------------------------------------------

func (w *writeTx) InsertGame(ctx context.Context, g model.Game) error {
	return w.exec(ctx, "game", g.ID, `
		INSERT INTO game (id, sport_id, start_time, status, game_time, description, is_exhibition, is_playoff)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		g.ID, g.SportID, g.StartTime, string(g.Status), g.GameTime, g.Description, g.IsExhibition, g.IsPlayoff)
}

func (w *writeTx) UpdateGame(ctx context.Context, g model.Game) error {
	return w.exec(ctx, "game", g.ID, `
		UPDATE game SET sport_id = $2, start_time = $3, status = $4, game_time = $5,
			description = $6, is_exhibition = $7, is_playoff = $8
		WHERE id = $1`,
		g.ID, g.SportID, g.StartTime, string(g.Status), g.GameTime, g.Description, g.IsExhibition, g.IsPlayoff)
}

func (w *writeTx) DeleteGame(ctx context.Context, id string) error {
	return w.exec(ctx, "game", id, "DELETE FROM game WHERE id = $1", id)
}

// --------------------------------------------------------------------------
// GameResult — composite identity (game_id, team_id)
// --------------------------------------------------------------------------

func resultKey(gameID string, teamID int) string {
	return gameID + "/" + strconv.Itoa(teamID)
}

func (w *writeTx) InsertGameResult(ctx context.Context, r model.GameResult) error {
	return w.exec(ctx, "game_result", resultKey(r.GameID, r.TeamID), `
		INSERT INTO game_result (game_id, team_id, score, outcome, is_home)
		VALUES ($1, $2, $3, $4, $5)`,
		r.GameID, r.TeamID, r.Score, string(r.Outcome), r.IsHome)
}

func (w *writeTx) UpdateGameResult(ctx context.Context, r model.GameResult) error {
	return w.exec(ctx, "game_result", resultKey(r.GameID, r.TeamID), `
		UPDATE game_result SET score = $3, outcome = $4, is_home = $5
		WHERE game_id = $1 AND team_id = $2`,
		r.GameID, r.TeamID, r.Score, string(r.Outcome), r.IsHome)
}

func (w *writeTx) DeleteGameResult(ctx context.Context, gameID string, teamID int) error {
	return w.exec(ctx, "game_result", resultKey(gameID, teamID),
		"DELETE FROM game_result WHERE game_id = $1 AND team_id = $2", gameID, teamID)
}

// --------------------------------------------------------------------------
// NewsFeed
// --------------------------------------------------------------------------

func (w *writeTx) InsertNewsFeed(ctx context.Context, f model.NewsFeed) error {
	return w.exec(ctx, "newsfeed", strconv.Itoa(f.ID), `
		INSERT INTO newsfeed (id, display_name, url) VALUES ($1, $2, $3)`,
		f.ID, f.DisplayName, f.URL)
}

func (w *writeTx) UpdateNewsFeed(ctx context.Context, f model.NewsFeed) error {
	return w.exec(ctx, "newsfeed", strconv.Itoa(f.ID), `
		UPDATE newsfeed SET display_name = $2, url = $3 WHERE id = $1`,
		f.ID, f.DisplayName, f.URL)
}

func (w *writeTx) DeleteNewsFeed(ctx context.Context, id int) error {
	return w.exec(ctx, "newsfeed", strconv.Itoa(id), "DELETE FROM newsfeed WHERE id = $1", id)
}

// --------------------------------------------------------------------------
// NewsItem — identity is the title; items may belong to several feeds
// --------------------------------------------------------------------------

func (w *writeTx) UpsertNewsItem(ctx context.Context, n model.NewsItem) error {
	return w.exec(ctx, "news_item", n.Title, `
		INSERT INTO news_item (title, link, content, image_url, published)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (title) DO UPDATE SET
			link = EXCLUDED.link,
			content = EXCLUDED.content,
			image_url = EXCLUDED.image_url,
			published = EXCLUDED.published`,
		n.Title, n.Link, n.Content, n.ImageURL, n.Published)
}

func (w *writeTx) UpdateNewsItem(ctx context.Context, n model.NewsItem) error {
	return w.exec(ctx, "news_item", n.Title, `
		UPDATE news_item SET link = $2, content = $3, image_url = $4, published = $5
		WHERE title = $1`,
		n.Title, n.Link, n.Content, n.ImageURL, n.Published)
}

func (w *writeTx) LinkNewsItem(ctx context.Context, feedID int, title string) error {
	return w.exec(ctx, "newsfeed_category", strconv.Itoa(feedID), `
		INSERT INTO newsfeed_category (feed_id, item_title) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		feedID, title)
}

// UnlinkNewsItem removes the feed association and prunes the item itself
// once no feed references it.
func (w *writeTx) UnlinkNewsItem(ctx context.Context, feedID int, title string) error {
	if err := w.exec(ctx, "newsfeed_category", strconv.Itoa(feedID),
		"DELETE FROM newsfeed_category WHERE feed_id = $1 AND item_title = $2", feedID, title); err != nil {
		return err
	}
	return w.exec(ctx, "news_item", title, `
		DELETE FROM news_item
		WHERE title = $1
		  AND NOT EXISTS (SELECT 1 FROM newsfeed_category WHERE item_title = $1)`,
		title)
}

// --------------------------------------------------------------------------
// Users, favorites, devices — idempotent adds, no-op removes
// --------------------------------------------------------------------------

func (w *writeTx) UpsertUser(ctx context.Context, userID string) error {
	return w.exec(ctx, "users", userID, `
		INSERT INTO users (id) VALUES ($1) ON CONFLICT DO NOTHING`, userID)
}

func (w *writeTx) AddFavoriteSport(ctx context.Context, userID string, sportID int) error {
	return w.exec(ctx, "favorite_sport", userID, `
		INSERT INTO favorite_sport (user_id, sport_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		userID, sportID)
}

func (w *writeTx) RemoveFavoriteSport(ctx context.Context, userID string, sportID int) error {
	return w.exec(ctx, "favorite_sport", userID,
		"DELETE FROM favorite_sport WHERE user_id = $1 AND sport_id = $2", userID, sportID)
}

func (w *writeTx) AddFavoriteTeam(ctx context.Context, userID string, teamID int) error {
	return w.exec(ctx, "favorite_team", userID, `
		INSERT INTO favorite_team (user_id, team_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		userID, teamID)
}

func (w *writeTx) RemoveFavoriteTeam(ctx context.Context, userID string, teamID int) error {
	return w.exec(ctx, "favorite_team", userID,
		"DELETE FROM favorite_team WHERE user_id = $1 AND team_id = $2", userID, teamID)
}

func (w *writeTx) UpsertDevice(ctx context.Context, deviceID, userID string) error {
	return w.exec(ctx, "device", deviceID, `
		INSERT INTO device (device_id, user_id) VALUES ($1, $2)
		ON CONFLICT (device_id) DO UPDATE SET user_id = EXCLUDED.user_id`,
		deviceID, userID)
}
