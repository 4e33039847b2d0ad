package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/summitathletics/summit-data/internal/model"
)

// Snapshot reads. Each returns committed rows ordered by primary key so the
// sync engine can diff against an identity-sorted local side.

func (s *Store) ListSchools(ctx context.Context) ([]model.School, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, display_name, location, logo_url FROM school ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list schools: %w", err)
	}
	return collect(rows, func(r pgx.Rows) (model.School, error) {
		var v model.School
		err := r.Scan(&v.ID, &v.Name, &v.DisplayName, &v.Location, &v.LogoURL)
		return v, err
	})
}

func (s *Store) ListSports(ctx context.Context) ([]model.Sport, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, gender, icon_url, news_feed_id, win_value FROM sport ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list sports: %w", err)
	}
	return collect(rows, func(r pgx.Rows) (model.Sport, error) {
		var v model.Sport
		var gender string
		err := r.Scan(&v.ID, &v.Name, &gender, &v.IconURL, &v.NewsFeedID, &v.WinValue)
		v.Gender = model.Gender(gender)
		return v, err
	})
}

func (s *Store) ListTeams(ctx context.Context) ([]model.Team, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, sport_id, school_id, is_conference FROM team ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return collect(rows, scanTeam)
}

// ListTeamsBySchool returns a school's teams across all sports.
func (s *Store) ListTeamsBySchool(ctx context.Context, schoolID int) ([]model.Team, error) {
	rows, err := s.pool.Query(ctx, "teams_by_school", schoolID)
	if err != nil {
		return nil, fmt.Errorf("list teams by school: %w", err)
	}
	return collect(rows, scanTeam)
}

// ListTeamsBySport returns all teams in one sport.
func (s *Store) ListTeamsBySport(ctx context.Context, sportID int) ([]model.Team, error) {
	rows, err := s.pool.Query(ctx, "teams_by_sport", sportID)
	if err != nil {
		return nil, fmt.Errorf("list teams by sport: %w", err)
	}
	return collect(rows, scanTeam)
}

func (s *Store) ListGames(ctx context.Context) ([]model.Game, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, sport_id, start_time, status, game_time, description, is_exhibition, is_playoff
		FROM game ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return collect(rows, scanGame)
}

// ListGamesBySport returns one sport's schedule in start-time order for
// rendering; the sync engine sorts by identity itself before diffing.
func (s *Store) ListGamesBySport(ctx context.Context, sportID int) ([]model.Game, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, sport_id, start_time, status, game_time, description, is_exhibition, is_playoff
		FROM game WHERE sport_id = $1 ORDER BY start_time, id`, sportID)
	if err != nil {
		return nil, fmt.Errorf("list games by sport: %w", err)
	}
	return collect(rows, scanGame)
}

// GetGame returns one game by id, or ErrNotFound.
func (s *Store) GetGame(ctx context.Context, id string) (model.Game, error) {
	row := s.pool.QueryRow(ctx, "game_by_id", id)
	var g model.Game
	var status string
	err := row.Scan(&g.ID, &g.SportID, &g.StartTime, &status, &g.GameTime,
		&g.Description, &g.IsExhibition, &g.IsPlayoff)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Game{}, ErrNotFound
	}
	if err != nil {
		return model.Game{}, fmt.Errorf("get game %s: %w", id, err)
	}
	g.Status = model.GameStatus(status)
	return g, nil
}

func (s *Store) ListGameResults(ctx context.Context) ([]model.GameResult, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT game_id, team_id, score, outcome, is_home FROM game_result ORDER BY game_id, team_id")
	if err != nil {
		return nil, fmt.Errorf("list game results: %w", err)
	}
	return collect(rows, scanResult)
}

// ListGameResultsByGame returns the (up to two) result rows of one game.
func (s *Store) ListGameResultsByGame(ctx context.Context, gameID string) ([]model.GameResult, error) {
	rows, err := s.pool.Query(ctx, "results_by_game", gameID)
	if err != nil {
		return nil, fmt.Errorf("list results by game: %w", err)
	}
	return collect(rows, scanResult)
}

func (s *Store) ListNewsFeeds(ctx context.Context) ([]model.NewsFeed, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, display_name, url FROM newsfeed ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list newsfeeds: %w", err)
	}
	return collect(rows, func(r pgx.Rows) (model.NewsFeed, error) {
		var v model.NewsFeed
		err := r.Scan(&v.ID, &v.DisplayName, &v.URL)
		return v, err
	})
}

// ListNewsItemsByFeed returns one feed's items, newest first.
func (s *Store) ListNewsItemsByFeed(ctx context.Context, feedID int) ([]model.NewsItem, error) {
	rows, err := s.pool.Query(ctx, "news_items_by_feed", feedID)
	if err != nil {
		return nil, fmt.Errorf("list news items: %w", err)
	}
	return collect(rows, func(r pgx.Rows) (model.NewsItem, error) {
		var v model.NewsItem
		err := r.Scan(&v.Title, &v.Link, &v.Content, &v.ImageURL, &v.Published)
		return v, err
	})
}

// GetUser returns a user with favorite ids resolved, or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, userID string) (model.User, error) {
	var id string
	err := s.pool.QueryRow(ctx, "user_by_id", userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, err)
	}

	u := model.User{ID: id}
	if u.FavoriteSportIDs, err = s.ListFavoriteSportIDs(ctx, userID); err != nil {
		return model.User{}, err
	}
	if u.FavoriteTeamIDs, err = s.ListFavoriteTeamIDs(ctx, userID); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// ListFavoriteSportIDs returns a user's favorite sport ids in id order.
func (s *Store) ListFavoriteSportIDs(ctx context.Context, userID string) ([]int, error) {
	rows, err := s.pool.Query(ctx, "favorite_sports_by_user", userID)
	if err != nil {
		return nil, fmt.Errorf("list favorite sports: %w", err)
	}
	return collect(rows, func(r pgx.Rows) (int, error) {
		var id int
		err := r.Scan(&id)
		return id, err
	})
}

// ListFavoriteTeamIDs returns a user's favorite team ids in id order.
func (s *Store) ListFavoriteTeamIDs(ctx context.Context, userID string) ([]int, error) {
	rows, err := s.pool.Query(ctx, "favorite_teams_by_user", userID)
	if err != nil {
		return nil, fmt.Errorf("list favorite teams: %w", err)
	}
	return collect(rows, func(r pgx.Rows) (int, error) {
		var id int
		err := r.Scan(&id)
		return id, err
	})
}

// ListUserIDs returns every known user id; the reconcile sweep iterates it.
func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT id FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return collect(rows, func(r pgx.Rows) (string, error) {
		var id string
		err := r.Scan(&id)
		return id, err
	})
}

// --------------------------------------------------------------------------
// Scan helpers
// --------------------------------------------------------------------------

func scanTeam(r pgx.Rows) (model.Team, error) {
	var v model.Team
	err := r.Scan(&v.ID, &v.SportID, &v.SchoolID, &v.IsConference)
	return v, err
}

func scanGame(r pgx.Rows) (model.Game, error) {
	var v model.Game
	var status string
	err := r.Scan(&v.ID, &v.SportID, &v.StartTime, &status, &v.GameTime,
		&v.Description, &v.IsExhibition, &v.IsPlayoff)
	v.Status = model.GameStatus(status)
	return v, err
}

func scanResult(r pgx.Rows) (model.GameResult, error) {
	var v model.GameResult
	var outcome string
	err := r.Scan(&v.GameID, &v.TeamID, &v.Score, &outcome, &v.IsHome)
	v.Outcome = model.Outcome(outcome)
	return v, err
}

func collect[T any](rows pgx.Rows, scan func(pgx.Rows) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
