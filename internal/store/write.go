package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/summitathletics/summit-data/internal/model"
)

// notifyChannel carries committed change sets to the Listen bridge.
const notifyChannel = "cache_changed"

// Change identifies one touched row group: a table name plus the row key
// rendered as text. The wildcard table "*" means "anything may have
// changed" and wakes every watcher.
type Change struct {
	Table string `json:"table"`
	Key   string `json:"key"`
}

// Mutator is the set of row mutations available inside a Write transaction.
// Implemented by the pgx-backed transaction handle; the sync engine and the
// favorites coordinator depend on this interface, not on pgx.
type Mutator interface {
	InsertSchool(ctx context.Context, s model.School) error
	UpdateSchool(ctx context.Context, s model.School) error
	DeleteSchool(ctx context.Context, id int) error

	InsertSport(ctx context.Context, s model.Sport) error
	UpdateSport(ctx context.Context, s model.Sport) error
	DeleteSport(ctx context.Context, id int) error

	InsertTeam(ctx context.Context, t model.Team) error
	UpdateTeam(ctx context.Context, t model.Team) error
	DeleteTeam(ctx context.Context, id int) error

	InsertGame(ctx context.Context, g model.Game) error
	UpdateGame(ctx context.Context, g model.Game) error
	DeleteGame(ctx context.Context, id string) error

	InsertGameResult(ctx context.Context, r model.GameResult) error
	UpdateGameResult(ctx context.Context, r model.GameResult) error
	DeleteGameResult(ctx context.Context, gameID string, teamID int) error

	InsertNewsFeed(ctx context.Context, f model.NewsFeed) error
	UpdateNewsFeed(ctx context.Context, f model.NewsFeed) error
	DeleteNewsFeed(ctx context.Context, id int) error

	UpsertNewsItem(ctx context.Context, n model.NewsItem) error
	UpdateNewsItem(ctx context.Context, n model.NewsItem) error
	LinkNewsItem(ctx context.Context, feedID int, title string) error
	UnlinkNewsItem(ctx context.Context, feedID int, title string) error

	UpsertUser(ctx context.Context, userID string) error
	AddFavoriteSport(ctx context.Context, userID string, sportID int) error
	RemoveFavoriteSport(ctx context.Context, userID string, sportID int) error
	AddFavoriteTeam(ctx context.Context, userID string, teamID int) error
	RemoveFavoriteTeam(ctx context.Context, userID string, teamID int) error
	UpsertDevice(ctx context.Context, deviceID, userID string) error
}

// Write runs fn inside a single transaction. fn observes a consistent
// snapshot; its mutations commit atomically or not at all. The change set
// accumulated by the Mutator is announced via pg_notify as part of the
// transaction, so watchers fire only after a successful commit.
func (s *Store) Write(ctx context.Context, fn func(ctx context.Context, tx Mutator) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin write: %w", err)
	}
	defer tx.Rollback(ctx)

	w := &writeTx{tx: tx}
	if err := fn(ctx, w); err != nil {
		return err
	}

	if len(w.changes) > 0 {
		payload, err := json.Marshal(w.changes)
		if err != nil {
			return fmt.Errorf("encode change set: %w", err)
		}
		if _, err := tx.Exec(ctx, "SELECT pg_notify($1, $2)", notifyChannel, string(payload)); err != nil {
			return fmt.Errorf("announce change set: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit write: %w", err)
	}
	return nil
}
