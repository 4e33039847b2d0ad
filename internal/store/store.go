// Package store implements the local relational cache over Postgres.
//
// Reads are snapshot reads against committed state, ordered by primary key.
// All mutation goes through Store.Write, which scopes a transaction and
// announces committed change sets through pg_notify; the Listen bridge
// feeds those announcements back into in-process watch streams, so every
// watcher re-queries only after a commit that could affect it.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by single-row reads when no row matches.
var ErrNotFound = errors.New("store: not found")

// Store is the local cache handle. Safe for concurrent use; the underlying
// pool serializes transactional writes while reads proceed against the
// last committed state.
type Store struct {
	pool     *pgxpool.Pool
	notifier *notifier
	logger   *slog.Logger
}

// Open initializes the schema and returns a ready Store. In production a
// schema version mismatch is a startup error; elsewhere the cache is
// dropped and rebuilt (it holds no authoritative data).
func Open(ctx context.Context, pool *pgxpool.Pool, production bool, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := initSchema(ctx, pool, production); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{
		pool:     pool,
		notifier: newNotifier(),
		logger:   logger,
	}, nil
}
