package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// Listen holds a dedicated connection (not from the pool) on the
// cache_changed channel and feeds decoded change sets into the watch
// streams. Commits from any process — the daemon itself, the CLI, another
// replica — wake watchers the same way.
//
// Reconnects automatically on connection loss; after a reconnect every
// watcher is woken once, since notifications may have been missed while
// disconnected. Blocks until ctx is cancelled. Intended to be called
// with `go` after a first successful Ping; a store without a working
// listener serves stale watch streams, so startup should fail if the
// database is unreachable.
func (s *Store) Listen(ctx context.Context, dbURL string, logger *slog.Logger) {
	backoff := reconnectBackoff
	first := true

	for {
		err := s.listenLoop(ctx, dbURL, first)
		first = false
		if ctx.Err() != nil {
			logger.Info("Change listener stopped (context cancelled)")
			return
		}

		logger.Error("Change listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection
// drops or the context is cancelled.
func (s *Store) listenLoop(ctx context.Context, dbURL string, first bool) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return fmt.Errorf("LISTEN %s: %w", notifyChannel, err)
	}
	s.logger.Info("Change listener connected", "channel", notifyChannel)

	// Wake everything after a reconnect: commits may have landed while
	// the listener was down.
	if !first {
		s.notifier.publish([]Change{{Table: "*"}})
	}

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		var changes []Change
		if err := json.Unmarshal([]byte(notification.Payload), &changes); err != nil {
			s.logger.Warn("Failed to parse change set",
				"payload", notification.Payload, "error", err)
			continue
		}
		s.notifier.publish(changes)
	}
}
