// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/summitathletics/summit-data/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers the statements the read API and the
// watch streams run on every request. Prepared statements eliminate parse
// overhead on hot paths; the sync engine's merge statements stay ad hoc
// because they run once per sync cycle.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Watch streams
		"game_by_id": `SELECT id, sport_id, start_time, status, game_time, description,
			is_exhibition, is_playoff FROM game WHERE id = $1`,
		"news_items_by_feed": `SELECT ni.title, ni.link, ni.content, ni.image_url, ni.published
			FROM news_item ni
			JOIN newsfeed_category nc ON nc.item_title = ni.title
			WHERE nc.feed_id = $1
			ORDER BY ni.published DESC, ni.title`,
		"user_by_id": "SELECT id FROM users WHERE id = $1",
		"favorite_sports_by_user": `SELECT sport_id FROM favorite_sport
			WHERE user_id = $1 ORDER BY sport_id`,
		"favorite_teams_by_user": `SELECT team_id FROM favorite_team
			WHERE user_id = $1 ORDER BY team_id`,

		// Read API lookups
		"teams_by_school": "SELECT id, sport_id, school_id, is_conference FROM team WHERE school_id = $1 ORDER BY id",
		"teams_by_sport":  "SELECT id, sport_id, school_id, is_conference FROM team WHERE sport_id = $1 ORDER BY id",
		"results_by_game": `SELECT game_id, team_id, score, outcome, is_home
			FROM game_result WHERE game_id = $1 ORDER BY team_id`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
