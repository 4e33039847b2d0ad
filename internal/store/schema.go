package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaVersion is bumped on any DDL change. Development databases are
// dropped and recreated on mismatch; production refuses to start, since
// non-destructive migration is owned by the deployment pipeline.
const schemaVersion = 3

// ErrSchemaVersion reports a version mismatch against a production database.
type ErrSchemaVersion struct {
	Found, Want int
}

func (e *ErrSchemaVersion) Error() string {
	return fmt.Sprintf("schema version %d found, %d required (production refuses destructive migration)", e.Found, e.Want)
}

var tables = []string{
	"device", "favorite_team", "favorite_sport", "users",
	"newsfeed_category", "news_item", "newsfeed",
	"game_result", "game", "team", "sport", "school",
	"schema_info",
}

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS schema_info (
		version INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS school (
		id           INT PRIMARY KEY,
		name         TEXT NOT NULL,
		display_name TEXT NOT NULL,
		location     TEXT NOT NULL DEFAULT '',
		logo_url     TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS sport (
		id           INT PRIMARY KEY,
		name         TEXT NOT NULL,
		gender       TEXT NOT NULL,
		icon_url     TEXT,
		news_feed_id INT,
		win_value    INT NOT NULL DEFAULT 2
	)`,
	`CREATE TABLE IF NOT EXISTS team (
		id            INT PRIMARY KEY,
		sport_id      INT NOT NULL REFERENCES sport(id) ON DELETE CASCADE,
		school_id     INT NOT NULL REFERENCES school(id) ON DELETE CASCADE,
		is_conference BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS game (
		id            TEXT PRIMARY KEY,
		sport_id      INT NOT NULL REFERENCES sport(id) ON DELETE CASCADE,
		start_time    TIMESTAMPTZ NOT NULL,
		status        TEXT NOT NULL,
		game_time     TEXT,
		description   TEXT,
		is_exhibition BOOLEAN NOT NULL DEFAULT FALSE,
		is_playoff    BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS game_result (
		game_id TEXT NOT NULL REFERENCES game(id) ON DELETE CASCADE,
		team_id INT NOT NULL REFERENCES team(id) ON DELETE CASCADE,
		score   INT,
		outcome TEXT NOT NULL DEFAULT 'tbd',
		is_home BOOLEAN NOT NULL,
		PRIMARY KEY (game_id, team_id)
	)`,
	`CREATE TABLE IF NOT EXISTS newsfeed (
		id           INT PRIMARY KEY,
		display_name TEXT NOT NULL,
		url          TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS news_item (
		title     TEXT PRIMARY KEY,
		link      TEXT NOT NULL,
		content   TEXT NOT NULL DEFAULT '',
		image_url TEXT,
		published TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS newsfeed_category (
		feed_id    INT NOT NULL REFERENCES newsfeed(id) ON DELETE CASCADE,
		item_title TEXT NOT NULL REFERENCES news_item(title) ON DELETE CASCADE,
		PRIMARY KEY (feed_id, item_title)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS favorite_sport (
		user_id  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		sport_id INT NOT NULL,
		PRIMARY KEY (user_id, sport_id)
	)`,
	`CREATE TABLE IF NOT EXISTS favorite_team (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		team_id INT NOT NULL,
		PRIMARY KEY (user_id, team_id)
	)`,
	`CREATE TABLE IF NOT EXISTS device (
		device_id TEXT PRIMARY KEY,
		user_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_game_sport ON game(sport_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_school ON team(school_id)`,
	`CREATE INDEX IF NOT EXISTS idx_news_item_published ON news_item(published DESC)`,
}

// initSchema creates all tables, checking the stored schema version first.
// A mismatch drops and recreates everything outside production.
func initSchema(ctx context.Context, pool *pgxpool.Pool, production bool) error {
	found, err := currentVersion(ctx, pool)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if found == schemaVersion {
		return nil
	}

	if found != 0 {
		if production {
			return &ErrSchemaVersion{Found: found, Want: schemaVersion}
		}
		// Destructive development migration: drop everything.
		for _, t := range tables {
			if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+t+" CASCADE"); err != nil {
				return fmt.Errorf("drop %s: %w", t, err)
			}
		}
	}

	for _, stmt := range ddl {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	if _, err := pool.Exec(ctx, "DELETE FROM schema_info"); err != nil {
		return fmt.Errorf("reset schema version: %w", err)
	}
	if _, err := pool.Exec(ctx, "INSERT INTO schema_info (version) VALUES ($1)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

func currentVersion(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	var exists bool
	err := pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'schema_info')").
		Scan(&exists)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = pool.QueryRow(ctx, "SELECT version FROM schema_info LIMIT 1").Scan(&version)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}
