// Command scores is the Summit Scores data CLI.
//
// Usage:
//
//	scores sync all
//	scores sync games
//	scores sync news
//	scores favorites add-team --user u1 --team 42
//	scores favorites add-school --user u1 --school 3
//	scores favorites reconcile --user u1
//	scores user init --user u1 --device d1
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/summitathletics/summit-data/internal/config"
	"github.com/summitathletics/summit-data/internal/db"
	"github.com/summitathletics/summit-data/internal/favorites"
	"github.com/summitathletics/summit-data/internal/provider"
	"github.com/summitathletics/summit-data/internal/store"
	"github.com/summitathletics/summit-data/internal/sync"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "scores",
		Short: "Summit Scores data CLI",
	}

	root.AddCommand(syncCmd())
	root.AddCommand(favoritesCmd())
	root.AddCommand(userCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// sync command
// --------------------------------------------------------------------------

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync collections from the conference API",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Sync every collection in dependency order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, deps *deps) error {
				start := time.Now()
				result := deps.engine.SyncAll(ctx)
				logger.Info("Sync finished",
					"duration", time.Since(start).Round(time.Millisecond),
					"summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("sync error", "error", e)
				}
				if len(result.Errors) > 0 {
					return fmt.Errorf("sync completed with %d errors", len(result.Errors))
				}
				return nil
			})
		},
	})

	cmd.AddCommand(collectionCmd("schools", (*sync.Engine).SyncSchools))
	cmd.AddCommand(collectionCmd("sports", (*sync.Engine).SyncSports))
	cmd.AddCommand(collectionCmd("teams", (*sync.Engine).SyncTeams))
	cmd.AddCommand(collectionCmd("games", (*sync.Engine).SyncGames))
	cmd.AddCommand(collectionCmd("results", (*sync.Engine).SyncGameResults))
	cmd.AddCommand(collectionCmd("feeds", (*sync.Engine).SyncNewsFeeds))
	cmd.AddCommand(collectionCmd("news", (*sync.Engine).SyncNews))

	return cmd
}

func collectionCmd(name string, fn func(*sync.Engine, context.Context) (sync.Counts, error)) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: "Sync the " + name + " collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, deps *deps) error {
				start := time.Now()
				counts, err := fn(deps.engine, ctx)
				if err != nil {
					return err
				}
				logger.Info("Sync finished",
					"collection", name,
					"duration", time.Since(start).Round(time.Millisecond),
					"inserted", counts.Inserted, "updated", counts.Updated,
					"deleted", counts.Deleted, "unchanged", counts.Unchanged)
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// favorites command
// --------------------------------------------------------------------------

func favoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage a user's favorite teams and sports",
	}
	cmd.AddCommand(favoriteTeamCmd("add-team", "Follow a team", (*favorites.Coordinator).AddTeam))
	cmd.AddCommand(favoriteTeamCmd("remove-team", "Unfollow a team", (*favorites.Coordinator).RemoveTeam))
	cmd.AddCommand(favoriteSportCmd("add-sport", "Follow a sport", (*favorites.Coordinator).AddSport))
	cmd.AddCommand(favoriteSportCmd("remove-sport", "Unfollow a sport", (*favorites.Coordinator).RemoveSport))
	cmd.AddCommand(favoriteSchoolCmd("add-school", "Follow all of a school's teams", (*favorites.Coordinator).AddSchoolTeams))
	cmd.AddCommand(favoriteSchoolCmd("remove-school", "Unfollow all of a school's teams", (*favorites.Coordinator).RemoveSchoolTeams))
	cmd.AddCommand(reconcileCmd())
	return cmd
}

func favoriteTeamCmd(use, short string, op func(*favorites.Coordinator, context.Context, string, int) error) *cobra.Command {
	var userID string
	var teamID int
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" || teamID == 0 {
				return fmt.Errorf("--user and --team are required")
			}
			return run(func(ctx context.Context, deps *deps) error {
				return op(deps.coordinator, ctx, userID, teamID)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	cmd.Flags().IntVar(&teamID, "team", 0, "Team ID")
	return cmd
}

func favoriteSportCmd(use, short string, op func(*favorites.Coordinator, context.Context, string, int) error) *cobra.Command {
	var userID string
	var sportID int
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" || sportID == 0 {
				return fmt.Errorf("--user and --sport are required")
			}
			return run(func(ctx context.Context, deps *deps) error {
				return op(deps.coordinator, ctx, userID, sportID)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	cmd.Flags().IntVar(&sportID, "sport", 0, "Sport ID")
	return cmd
}

func favoriteSchoolCmd(use, short string, op func(*favorites.Coordinator, context.Context, string, int) error) *cobra.Command {
	var userID string
	var schoolID int
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" || schoolID == 0 {
				return fmt.Errorf("--user and --school are required")
			}
			return run(func(ctx context.Context, deps *deps) error {
				return op(deps.coordinator, ctx, userID, schoolID)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	cmd.Flags().IntVar(&schoolID, "school", 0, "School ID")
	return cmd
}

func reconcileCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Re-derive local favorites from the conference API (all users if --user omitted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, deps *deps) error {
				if userID != "" {
					return deps.coordinator.Reconcile(ctx, userID)
				}
				deps.coordinator.ReconcileAll(ctx)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID (empty sweeps all known users)")
	return cmd
}

// --------------------------------------------------------------------------
// user command
// --------------------------------------------------------------------------

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var userID, deviceID string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Register a user and device with the conference API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			return run(func(ctx context.Context, deps *deps) error {
				if err := deps.coordinator.EnsureUser(ctx, userID, deviceID); err != nil {
					return err
				}
				logger.Info("User registered", "user_id", userID, "device_id", deviceID)
				return nil
			})
		},
	}
	initCmd.Flags().StringVar(&userID, "user", "", "User ID")
	initCmd.Flags().StringVar(&deviceID, "device", "", "Device ID")
	cmd.AddCommand(initCmd)

	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

type deps struct {
	cfg         *config.Config
	store       *store.Store
	engine      *sync.Engine
	coordinator *favorites.Coordinator
}

// run handles config loading, DB connection, store setup, and context
// cancellation.
func run(fn func(ctx context.Context, deps *deps) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	st, err := store.Open(ctx, pool.Pool, cfg.IsProduction(), logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	client := provider.NewClient(cfg.ConferenceBaseURL, cfg.ConferenceAPIKey, cfg.ConferenceRateRPM, logger)

	return fn(ctx, &deps{
		cfg:         cfg,
		store:       st,
		engine:      sync.New(client, st, cfg.IncludeCancelled, logger),
		coordinator: favorites.New(client, st, logger),
	})
}
