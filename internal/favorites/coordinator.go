// Package favorites keeps a user's favorite teams and sports consistent
// between the conference API and the local cache under direct user action.
//
// Every toggle is a remote-then-local dual write with no compensation: a
// remote failure aborts before any local mutation, while a local failure
// after a successful remote write leaves the two sides divergent. That
// drift is repaired by Reconcile, which re-derives the local rows from the
// remote user record; the maintenance sweep runs it periodically.
package favorites

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/summitathletics/summit-data/internal/model"
	"github.com/summitathletics/summit-data/internal/store"
	syncpkg "github.com/summitathletics/summit-data/internal/sync"
)

// Remote is the slice of the conference API the coordinator writes to.
// Satisfied by *provider.Client.
type Remote interface {
	UpsertUser(ctx context.Context, userID string) error
	GetUser(ctx context.Context, userID string) (model.User, error)
	AddFavoriteSport(ctx context.Context, userID string, sportID int) error
	RemoveFavoriteSport(ctx context.Context, userID string, sportID int) error
	AddFavoriteTeam(ctx context.Context, userID string, teamID int) error
	RemoveFavoriteTeam(ctx context.Context, userID string, teamID int) error
}

// Local is the slice of the cache the coordinator reads and writes.
// Satisfied by *store.Store.
type Local interface {
	ListTeamsBySchool(ctx context.Context, schoolID int) ([]model.Team, error)
	ListFavoriteSportIDs(ctx context.Context, userID string) ([]int, error)
	ListFavoriteTeamIDs(ctx context.Context, userID string) ([]int, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	Write(ctx context.Context, fn func(ctx context.Context, tx store.Mutator) error) error
}

// Coordinator performs the dual writes. Safe for concurrent use.
type Coordinator struct {
	remote Remote
	local  Local
	logger *slog.Logger
}

// New creates a Coordinator with injected dependencies.
func New(remote Remote, local Local, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{remote: remote, local: local, logger: logger}
}

// EnsureUser upserts the user remotely, then locally, and records the
// device mapping for push targeting.
func (c *Coordinator) EnsureUser(ctx context.Context, userID, deviceID string) error {
	if err := c.remote.UpsertUser(ctx, userID); err != nil {
		return fmt.Errorf("remote upsert user: %w", err)
	}
	err := c.local.Write(ctx, func(ctx context.Context, tx store.Mutator) error {
		if err := tx.UpsertUser(ctx, userID); err != nil {
			return err
		}
		if deviceID != "" {
			return tx.UpsertDevice(ctx, deviceID, userID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("local upsert user: %w", err)
	}
	return nil
}

// AddTeam favorites one team: remote write first, local second. A local
// failure after remote success is surfaced but not compensated.
func (c *Coordinator) AddTeam(ctx context.Context, userID string, teamID int) error {
	if err := c.remote.AddFavoriteTeam(ctx, userID, teamID); err != nil {
		return fmt.Errorf("remote add favorite team: %w", err)
	}
	err := c.local.Write(ctx, func(ctx context.Context, tx store.Mutator) error {
		return tx.AddFavoriteTeam(ctx, userID, teamID)
	})
	if err != nil {
		c.logger.Warn("Favorite team added remotely but local write failed; reconcile will repair",
			"user_id", userID, "team_id", teamID, "error", err)
		return fmt.Errorf("local add favorite team: %w", err)
	}
	return nil
}

// RemoveTeam unfavorites one team, same ordering and failure semantics as
// AddTeam. Removing a team that is not favorited is a no-op.
func (c *Coordinator) RemoveTeam(ctx context.Context, userID string, teamID int) error {
	if err := c.remote.RemoveFavoriteTeam(ctx, userID, teamID); err != nil {
		return fmt.Errorf("remote remove favorite team: %w", err)
	}
	err := c.local.Write(ctx, func(ctx context.Context, tx store.Mutator) error {
		return tx.RemoveFavoriteTeam(ctx, userID, teamID)
	})
	if err != nil {
		c.logger.Warn("Favorite team removed remotely but local delete failed; reconcile will repair",
			"user_id", userID, "team_id", teamID, "error", err)
		return fmt.Errorf("local remove favorite team: %w", err)
	}
	return nil
}

// AddSport favorites one sport.
func (c *Coordinator) AddSport(ctx context.Context, userID string, sportID int) error {
	if err := c.remote.AddFavoriteSport(ctx, userID, sportID); err != nil {
		return fmt.Errorf("remote add favorite sport: %w", err)
	}
	err := c.local.Write(ctx, func(ctx context.Context, tx store.Mutator) error {
		return tx.AddFavoriteSport(ctx, userID, sportID)
	})
	if err != nil {
		c.logger.Warn("Favorite sport added remotely but local write failed; reconcile will repair",
			"user_id", userID, "sport_id", sportID, "error", err)
		return fmt.Errorf("local add favorite sport: %w", err)
	}
	return nil
}

// RemoveSport unfavorites one sport.
func (c *Coordinator) RemoveSport(ctx context.Context, userID string, sportID int) error {
	if err := c.remote.RemoveFavoriteSport(ctx, userID, sportID); err != nil {
		return fmt.Errorf("remote remove favorite sport: %w", err)
	}
	err := c.local.Write(ctx, func(ctx context.Context, tx store.Mutator) error {
		return tx.RemoveFavoriteSport(ctx, userID, sportID)
	})
	if err != nil {
		c.logger.Warn("Favorite sport removed remotely but local delete failed; reconcile will repair",
			"user_id", userID, "sport_id", sportID, "error", err)
		return fmt.Errorf("local remove favorite sport: %w", err)
	}
	return nil
}

// AddSchoolTeams favorites every team of one school, fanning the dual
// writes out concurrently. Per-team failures do not cancel siblings;
// partial success stands and is reported as one joined error.
func (c *Coordinator) AddSchoolTeams(ctx context.Context, userID string, schoolID int) error {
	return c.schoolFanOut(ctx, userID, schoolID, c.AddTeam)
}

// RemoveSchoolTeams unfavorites every team of one school.
func (c *Coordinator) RemoveSchoolTeams(ctx context.Context, userID string, schoolID int) error {
	return c.schoolFanOut(ctx, userID, schoolID, c.RemoveTeam)
}

func (c *Coordinator) schoolFanOut(ctx context.Context, userID string, schoolID int,
	op func(ctx context.Context, userID string, teamID int) error) error {

	teams, err := c.local.ListTeamsBySchool(ctx, schoolID)
	if err != nil {
		return fmt.Errorf("list school teams: %w", err)
	}

	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)
	for _, team := range teams {
		wg.Add(1)
		go func(teamID int) {
			defer wg.Done()
			if err := op(ctx, userID, teamID); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("team %d: %w", teamID, err))
				mu.Unlock()
			}
		}(team.ID)
	}
	wg.Wait()

	if len(errs) > 0 {
		c.logger.Warn("School favorites fan-out finished with failures",
			"user_id", userID, "school_id", schoolID,
			"teams", len(teams), "failed", len(errs))
		return fmt.Errorf("school %d: %d of %d team favorites failed: %w",
			schoolID, len(errs), len(teams), errs[0])
	}
	return nil
}

// Reconcile re-derives the local favorite rows from the remote user record
// using the same ordered merge-diff as the sync engine, repairing any drift
// left behind by partial dual writes. Both favorite sets commit in one
// transaction.
func (c *Coordinator) Reconcile(ctx context.Context, userID string) error {
	remote, err := c.remote.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("fetch user: %w", err)
	}

	localSports, err := c.local.ListFavoriteSportIDs(ctx, userID)
	if err != nil {
		return err
	}
	localTeams, err := c.local.ListFavoriteTeamIDs(ctx, userID)
	if err != nil {
		return err
	}

	ident := func(id int) int { return id }
	same := func(a, b int) bool { return true }
	sportSteps := syncpkg.Diff(localSports, remote.FavoriteSportIDs, ident, same)
	teamSteps := syncpkg.Diff(localTeams, remote.FavoriteTeamIDs, ident, same)

	mutations := 0
	for _, s := range sportSteps {
		if s.Op != syncpkg.OpUpdate {
			mutations++
		}
	}
	for _, s := range teamSteps {
		if s.Op != syncpkg.OpUpdate {
			mutations++
		}
	}
	if mutations == 0 {
		return nil
	}

	err = c.local.Write(ctx, func(ctx context.Context, tx store.Mutator) error {
		if err := tx.UpsertUser(ctx, userID); err != nil {
			return err
		}
		for _, s := range sportSteps {
			switch s.Op {
			case syncpkg.OpInsert:
				if err := tx.AddFavoriteSport(ctx, userID, s.Remote); err != nil {
					return err
				}
			case syncpkg.OpDelete:
				if err := tx.RemoveFavoriteSport(ctx, userID, s.Local); err != nil {
					return err
				}
			}
		}
		for _, s := range teamSteps {
			switch s.Op {
			case syncpkg.OpInsert:
				if err := tx.AddFavoriteTeam(ctx, userID, s.Remote); err != nil {
					return err
				}
			case syncpkg.OpDelete:
				if err := tx.RemoveFavoriteTeam(ctx, userID, s.Local); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("apply favorites reconcile: %w", err)
	}

	c.logger.Info("Favorites reconciled", "user_id", userID, "mutations", mutations)
	return nil
}

// ReconcileAll runs Reconcile for every locally known user. Per-user
// failures are logged and do not stop the sweep.
func (c *Coordinator) ReconcileAll(ctx context.Context) {
	userIDs, err := c.local.ListUserIDs(ctx)
	if err != nil {
		c.logger.Warn("Reconcile sweep: failed to list users", "error", err)
		return
	}
	for _, id := range userIDs {
		if err := c.Reconcile(ctx, id); err != nil {
			c.logger.Warn("Reconcile sweep: user failed", "user_id", id, "error", err)
		}
	}
}
