package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/summitathletics/summit-data/internal/model"
	"github.com/summitathletics/summit-data/internal/store"
)

// Remote is the slice of the conference API the engine reads from.
// Satisfied by *provider.Client.
type Remote interface {
	ListSchools(ctx context.Context) ([]model.School, error)
	ListSports(ctx context.Context) ([]model.Sport, error)
	ListTeams(ctx context.Context) ([]model.Team, error)
	ListGames(ctx context.Context, includeCancelled bool) ([]model.Game, error)
	ListGameResults(ctx context.Context) ([]model.GameResult, error)
	ListNewsFeeds(ctx context.Context) ([]model.NewsFeed, error)
	ListNewsItems(ctx context.Context, feedID int) ([]model.NewsItem, error)
}

// Local is the slice of the cache the engine reads and writes.
// Satisfied by *store.Store.
type Local interface {
	ListSchools(ctx context.Context) ([]model.School, error)
	ListSports(ctx context.Context) ([]model.Sport, error)
	ListTeams(ctx context.Context) ([]model.Team, error)
	ListGames(ctx context.Context) ([]model.Game, error)
	ListGameResults(ctx context.Context) ([]model.GameResult, error)
	ListNewsFeeds(ctx context.Context) ([]model.NewsFeed, error)
	ListNewsItemsByFeed(ctx context.Context, feedID int) ([]model.NewsItem, error)
	Write(ctx context.Context, fn func(ctx context.Context, tx store.Mutator) error) error
}

// Engine reconciles the local cache with the conference API, one collection
// per transaction. A network or decode failure aborts before any local
// mutation; a write failure rolls the whole collection's merge back.
// Readers never observe a partially applied merge.
type Engine struct {
	remote           Remote
	local            Local
	includeCancelled bool
	logger           *slog.Logger
}

// New creates an Engine with injected dependencies.
func New(remote Remote, local Local, includeCancelled bool, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		remote:           remote,
		local:            local,
		includeCancelled: includeCancelled,
		logger:           logger,
	}
}

// SyncAll refreshes every collection in dependency order: referenced rows
// (schools, sports) before referencing rows (teams, games, results).
// Per-collection failures are recorded and do not stop later collections.
func (e *Engine) SyncAll(ctx context.Context) Result {
	start := time.Now()
	var r Result

	record := func(name string, counts Counts, err error) Counts {
		if err != nil {
			r.AddErrorf("sync %s: %v", name, err)
		}
		return counts
	}

	c, err := e.SyncSchools(ctx)
	r.Schools = record("schools", c, err)
	c, err = e.SyncSports(ctx)
	r.Sports = record("sports", c, err)
	c, err = e.SyncTeams(ctx)
	r.Teams = record("teams", c, err)
	c, err = e.SyncNewsFeeds(ctx)
	r.NewsFeeds = record("newsfeeds", c, err)
	c, err = e.SyncNews(ctx)
	r.NewsItems = record("news", c, err)
	c, err = e.SyncGames(ctx)
	r.Games = record("games", c, err)
	c, err = e.SyncGameResults(ctx)
	r.Results = record("game results", c, err)

	r.Duration = time.Since(start)
	e.logger.Info("Sync run complete",
		"duration", r.Duration.Round(time.Millisecond), "summary", r.Summary())
	return r
}

// SyncSchools reconciles the school collection.
func (e *Engine) SyncSchools(ctx context.Context) (Counts, error) {
	remote, err := e.remote.ListSchools(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("fetch schools: %w", err)
	}
	local, err := e.local.ListSchools(ctx)
	if err != nil {
		return Counts{}, err
	}

	steps := Diff(local, remote, func(s model.School) int { return s.ID }, schoolEqual)
	return apply(ctx, e, "schools", steps, func(ctx context.Context, tx store.Mutator, s Step[model.School]) error {
		switch s.Op {
		case OpInsert:
			return tx.InsertSchool(ctx, s.Remote)
		case OpDelete:
			return tx.DeleteSchool(ctx, s.Local.ID)
		default:
			return tx.UpdateSchool(ctx, s.Remote)
		}
	})
}

// SyncSports reconciles the sport collection.
func (e *Engine) SyncSports(ctx context.Context) (Counts, error) {
	remote, err := e.remote.ListSports(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("fetch sports: %w", err)
	}
	local, err := e.local.ListSports(ctx)
	if err != nil {
		return Counts{}, err
	}

	steps := Diff(local, remote, func(s model.Sport) int { return s.ID }, sportEqual)
	return apply(ctx, e, "sports", steps, func(ctx context.Context, tx store.Mutator, s Step[model.Sport]) error {
		switch s.Op {
		case OpInsert:
			return tx.InsertSport(ctx, s.Remote)
		case OpDelete:
			return tx.DeleteSport(ctx, s.Local.ID)
		default:
			return tx.UpdateSport(ctx, s.Remote)
		}
	})
}

// SyncTeams reconciles the team collection.
func (e *Engine) SyncTeams(ctx context.Context) (Counts, error) {
	remote, err := e.remote.ListTeams(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("fetch teams: %w", err)
	}
	local, err := e.local.ListTeams(ctx)
	if err != nil {
		return Counts{}, err
	}

	steps := Diff(local, remote, func(t model.Team) int { return t.ID }, teamEqual)
	return apply(ctx, e, "teams", steps, func(ctx context.Context, tx store.Mutator, s Step[model.Team]) error {
		switch s.Op {
		case OpInsert:
			return tx.InsertTeam(ctx, s.Remote)
		case OpDelete:
			return tx.DeleteTeam(ctx, s.Local.ID)
		default:
			return tx.UpdateTeam(ctx, s.Remote)
		}
	})
}

// SyncGames reconciles the full schedule.
func (e *Engine) SyncGames(ctx context.Context) (Counts, error) {
	remote, err := e.remote.ListGames(ctx, e.includeCancelled)
	if err != nil {
		return Counts{}, fmt.Errorf("fetch games: %w", err)
	}
	local, err := e.local.ListGames(ctx)
	if err != nil {
		return Counts{}, err
	}

	steps := Diff(local, remote, func(g model.Game) string { return g.ID }, gameEqual)
	return apply(ctx, e, "games", steps, func(ctx context.Context, tx store.Mutator, s Step[model.Game]) error {
		switch s.Op {
		case OpInsert:
			return tx.InsertGame(ctx, s.Remote)
		case OpDelete:
			return tx.DeleteGame(ctx, s.Local.ID)
		default:
			return tx.UpdateGame(ctx, s.Remote)
		}
	})
}

// SyncGameResults reconciles per-team results. Remote rows whose game or
// team is not cached yet are held back until the next run rather than
// failing the merge on a foreign key.
func (e *Engine) SyncGameResults(ctx context.Context) (Counts, error) {
	remote, err := e.remote.ListGameResults(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("fetch game results: %w", err)
	}

	games, err := e.local.ListGames(ctx)
	if err != nil {
		return Counts{}, err
	}
	teams, err := e.local.ListTeams(ctx)
	if err != nil {
		return Counts{}, err
	}
	knownGames := make(map[string]bool, len(games))
	for _, g := range games {
		knownGames[g.ID] = true
	}
	knownTeams := make(map[int]bool, len(teams))
	for _, t := range teams {
		knownTeams[t.ID] = true
	}
	kept := remote[:0:0]
	for _, r := range remote {
		if knownGames[r.GameID] && knownTeams[r.TeamID] {
			kept = append(kept, r)
		}
	}

	local, err := e.local.ListGameResults(ctx)
	if err != nil {
		return Counts{}, err
	}

	key := func(r model.GameResult) string {
		return fmt.Sprintf("%s/%09d", r.GameID, r.TeamID)
	}
	steps := Diff(local, kept, key, resultEqual)
	return apply(ctx, e, "game results", steps, func(ctx context.Context, tx store.Mutator, s Step[model.GameResult]) error {
		switch s.Op {
		case OpInsert:
			return tx.InsertGameResult(ctx, s.Remote)
		case OpDelete:
			return tx.DeleteGameResult(ctx, s.Local.GameID, s.Local.TeamID)
		default:
			return tx.UpdateGameResult(ctx, s.Remote)
		}
	})
}

// SyncNewsFeeds reconciles the feed list.
func (e *Engine) SyncNewsFeeds(ctx context.Context) (Counts, error) {
	remote, err := e.remote.ListNewsFeeds(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("fetch newsfeeds: %w", err)
	}
	local, err := e.local.ListNewsFeeds(ctx)
	if err != nil {
		return Counts{}, err
	}

	steps := Diff(local, remote, func(f model.NewsFeed) int { return f.ID }, feedEqual)
	return apply(ctx, e, "newsfeeds", steps, func(ctx context.Context, tx store.Mutator, s Step[model.NewsFeed]) error {
		switch s.Op {
		case OpInsert:
			return tx.InsertNewsFeed(ctx, s.Remote)
		case OpDelete:
			return tx.DeleteNewsFeed(ctx, s.Local.ID)
		default:
			return tx.UpdateNewsFeed(ctx, s.Remote)
		}
	})
}

// SyncNews reconciles every cached feed's items, one transaction per feed.
// News items are keyed by title; an item shared between feeds survives
// until its last feed drops it.
func (e *Engine) SyncNews(ctx context.Context) (Counts, error) {
	feeds, err := e.local.ListNewsFeeds(ctx)
	if err != nil {
		return Counts{}, err
	}

	var total Counts
	for _, feed := range feeds {
		c, err := e.SyncFeedItems(ctx, feed.ID)
		if err != nil {
			return total, fmt.Errorf("feed %d: %w", feed.ID, err)
		}
		total.Inserted += c.Inserted
		total.Updated += c.Updated
		total.Deleted += c.Deleted
		total.Unchanged += c.Unchanged
	}
	return total, nil
}

// SyncFeedItems reconciles one feed's items.
func (e *Engine) SyncFeedItems(ctx context.Context, feedID int) (Counts, error) {
	remote, err := e.remote.ListNewsItems(ctx, feedID)
	if err != nil {
		return Counts{}, fmt.Errorf("fetch news items: %w", err)
	}
	local, err := e.local.ListNewsItemsByFeed(ctx, feedID)
	if err != nil {
		return Counts{}, err
	}

	steps := Diff(local, remote, func(n model.NewsItem) string { return n.Title }, newsItemEqual)
	return apply(ctx, e, "news items", steps, func(ctx context.Context, tx store.Mutator, s Step[model.NewsItem]) error {
		switch s.Op {
		case OpInsert:
			if err := tx.UpsertNewsItem(ctx, s.Remote); err != nil {
				return err
			}
			return tx.LinkNewsItem(ctx, feedID, s.Remote.Title)
		case OpDelete:
			return tx.UnlinkNewsItem(ctx, feedID, s.Local.Title)
		default:
			return tx.UpdateNewsItem(ctx, s.Remote)
		}
	})
}

// apply commits the mutation steps of one collection in a single
// transaction. A step failure aborts the transaction; nothing partial is
// ever visible. A diff with no mutations skips the transaction entirely.
func apply[T any](ctx context.Context, e *Engine, name string, steps []Step[T],
	applyStep func(ctx context.Context, tx store.Mutator, s Step[T]) error) (Counts, error) {

	counts := countSteps(steps)
	if counts.Mutations() == 0 {
		return counts, nil
	}

	err := e.local.Write(ctx, func(ctx context.Context, tx store.Mutator) error {
		for _, s := range steps {
			if s.Op == OpUpdate && !s.Changed {
				continue
			}
			if err := applyStep(ctx, tx, s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Counts{}, fmt.Errorf("apply %s merge: %w", name, err)
	}

	e.logger.Debug("Collection synced", "collection", name,
		"inserted", counts.Inserted, "updated", counts.Updated,
		"deleted", counts.Deleted, "unchanged", counts.Unchanged)
	return counts, nil
}

// --------------------------------------------------------------------------
// Changed-field comparisons — identity is excluded, it already matched
// --------------------------------------------------------------------------

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func schoolEqual(a, b model.School) bool {
	return a.Name == b.Name && a.DisplayName == b.DisplayName &&
		a.Location == b.Location && eqPtr(a.LogoURL, b.LogoURL)
}

func sportEqual(a, b model.Sport) bool {
	return a.Name == b.Name && a.Gender == b.Gender && eqPtr(a.IconURL, b.IconURL) &&
		eqPtr(a.NewsFeedID, b.NewsFeedID) && a.WinValue == b.WinValue
}

func teamEqual(a, b model.Team) bool {
	return a.SportID == b.SportID && a.SchoolID == b.SchoolID && a.IsConference == b.IsConference
}

func gameEqual(a, b model.Game) bool {
	return a.SportID == b.SportID && a.StartTime.Equal(b.StartTime) &&
		a.Status == b.Status && eqPtr(a.GameTime, b.GameTime) &&
		eqPtr(a.Description, b.Description) &&
		a.IsExhibition == b.IsExhibition && a.IsPlayoff == b.IsPlayoff
}

func resultEqual(a, b model.GameResult) bool {
	return eqPtr(a.Score, b.Score) && a.Outcome == b.Outcome && a.IsHome == b.IsHome
}

func feedEqual(a, b model.NewsFeed) bool {
	return a.DisplayName == b.DisplayName && a.URL == b.URL
}

func newsItemEqual(a, b model.NewsItem) bool {
	return a.Link == b.Link && a.Content == b.Content &&
		eqPtr(a.ImageURL, b.ImageURL) && a.Published.Equal(b.Published)
}
