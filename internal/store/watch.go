package store

import (
	"context"
	"strconv"
	"sync"

	"github.com/summitathletics/summit-data/internal/model"
)

// notifier fans committed change sets out to active watch subscriptions.
// Each subscription carries a matcher; publish coalesces wake-ups through a
// one-slot signal channel, so a slow consumer sees at most one pending
// re-query rather than a backlog.
type notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscription
}

type subscription struct {
	match  func(Change) bool
	signal chan struct{}
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[int]*subscription)}
}

func (n *notifier) subscribe(match func(Change) bool) (id int, signal <-chan struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	sub := &subscription{match: match, signal: make(chan struct{}, 1)}
	n.subs[n.nextID] = sub
	return n.nextID, sub.signal
}

func (n *notifier) unsubscribe(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subs, id)
}

func (n *notifier) publish(changes []Change) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, sub := range n.subs {
		for _, c := range changes {
			if c.Table == "*" || sub.match(c) {
				select {
				case sub.signal <- struct{}{}:
				default:
				}
				break
			}
		}
	}
}

// Publish injects a change set into the in-process notifier. The Listen
// bridge calls this with decoded pg_notify payloads; tests call it directly.
func (s *Store) Publish(changes []Change) {
	s.notifier.publish(changes)
}

// watch is the shared stream loop: emit one initial snapshot, then a fresh
// snapshot after every matching commit. The returned channel closes when
// ctx is cancelled. A failed initial fetch fails the subscription outright.
func watch[T any](ctx context.Context, s *Store, match func(Change) bool, fetch func(context.Context) (T, error)) (<-chan T, error) {
	// Subscribe before the initial read so a commit landing between the
	// two is never missed.
	id, signal := s.notifier.subscribe(match)

	initial, err := fetch(ctx)
	if err != nil {
		s.notifier.unsubscribe(id)
		return nil, err
	}

	out := make(chan T, 1)
	out <- initial

	go func() {
		defer s.notifier.unsubscribe(id)
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
				snapshot, err := fetch(ctx)
				if err != nil {
					// The consumer keeps the last good snapshot; the next
					// commit triggers another attempt.
					s.logger.Warn("Watch re-query failed", "error", err)
					continue
				}
				select {
				case out <- snapshot:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// gameChangeMatcher reports whether a change touches the given game: the
// game row itself, or a result keyed "<gameID>/<teamID>". The separator
// check keeps a watcher on "g1" from waking on results of "g12".
func gameChangeMatcher(gameID string) func(Change) bool {
	return func(c Change) bool {
		return c.Table == "game" && c.Key == gameID ||
			c.Table == "game_result" && len(c.Key) > len(gameID) &&
				c.Key[:len(gameID)] == gameID && c.Key[len(gameID)] == '/'
	}
}

// WatchGame streams snapshots of one game. ErrNotFound from the initial
// read fails the watch; a game deleted later yields no further snapshots.
func (s *Store) WatchGame(ctx context.Context, gameID string) (<-chan model.Game, error) {
	return watch(ctx, s, gameChangeMatcher(gameID), func(ctx context.Context) (model.Game, error) {
		return s.GetGame(ctx, gameID)
	})
}

// WatchNewsItems streams one feed's items. Any news item or category change
// may affect the join, so the matcher is table-level.
func (s *Store) WatchNewsItems(ctx context.Context, feedID int) (<-chan []model.NewsItem, error) {
	feedKey := strconv.Itoa(feedID)
	match := func(c Change) bool {
		return c.Table == "news_item" ||
			c.Table == "newsfeed_category" && c.Key == feedKey
	}
	return watch(ctx, s, match, func(ctx context.Context) ([]model.NewsItem, error) {
		return s.ListNewsItemsByFeed(ctx, feedID)
	})
}

// WatchUser streams a user's record with favorites; this is how the UI
// learns the outcome of favorite toggles and reconcile sweeps.
func (s *Store) WatchUser(ctx context.Context, userID string) (<-chan model.User, error) {
	match := func(c Change) bool {
		switch c.Table {
		case "users", "favorite_sport", "favorite_team":
			return c.Key == userID
		}
		return false
	}
	return watch(ctx, s, match, func(ctx context.Context) (model.User, error) {
		return s.GetUser(ctx, userID)
	})
}
