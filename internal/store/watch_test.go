package store

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func testStore() *Store {
	return &Store{notifier: newNotifier(), logger: slog.Default()}
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		panic("unreachable")
	}
}

func expectNone[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected snapshot: %v", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifierFiltersByMatcher(t *testing.T) {
	n := newNotifier()
	_, gameSignal := n.subscribe(func(c Change) bool { return c.Table == "game" })
	_, userSignal := n.subscribe(func(c Change) bool { return c.Table == "users" })

	n.publish([]Change{{Table: "game", Key: "g1"}})

	select {
	case <-gameSignal:
	default:
		t.Fatal("matching subscription not signaled")
	}
	select {
	case <-userSignal:
		t.Fatal("non-matching subscription signaled")
	default:
	}
}

func TestNotifierWildcardWakesEveryone(t *testing.T) {
	n := newNotifier()
	_, a := n.subscribe(func(c Change) bool { return false })
	_, b := n.subscribe(func(c Change) bool { return false })

	n.publish([]Change{{Table: "*"}})

	for i, sig := range []<-chan struct{}{a, b} {
		select {
		case <-sig:
		default:
			t.Fatalf("subscription %d missed the wildcard", i)
		}
	}
}

func TestNotifierCoalescesPendingSignals(t *testing.T) {
	n := newNotifier()
	_, sig := n.subscribe(func(c Change) bool { return true })

	for i := 0; i < 10; i++ {
		n.publish([]Change{{Table: "game", Key: "g1"}})
	}

	<-sig
	select {
	case <-sig:
		t.Fatal("expected at most one pending signal after a burst")
	default:
	}
}

func TestNotifierUnsubscribeStopsSignals(t *testing.T) {
	n := newNotifier()
	id, sig := n.subscribe(func(c Change) bool { return true })
	n.unsubscribe(id)

	n.publish([]Change{{Table: "game", Key: "g1"}})
	select {
	case <-sig:
		t.Fatal("unsubscribed channel still signaled")
	default:
	}
}

func TestWatchEmitsInitialSnapshotThenRequeries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := testStore()

	var version atomic.Int64
	ch, err := watch(ctx, s, func(c Change) bool { return c.Table == "game" },
		func(context.Context) (int64, error) { return version.Add(1), nil })
	if err != nil {
		t.Fatal(err)
	}

	if got := recv(t, ch); got != 1 {
		t.Fatalf("initial snapshot = %d", got)
	}

	s.Publish([]Change{{Table: "game", Key: "g1"}})
	if got := recv(t, ch); got != 2 {
		t.Fatalf("snapshot after commit = %d", got)
	}

	// A change the matcher rejects must not trigger a re-query.
	s.Publish([]Change{{Table: "users", Key: "u1"}})
	expectNone(t, ch)
}

func TestGameChangeMatcherRequiresKeySeparator(t *testing.T) {
	match := gameChangeMatcher("g1")

	tests := []struct {
		name   string
		change Change
		want   bool
	}{
		{"own game row", Change{Table: "game", Key: "g1"}, true},
		{"own result", Change{Table: "game_result", Key: "g1/000000010"}, true},
		{"other game row", Change{Table: "game", Key: "g12"}, false},
		{"other game result", Change{Table: "game_result", Key: "g12/000000010"}, false},
		{"result table without key", Change{Table: "game_result", Key: "g1"}, false},
		{"unrelated table", Change{Table: "users", Key: "g1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := match(tt.change); got != tt.want {
				t.Fatalf("match(%+v) = %v, want %v", tt.change, got, tt.want)
			}
		})
	}
}

func TestWatchInitialFetchErrorFailsSubscription(t *testing.T) {
	s := testStore()
	_, err := watch(context.Background(), s, func(Change) bool { return true },
		func(context.Context) (int, error) { return 0, ErrNotFound })
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if len(s.notifier.subs) != 0 {
		t.Fatal("failed watch leaked its subscription")
	}
}

func TestWatchRequeryFailureKeepsStreamAlive(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := testStore()

	var calls atomic.Int64
	ch, err := watch(ctx, s, func(Change) bool { return true },
		func(context.Context) (int64, error) {
			n := calls.Add(1)
			if n == 2 {
				return 0, errors.New("transient")
			}
			return n, nil
		})
	if err != nil {
		t.Fatal(err)
	}
	recv(t, ch)

	// First publish triggers the failing re-query; wait for it so the next
	// publish is not coalesced into the same signal.
	s.Publish([]Change{{Table: "game", Key: "g1"}})
	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("failing re-query never ran")
		}
		time.Sleep(time.Millisecond)
	}

	s.Publish([]Change{{Table: "game", Key: "g1"}})
	if got := recv(t, ch); got != 3 {
		t.Fatalf("snapshot after recovery = %d", got)
	}
}

func TestWatchClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := testStore()

	ch, err := watch(ctx, s, func(Change) bool { return true },
		func(context.Context) (int, error) { return 1, nil })
	if err != nil {
		t.Fatal(err)
	}
	recv(t, ch)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close after cancel")
	}
}

func TestWildcardChangeWakesKeyedWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := testStore()

	var version atomic.Int64
	ch, err := watch(ctx, s, func(c Change) bool { return c.Table == "game" && c.Key == "g1" },
		func(context.Context) (int64, error) { return version.Add(1), nil })
	if err != nil {
		t.Fatal(err)
	}
	recv(t, ch)

	// The Listen bridge publishes a wildcard after reconnecting; keyed
	// watchers must re-query since commits may have been missed.
	s.Publish([]Change{{Table: "*"}})
	if got := recv(t, ch); got != 2 {
		t.Fatalf("snapshot after wildcard = %d", got)
	}
}
