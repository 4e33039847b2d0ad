package favorites

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/summitathletics/summit-data/internal/model"
	"github.com/summitathletics/summit-data/internal/store"
)

// --------------------------------------------------------------------------
// Fakes
// --------------------------------------------------------------------------

type fakeAPI struct {
	mu    sync.Mutex
	calls []string
	user  model.User
	err   error
}

func (f *fakeAPI) record(s string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, s)
	return nil
}

func (f *fakeAPI) UpsertUser(_ context.Context, userID string) error {
	return f.record("upsert user " + userID)
}
func (f *fakeAPI) GetUser(_ context.Context, userID string) (model.User, error) {
	if f.err != nil {
		return model.User{}, f.err
	}
	return f.user, nil
}
func (f *fakeAPI) AddFavoriteSport(_ context.Context, userID string, sportID int) error {
	return f.record(fmt.Sprintf("add sport %d", sportID))
}
func (f *fakeAPI) RemoveFavoriteSport(_ context.Context, userID string, sportID int) error {
	return f.record(fmt.Sprintf("remove sport %d", sportID))
}
func (f *fakeAPI) AddFavoriteTeam(_ context.Context, userID string, teamID int) error {
	return f.record(fmt.Sprintf("add team %d", teamID))
}
func (f *fakeAPI) RemoveFavoriteTeam(_ context.Context, userID string, teamID int) error {
	return f.record(fmt.Sprintf("remove team %d", teamID))
}

// fakeCache tracks favorite memberships in memory. writeErr forces every
// Write to fail, simulating a local store outage after the remote write.
type fakeCache struct {
	mu       sync.Mutex
	teams    []model.Team
	sports   map[string][]int
	favTeams map[string][]int
	users    []string
	writeErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		sports:   make(map[string][]int),
		favTeams: make(map[string][]int),
	}
}

func (f *fakeCache) ListTeamsBySchool(_ context.Context, schoolID int) ([]model.Team, error) {
	var out []model.Team
	for _, t := range f.teams {
		if t.SchoolID == schoolID {
			out = append(out, t)
		}
	}
	return out, nil
}
func (f *fakeCache) ListFavoriteSportIDs(_ context.Context, userID string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.sports[userID]...), nil
}
func (f *fakeCache) ListFavoriteTeamIDs(_ context.Context, userID string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.favTeams[userID]...), nil
}
func (f *fakeCache) ListUserIDs(context.Context) ([]string, error) { return f.users, nil }

func (f *fakeCache) Write(ctx context.Context, fn func(ctx context.Context, tx store.Mutator) error) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	return fn(ctx, (*cacheTx)(f))
}

// cacheTx applies mutations directly; the fake has no rollback because the
// tests that need failure semantics fail the whole Write up front.
type cacheTx fakeCache

func (t *cacheTx) add(m map[string][]int, userID string, id int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, v := range m[userID] {
		if v == id {
			return nil
		}
	}
	m[userID] = append(m[userID], id)
	return nil
}

func (t *cacheTx) remove(m map[string][]int, userID string, id int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := m[userID][:0]
	for _, v := range m[userID] {
		if v != id {
			out = append(out, v)
		}
	}
	m[userID] = out
	return nil
}

func (t *cacheTx) AddFavoriteSport(_ context.Context, userID string, sportID int) error {
	return t.add(t.sports, userID, sportID)
}
func (t *cacheTx) RemoveFavoriteSport(_ context.Context, userID string, sportID int) error {
	return t.remove(t.sports, userID, sportID)
}
func (t *cacheTx) AddFavoriteTeam(_ context.Context, userID string, teamID int) error {
	return t.add(t.favTeams, userID, teamID)
}
func (t *cacheTx) RemoveFavoriteTeam(_ context.Context, userID string, teamID int) error {
	return t.remove(t.favTeams, userID, teamID)
}
func (t *cacheTx) UpsertUser(_ context.Context, userID string) error {
	for _, u := range t.users {
		if u == userID {
			return nil
		}
	}
	t.users = append(t.users, userID)
	return nil
}
func (t *cacheTx) UpsertDevice(_ context.Context, deviceID, userID string) error { return nil }

// Unused row mutations; the coordinator never touches reference data.
func (t *cacheTx) InsertSchool(context.Context, model.School) error          { return nil }
func (t *cacheTx) UpdateSchool(context.Context, model.School) error          { return nil }
func (t *cacheTx) DeleteSchool(context.Context, int) error                   { return nil }
func (t *cacheTx) InsertSport(context.Context, model.Sport) error            { return nil }
func (t *cacheTx) UpdateSport(context.Context, model.Sport) error            { return nil }
func (t *cacheTx) DeleteSport(context.Context, int) error                    { return nil }
func (t *cacheTx) InsertTeam(context.Context, model.Team) error              { return nil }
func (t *cacheTx) UpdateTeam(context.Context, model.Team) error              { return nil }
func (t *cacheTx) DeleteTeam(context.Context, int) error                     { return nil }
func (t *cacheTx) InsertGame(context.Context, model.Game) error              { return nil }
func (t *cacheTx) UpdateGame(context.Context, model.Game) error              { return nil }
func (t *cacheTx) DeleteGame(context.Context, string) error                  { return nil }
func (t *cacheTx) InsertGameResult(context.Context, model.GameResult) error  { return nil }
func (t *cacheTx) UpdateGameResult(context.Context, model.GameResult) error  { return nil }
func (t *cacheTx) DeleteGameResult(context.Context, string, int) error       { return nil }
func (t *cacheTx) InsertNewsFeed(context.Context, model.NewsFeed) error      { return nil }
func (t *cacheTx) UpdateNewsFeed(context.Context, model.NewsFeed) error      { return nil }
func (t *cacheTx) DeleteNewsFeed(context.Context, int) error                 { return nil }
func (t *cacheTx) UpsertNewsItem(context.Context, model.NewsItem) error      { return nil }
func (t *cacheTx) UpdateNewsItem(context.Context, model.NewsItem) error      { return nil }
func (t *cacheTx) LinkNewsItem(context.Context, int, string) error           { return nil }
func (t *cacheTx) UnlinkNewsItem(context.Context, int, string) error         { return nil }

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestAddTeamWritesRemoteThenLocal(t *testing.T) {
	api := &fakeAPI{}
	cache := newFakeCache()
	c := New(api, cache, nil)

	if err := c.AddTeam(context.Background(), "u1", 42); err != nil {
		t.Fatal(err)
	}
	if len(api.calls) != 1 || api.calls[0] != "add team 42" {
		t.Fatalf("remote calls = %v", api.calls)
	}
	if got := cache.favTeams["u1"]; len(got) != 1 || got[0] != 42 {
		t.Fatalf("local favorites = %v", got)
	}
}

func TestAddTeamRemoteFailureSkipsLocal(t *testing.T) {
	api := &fakeAPI{err: errors.New("upstream down")}
	cache := newFakeCache()
	c := New(api, cache, nil)

	if err := c.AddTeam(context.Background(), "u1", 42); err == nil {
		t.Fatal("expected error")
	}
	if len(cache.favTeams["u1"]) != 0 {
		t.Fatalf("local store touched after remote failure: %v", cache.favTeams["u1"])
	}
}

func TestAddTeamLocalFailureLeavesRemoteWrite(t *testing.T) {
	// The documented drift: the remote write stands, the error is
	// surfaced, and no compensation runs.
	api := &fakeAPI{}
	cache := newFakeCache()
	cache.writeErr = errors.New("database down")
	c := New(api, cache, nil)

	err := c.AddTeam(context.Background(), "u1", 42)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(api.calls) != 1 {
		t.Fatalf("remote calls = %v", api.calls)
	}
	if len(cache.favTeams["u1"]) != 0 {
		t.Fatalf("local favorites = %v", cache.favTeams["u1"])
	}
}

func TestAddTeamIsIdempotentLocally(t *testing.T) {
	api := &fakeAPI{}
	cache := newFakeCache()
	c := New(api, cache, nil)

	for i := 0; i < 3; i++ {
		if err := c.AddTeam(context.Background(), "u1", 42); err != nil {
			t.Fatal(err)
		}
	}
	if got := cache.favTeams["u1"]; len(got) != 1 {
		t.Fatalf("expected a single membership row, got %v", got)
	}
}

func TestSchoolFanOutPartialFailure(t *testing.T) {
	api := &fakeAPI{}
	cache := newFakeCache()
	cache.teams = []model.Team{
		{ID: 1, SchoolID: 5},
		{ID: 2, SchoolID: 5},
		{ID: 3, SchoolID: 5},
		{ID: 9, SchoolID: 6}, // different school, untouched
	}
	// The API rejects team 2; its siblings must still land.
	failing := &rejectingAPI{fakeAPI: api, rejectTeam: 2}
	c := New(failing, cache, nil)

	err := c.AddSchoolTeams(context.Background(), "u1", 5)
	if err == nil {
		t.Fatal("expected joined error")
	}
	if !strings.Contains(err.Error(), "1 of 3 team favorites failed") {
		t.Fatalf("error = %v", err)
	}

	got := append([]int(nil), cache.favTeams["u1"]...)
	sort.Ints(got)
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("partial success must stand, got %v", got)
	}
}

type rejectingAPI struct {
	*fakeAPI
	rejectTeam int
}

func (r *rejectingAPI) AddFavoriteTeam(ctx context.Context, userID string, teamID int) error {
	if teamID == r.rejectTeam {
		return errors.New("rejected")
	}
	return r.fakeAPI.AddFavoriteTeam(ctx, userID, teamID)
}

func TestReconcileRepairsDrift(t *testing.T) {
	api := &fakeAPI{user: model.User{
		ID:               "u1",
		FavoriteSportIDs: []int{1, 2},
		FavoriteTeamIDs:  []int{10},
	}}
	cache := newFakeCache()
	cache.sports["u1"] = []int{2, 3} // 3 is local-only drift
	cache.favTeams["u1"] = []int{}   // team 10 missing locally
	c := New(api, cache, nil)

	if err := c.Reconcile(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}

	sports := append([]int(nil), cache.sports["u1"]...)
	sort.Ints(sports)
	if len(sports) != 2 || sports[0] != 1 || sports[1] != 2 {
		t.Fatalf("sports after reconcile = %v", sports)
	}
	if got := cache.favTeams["u1"]; len(got) != 1 || got[0] != 10 {
		t.Fatalf("teams after reconcile = %v", got)
	}
}

func TestReconcileNoDriftSkipsWrite(t *testing.T) {
	api := &fakeAPI{user: model.User{
		ID:               "u1",
		FavoriteSportIDs: []int{1},
		FavoriteTeamIDs:  []int{10},
	}}
	cache := newFakeCache()
	cache.sports["u1"] = []int{1}
	cache.favTeams["u1"] = []int{10}
	cache.writeErr = errors.New("write must not be called")
	c := New(api, cache, nil)

	if err := c.Reconcile(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}
}

func TestEnsureUserRegistersDevice(t *testing.T) {
	api := &fakeAPI{}
	cache := newFakeCache()
	c := New(api, cache, nil)

	if err := c.EnsureUser(context.Background(), "u1", "d1"); err != nil {
		t.Fatal(err)
	}
	if len(api.calls) != 1 || api.calls[0] != "upsert user u1" {
		t.Fatalf("remote calls = %v", api.calls)
	}
	if len(cache.users) != 1 || cache.users[0] != "u1" {
		t.Fatalf("local users = %v", cache.users)
	}
}
