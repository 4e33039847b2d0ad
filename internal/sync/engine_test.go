package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/summitathletics/summit-data/internal/model"
	"github.com/summitathletics/summit-data/internal/store"
)

// --------------------------------------------------------------------------
// Fakes
// --------------------------------------------------------------------------

type fakeRemote struct {
	schools []model.School
	sports  []model.Sport
	teams   []model.Team
	games   []model.Game
	results []model.GameResult
	feeds   []model.NewsFeed
	items   map[int][]model.NewsItem
	err     error
}

func (f *fakeRemote) ListSchools(context.Context) ([]model.School, error) { return f.schools, f.err }
func (f *fakeRemote) ListSports(context.Context) ([]model.Sport, error)   { return f.sports, f.err }
func (f *fakeRemote) ListTeams(context.Context) ([]model.Team, error)     { return f.teams, f.err }
func (f *fakeRemote) ListGames(_ context.Context, _ bool) ([]model.Game, error) {
	return f.games, f.err
}
func (f *fakeRemote) ListGameResults(context.Context) ([]model.GameResult, error) {
	return f.results, f.err
}
func (f *fakeRemote) ListNewsFeeds(context.Context) ([]model.NewsFeed, error) { return f.feeds, f.err }
func (f *fakeRemote) ListNewsItems(_ context.Context, feedID int) ([]model.NewsItem, error) {
	return f.items[feedID], f.err
}

// fakeLocal records every mutation as an op string. A Write whose fn fails
// discards the ops recorded inside it, mirroring a rolled-back transaction.
type fakeLocal struct {
	schools []model.School
	sports  []model.Sport
	teams   []model.Team
	games   []model.Game
	results []model.GameResult
	feeds   []model.NewsFeed
	items   map[int][]model.NewsItem

	ops    []string
	failOn string // op string that makes the mutator fail
}

func (f *fakeLocal) ListSchools(context.Context) ([]model.School, error) { return f.schools, nil }
func (f *fakeLocal) ListSports(context.Context) ([]model.Sport, error)   { return f.sports, nil }
func (f *fakeLocal) ListTeams(context.Context) ([]model.Team, error)     { return f.teams, nil }
func (f *fakeLocal) ListGames(context.Context) ([]model.Game, error)     { return f.games, nil }
func (f *fakeLocal) ListGameResults(context.Context) ([]model.GameResult, error) {
	return f.results, nil
}
func (f *fakeLocal) ListNewsFeeds(context.Context) ([]model.NewsFeed, error) { return f.feeds, nil }
func (f *fakeLocal) ListNewsItemsByFeed(_ context.Context, feedID int) ([]model.NewsItem, error) {
	return f.items[feedID], nil
}

func (f *fakeLocal) Write(ctx context.Context, fn func(ctx context.Context, tx store.Mutator) error) error {
	m := &fakeMutator{failOn: f.failOn}
	if err := fn(ctx, m); err != nil {
		return err
	}
	f.ops = append(f.ops, m.ops...)
	return nil
}

type fakeMutator struct {
	ops    []string
	failOn string
}

func (m *fakeMutator) op(s string) error {
	if s == m.failOn {
		return errors.New("forced failure on " + s)
	}
	m.ops = append(m.ops, s)
	return nil
}

func (m *fakeMutator) InsertSchool(_ context.Context, s model.School) error {
	return m.op(fmt.Sprintf("insert school %d", s.ID))
}
func (m *fakeMutator) UpdateSchool(_ context.Context, s model.School) error {
	return m.op(fmt.Sprintf("update school %d", s.ID))
}
func (m *fakeMutator) DeleteSchool(_ context.Context, id int) error {
	return m.op(fmt.Sprintf("delete school %d", id))
}
func (m *fakeMutator) InsertSport(_ context.Context, s model.Sport) error {
	return m.op(fmt.Sprintf("insert sport %d", s.ID))
}
func (m *fakeMutator) UpdateSport(_ context.Context, s model.Sport) error {
	return m.op(fmt.Sprintf("update sport %d", s.ID))
}
func (m *fakeMutator) DeleteSport(_ context.Context, id int) error {
	return m.op(fmt.Sprintf("delete sport %d", id))
}
func (m *fakeMutator) InsertTeam(_ context.Context, t model.Team) error {
	return m.op(fmt.Sprintf("insert team %d", t.ID))
}
func (m *fakeMutator) UpdateTeam(_ context.Context, t model.Team) error {
	return m.op(fmt.Sprintf("update team %d", t.ID))
}
func (m *fakeMutator) DeleteTeam(_ context.Context, id int) error {
	return m.op(fmt.Sprintf("delete team %d", id))
}
func (m *fakeMutator) InsertGame(_ context.Context, g model.Game) error {
	return m.op("insert game " + g.ID)
}
func (m *fakeMutator) UpdateGame(_ context.Context, g model.Game) error {
	return m.op("update game " + g.ID)
}
func (m *fakeMutator) DeleteGame(_ context.Context, id string) error {
	return m.op("delete game " + id)
}
func (m *fakeMutator) InsertGameResult(_ context.Context, r model.GameResult) error {
	return m.op(fmt.Sprintf("insert result %s/%d", r.GameID, r.TeamID))
}
func (m *fakeMutator) UpdateGameResult(_ context.Context, r model.GameResult) error {
	return m.op(fmt.Sprintf("update result %s/%d", r.GameID, r.TeamID))
}
func (m *fakeMutator) DeleteGameResult(_ context.Context, gameID string, teamID int) error {
	return m.op(fmt.Sprintf("delete result %s/%d", gameID, teamID))
}
func (m *fakeMutator) InsertNewsFeed(_ context.Context, f model.NewsFeed) error {
	return m.op(fmt.Sprintf("insert feed %d", f.ID))
}
func (m *fakeMutator) UpdateNewsFeed(_ context.Context, f model.NewsFeed) error {
	return m.op(fmt.Sprintf("update feed %d", f.ID))
}
func (m *fakeMutator) DeleteNewsFeed(_ context.Context, id int) error {
	return m.op(fmt.Sprintf("delete feed %d", id))
}
func (m *fakeMutator) UpsertNewsItem(_ context.Context, n model.NewsItem) error {
	return m.op("upsert item " + n.Title)
}
func (m *fakeMutator) UpdateNewsItem(_ context.Context, n model.NewsItem) error {
	return m.op("update item " + n.Title)
}
func (m *fakeMutator) LinkNewsItem(_ context.Context, feedID int, title string) error {
	return m.op(fmt.Sprintf("link %d %s", feedID, title))
}
func (m *fakeMutator) UnlinkNewsItem(_ context.Context, feedID int, title string) error {
	return m.op(fmt.Sprintf("unlink %d %s", feedID, title))
}
func (m *fakeMutator) UpsertUser(_ context.Context, userID string) error {
	return m.op("upsert user " + userID)
}
func (m *fakeMutator) AddFavoriteSport(_ context.Context, userID string, sportID int) error {
	return m.op(fmt.Sprintf("add fav sport %s/%d", userID, sportID))
}
func (m *fakeMutator) RemoveFavoriteSport(_ context.Context, userID string, sportID int) error {
	return m.op(fmt.Sprintf("remove fav sport %s/%d", userID, sportID))
}
func (m *fakeMutator) AddFavoriteTeam(_ context.Context, userID string, teamID int) error {
	return m.op(fmt.Sprintf("add fav team %s/%d", userID, teamID))
}
func (m *fakeMutator) RemoveFavoriteTeam(_ context.Context, userID string, teamID int) error {
	return m.op(fmt.Sprintf("remove fav team %s/%d", userID, teamID))
}
func (m *fakeMutator) UpsertDevice(_ context.Context, deviceID, userID string) error {
	return m.op(fmt.Sprintf("upsert device %s/%s", deviceID, userID))
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestSyncSchoolsAppliesMergeSteps(t *testing.T) {
	local := &fakeLocal{schools: []model.School{
		{ID: 1, Name: "alpine", DisplayName: "Alpine"},
		{ID: 3, Name: "cedar", DisplayName: "Cedar"},
	}}
	remote := &fakeRemote{schools: []model.School{
		{ID: 1, Name: "alpine", DisplayName: "Alpine State"},
		{ID: 2, Name: "birch", DisplayName: "Birch"},
	}}

	e := New(remote, local, true, nil)
	counts, err := e.SyncSchools(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts.Inserted != 1 || counts.Updated != 1 || counts.Deleted != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	want := []string{"update school 1", "insert school 2", "delete school 3"}
	if len(local.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", local.ops, want)
	}
	for i := range want {
		if local.ops[i] != want[i] {
			t.Fatalf("ops = %v, want %v", local.ops, want)
		}
	}
}

func TestSyncSchoolsSecondRunIsNoOp(t *testing.T) {
	rows := []model.School{{ID: 1, Name: "alpine", DisplayName: "Alpine"}}
	local := &fakeLocal{schools: rows}
	remote := &fakeRemote{schools: rows}

	e := New(remote, local, true, nil)
	counts, err := e.SyncSchools(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts.Mutations() != 0 {
		t.Fatalf("expected no mutations, got %+v", counts)
	}
	if len(local.ops) != 0 {
		t.Fatalf("expected no writes, got %v", local.ops)
	}
}

func TestSyncAbortsOnRemoteError(t *testing.T) {
	local := &fakeLocal{schools: []model.School{{ID: 1}}}
	remote := &fakeRemote{err: errors.New("upstream down")}

	e := New(remote, local, true, nil)
	_, err := e.SyncSchools(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(local.ops) != 0 {
		t.Fatalf("remote failure must not touch the store, got %v", local.ops)
	}
}

func TestSyncStepFailureRollsBackCollection(t *testing.T) {
	local := &fakeLocal{
		schools: []model.School{{ID: 3, Name: "cedar"}},
		failOn:  "delete school 3",
	}
	remote := &fakeRemote{schools: []model.School{
		{ID: 1, Name: "alpine"},
		{ID: 2, Name: "birch"},
	}}

	e := New(remote, local, true, nil)
	_, err := e.SyncSchools(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(local.ops) != 0 {
		t.Fatalf("failed transaction leaked ops: %v", local.ops)
	}
}

func TestSyncGameResultsHoldsBackUnknownRows(t *testing.T) {
	local := &fakeLocal{
		games: []model.Game{{ID: "g1", SportID: 1}},
		teams: []model.Team{{ID: 10, SportID: 1}},
	}
	remote := &fakeRemote{results: []model.GameResult{
		{GameID: "g1", TeamID: 10, Outcome: model.OutcomeWin},
		{GameID: "g1", TeamID: 99, Outcome: model.OutcomeLoss}, // unknown team
		{GameID: "g9", TeamID: 10, Outcome: model.OutcomeLoss}, // unknown game
	}}

	e := New(remote, local, true, nil)
	counts, err := e.SyncGameResults(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts.Inserted != 1 {
		t.Fatalf("expected 1 insert, got %+v", counts)
	}
	if len(local.ops) != 1 || local.ops[0] != "insert result g1/10" {
		t.Fatalf("ops = %v", local.ops)
	}
}

func TestSyncFeedItemsLinksAndUnlinks(t *testing.T) {
	now := time.Now().UTC()
	local := &fakeLocal{
		feeds: []model.NewsFeed{{ID: 7, DisplayName: "Basketball", URL: "https://example.edu/bb"}},
		items: map[int][]model.NewsItem{7: {
			{Title: "Old recap", Link: "https://example.edu/old", Published: now},
		}},
	}
	remote := &fakeRemote{items: map[int][]model.NewsItem{7: {
		{Title: "Season opener", Link: "https://example.edu/new", Published: now},
	}}}

	e := New(remote, local, true, nil)
	counts, err := e.SyncNews(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts.Inserted != 1 || counts.Deleted != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	// Steps apply in identity order: "Old recap" sorts before "Season
	// opener", so the unlink lands first.
	want := []string{"unlink 7 Old recap", "upsert item Season opener", "link 7 Season opener"}
	for i, w := range want {
		if i >= len(local.ops) || local.ops[i] != w {
			t.Fatalf("ops = %v, want %v", local.ops, want)
		}
	}
}

func TestSyncAllRecordsPerCollectionErrors(t *testing.T) {
	local := &fakeLocal{}
	remote := &fakeRemote{err: errors.New("upstream down")}

	e := New(remote, local, true, nil)
	result := e.SyncAll(context.Background())
	// Six collection fetches fail (news sweeps local feeds, of which there
	// are none), and every failure is recorded rather than fatal.
	if len(result.Errors) != 6 {
		t.Fatalf("expected 6 recorded errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if result.Mutations() != 0 {
		t.Fatalf("expected no mutations, got %d", result.Mutations())
	}
}
