// Package model defines the domain entities cached from the conference API.
// All types are plain values; persistence and wire concerns live in
// internal/store and internal/provider.
package model

import "time"

// Gender distinguishes men's and women's editions of a sport.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// GameStatus is the lifecycle state of a scheduled game.
type GameStatus string

const (
	GameUpcoming   GameStatus = "upcoming"
	GameInProgress GameStatus = "in_progress"
	GameCompleted  GameStatus = "completed"
	GameCancelled  GameStatus = "cancelled"
)

// Outcome is one team's result for one game.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
	OutcomeTBD  Outcome = "tbd"
)

// DefaultWinValue is the standings points awarded for a win when a
// sport does not specify its own.
const DefaultWinValue = 2

// School is a member institution of the conference.
type School struct {
	ID          int
	Name        string
	DisplayName string
	Location    string
	LogoURL     *string
}

// Sport is one sport/gender edition, e.g. women's basketball.
type Sport struct {
	ID         int
	Name       string
	Gender     Gender
	IconURL    *string
	NewsFeedID *int
	// WinValue is the standings points for a win (draws earn half).
	WinValue int
}

// Team is one school's entry in one sport. Non-conference entries
// (associate members, exhibition-only squads) carry IsConference=false
// and are excluded from standings.
type Team struct {
	ID           int
	SportID      int
	SchoolID     int
	IsConference bool
}

// Game is a scheduled contest. GameTime carries live period/clock text
// while the game is in progress.
type Game struct {
	ID           string
	SportID      int
	StartTime    time.Time
	Status       GameStatus
	GameTime     *string
	Description  *string
	IsExhibition bool
	IsPlayoff    bool
}

// GameResult is one team's score and outcome for one game. Score is
// nil until the game produces one. Exactly two rows exist per game
// once populated, one with IsHome set.
type GameResult struct {
	GameID  string
	TeamID  int
	Score   *int
	Outcome Outcome
	IsHome  bool
}

// NewsFeed is a syndicated news source.
type NewsFeed struct {
	ID          int
	DisplayName string
	URL         string
}

// NewsItem is one article. Its identity is the title; the upstream
// feeds expose no stable item id.
type NewsItem struct {
	Title     string
	Link      string
	Content   string
	ImageURL  *string
	Published time.Time
}

// NewsFeedCategory associates a news item with a feed.
type NewsFeedCategory struct {
	FeedID    int
	ItemTitle string
}

// User is an app user identified by an opaque device-derived id.
type User struct {
	ID               string
	FavoriteSportIDs []int
	FavoriteTeamIDs  []int
}

// FavoriteSport is a (user, sport) join row.
type FavoriteSport struct {
	UserID  string
	SportID int
}

// FavoriteTeam is a (user, team) join row.
type FavoriteTeam struct {
	UserID string
	TeamID int
}

// Device maps a push device identifier to its user.
type Device struct {
	DeviceID string
	UserID   string
}
