package provider

import (
	"fmt"
	"time"

	"github.com/summitathletics/summit-data/internal/model"
)

// timeLayout is the conference API's date encoding: millisecond precision,
// always UTC with a literal Z suffix.
const timeLayout = "2006-01-02T15:04:05.000Z"

// Timestamp wraps time.Time with the conference API's JSON encoding.
type Timestamp time.Time

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(timeLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("timestamp not a JSON string: %s", s)
	}
	parsed, err := time.ParseInLocation(timeLayout, s[1:len(s)-1], time.UTC)
	if err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}
	*t = Timestamp(parsed)
	return nil
}

// --------------------------------------------------------------------------
// Wire types — one struct per resource, mapped to internal/model
// --------------------------------------------------------------------------

type wireSchool struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName"`
	Location    string  `json:"location"`
	LogoURL     *string `json:"logoUrl"`
}

func (w wireSchool) toModel() model.School {
	return model.School{
		ID:          w.ID,
		Name:        w.Name,
		DisplayName: w.DisplayName,
		Location:    w.Location,
		LogoURL:     w.LogoURL,
	}
}

type wireSport struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Gender     string  `json:"gender"`
	IconURL    *string `json:"iconUrl"`
	NewsFeedID *int    `json:"newsFeedId"`
	WinValue   *int    `json:"winValue"`
}

func (w wireSport) toModel() model.Sport {
	winValue := model.DefaultWinValue
	if w.WinValue != nil {
		winValue = *w.WinValue
	}
	return model.Sport{
		ID:         w.ID,
		Name:       w.Name,
		Gender:     model.Gender(w.Gender),
		IconURL:    w.IconURL,
		NewsFeedID: w.NewsFeedID,
		WinValue:   winValue,
	}
}

type wireTeam struct {
	ID           int  `json:"id"`
	SportID      int  `json:"sportId"`
	SchoolID     int  `json:"schoolId"`
	IsConference bool `json:"isConference"`
}

func (w wireTeam) toModel() model.Team {
	return model.Team{ID: w.ID, SportID: w.SportID, SchoolID: w.SchoolID, IsConference: w.IsConference}
}

type wireGame struct {
	ID           string    `json:"id"`
	SportID      int       `json:"sportId"`
	StartTime    Timestamp `json:"startTime"`
	Status       string    `json:"status"`
	GameTime     *string   `json:"gameTime"`
	Description  *string   `json:"description"`
	IsExhibition bool      `json:"isExhibition"`
	IsPlayoff    bool      `json:"isPlayoff"`
}

func (w wireGame) toModel() model.Game {
	return model.Game{
		ID:           w.ID,
		SportID:      w.SportID,
		StartTime:    time.Time(w.StartTime),
		Status:       model.GameStatus(w.Status),
		GameTime:     w.GameTime,
		Description:  w.Description,
		IsExhibition: w.IsExhibition,
		IsPlayoff:    w.IsPlayoff,
	}
}

type wireGameResult struct {
	GameID  string `json:"gameId"`
	TeamID  int    `json:"teamId"`
	Score   *int   `json:"score"`
	Outcome string `json:"outcome"`
	IsHome  bool   `json:"isHome"`
}

func (w wireGameResult) toModel() model.GameResult {
	return model.GameResult{
		GameID:  w.GameID,
		TeamID:  w.TeamID,
		Score:   w.Score,
		Outcome: model.Outcome(w.Outcome),
		IsHome:  w.IsHome,
	}
}

type wireNewsFeed struct {
	ID          int    `json:"id"`
	DisplayName string `json:"displayName"`
	URL         string `json:"url"`
}

func (w wireNewsFeed) toModel() model.NewsFeed {
	return model.NewsFeed{ID: w.ID, DisplayName: w.DisplayName, URL: w.URL}
}

type wireNewsItem struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"imageUrl"`
	Published Timestamp `json:"published"`
}

func (w wireNewsItem) toModel() model.NewsItem {
	return model.NewsItem{
		Title:     w.Title,
		Link:      w.Link,
		Content:   w.Content,
		ImageURL:  w.ImageURL,
		Published: time.Time(w.Published),
	}
}

type wireUser struct {
	ID             string `json:"id"`
	FavoriteSports []int  `json:"favoriteSports"`
	FavoriteTeams  []int  `json:"favoriteTeams"`
}

func (w wireUser) toModel() model.User {
	return model.User{
		ID:               w.ID,
		FavoriteSportIDs: w.FavoriteSports,
		FavoriteTeamIDs:  w.FavoriteTeams,
	}
}
