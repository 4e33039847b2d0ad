package handler

import (
	"time"

	"github.com/summitathletics/summit-data/internal/model"
	"github.com/summitathletics/summit-data/internal/standings"
)

// Response DTOs. The model package carries no JSON tags; wire shapes for
// the read API live here.

type schoolDTO struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName"`
	Location    string  `json:"location"`
	LogoURL     *string `json:"logoUrl,omitempty"`
}

type sportDTO struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Gender     string  `json:"gender"`
	IconURL    *string `json:"iconUrl,omitempty"`
	NewsFeedID *int    `json:"newsFeedId,omitempty"`
	WinValue   int     `json:"winValue"`
}

type teamDTO struct {
	ID           int  `json:"id"`
	SportID      int  `json:"sportId"`
	SchoolID     int  `json:"schoolId"`
	IsConference bool `json:"isConference"`
}

type gameDTO struct {
	ID           string          `json:"id"`
	SportID      int             `json:"sportId"`
	StartTime    time.Time       `json:"startTime"`
	Status       string          `json:"status"`
	GameTime     *string         `json:"gameTime,omitempty"`
	Description  *string         `json:"description,omitempty"`
	IsExhibition bool            `json:"isExhibition"`
	IsPlayoff    bool            `json:"isPlayoff"`
	Results      []gameResultDTO `json:"results,omitempty"`
}

type gameResultDTO struct {
	TeamID  int    `json:"teamId"`
	Score   *int   `json:"score"`
	Outcome string `json:"outcome"`
	IsHome  bool   `json:"isHome"`
}

type newsFeedDTO struct {
	ID          int    `json:"id"`
	DisplayName string `json:"displayName"`
	URL         string `json:"url"`
}

type newsItemDTO struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"imageUrl,omitempty"`
	Published time.Time `json:"published"`
}

type userDTO struct {
	ID             string `json:"id"`
	FavoriteSports []int  `json:"favoriteSports"`
	FavoriteTeams  []int  `json:"favoriteTeams"`
}

type standingsRowDTO struct {
	TeamID   int `json:"teamId"`
	SchoolID int `json:"schoolId"`
	Wins     int `json:"wins"`
	Losses   int `json:"losses"`
	Draws    int `json:"draws"`
	Points   int `json:"points"`
}

func toSchoolDTO(s model.School) schoolDTO {
	return schoolDTO{ID: s.ID, Name: s.Name, DisplayName: s.DisplayName, Location: s.Location, LogoURL: s.LogoURL}
}

func toSportDTO(s model.Sport) sportDTO {
	return sportDTO{ID: s.ID, Name: s.Name, Gender: string(s.Gender), IconURL: s.IconURL, NewsFeedID: s.NewsFeedID, WinValue: s.WinValue}
}

func toTeamDTO(t model.Team) teamDTO {
	return teamDTO{ID: t.ID, SportID: t.SportID, SchoolID: t.SchoolID, IsConference: t.IsConference}
}

func toGameDTO(g model.Game, results []model.GameResult) gameDTO {
	dto := gameDTO{
		ID:           g.ID,
		SportID:      g.SportID,
		StartTime:    g.StartTime.UTC(),
		Status:       string(g.Status),
		GameTime:     g.GameTime,
		Description:  g.Description,
		IsExhibition: g.IsExhibition,
		IsPlayoff:    g.IsPlayoff,
	}
	for _, r := range results {
		dto.Results = append(dto.Results, gameResultDTO{
			TeamID: r.TeamID, Score: r.Score, Outcome: string(r.Outcome), IsHome: r.IsHome,
		})
	}
	return dto
}

func toNewsFeedDTO(f model.NewsFeed) newsFeedDTO {
	return newsFeedDTO{ID: f.ID, DisplayName: f.DisplayName, URL: f.URL}
}

func toNewsItemDTO(n model.NewsItem) newsItemDTO {
	return newsItemDTO{Title: n.Title, Link: n.Link, Content: n.Content, ImageURL: n.ImageURL, Published: n.Published.UTC()}
}

func toUserDTO(u model.User) userDTO {
	dto := userDTO{ID: u.ID, FavoriteSports: u.FavoriteSportIDs, FavoriteTeams: u.FavoriteTeamIDs}
	if dto.FavoriteSports == nil {
		dto.FavoriteSports = []int{}
	}
	if dto.FavoriteTeams == nil {
		dto.FavoriteTeams = []int{}
	}
	return dto
}

func toStandingsDTO(rows []standings.Row) []standingsRowDTO {
	out := make([]standingsRowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, standingsRowDTO{
			TeamID: r.TeamID, SchoolID: r.SchoolID,
			Wins: r.Wins, Losses: r.Losses, Draws: r.Draws, Points: r.Points,
		})
	}
	return out
}

func mapSlice[A, B any](in []A, f func(A) B) []B {
	out := make([]B, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
