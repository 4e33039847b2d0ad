// Package standings computes conference standings from cached games and
// results. Pure functions over model values; callers fetch the inputs from
// the store.
package standings

import (
	"cmp"
	"slices"

	"github.com/summitathletics/summit-data/internal/model"
)

// Row is one team's line in a sport's standings table.
type Row struct {
	TeamID   int
	SchoolID int
	Wins     int
	Losses   int
	Draws    int
	Points   int
}

// Compute builds the standings for one sport. Only completed,
// non-exhibition games between two conference teams count. A win earns the
// sport's win value, a draw half of it (rounded down).
func Compute(sport model.Sport, teams []model.Team, games []model.Game, results []model.GameResult) []Row {
	conference := make(map[int]model.Team)
	for _, t := range teams {
		if t.SportID == sport.ID && t.IsConference {
			conference[t.ID] = t
		}
	}

	counted := make(map[string]bool)
	for _, g := range games {
		if g.SportID == sport.ID && g.Status == model.GameCompleted && !g.IsExhibition {
			counted[g.ID] = true
		}
	}

	// A game counts only when both participating teams are conference
	// members; results against outside opponents do not move the table.
	byGame := make(map[string][]model.GameResult)
	for _, r := range results {
		if counted[r.GameID] {
			byGame[r.GameID] = append(byGame[r.GameID], r)
		}
	}

	rows := make(map[int]*Row)
	for id, t := range conference {
		rows[id] = &Row{TeamID: id, SchoolID: t.SchoolID}
	}

	for _, rs := range byGame {
		if len(rs) != 2 {
			continue
		}
		if _, ok := conference[rs[0].TeamID]; !ok {
			continue
		}
		if _, ok := conference[rs[1].TeamID]; !ok {
			continue
		}
		for _, r := range rs {
			row := rows[r.TeamID]
			switch r.Outcome {
			case model.OutcomeWin:
				row.Wins++
				row.Points += sport.WinValue
			case model.OutcomeLoss:
				row.Losses++
			case model.OutcomeDraw:
				row.Draws++
				row.Points += sport.WinValue / 2
			}
		}
	}

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	slices.SortFunc(out, func(a, b Row) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		return cmp.Compare(a.TeamID, b.TeamID)
	})
	return out
}
