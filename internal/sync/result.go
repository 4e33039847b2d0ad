package sync

import (
	"fmt"
	"time"
)

// Result tracks counts and errors for a full sync run.
type Result struct {
	Schools   Counts
	Sports    Counts
	Teams     Counts
	NewsFeeds Counts
	NewsItems Counts
	Games     Counts
	Results   Counts
	Errors    []string
	Duration  time.Duration
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Mutations is the total number of rows written across all collections.
func (r *Result) Mutations() int {
	return r.Schools.Mutations() + r.Sports.Mutations() + r.Teams.Mutations() +
		r.NewsFeeds.Mutations() + r.NewsItems.Mutations() +
		r.Games.Mutations() + r.Results.Mutations()
}

// Summary returns a human-readable summary of the sync run.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"schools=%s sports=%s teams=%s feeds=%s news=%s games=%s results=%s errors=%d",
		counts(r.Schools), counts(r.Sports), counts(r.Teams), counts(r.NewsFeeds),
		counts(r.NewsItems), counts(r.Games), counts(r.Results), len(r.Errors),
	)
}

func counts(c Counts) string {
	return fmt.Sprintf("+%d~%d-%d", c.Inserted, c.Updated, c.Deleted)
}
