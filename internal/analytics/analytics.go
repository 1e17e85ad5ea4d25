// Package analytics derives end-of-day views from a day's activity list.
// Everything here is pure and safe to recompute on every render; the
// caller is expected to wait for the ledger's complete signal before
// showing these views.
package analytics

import (
	"sort"
	"time"

	"tempo/internal/catalog"
	"tempo/internal/core"
)

// TopActivityCount is how many activities the top chart shows.
const TopActivityCount = 5

type (
	// CategorySlice is one wedge of the category breakdown.
	CategorySlice struct {
		Category string
		Label    string
		Color    string
		Minutes  int
	}

	// TopActivity is one bar of the top-activities chart.
	TopActivity struct {
		ID      string
		Title   string
		Minutes int
		Color   string
	}

	// DaySummary is the persisted end-of-day aggregate.
	DaySummary struct {
		Owner         string
		Date          core.Date
		TotalMinutes  int
		IsComplete    bool
		ByCategory    []CategorySlice
		TopActivities []TopActivity
		ComputedAt    time.Time
	}
)

// CategoryBreakdown groups minutes by category, sorted descending by
// minutes, with catalog labels and colors resolved. Equal totals keep
// their first-seen order.
func CategoryBreakdown(activities []core.Activity) []CategorySlice {
	totals := core.CategoryTotals(activities)
	slices := make([]CategorySlice, len(totals))
	for i, ct := range totals {
		entry := catalog.Lookup(ct.Category)
		slices[i] = CategorySlice{
			Category: ct.Category,
			Label:    entry.Label,
			Color:    entry.Color,
			Minutes:  ct.Minutes,
		}
	}
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Minutes > slices[j].Minutes
	})
	return slices
}

// TopActivities returns the five longest activities, descending by
// duration with the earliest-created first among ties.
func TopActivities(activities []core.Activity) []TopActivity {
	top := core.TopActivities(activities, TopActivityCount)
	out := make([]TopActivity, len(top))
	for i, a := range top {
		out[i] = TopActivity{
			ID:      a.ID,
			Title:   a.Title,
			Minutes: a.DurationMinutes,
			Color:   catalog.Color(a.Category),
		}
	}
	return out
}

// BuildDaySummary assembles the aggregate persisted by the worker.
func BuildDaySummary(owner string, date core.Date, activities []core.Activity, now time.Time) DaySummary {
	return DaySummary{
		Owner:         owner,
		Date:          date,
		TotalMinutes:  core.TotalMinutes(activities),
		IsComplete:    core.IsComplete(activities),
		ByCategory:    CategoryBreakdown(activities),
		TopActivities: TopActivities(activities),
		ComputedAt:    now,
	}
}
