package core

import "sort"

// CategoryMinutes is a category paired with its summed minutes for a day.
type CategoryMinutes struct {
	Category string
	Minutes  int
}

// TotalMinutes sums the durations of all activities in a day.
func TotalMinutes(activities []Activity) int {
	total := 0
	for _, a := range activities {
		total += a.DurationMinutes
	}
	return total
}

// RemainingMinutes is the unspent part of the daily budget. It can be
// negative when pre-existing records already overshoot the budget; the
// ledger only prevents new overflow.
func RemainingMinutes(activities []Activity) int {
	return BudgetMinutes - TotalMinutes(activities)
}

// IsComplete reports whether the whole budget has been accounted for.
func IsComplete(activities []Activity) bool {
	return TotalMinutes(activities) >= BudgetMinutes
}

// CategoryTotals sums minutes per category. Entries appear in the order the
// categories are first seen, which keeps rendering stable across recomputes.
func CategoryTotals(activities []Activity) []CategoryMinutes {
	index := make(map[string]int)
	var totals []CategoryMinutes
	for _, a := range activities {
		if i, ok := index[a.Category]; ok {
			totals[i].Minutes += a.DurationMinutes
			continue
		}
		index[a.Category] = len(totals)
		totals = append(totals, CategoryMinutes{Category: a.Category, Minutes: a.DurationMinutes})
	}
	return totals
}

// TopActivities returns the n longest activities, descending by duration,
// ties broken by earliest creation. The input slice is not modified.
func TopActivities(activities []Activity, n int) []Activity {
	if n <= 0 {
		return nil
	}
	sorted := append([]Activity(nil), activities...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].DurationMinutes != sorted[j].DurationMinutes {
			return sorted[i].DurationMinutes > sorted[j].DurationMinutes
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
