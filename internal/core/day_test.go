package core

import (
	"testing"
	"time"
)

func activityAt(id, category string, minutes int, created time.Time) Activity {
	return Activity{
		ID:              id,
		Owner:           "user-1",
		Date:            NewDate(2025, 1, 1),
		Title:           id,
		Category:        category,
		DurationMinutes: minutes,
		CreatedAt:       created,
	}
}

func TestTotalsAndRemaining(t *testing.T) {
	base := time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC)
	day := []Activity{
		activityAt("a", "sleep", 480, base),
		activityAt("b", "work", 300, base.Add(time.Hour)),
		activityAt("c", "meals", 60, base.Add(2*time.Hour)),
	}

	if got := TotalMinutes(day); got != 840 {
		t.Fatalf("total: expected 840, got %d", got)
	}
	if got := RemainingMinutes(day); got != 600 {
		t.Fatalf("remaining: expected 600, got %d", got)
	}
	if TotalMinutes(day)+RemainingMinutes(day) != BudgetMinutes {
		t.Fatalf("total+remaining must equal the budget")
	}
	if IsComplete(day) {
		t.Fatalf("840 minutes should not be complete")
	}
}

func TestIsCompleteAtExactBudget(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	day := []Activity{
		activityAt("a", "sleep", 480, base),
		activityAt("b", "work", 960, base.Add(time.Hour)),
	}

	if !IsComplete(day) {
		t.Fatalf("exactly 1440 minutes should be complete")
	}
	if got := RemainingMinutes(day); got != 0 {
		t.Fatalf("remaining: expected 0, got %d", got)
	}
}

func TestEmptyDay(t *testing.T) {
	if got := TotalMinutes(nil); got != 0 {
		t.Fatalf("empty total: expected 0, got %d", got)
	}
	if got := RemainingMinutes(nil); got != BudgetMinutes {
		t.Fatalf("empty remaining: expected %d, got %d", BudgetMinutes, got)
	}
	if IsComplete(nil) {
		t.Fatalf("empty day should not be complete")
	}
	if got := CategoryTotals(nil); len(got) != 0 {
		t.Fatalf("empty category totals: expected none, got %v", got)
	}
}

func TestCategoryTotalsFirstSeenOrder(t *testing.T) {
	base := time.Date(2025, 1, 1, 6, 0, 0, 0, time.UTC)
	day := []Activity{
		activityAt("a", "work", 300, base),
		activityAt("b", "work", 200, base.Add(time.Hour)),
		activityAt("c", "sleep", 480, base.Add(2*time.Hour)),
	}

	totals := CategoryTotals(day)
	if len(totals) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(totals))
	}
	if totals[0].Category != "work" || totals[0].Minutes != 500 {
		t.Fatalf("expected work=500 first, got %+v", totals[0])
	}
	if totals[1].Category != "sleep" || totals[1].Minutes != 480 {
		t.Fatalf("expected sleep=480 second, got %+v", totals[1])
	}

	sum := 0
	for _, ct := range totals {
		sum += ct.Minutes
	}
	if sum != TotalMinutes(day) {
		t.Fatalf("category sum %d != total %d", sum, TotalMinutes(day))
	}
}

func TestTopActivitiesTieBreak(t *testing.T) {
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	day := []Activity{
		activityAt("A", "work", 60, base),
		activityAt("B", "study", 90, base.Add(time.Minute)),
		activityAt("C", "work", 90, base.Add(2*time.Minute)), // created after B
	}

	top := TopActivities(day, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2, got %d", len(top))
	}
	if top[0].ID != "B" || top[1].ID != "C" {
		t.Fatalf("expected [B C], got [%s %s]", top[0].ID, top[1].ID)
	}

	// Input order untouched.
	if day[0].ID != "A" || day[1].ID != "B" || day[2].ID != "C" {
		t.Fatalf("input slice was reordered")
	}
}

func TestTopActivitiesBounds(t *testing.T) {
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	day := []Activity{activityAt("A", "work", 60, base)}

	if got := TopActivities(day, 0); got != nil {
		t.Fatalf("n=0: expected nil, got %v", got)
	}
	if got := TopActivities(day, 5); len(got) != 1 {
		t.Fatalf("n beyond len: expected 1, got %d", len(got))
	}
}
