package analytics

import (
	"testing"
	"time"

	"tempo/internal/catalog"
	"tempo/internal/core"
)

func act(id, category string, minutes int, created time.Time) core.Activity {
	return core.Activity{
		ID:              id,
		Owner:           "user-1",
		Date:            core.NewDate(2025, 4, 1),
		Title:           id,
		Category:        category,
		DurationMinutes: minutes,
		CreatedAt:       created,
	}
}

func TestCategoryBreakdownSortedDescending(t *testing.T) {
	base := time.Date(2025, 4, 1, 6, 0, 0, 0, time.UTC)
	day := []core.Activity{
		act("a", "meals", 60, base),
		act("b", "sleep", 480, base.Add(time.Hour)),
		act("c", "work", 300, base.Add(2*time.Hour)),
		act("d", "work", 200, base.Add(3*time.Hour)),
	}

	got := CategoryBreakdown(day)
	if len(got) != 3 {
		t.Fatalf("expected 3 slices, got %d", len(got))
	}
	if got[0].Category != "work" || got[0].Minutes != 500 {
		t.Fatalf("expected work=500 first, got %+v", got[0])
	}
	if got[1].Category != "sleep" || got[2].Category != "meals" {
		t.Fatalf("expected descending order, got %v", got)
	}
	if got[0].Label != "Work" || got[0].Color != catalog.Color("work") {
		t.Fatalf("catalog not resolved: %+v", got[0])
	}
}

func TestCategoryBreakdownUnknownCategoryFallsBack(t *testing.T) {
	base := time.Date(2025, 4, 1, 6, 0, 0, 0, time.UTC)
	got := CategoryBreakdown([]core.Activity{act("a", "gardening", 90, base)})
	if got[0].Label != "gardening" || got[0].Color != catalog.FallbackColor {
		t.Fatalf("expected catalog fallback, got %+v", got[0])
	}
}

func TestTopActivitiesTopFiveWithTieBreak(t *testing.T) {
	base := time.Date(2025, 4, 1, 6, 0, 0, 0, time.UTC)
	day := []core.Activity{
		act("a", "work", 50, base),
		act("b", "sleep", 480, base.Add(1*time.Minute)),
		act("c", "work", 120, base.Add(2*time.Minute)),
		act("d", "study", 120, base.Add(3*time.Minute)), // tie with c, created later
		act("e", "meals", 30, base.Add(4*time.Minute)),
		act("f", "social", 200, base.Add(5*time.Minute)),
		act("g", "other", 10, base.Add(6*time.Minute)),
	}

	got := TopActivities(day)
	if len(got) != 5 {
		t.Fatalf("expected 5, got %d", len(got))
	}
	wantOrder := []string{"b", "f", "c", "d", "a"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestBuildDaySummary(t *testing.T) {
	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	day := []core.Activity{
		act("a", "sleep", 480, base),
		act("b", "work", 960, base.Add(time.Hour)),
	}
	now := time.Date(2025, 4, 2, 0, 5, 0, 0, time.UTC)

	s := BuildDaySummary("user-1", core.NewDate(2025, 4, 1), day, now)
	if s.TotalMinutes != 1440 || !s.IsComplete {
		t.Fatalf("expected a complete 1440-minute day, got %+v", s)
	}
	if len(s.ByCategory) != 2 || len(s.TopActivities) != 2 {
		t.Fatalf("unexpected aggregate sizes: %+v", s)
	}
	if !s.ComputedAt.Equal(now) {
		t.Fatalf("ComputedAt not set")
	}

	empty := BuildDaySummary("user-1", core.NewDate(2025, 4, 3), nil, now)
	if empty.TotalMinutes != 0 || empty.IsComplete {
		t.Fatalf("empty day summary wrong: %+v", empty)
	}
}
