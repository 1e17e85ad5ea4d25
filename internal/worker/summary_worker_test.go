package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"tempo/internal/amqp"
	"tempo/internal/analytics"
	"tempo/internal/core"
	"tempo/internal/storage"
)

type captureExporter struct {
	exported []analytics.DaySummary
	err      error
}

func (c *captureExporter) AppendDaySummary(_ context.Context, s analytics.DaySummary) error {
	if c.err != nil {
		return c.err
	}
	c.exported = append(c.exported, s)
	return nil
}

func newWorker(t *testing.T, exporter SummaryExporter) (*SummaryWorker, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "tempo.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewSummaryWorker(repo, exporter, 10), repo
}

func seedDay(t *testing.T, repo *storage.SQLiteRepository, owner string, date core.Date, minutes ...int) {
	t.Helper()
	for _, m := range minutes {
		if _, err := repo.Insert(context.Background(), core.NewActivity{
			Owner: owner, Date: date, Title: "seed", Category: "work", DurationMinutes: m,
		}); err != nil {
			t.Fatalf("seed insert: %v", err)
		}
	}
}

func TestHandleChangeMessagePersistsSummary(t *testing.T) {
	w, repo := newWorker(t, nil)
	ctx := context.Background()
	day := core.NewDate(2025, 3, 1)
	seedDay(t, repo, "alice", day, 480, 300)

	msg := amqp.NewActivityChangeMessage("alice", day.String(), "a1", amqp.ChangeCreated)
	if err := w.HandleChangeMessage(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, err := repo.GetDaySummary(ctx, "alice", day)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if got.TotalMinutes != 780 || got.IsComplete {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if len(got.ByCategory) != 1 || got.ByCategory[0].Minutes != 780 {
		t.Fatalf("unexpected breakdown: %+v", got.ByCategory)
	}
}

func TestHandleChangeMessageRejectsBadDate(t *testing.T) {
	w, _ := newWorker(t, nil)
	msg := amqp.NewActivityChangeMessage("alice", "not-a-date", "a1", amqp.ChangeCreated)
	if err := w.HandleChangeMessage(context.Background(), msg); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestCompleteDayIsExported(t *testing.T) {
	exporter := &captureExporter{}
	w, repo := newWorker(t, exporter)
	ctx := context.Background()
	day := core.NewDate(2025, 3, 1)
	seedDay(t, repo, "alice", day, 480, 960)

	if err := w.RecomputeDay(ctx, "alice", day); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if len(exporter.exported) != 1 || !exporter.exported[0].IsComplete {
		t.Fatalf("complete day must be exported once, got %v", exporter.exported)
	}

	// An incomplete day is not exported.
	other := core.NewDate(2025, 3, 2)
	seedDay(t, repo, "alice", other, 30)
	if err := w.RecomputeDay(ctx, "alice", other); err != nil {
		t.Fatalf("recompute other: %v", err)
	}
	if len(exporter.exported) != 1 {
		t.Fatalf("incomplete day must not be exported")
	}
}

func TestExportFailureDoesNotFailRecompute(t *testing.T) {
	exporter := &captureExporter{err: errors.New("sheets down")}
	w, repo := newWorker(t, exporter)
	ctx := context.Background()
	day := core.NewDate(2025, 3, 1)
	seedDay(t, repo, "alice", day, 1440)

	if err := w.RecomputeDay(ctx, "alice", day); err != nil {
		t.Fatalf("export failure must not fail the recompute: %v", err)
	}
	if _, err := repo.GetDaySummary(ctx, "alice", day); err != nil {
		t.Fatalf("summary must still be persisted: %v", err)
	}
}

func TestReconcilePicksUpStaleDays(t *testing.T) {
	w, repo := newWorker(t, nil)
	ctx := context.Background()
	day := core.NewDate(2025, 3, 1)
	seedDay(t, repo, "alice", day, 300)
	seedDay(t, repo, "bob", day, 200)

	n, err := w.Reconcile(ctx)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 stale days, got %d", n)
	}

	// Nothing left once summaries are fresh.
	n, err = w.Reconcile(ctx)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no stale days, got %d", n)
	}

	// A new write makes the day stale again.
	seedDay(t, repo, "alice", day, 50)
	n, err = w.Reconcile(ctx)
	if err != nil {
		t.Fatalf("third reconcile: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 stale day after new write, got %d", n)
	}
}
