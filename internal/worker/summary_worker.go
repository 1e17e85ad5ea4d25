package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tempo/internal/amqp"
	"tempo/internal/analytics"
	"tempo/internal/core"
	"tempo/internal/storage"
)

// SummaryExporter pushes a completed day's aggregate to an external sink
// (Google Sheets in production). Nil exporter disables export.
type SummaryExporter interface {
	AppendDaySummary(ctx context.Context, s analytics.DaySummary) error
}

// SummaryWorker keeps day_summaries in step with the activities table. It
// reacts to change messages and, as a safety net, periodically reconciles
// days whose summaries went stale (missed or dropped messages).
type SummaryWorker struct {
	storage   *storage.SQLiteRepository
	exporter  SummaryExporter
	batchSize int
}

func NewSummaryWorker(storage *storage.SQLiteRepository, exporter SummaryExporter, batchSize int) *SummaryWorker {
	return &SummaryWorker{
		storage:   storage,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleChangeMessage recomputes the summary for the day named by one
// AMQP change message.
func (w *SummaryWorker) HandleChangeMessage(ctx context.Context, msg *amqp.ActivityChangeMessage) error {
	date, err := core.ParseDate(msg.Date)
	if err != nil {
		return fmt.Errorf("parse message date %q: %w", msg.Date, err)
	}

	slog.InfoContext(ctx, "Processing change message",
		"owner", msg.Owner,
		"date", msg.Date,
		"change", msg.Change,
		"activity_id", msg.ActivityID)

	return w.RecomputeDay(ctx, msg.Owner, date)
}

// RecomputeDay reloads the day from storage, rebuilds its summary, and
// persists it. A complete day is also pushed to the exporter.
func (w *SummaryWorker) RecomputeDay(ctx context.Context, owner string, date core.Date) error {
	activities, err := w.storage.Query(ctx, owner, date)
	if err != nil {
		return fmt.Errorf("load day from storage: %w", err)
	}

	summary := analytics.BuildDaySummary(owner, date, activities, time.Now().UTC())
	if err := w.storage.UpsertDaySummary(ctx, summary); err != nil {
		return fmt.Errorf("persist day summary: %w", err)
	}

	if summary.IsComplete && w.exporter != nil {
		if err := w.exporter.AppendDaySummary(ctx, summary); err != nil {
			// The local summary is already saved; export is retried on the
			// next recompute of this day.
			slog.ErrorContext(ctx, "Failed to export day summary",
				"owner", owner, "date", date.String(), "error", err)
		}
	}

	return nil
}

// Reconcile recomputes one batch of stale days.
func (w *SummaryWorker) Reconcile(ctx context.Context) (int, error) {
	refs, err := w.storage.ListDaysNeedingSummary(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list stale days: %w", err)
	}

	for _, ref := range refs {
		if err := w.RecomputeDay(ctx, ref.Owner, ref.Date); err != nil {
			return 0, fmt.Errorf("recompute %s %s: %w", ref.Owner, ref.Date, err)
		}
	}

	if len(refs) > 0 {
		slog.InfoContext(ctx, "Reconciled stale day summaries", "count", len(refs))
	}
	return len(refs), nil
}

// RunPeriodic reconciles on a fixed interval until the context ends.
func (w *SummaryWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Reconcile(ctx); err != nil {
				slog.ErrorContext(ctx, "Reconciliation pass failed", "error", err)
			}
		}
	}
}
