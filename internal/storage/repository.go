package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tempo/internal/analytics"
	"tempo/internal/core"
	"tempo/internal/store"
)

// timeFormat is how timestamps are stored in sqlite. The fraction is
// fixed-width so stored UTC timestamps compare correctly as strings.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository is the record store backed by a local sqlite file. It
// implements store.Store for the ledger and the summary persistence the
// worker needs.
type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Query implements store.Store, ordered by creation time ascending.
func (r *SQLiteRepository) Query(ctx context.Context, owner string, date core.Date) ([]core.Activity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner, date, title, category, duration_minutes, created_at, updated_at
		FROM activities
		WHERE owner = ? AND date = ?
		ORDER BY created_at ASC, id ASC`,
		owner, date.String())
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var activities []core.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}

	return activities, nil
}

// Insert implements store.Store, assigning the ID and timestamps.
func (r *SQLiteRepository) Insert(ctx context.Context, n core.NewActivity) (core.Activity, error) {
	if err := n.Validate(); err != nil {
		return core.Activity{}, fmt.Errorf("validate activity: %w", err)
	}

	now := time.Now().UTC()
	a := core.Activity{
		ID:              uuid.New().String(),
		Owner:           n.Owner,
		Date:            n.Date,
		Title:           n.Title,
		Category:        n.Category,
		DurationMinutes: n.DurationMinutes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activities (id, owner, date, title, category, duration_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Owner, a.Date.String(), a.Title, a.Category, a.DurationMinutes,
		a.CreatedAt.Format(timeFormat), a.UpdatedAt.Format(timeFormat))
	if err != nil {
		return core.Activity{}, fmt.Errorf("insert activity: %w", err)
	}

	slog.InfoContext(ctx, "Activity saved to SQLite",
		"id", a.ID,
		"owner", a.Owner,
		"date", a.Date.String(),
		"duration_minutes", a.DurationMinutes)

	return a, nil
}

// Update implements store.Store: only the supplied fields are written.
func (r *SQLiteRepository) Update(ctx context.Context, id string, p core.Patch) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validate patch: %w", err)
	}

	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(timeFormat)}
	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *p.Category)
	}
	if p.DurationMinutes != nil {
		sets = append(sets, "duration_minutes = ?")
		args = append(args, *p.DurationMinutes)
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		"UPDATE activities SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	return nil
}

// Delete implements store.Store.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM activities WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	return nil
}

// ResolveActivity returns the (owner, date) selection an activity belongs
// to, or store.ErrNotFound.
func (r *SQLiteRepository) ResolveActivity(ctx context.Context, id string) (string, core.Date, error) {
	var owner, dateStr string
	err := r.db.QueryRowContext(ctx,
		"SELECT owner, date FROM activities WHERE id = ?", id).Scan(&owner, &dateStr)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.Date{}, store.ErrNotFound
	}
	if err != nil {
		return "", core.Date{}, fmt.Errorf("resolve activity: %w", err)
	}

	date, err := core.ParseDate(dateStr)
	if err != nil {
		return "", core.Date{}, fmt.Errorf("parse activity date: %w", err)
	}
	return owner, date, nil
}

// UpsertDaySummary persists the worker's recomputed aggregate for a day.
func (r *SQLiteRepository) UpsertDaySummary(ctx context.Context, s analytics.DaySummary) error {
	byCategory, err := json.Marshal(s.ByCategory)
	if err != nil {
		return fmt.Errorf("marshal category breakdown: %w", err)
	}
	topActivities, err := json.Marshal(s.TopActivities)
	if err != nil {
		return fmt.Errorf("marshal top activities: %w", err)
	}

	complete := 0
	if s.IsComplete {
		complete = 1
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO day_summaries (owner, date, total_minutes, is_complete, by_category, top_activities, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner, date) DO UPDATE SET
			total_minutes = excluded.total_minutes,
			is_complete = excluded.is_complete,
			by_category = excluded.by_category,
			top_activities = excluded.top_activities,
			computed_at = excluded.computed_at`,
		s.Owner, s.Date.String(), s.TotalMinutes, complete,
		string(byCategory), string(topActivities), s.ComputedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("upsert day summary: %w", err)
	}

	slog.InfoContext(ctx, "Day summary upserted",
		"owner", s.Owner,
		"date", s.Date.String(),
		"total_minutes", s.TotalMinutes,
		"is_complete", s.IsComplete)

	return nil
}

// GetDaySummary returns the stored aggregate for (owner, date), or
// store.ErrNotFound when the worker has not computed one yet.
func (r *SQLiteRepository) GetDaySummary(ctx context.Context, owner string, date core.Date) (analytics.DaySummary, error) {
	var (
		s             analytics.DaySummary
		dateStr       string
		complete      int
		byCategory    string
		topActivities string
		computedAt    string
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT owner, date, total_minutes, is_complete, by_category, top_activities, computed_at
		FROM day_summaries
		WHERE owner = ? AND date = ?`,
		owner, date.String()).
		Scan(&s.Owner, &dateStr, &s.TotalMinutes, &complete, &byCategory, &topActivities, &computedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return analytics.DaySummary{}, store.ErrNotFound
	}
	if err != nil {
		return analytics.DaySummary{}, fmt.Errorf("get day summary: %w", err)
	}

	s.Date, err = core.ParseDate(dateStr)
	if err != nil {
		return analytics.DaySummary{}, fmt.Errorf("parse summary date: %w", err)
	}
	s.IsComplete = complete != 0
	if err := json.Unmarshal([]byte(byCategory), &s.ByCategory); err != nil {
		return analytics.DaySummary{}, fmt.Errorf("unmarshal category breakdown: %w", err)
	}
	if err := json.Unmarshal([]byte(topActivities), &s.TopActivities); err != nil {
		return analytics.DaySummary{}, fmt.Errorf("unmarshal top activities: %w", err)
	}
	s.ComputedAt, err = time.Parse(timeFormat, computedAt)
	if err != nil {
		return analytics.DaySummary{}, fmt.Errorf("parse computed_at: %w", err)
	}

	return s, nil
}

// DayRef names one (owner, date) selection that needs its summary
// recomputed.
type DayRef struct {
	Owner string
	Date  core.Date
}

// ListDaysNeedingSummary returns days whose activities changed after the
// stored summary was computed, or that have no summary yet. Feeds the
// worker's periodic reconciliation.
func (r *SQLiteRepository) ListDaysNeedingSummary(ctx context.Context, limit int) ([]DayRef, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.owner, a.date
		FROM activities a
		LEFT JOIN day_summaries s ON s.owner = a.owner AND s.date = a.date
		GROUP BY a.owner, a.date
		HAVING s.computed_at IS NULL OR MAX(a.updated_at) > s.computed_at
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list days needing summary: %w", err)
	}
	defer rows.Close()

	var refs []DayRef
	for rows.Next() {
		var owner, dateStr string
		if err := rows.Scan(&owner, &dateStr); err != nil {
			return nil, fmt.Errorf("scan day ref: %w", err)
		}
		date, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse day ref date: %w", err)
		}
		refs = append(refs, DayRef{Owner: owner, Date: date})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day refs: %w", err)
	}

	return refs, nil
}

func scanActivity(rows *sql.Rows) (core.Activity, error) {
	var (
		a         core.Activity
		dateStr   string
		createdAt string
		updatedAt string
	)
	if err := rows.Scan(&a.ID, &a.Owner, &dateStr, &a.Title, &a.Category,
		&a.DurationMinutes, &createdAt, &updatedAt); err != nil {
		return core.Activity{}, err
	}

	var err error
	a.Date, err = core.ParseDate(dateStr)
	if err != nil {
		return core.Activity{}, fmt.Errorf("parse date %q: %w", dateStr, err)
	}
	a.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return core.Activity{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	a.UpdatedAt, err = time.Parse(timeFormat, updatedAt)
	if err != nil {
		return core.Activity{}, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
	}

	return a, nil
}
