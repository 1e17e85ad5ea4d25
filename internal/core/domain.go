package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// BudgetMinutes is the hard per-day budget: 24 hours.
	BudgetMinutes = 1440

	// MaxTitleLength bounds activity titles.
	MaxTitleLength = 100
)

type (
	// Date is a calendar date with no clock component.
	Date struct {
		time.Time
	}

	// Activity is one logged slice of a day.
	Activity struct {
		ID              string
		Owner           string
		Date            Date
		Title           string
		Category        string
		DurationMinutes int
		CreatedAt       time.Time
		UpdatedAt       time.Time
	}

	// NewActivity carries the caller-supplied fields of an activity to be
	// created; the store assigns ID and timestamps.
	NewActivity struct {
		Owner           string
		Date            Date
		Title           string
		Category        string
		DurationMinutes int
	}

	// Patch carries the optional fields of an update. Nil means "leave as is".
	// Date and Owner are immutable and have no patch fields.
	Patch struct {
		Title           *string
		Category        *string
		DurationMinutes *int
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyOwner      = errors.New("empty owner")
	ErrEmptyTitle      = errors.New("empty title")
	ErrTitleTooLong    = errors.New("title too long (max 100 characters)")
	ErrEmptyCategory   = errors.New("empty category")
	ErrInvalidDuration = errors.New("duration must be a positive number of minutes")
	ErrBudgetExceeded  = errors.New("daily budget of 1440 minutes exceeded")
	ErrEmptyPatch      = errors.New("no fields to update")
)

// NewDate creates a Date from year, month, day (UTC midnight).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Equal reports whether two dates name the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.String() == other.String()
}

func validateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return ErrEmptyTitle
	}
	// The limit counts characters, not bytes.
	if utf8.RuneCountInString(trimmed) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

func (n NewActivity) Validate() error {
	if strings.TrimSpace(n.Owner) == "" {
		return ErrEmptyOwner
	}
	if err := n.Date.Validate(); err != nil {
		return err
	}
	if err := validateTitle(n.Title); err != nil {
		return err
	}
	if strings.TrimSpace(n.Category) == "" {
		return ErrEmptyCategory
	}
	if n.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// Normalized returns a copy with the title trimmed, ready for storage.
func (n NewActivity) Normalized() NewActivity {
	n.Title = strings.TrimSpace(n.Title)
	return n
}

// IsEmpty reports whether the patch carries no fields at all.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Category == nil && p.DurationMinutes == nil
}

func (p Patch) Validate() error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return ErrEmptyCategory
	}
	if p.DurationMinutes != nil && *p.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// Normalized returns a copy with the title trimmed, ready for storage.
func (p Patch) Normalized() Patch {
	if p.Title != nil {
		trimmed := strings.TrimSpace(*p.Title)
		p.Title = &trimmed
	}
	return p
}

// Apply returns a copy of the activity with the patch fields set.
// ID, Owner, Date and CreatedAt are never touched.
func (p Patch) Apply(a Activity) Activity {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.DurationMinutes != nil {
		a.DurationMinutes = *p.DurationMinutes
	}
	return a
}
