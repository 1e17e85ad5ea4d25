// Package ledger implements the daily time ledger: the in-memory
// authoritative view of one (owner, date) selection and the transactional
// boundary for activity mutations against the 1440-minute budget.
package ledger

import (
	"context"
	"errors"
	"sync"

	"tempo/internal/core"
	"tempo/internal/store"
)

// ErrNoSelection is returned when a mutation runs before any Load.
var ErrNoSelection = errors.New("no (owner, date) selection loaded")

// ChangeKind names the mutation behind a change notification.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// Change describes one successful mutation, emitted to the optional
// onChange hook so the caller observes state changes explicitly.
type Change struct {
	Kind       ChangeKind
	Owner      string
	Date       core.Date
	ActivityID string
}

// Snapshot is a point-in-time copy of the ledger state with its
// derived values, safe for the caller to keep.
type Snapshot struct {
	Owner            string
	Date             core.Date
	Activities       []core.Activity
	TotalMinutes     int
	RemainingMinutes int
	IsComplete       bool
}

// Ledger owns the activity list for the active (owner, date) selection.
// Mutations are serialized by opMu, so the budget check, the store write,
// and the merge act as one transaction; reads are safe at any time. Store
// I/O happens outside the state lock, and an epoch counter makes a
// selection change a cancellation boundary: a mutation that lands after
// the selection moved is not merged into the new list.
type Ledger struct {
	store    store.Store
	onChange func(Change)

	// opMu serializes Add/Update/Remove. Without it two in-flight
	// mutations could both pass the budget check against the same total.
	opMu sync.Mutex

	mu         sync.Mutex
	owner      string
	date       core.Date
	epoch      uint64
	loaded     bool
	activities []core.Activity
}

// New creates a ledger over the given store. onChange may be nil; when
// set it is called after every successful mutation, outside the lock.
func New(st store.Store, onChange func(Change)) *Ledger {
	return &Ledger{store: st, onChange: onChange}
}

// Load replaces the active selection with (owner, date) and the in-memory
// list with that day's activities, ordered by creation time. On a fetch
// failure the previous selection and list stay untouched.
func (l *Ledger) Load(ctx context.Context, owner string, date core.Date) ([]core.Activity, error) {
	const op = "load"

	if owner == "" {
		return nil, newFailure(FailureValidation, op, core.ErrEmptyOwner)
	}
	if err := date.Validate(); err != nil {
		return nil, newFailure(FailureValidation, op, err)
	}

	activities, err := l.store.Query(ctx, owner, date)
	if err != nil {
		return nil, newFailure(FailureFetch, op, err)
	}

	l.mu.Lock()
	l.owner = owner
	l.date = date
	l.epoch++
	l.loaded = true
	l.activities = append([]core.Activity(nil), activities...)
	list := append([]core.Activity(nil), l.activities...)
	l.mu.Unlock()

	return list, nil
}

// Add validates and creates one activity for the active selection.
// The budget is re-checked against the live in-memory total before the
// store is contacted; a validation failure never reaches the store.
func (l *Ledger) Add(ctx context.Context, title, category string, durationMinutes int) (core.Activity, error) {
	const op = "add"

	l.opMu.Lock()
	defer l.opMu.Unlock()

	l.mu.Lock()
	if !l.loaded {
		l.mu.Unlock()
		return core.Activity{}, newFailure(FailureValidation, op, ErrNoSelection)
	}
	n := core.NewActivity{
		Owner:           l.owner,
		Date:            l.date,
		Title:           title,
		Category:        category,
		DurationMinutes: durationMinutes,
	}.Normalized()
	if err := n.Validate(); err != nil {
		l.mu.Unlock()
		return core.Activity{}, newFailure(FailureValidation, op, err)
	}
	if durationMinutes > core.RemainingMinutes(l.activities) {
		l.mu.Unlock()
		return core.Activity{}, newFailure(FailureValidation, op, core.ErrBudgetExceeded)
	}
	epoch := l.epoch
	l.mu.Unlock()

	created, err := l.store.Insert(ctx, n)
	if err != nil {
		return core.Activity{}, newFailure(FailureStore, op, err)
	}

	change, merged := l.merge(epoch, func() {
		l.activities = append(l.activities, created)
	}, Change{Kind: ChangeCreated, ActivityID: created.ID})
	if merged {
		l.notify(change)
	}

	return created, nil
}

// Update persists the supplied fields for an activity of the active
// selection and patches the in-memory copy in place. Creation order is
// never disturbed. The budget is re-derived with the activity's old
// duration swapped for the new one.
func (l *Ledger) Update(ctx context.Context, id string, p core.Patch) (core.Patch, error) {
	const op = "update"

	l.opMu.Lock()
	defer l.opMu.Unlock()

	p = p.Normalized()

	l.mu.Lock()
	if !l.loaded {
		l.mu.Unlock()
		return core.Patch{}, newFailure(FailureValidation, op, ErrNoSelection)
	}
	idx := l.indexOfLocked(id)
	if idx < 0 {
		l.mu.Unlock()
		return core.Patch{}, newFailure(FailureNotFound, op, store.ErrNotFound)
	}
	if err := p.Validate(); err != nil {
		l.mu.Unlock()
		return core.Patch{}, newFailure(FailureValidation, op, err)
	}
	if p.DurationMinutes != nil {
		newTotal := core.TotalMinutes(l.activities) - l.activities[idx].DurationMinutes + *p.DurationMinutes
		if newTotal > core.BudgetMinutes {
			l.mu.Unlock()
			return core.Patch{}, newFailure(FailureValidation, op, core.ErrBudgetExceeded)
		}
	}
	epoch := l.epoch
	l.mu.Unlock()

	if err := l.store.Update(ctx, id, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.Patch{}, newFailure(FailureNotFound, op, err)
		}
		return core.Patch{}, newFailure(FailureStore, op, err)
	}

	change, merged := l.merge(epoch, func() {
		if i := l.indexOfLocked(id); i >= 0 {
			l.activities[i] = p.Apply(l.activities[i])
		}
	}, Change{Kind: ChangeUpdated, ActivityID: id})
	if merged {
		l.notify(change)
	}

	return p, nil
}

// Remove deletes an activity from the store, then from the in-memory
// list. The list is only trimmed after the store confirms the delete.
func (l *Ledger) Remove(ctx context.Context, id string) error {
	const op = "remove"

	l.opMu.Lock()
	defer l.opMu.Unlock()

	l.mu.Lock()
	if !l.loaded {
		l.mu.Unlock()
		return newFailure(FailureValidation, op, ErrNoSelection)
	}
	if l.indexOfLocked(id) < 0 {
		l.mu.Unlock()
		return newFailure(FailureNotFound, op, store.ErrNotFound)
	}
	epoch := l.epoch
	l.mu.Unlock()

	if err := l.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return newFailure(FailureNotFound, op, err)
		}
		return newFailure(FailureStore, op, err)
	}

	change, merged := l.merge(epoch, func() {
		if i := l.indexOfLocked(id); i >= 0 {
			l.activities = append(l.activities[:i], l.activities[i+1:]...)
		}
	}, Change{Kind: ChangeDeleted, ActivityID: id})
	if merged {
		l.notify(change)
	}

	return nil
}

// merge applies fn to the in-memory list unless the selection moved while
// the store round trip was in flight. Returns the completed change and
// whether it was merged.
func (l *Ledger) merge(epoch uint64, fn func(), change Change) (Change, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.epoch != epoch {
		// Stale selection: the store write stands, the new list is not touched.
		return Change{}, false
	}
	fn()
	change.Owner = l.owner
	change.Date = l.date
	return change, true
}

func (l *Ledger) notify(change Change) {
	if l.onChange != nil {
		l.onChange(change)
	}
}

func (l *Ledger) indexOfLocked(id string) int {
	for i, a := range l.activities {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Activities returns a copy of the current in-memory list.
func (l *Ledger) Activities() []core.Activity {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Activity(nil), l.activities...)
}

// TotalMinutes is the sum of durations over the current list.
func (l *Ledger) TotalMinutes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return core.TotalMinutes(l.activities)
}

// RemainingMinutes is the unspent part of the daily budget.
func (l *Ledger) RemainingMinutes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return core.RemainingMinutes(l.activities)
}

// IsComplete reports whether the day's budget is fully accounted for.
// The ledger only exposes the signal; gating analytics on it is the
// caller's job.
func (l *Ledger) IsComplete() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return core.IsComplete(l.activities)
}

// CategoryTotals sums minutes per category in first-seen order.
func (l *Ledger) CategoryTotals() []core.CategoryMinutes {
	l.mu.Lock()
	defer l.mu.Unlock()
	return core.CategoryTotals(l.activities)
}

// TopActivities returns the n longest activities of the day.
func (l *Ledger) TopActivities(n int) []core.Activity {
	l.mu.Lock()
	defer l.mu.Unlock()
	return core.TopActivities(l.activities, n)
}

// Snapshot returns the current state and derived values in one copy.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		Owner:            l.owner,
		Date:             l.date,
		Activities:       append([]core.Activity(nil), l.activities...),
		TotalMinutes:     core.TotalMinutes(l.activities),
		RemainingMinutes: core.RemainingMinutes(l.activities),
		IsComplete:       core.IsComplete(l.activities),
	}
}
