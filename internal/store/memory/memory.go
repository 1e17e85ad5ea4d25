// Package memory is an in-memory record store. It backs the server when no
// database is configured and doubles as the test store for the ledger's
// failure paths via FailNext.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tempo/internal/core"
	"tempo/internal/store"
)

type Store struct {
	mu    sync.Mutex
	items []core.Activity // insertion order == creation order
	next  error           // injected one-shot failure
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// FailNext makes the next operation fail with err, once. Used by tests to
// simulate store rejections and outages.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = err
}

func (s *Store) takeInjectedLocked() error {
	err := s.next
	s.next = nil
	return err
}

// Query returns the activities for (owner, date) in creation order.
func (s *Store) Query(_ context.Context, owner string, date core.Date) ([]core.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeInjectedLocked(); err != nil {
		return nil, err
	}

	var out []core.Activity
	for _, a := range s.items {
		if a.Owner == owner && a.Date.Equal(date) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Insert stores the activity, assigning ID and timestamps.
func (s *Store) Insert(_ context.Context, n core.NewActivity) (core.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeInjectedLocked(); err != nil {
		return core.Activity{}, err
	}
	if err := n.Validate(); err != nil {
		return core.Activity{}, err
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
	s.items = append(s.items, a)
	return a, nil
}

// Update patches the stored record and bumps its updated timestamp.
func (s *Store) Update(_ context.Context, id string, p core.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeInjectedLocked(); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	for i, a := range s.items {
		if a.ID == id {
			patched := p.Apply(a)
			patched.UpdatedAt = time.Now().UTC()
			s.items[i] = patched
			return nil
		}
	}
	return store.ErrNotFound
}

// Delete removes the record by ID.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeInjectedLocked(); err != nil {
		return err
	}

	for i, a := range s.items {
		if a.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// Len returns the total record count across all owners and dates.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
