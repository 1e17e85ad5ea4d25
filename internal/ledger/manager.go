package ledger

import (
	"context"
	"sync"

	"tempo/internal/core"
	"tempo/internal/store"
)

// Manager hands out one ledger per (owner, date) so callers that serve
// many selections at once (the HTTP layer) keep a single authoritative
// in-memory view per day. Ledgers are loaded lazily on first use.
type Manager struct {
	store    store.Store
	onChange func(Change)

	mu      sync.Mutex
	ledgers map[string]*Ledger
}

func NewManager(st store.Store, onChange func(Change)) *Manager {
	return &Manager{
		store:    st,
		onChange: onChange,
		ledgers:  make(map[string]*Ledger),
	}
}

// Get returns the ledger for (owner, date), loading it from the store the
// first time. A fetch failure on the initial load is returned to the
// caller and nothing is cached, so the next call retries.
func (m *Manager) Get(ctx context.Context, owner string, date core.Date) (*Ledger, error) {
	key := owner + "|" + date.String()

	m.mu.Lock()
	if l, ok := m.ledgers[key]; ok {
		m.mu.Unlock()
		return l, nil
	}
	m.mu.Unlock()

	l := New(m.store, m.onChange)
	if _, err := l.Load(ctx, owner, date); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.ledgers[key]; ok {
		// Lost the race to another caller; theirs is authoritative.
		return existing, nil
	}
	m.ledgers[key] = l
	return l, nil
}

// Evict drops the cached ledger for (owner, date); the next Get reloads.
func (m *Manager) Evict(owner string, date core.Date) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ledgers, owner+"|"+date.String())
}

// Size returns the number of cached ledgers.
func (m *Manager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ledgers)
}
