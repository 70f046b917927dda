package snapshot

import (
	"sync"

	"famgrocer/internal/model"
)

// Listener receives the full working set plus the delta each time a
// snapshot lands for a subscribed family.
type Listener func(items []model.Item, delta Delta)

type subscription struct {
	familyCode string
	listener   Listener
	cancelled  bool
}

// Manager owns one Store per family and routes snapshots to listeners.
// At most one live subscription exists per scope key: re-subscribing the
// same key cancels the previous listener first, so a rapid leave/join
// cycle can never leave a stale listener running.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store
	subs   map[string]*subscription
}

func NewManager() *Manager {
	return &Manager{
		stores: make(map[string]*Store),
		subs:   make(map[string]*subscription),
	}
}

// Cancel tears down one subscription. Safe to call more than once.
type Cancel func()

// Subscribe registers fn under key for the given family. The key scopes
// the subscription (typically the connection or session id); a second
// Subscribe with the same key replaces the first.
func (m *Manager) Subscribe(key, familyCode string, fn Listener) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.subs[key]; ok {
		prev.cancelled = true
	}
	sub := &subscription{familyCode: familyCode, listener: fn}
	m.subs[key] = sub

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub.cancelled {
			return
		}
		sub.cancelled = true
		if m.subs[key] == sub {
			delete(m.subs, key)
		}
	}
}

// Apply feeds a fresh full snapshot for one family through its store and
// fans the delta out to every live listener on that family. It returns
// the computed delta so the caller can drive notification classification
// off the same diff the listeners saw.
func (m *Manager) Apply(familyCode string, items []model.Item) Delta {
	m.mu.Lock()
	st, ok := m.stores[familyCode]
	if !ok {
		st = NewStore()
		m.stores[familyCode] = st
	}
	var listeners []Listener
	for _, sub := range m.subs {
		if sub.familyCode == familyCode && !sub.cancelled {
			listeners = append(listeners, sub.listener)
		}
	}
	m.mu.Unlock()

	delta := st.Apply(items)
	if delta.Empty() {
		return delta
	}
	snapshot := st.Items()
	for _, fn := range listeners {
		fn(snapshot, delta)
	}
	return delta
}

// Store returns the working-set store for one family, creating it on
// first use.
func (m *Manager) Store(familyCode string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.stores[familyCode]
	if !ok {
		st = NewStore()
		m.stores[familyCode] = st
	}
	return st
}

// Drop discards a family's cached working set, typically after the
// family is deleted.
func (m *Manager) Drop(familyCode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, familyCode)
}
