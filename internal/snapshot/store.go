// Package snapshot maintains the latest known item set per family,
// sourced from full-collection snapshots. The store is a pure read cache
// of authoritative state: it is never mutated in place by callers, only
// replaced wholesale when a new snapshot arrives.
package snapshot

import (
	"sort"
	"sync"
	"time"

	"famgrocer/internal/model"
)

// Change is one modified item with its previous and current state.
type Change struct {
	Before model.Item
	After  model.Item
}

// Delta describes what a snapshot application changed relative to the
// previous working set. An empty delta means the snapshot was a no-op.
type Delta struct {
	Added    []model.Item
	Modified []Change
	Removed  []model.Item
}

// Empty reports whether the snapshot changed nothing.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Modified) == 0 && len(d.Removed) == 0
}

// Store holds the latest known state of every item of one family, keyed
// by item id.
type Store struct {
	mu    sync.RWMutex
	items map[string]model.Item
}

func NewStore() *Store {
	return &Store{items: make(map[string]model.Item)}
}

// Apply replaces the full working set atomically. The incoming list is
// authoritative truth for the family: items absent from it are removed,
// items present overwrite whatever was held before. Applying the same
// snapshot twice yields an empty delta the second time.
func (s *Store) Apply(items []model.Item) Delta {
	next := make(map[string]model.Item, len(items))
	for _, it := range items {
		next[it.ID] = it
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var delta Delta
	for _, it := range items {
		prev, ok := s.items[it.ID]
		if !ok {
			delta.Added = append(delta.Added, it)
			continue
		}
		if !itemsEqual(prev, it) {
			delta.Modified = append(delta.Modified, Change{Before: prev, After: it})
		}
	}
	for id, prev := range s.items {
		if _, ok := next[id]; !ok {
			delta.Removed = append(delta.Removed, prev)
		}
	}

	s.items = next
	return delta
}

// Items returns the working set ordered newest first. Items lacking a
// createdAt sort as epoch zero, pinning pending-write entries to the
// bottom until the server timestamp resolves.
func (s *Store) Items() []model.Item {
	s.mu.RLock()
	items := make([]model.Item, 0, len(s.items))
	for _, it := range s.items {
		items = append(items, it)
	}
	s.mu.RUnlock()

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

// Get returns the latest known state of one item.
func (s *Store) Get(id string) (model.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	return it, ok
}

// Len returns the working-set size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func itemsEqual(a, b model.Item) bool {
	return a.ID == b.ID &&
		a.Name == b.Name &&
		a.Quantity == b.Quantity &&
		a.Unit == b.Unit &&
		a.Category == b.Category &&
		a.IsUrgent == b.IsUrgent &&
		a.IsRecurring == b.IsRecurring &&
		a.Completed == b.Completed &&
		strPtrEqual(a.ClaimedBy, b.ClaimedBy) &&
		strPtrEqual(a.CompletedBy, b.CompletedBy) &&
		floatPtrEqual(a.Price, b.Price) &&
		strPtrEqual(a.Store, b.Store) &&
		timePtrEqual(a.PurchaseDate, b.PurchaseDate)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
