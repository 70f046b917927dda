// Package engine drives the reconciliation cycle: after any list
// mutation the family's items are reloaded, diffed against the last
// known snapshot, and the resulting transitions fan out to member
// feeds, push devices and live websocket clients.
package engine

import (
	"context"
	"log/slog"
	"sync"

	"famgrocer/internal/model"
	"famgrocer/internal/notify"
	"famgrocer/internal/snapshot"
	"famgrocer/internal/store"
	ws "famgrocer/internal/websocket"
)

type Engine struct {
	items      *store.ItemStore
	users      *store.UserStore
	manager    *snapshot.Manager
	dispatcher *notify.Dispatcher
	hub        *ws.Hub
	logger     *slog.Logger

	mu     sync.Mutex
	primed map[string]bool
	locks  map[string]*sync.Mutex
}

func New(items *store.ItemStore, users *store.UserStore, manager *snapshot.Manager, dispatcher *notify.Dispatcher, hub *ws.Hub, logger *slog.Logger) *Engine {
	return &Engine{
		items:      items,
		users:      users,
		manager:    manager,
		dispatcher: dispatcher,
		hub:        hub,
		logger:     logger.With("component", "engine"),
		primed:     make(map[string]bool),
		locks:      make(map[string]*sync.Mutex),
	}
}

// familyLock serializes reconciliation per family. Without it two
// concurrent mutations can load-then-apply out of order, so the stale
// result lands last and a committed row is misread as removed.
func (e *Engine) familyLock(familyCode string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[familyCode]
	if !ok {
		l = &sync.Mutex{}
		e.locks[familyCode] = l
	}
	return l
}

// Refresh reloads one family's items and reconciles them against the
// cached working set. Every observable transition is classified,
// dispatched to member feeds and push devices, and broadcast to
// connected clients together with the fresh snapshot.
func (e *Engine) Refresh(ctx context.Context, familyCode string) (snapshot.Delta, error) {
	lock := e.familyLock(familyCode)
	lock.Lock()
	defer lock.Unlock()

	items, err := e.items.ListByFamily(familyCode)
	if err != nil {
		return snapshot.Delta{}, err
	}

	// The first load after startup diffs against an empty cache. Prime
	// it silently instead of announcing every item as newly added.
	e.mu.Lock()
	primed := e.primed[familyCode]
	e.primed[familyCode] = true
	e.mu.Unlock()

	delta := e.manager.Apply(familyCode, items)
	if delta.Empty() || !primed {
		return delta, nil
	}

	transitions := notify.Classify(delta)
	if len(transitions) > 0 {
		members, err := e.users.ListByFamily(familyCode)
		if err != nil {
			e.logger.Warn("list members for dispatch", "family", familyCode, "error", err)
		} else {
			e.dispatcher.Dispatch(ctx, members, transitions)
		}
		for _, t := range transitions {
			e.hub.Broadcast(familyCode, ws.EventMessage(familyCode, map[string]any{
				"kind":      t.Kind,
				"itemId":    t.Item.ID,
				"itemName":  t.Item.Name,
				"actorUid":  t.ActorUID,
				"actorName": t.ActorName,
			}))
		}
	}

	e.hub.Broadcast(familyCode, ws.SnapshotMessage(familyCode, e.manager.Store(familyCode).Items()))
	return delta, nil
}

// Items returns the family's cached working set, loading from the
// database on first access after startup.
func (e *Engine) Items(ctx context.Context, familyCode string) ([]model.Item, error) {
	e.mu.Lock()
	primed := e.primed[familyCode]
	e.mu.Unlock()

	if primed {
		return e.manager.Store(familyCode).Items(), nil
	}
	if _, err := e.Refresh(ctx, familyCode); err != nil {
		return nil, err
	}
	return e.manager.Store(familyCode).Items(), nil
}

// Forget drops a family's cached state after the family is deleted.
func (e *Engine) Forget(familyCode string) {
	e.mu.Lock()
	delete(e.primed, familyCode)
	delete(e.locks, familyCode)
	e.mu.Unlock()
	e.manager.Drop(familyCode)
}
