package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message is a real-time frame pushed to family members. Snapshot
// frames carry the full working set after a change; event frames carry
// one attributed transition so clients can toast it.
type Message struct {
	Type    string `json:"type"`
	Family  string `json:"family"`
	Payload any    `json:"payload,omitempty"`
}

// SnapshotMessage wraps the authoritative item set for one family.
func SnapshotMessage(familyCode string, payload any) Message {
	return Message{Type: "snapshot", Family: familyCode, Payload: payload}
}

// EventMessage wraps one transition notification.
func EventMessage(familyCode string, payload any) Message {
	return Message{Type: "event", Family: familyCode, Payload: payload}
}

// Hub maintains the set of active WebSocket clients grouped by family
// and broadcasts messages within a family's scope.
type Hub struct {
	mu       sync.RWMutex
	families map[string]map[*Client]struct{}
	logger   *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		families: make(map[string]map[*Client]struct{}),
		logger:   logger,
	}
}

// Register adds a client to its family's broadcast group.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	group, ok := h.families[c.familyCode]
	if !ok {
		group = make(map[*Client]struct{})
		h.families[c.familyCode] = group
	}
	group[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client and closes its send channel. The family
// group is dropped when its last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if group, ok := h.families[c.familyCode]; ok {
		if _, ok := group[c]; ok {
			delete(group, c)
			close(c.send)
		}
		if len(group) == 0 {
			delete(h.families, c.familyCode)
		}
	}
	h.mu.Unlock()
}

// Broadcast sends a message to every connected member of one family.
func (h *Hub) Broadcast(familyCode string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.families[familyCode] {
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop message to avoid blocking
		}
	}
}

// BroadcastUser sends a message to one member's connections only.
func (h *Hub) BroadcastUser(familyCode, userUID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.families[familyCode] {
		if c.userUID != userUID {
			continue
		}
		select {
		case c.send <- data:
		default:
		}
	}
}

// ClientCount returns the number of connections in one family.
func (h *Hub) ClientCount(familyCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.families[familyCode])
}
