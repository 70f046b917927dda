package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"famgrocer/internal/model"
)

// MaxVisible caps each member's notification feed. When a sixth
// notification arrives, the oldest is evicted regardless of urgency.
const MaxVisible = 5

// UrgentDuration is how long an urgent notification is considered
// sticky by clients; non-urgent entries may auto-dismiss sooner.
const UrgentDuration = 10 * time.Second

// Notification is one entry in a member's feed.
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	ItemID    string    `json:"itemId"`
	Tab       string    `json:"tab"`
	Urgent    bool      `json:"urgent"`
	Sound     bool      `json:"sound"`
	CreatedAt time.Time `json:"createdAt"`
}

// Pusher delivers a notification out-of-band, typically over Web Push.
// Delivery failures are the pusher's problem; the dispatcher never
// blocks a feed on them.
type Pusher interface {
	Push(ctx context.Context, userUID string, n Notification) error
}

// Dispatcher fans transitions out to per-member feeds and the push
// channel. Feeds are in-memory rings: they reflect what the member
// would currently see on screen, not a durable inbox.
type Dispatcher struct {
	mu     sync.Mutex
	feeds  map[string][]Notification
	pusher Pusher
	logger *slog.Logger
	now    func() time.Time
}

func NewDispatcher(pusher Pusher, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		feeds:  make(map[string][]Notification),
		pusher: pusher,
		logger: logger.With("component", "notify"),
		now:    time.Now,
	}
}

// Dispatch routes each transition to every family member it concerns.
// Self-actions are suppressed per Foreign, each member's preference
// switches are honored, and push delivery additionally requires the
// member to have granted browser permission (NotificationEnabled).
func (d *Dispatcher) Dispatch(ctx context.Context, members []model.User, transitions []Transition) {
	for _, t := range transitions {
		for _, m := range members {
			if !Foreign(t, m.UID) {
				continue
			}
			if !Allowed(m.Preferences, t.Kind) {
				continue
			}

			n := Notification{
				ID:        uuid.NewString(),
				Kind:      t.Kind,
				Message:   Message(t),
				ItemID:    t.Item.ID,
				Tab:       Tab(t.Kind),
				Urgent:    t.Item.IsUrgent && t.Kind == KindItemAdded,
				Sound:     m.Preferences.Sound,
				CreatedAt: d.now(),
			}
			d.append(m.UID, n)

			if d.pusher != nil && m.NotificationEnabled && t.ActorUID != m.UID {
				if err := d.pusher.Push(ctx, m.UID, n); err != nil {
					d.logger.Warn("push delivery failed", "user", m.UID, "kind", t.Kind, "error", err)
				}
			}
		}
	}
}

func (d *Dispatcher) append(userUID string, n Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	feed := append(d.feeds[userUID], n)
	if len(feed) > MaxVisible {
		feed = feed[len(feed)-MaxVisible:]
	}
	d.feeds[userUID] = feed
}

// Feed returns a copy of one member's visible notifications, oldest
// first.
func (d *Dispatcher) Feed(userUID string) []Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	feed := d.feeds[userUID]
	out := make([]Notification, len(feed))
	copy(out, feed)
	return out
}

// Dismiss removes one notification from a member's feed. Unknown ids
// are ignored.
func (d *Dispatcher) Dismiss(userUID, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	feed := d.feeds[userUID]
	for i, n := range feed {
		if n.ID == id {
			d.feeds[userUID] = append(feed[:i:i], feed[i+1:]...)
			return
		}
	}
}

// Clear empties a member's feed, e.g. on logout or account deletion.
func (d *Dispatcher) Clear(userUID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.feeds, userUID)
}
