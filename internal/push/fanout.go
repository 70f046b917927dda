package push

import (
	"context"
	"errors"
	"log/slog"

	"famgrocer/internal/notify"
	"famgrocer/internal/store"
)

// Fanout delivers a feed notification to every device a member has
// subscribed. It implements the dispatcher's Pusher interface. Expired
// subscriptions are pruned as they are discovered.
type Fanout struct {
	service *Service
	subs    *store.PushStore
	logger  *slog.Logger
}

func NewFanout(service *Service, subs *store.PushStore, logger *slog.Logger) *Fanout {
	return &Fanout{
		service: service,
		subs:    subs,
		logger:  logger.With("component", "push"),
	}
}

// Push sends n to all of one member's devices. A delivery failure on
// one device does not stop the rest; only the first hard error is
// returned.
func (f *Fanout) Push(ctx context.Context, userUID string, n notify.Notification) error {
	subs, err := f.subs.ListByUser(userUID)
	if err != nil {
		return err
	}

	payload := Payload{
		Title:  "Famgrocer",
		Body:   n.Message,
		Tab:    n.Tab,
		Tag:    n.Kind,
		Urgent: n.Urgent,
	}

	var firstErr error
	for i := range subs {
		sub := &subs[i]
		err := f.service.Send(sub, payload)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrExpired) {
			if delErr := f.subs.DeleteByEndpoint(sub.Endpoint); delErr != nil {
				f.logger.Warn("prune expired subscription", "error", delErr)
			}
			continue
		}
		f.logger.Warn("push send failed", "user", userUID, "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
