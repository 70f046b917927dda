package handler

import (
	"net/http"

	"famgrocer/internal/auth"
	"famgrocer/internal/notify"
)

type NotificationHandler struct {
	dispatcher *notify.Dispatcher
}

func NewNotificationHandler(dispatcher *notify.Dispatcher) *NotificationHandler {
	return &NotificationHandler{dispatcher: dispatcher}
}

// Feed handles GET /api/notifications: the member's visible feed,
// oldest first, at most five entries.
func (h *NotificationHandler) Feed(w http.ResponseWriter, r *http.Request) {
	feed := h.dispatcher.Feed(auth.UserUID(r.Context()))
	if feed == nil {
		feed = []notify.Notification{}
	}
	writeJSON(w, http.StatusOK, feed)
}

// Dismiss handles DELETE /api/notifications/{id}.
func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.dispatcher.Dismiss(auth.UserUID(r.Context()), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/notifications.
func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.dispatcher.Clear(auth.UserUID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
