package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"famgrocer/internal/auth"
	"famgrocer/internal/push"
	"famgrocer/internal/store"
)

type PushHandler struct {
	pushStore *store.PushStore
	service   *push.Service
	users     *store.UserStore
	logger    *slog.Logger
}

func NewPushHandler(ps *store.PushStore, svc *push.Service, users *store.UserStore, logger *slog.Logger) *PushHandler {
	return &PushHandler{pushStore: ps, service: svc, users: users, logger: logger}
}

type subscribeRequest struct {
	Endpoint   string `json:"endpoint"`
	P256dh     string `json:"p256dh"`
	Auth       string `json:"auth"`
	DeviceName string `json:"deviceName"`
}

// Subscribe handles POST /api/push/subscribe. Registering a device also
// flips the member's notificationEnabled flag on, mirroring a granted
// browser permission.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Endpoint == "" || req.P256dh == "" || req.Auth == "" {
		writeError(w, http.StatusBadRequest, "endpoint, p256dh, and auth are required")
		return
	}

	sub, err := h.pushStore.CreateSubscription(ac.UserUID, ac.FamilyCode, req.Endpoint, req.P256dh, req.Auth, req.DeviceName)
	if err != nil {
		h.logger.Error("create push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}

	if err := h.users.SetNotificationEnabled(ac.UserUID, true); err != nil {
		h.logger.Warn("enable notifications", "error", err)
	}

	writeJSON(w, http.StatusCreated, sub)
}

// Unsubscribe handles DELETE /api/push/subscriptions/{id}.
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserUID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.pushStore.DeleteSubscription(id, uid); err != nil {
		h.logger.Error("delete push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete subscription")
		return
	}

	remaining, err := h.pushStore.ListByUser(uid)
	if err == nil && len(remaining) == 0 {
		if err := h.users.SetNotificationEnabled(uid, false); err != nil {
			h.logger.Warn("disable notifications", "error", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListSubscriptions handles GET /api/push/subscriptions.
func (h *PushHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.pushStore.ListByUser(auth.UserUID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	if subs == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// GetVAPIDKey handles GET /api/push/vapid-key.
func (h *PushHandler) GetVAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": h.service.VAPIDPublicKey()})
}

// TestNotification handles POST /api/push/test, sending a probe message
// to all of the caller's devices.
func (h *PushHandler) TestNotification(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserUID(r.Context())

	subs, err := h.pushStore.ListByUser(uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	if len(subs) == 0 {
		writeError(w, http.StatusNotFound, "no subscriptions registered")
		return
	}

	payload := push.Payload{
		Title: "Famgrocer",
		Body:  "Push notifications are working.",
		Tab:   "settings",
		Tag:   "test",
	}
	sent := 0
	for i := range subs {
		if err := h.service.Send(&subs[i], payload); err != nil {
			h.logger.Warn("test push failed", "error", err)
			continue
		}
		sent++
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
