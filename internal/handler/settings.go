package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"famgrocer/internal/auth"
	"famgrocer/internal/backup"
	"famgrocer/internal/model"
	"famgrocer/internal/store"
)

type SettingsHandler struct {
	users   *store.UserStore
	backups *backup.Manager
	logger  *slog.Logger
}

func NewSettingsHandler(users *store.UserStore, backups *backup.Manager, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{users: users, backups: backups, logger: logger}
}

// GetPreferences handles GET /api/preferences.
func (h *SettingsHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByUID(auth.UserUID(r.Context()))
	if err != nil || user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user.Preferences)
}

// UpdatePreferences handles PUT /api/preferences. The full preference
// document is replaced; clients send the whole struct.
func (h *SettingsHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs model.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if prefs.Budget < 0 {
		writeError(w, http.StatusBadRequest, "budget cannot be negative")
		return
	}

	user, err := h.users.UpdatePreferences(auth.UserUID(r.Context()), prefs)
	if err != nil {
		h.logger.Error("update preferences", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update preferences")
		return
	}
	writeJSON(w, http.StatusOK, user.Preferences)
}

type notificationEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// SetNotificationEnabled handles PUT /api/preferences/notification-enabled,
// reflecting the browser permission state.
func (h *SettingsHandler) SetNotificationEnabled(w http.ResponseWriter, r *http.Request) {
	var req notificationEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.users.SetNotificationEnabled(auth.UserUID(r.Context()), req.Enabled); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update flag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/export: the member's data as a plain JSON
// download.
func (h *SettingsHandler) Export(w http.ResponseWriter, r *http.Request) {
	export, err := h.backups.Export(auth.UserUID(r.Context()))
	if err != nil {
		h.logger.Error("build export", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build export")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="famgrocer-export.json"`)
	json.NewEncoder(w).Encode(export)
}
