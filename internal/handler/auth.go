package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"famgrocer/internal/auth"
	"famgrocer/internal/engine"
	"famgrocer/internal/middleware"
	"famgrocer/internal/notify"
	"famgrocer/internal/store"
)

// DeleteConfirmPhrase must be typed verbatim to destroy an account.
const DeleteConfirmPhrase = "DELETE MY ACCOUNT"

type AuthHandler struct {
	users      *store.UserStore
	sessions   *store.SessionStore
	items      *store.ItemStore
	push       *store.PushStore
	dispatcher *notify.Dispatcher
	engine     *engine.Engine
	logger     *slog.Logger
}

func NewAuthHandler(users *store.UserStore, sessions *store.SessionStore, items *store.ItemStore, push *store.PushStore, dispatcher *notify.Dispatcher, eng *engine.Engine, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:      users,
		sessions:   sessions,
		items:      items,
		push:       push,
		dispatcher: dispatcher,
		engine:     eng,
		logger:     logger,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	existing, err := h.users.GetByEmail(req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check email")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := h.users.Create(req.Name, req.Email, string(hash))
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	if err := h.startSession(w, user.UID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := h.users.PasswordHash(req.Email)
	if err != nil || hash == "" {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil || user == nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := h.users.TouchLastLogin(user.UID); err != nil {
		h.logger.Warn("touch last login", "error", err)
	}
	if err := h.startSession(w, user.UID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if ac, ok := auth.FromContext(r.Context()); ok {
		if err := h.sessions.Delete(ac.SessionID); err != nil {
			h.logger.Warn("delete session", "error", err)
		}
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated member's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserUID(r.Context())
	user, err := h.users.GetByUID(uid)
	if err != nil || user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	PhotoURL string `json:"photoURL"`
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	user, err := h.users.UpdateProfile(auth.UserUID(r.Context()), req.Name, req.PhotoURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type deleteAccountRequest struct {
	Confirm string `json:"confirm"`
}

// DeleteAccount destroys the account and everything it owns: the
// member's own items, push subscriptions, sessions and feed. The
// confirmation phrase must match exactly.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req deleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Confirm != DeleteConfirmPhrase {
		writeError(w, http.StatusBadRequest, "confirmation phrase does not match")
		return
	}

	ac, _ := auth.FromContext(r.Context())

	if ac.FamilyCode != "" {
		if _, err := h.items.DeleteByAddedBy(ac.FamilyCode, ac.UserUID); err != nil {
			h.logger.Error("delete user items", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to delete account data")
			return
		}
	}
	if err := h.push.DeleteByUser(ac.UserUID); err != nil {
		h.logger.Warn("delete push subscriptions", "error", err)
	}
	if err := h.sessions.DeleteByUser(ac.UserUID); err != nil {
		h.logger.Warn("delete sessions", "error", err)
	}
	h.dispatcher.Clear(ac.UserUID)

	if err := h.users.Delete(ac.UserUID); err != nil {
		h.logger.Error("delete user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	if ac.FamilyCode != "" {
		if _, err := h.engine.Refresh(context.WithoutCancel(r.Context()), ac.FamilyCode); err != nil {
			h.logger.Warn("refresh after account deletion", "error", err)
		}
	}

	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, uid string) error {
	sess, err := h.sessions.Create(uid)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
