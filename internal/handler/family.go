package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"famgrocer/internal/auth"
	"famgrocer/internal/email"
	"famgrocer/internal/engine"
	"famgrocer/internal/family"
	"famgrocer/internal/model"
	"famgrocer/internal/store"
)

type FamilyHandler struct {
	families *store.FamilyStore
	users    *store.UserStore
	engine   *engine.Engine
	email    *email.Client
	logger   *slog.Logger
}

func NewFamilyHandler(families *store.FamilyStore, users *store.UserStore, eng *engine.Engine, emailClient *email.Client, logger *slog.Logger) *FamilyHandler {
	return &FamilyHandler{
		families: families,
		users:    users,
		engine:   eng,
		email:    emailClient,
		logger:   logger,
	}
}

type createFamilyRequest struct {
	Name string `json:"name"`
}

func (h *FamilyHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	if ac.FamilyCode != "" {
		writeError(w, http.StatusConflict, "already in a family")
		return
	}

	var req createFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	fam, err := h.families.Create(req.Name, ac.UserUID)
	if err != nil {
		h.logger.Error("create family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create family")
		return
	}

	if err := h.users.SetFamily(ac.UserUID, &fam.Code); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to join family")
		return
	}
	writeJSON(w, http.StatusCreated, fam)
}

type joinFamilyRequest struct {
	Code string `json:"code"`
}

// Join adds the member to an existing family by code. A family whose
// members have all left is still joinable as long as its record exists.
func (h *FamilyHandler) Join(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	if ac.FamilyCode != "" {
		writeError(w, http.StatusConflict, "already in a family")
		return
	}

	var req joinFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	code := family.NormalizeCode(req.Code)
	if !family.ValidCode(code) {
		writeError(w, http.StatusBadRequest, "invalid family code")
		return
	}

	fam, err := h.families.GetByCode(code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to look up family")
		return
	}
	if fam == nil {
		writeError(w, http.StatusNotFound, "family not found")
		return
	}

	if err := h.users.SetFamily(ac.UserUID, &fam.Code); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to join family")
		return
	}
	writeJSON(w, http.StatusOK, fam)
}

// Leave detaches the member from their family. Their items stay on the
// shared list; only the membership link is removed. The family record
// survives even with zero members so the code remains joinable.
func (h *FamilyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	if ac.FamilyCode == "" {
		writeError(w, http.StatusBadRequest, "not in a family")
		return
	}

	if err := h.users.SetFamily(ac.UserUID, nil); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to leave family")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type familyResponse struct {
	Family  *model.Family  `json:"family"`
	Members []model.Member `json:"members"`
}

// Current returns the member's family together with its roster.
func (h *FamilyHandler) Current(w http.ResponseWriter, r *http.Request) {
	code := auth.FamilyCode(r.Context())

	fam, err := h.families.GetByCode(code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get family")
		return
	}
	if fam == nil {
		writeError(w, http.StatusNotFound, "family not found")
		return
	}

	members, err := h.families.ListMembers(code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	writeJSON(w, http.StatusOK, familyResponse{Family: fam, Members: members})
}

type inviteRequest struct {
	Email string `json:"email"`
}

// Invite mails the family code to a prospective member.
func (h *FamilyHandler) Invite(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	if h.email == nil || !h.email.Configured() {
		writeError(w, http.StatusServiceUnavailable, "email is not configured")
		return
	}

	fam, err := h.families.GetByCode(ac.FamilyCode)
	if err != nil || fam == nil {
		writeError(w, http.StatusInternalServerError, "failed to get family")
		return
	}

	if err := h.email.SendInvite(req.Email, ac.Name, fam.Name, fam.Code); err != nil {
		h.logger.Error("send invite", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to send invite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
