package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"famgrocer/internal/auth"
	"famgrocer/internal/derive"
	"famgrocer/internal/engine"
	"famgrocer/internal/grocery"
	"famgrocer/internal/model"
	"famgrocer/internal/store"
)

type ItemHandler struct {
	items  *store.ItemStore
	engine *engine.Engine
	logger *slog.Logger
}

func NewItemHandler(items *store.ItemStore, eng *engine.Engine, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{items: items, engine: eng, logger: logger}
}

type itemRequest struct {
	Name        string  `json:"name"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	Category    string  `json:"category"`
	IsUrgent    bool    `json:"isUrgent"`
	IsRecurring bool    `json:"isRecurring"`
}

func (req *itemRequest) normalize() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	if req.Unit == "" {
		req.Unit = "pcs"
	}
	if !model.ValidUnit(req.Unit) {
		return "unknown unit"
	}
	if req.Category == "" {
		req.Category = grocery.Categorize(req.Name)
	}
	if !model.ValidCategory(req.Category) {
		return "unknown category"
	}
	return ""
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.normalize(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := h.items.CreateItem(ac.FamilyCode, req.Name, req.Quantity, req.Unit, req.Category, req.IsUrgent, req.IsRecurring, ac.UserUID, ac.Name)
	if err != nil {
		h.logger.Error("create item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	h.refresh(r, ac.FamilyCode)
	writeJSON(w, http.StatusCreated, item)
}

// List returns the derived views for the member's list screen. The
// filter and search query parameters narrow the pending partition the
// same way the client-side tabs do.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	items, err := h.engine.Items(r.Context(), ac.FamilyCode)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	filter := r.URL.Query().Get("filter")
	search := r.URL.Query().Get("search")

	views := derive.Compute(items, filter, search, ac.UserUID, time.Now())
	writeJSON(w, http.StatusOK, views)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	existing, ok := h.ownedItem(w, r)
	if !ok {
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Category == "" {
		req.Category = existing.Category
	}
	if msg := req.normalize(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := h.items.UpdateItem(existing.ID, req.Name, req.Quantity, req.Unit, req.Category, req.IsUrgent, req.IsRecurring)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	h.refresh(r, ac.FamilyCode)
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	existing, ok := h.ownedItem(w, r)
	if !ok {
		return
	}

	if err := h.items.DeleteItem(existing.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	h.refresh(r, ac.FamilyCode)
	w.WriteHeader(http.StatusNoContent)
}

// Claim reserves an unclaimed pending item for the caller.
func (h *ItemHandler) Claim(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	existing, ok := h.ownedItem(w, r)
	if !ok {
		return
	}
	if existing.Completed {
		writeError(w, http.StatusConflict, "item is already completed")
		return
	}
	if existing.ClaimedBy != nil {
		writeError(w, http.StatusConflict, "item is already claimed")
		return
	}

	item, err := h.items.Claim(existing.ID, ac.UserUID, ac.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to claim item")
		return
	}

	h.refresh(r, ac.FamilyCode)
	writeJSON(w, http.StatusOK, item)
}

// Unclaim releases the caller's claim. Only the claimant may release.
func (h *ItemHandler) Unclaim(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	existing, ok := h.ownedItem(w, r)
	if !ok {
		return
	}
	if existing.ClaimedBy == nil || *existing.ClaimedBy != ac.UserUID {
		writeError(w, http.StatusForbidden, "item is not claimed by you")
		return
	}

	item, err := h.items.Unclaim(existing.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to unclaim item")
		return
	}

	h.refresh(r, ac.FamilyCode)
	writeJSON(w, http.StatusOK, item)
}

type completeRequest struct {
	Price        *float64   `json:"price"`
	Store        *string    `json:"store"`
	PurchaseDate *time.Time `json:"purchaseDate"`
}

// Complete marks an item purchased. Price and store are optional; an
// item completed without a price joins the unpriced queue.
func (h *ItemHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	existing, ok := h.ownedItem(w, r)
	if !ok {
		return
	}
	if existing.Completed {
		writeError(w, http.StatusConflict, "item is already completed")
		return
	}

	var req completeRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Price != nil && *req.Price < 0 {
		writeError(w, http.StatusBadRequest, "price cannot be negative")
		return
	}

	item, err := h.items.Complete(existing.ID, ac.UserUID, ac.Name, req.Price, req.Store, req.PurchaseDate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to complete item")
		return
	}

	h.refresh(r, ac.FamilyCode)
	writeJSON(w, http.StatusOK, item)
}

// Uncomplete puts a purchased item back on the pending list, clearing
// its purchase record.
func (h *ItemHandler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	existing, ok := h.ownedItem(w, r)
	if !ok {
		return
	}
	if !existing.Completed {
		writeError(w, http.StatusConflict, "item is not completed")
		return
	}

	item, err := h.items.Uncomplete(existing.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to uncomplete item")
		return
	}

	h.refresh(r, ac.FamilyCode)
	writeJSON(w, http.StatusOK, item)
}

type priceRequest struct {
	Price        float64    `json:"price"`
	Store        string     `json:"store"`
	PurchaseDate *time.Time `json:"purchaseDate"`
}

// SetPrice records a price retroactively on a completed item.
func (h *ItemHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	existing, ok := h.ownedItem(w, r)
	if !ok {
		return
	}
	if !existing.Completed {
		writeError(w, http.StatusConflict, "item is not completed")
		return
	}

	var req priceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "price must be positive")
		return
	}

	purchaseDate := time.Now()
	if req.PurchaseDate != nil {
		purchaseDate = *req.PurchaseDate
	}

	item, err := h.items.SetPrice(existing.ID, req.Price, req.Store, purchaseDate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to set price")
		return
	}

	h.refresh(r, ac.FamilyCode)
	writeJSON(w, http.StatusOK, item)
}

// ClearCompleted removes every completed item from the family list in
// one batch.
func (h *ItemHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	ids, err := h.items.ClearCompleted(ac.FamilyCode)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear completed items")
		return
	}

	h.refresh(r, ac.FamilyCode)
	writeJSON(w, http.StatusOK, map[string]any{"cleared": len(ids), "ids": ids})
}

// Unpriced returns completed items still waiting for a price.
func (h *ItemHandler) Unpriced(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	items, err := h.engine.Items(r.Context(), ac.FamilyCode)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	views := derive.Compute(items, derive.FilterAll, "", ac.UserUID, time.Now())
	writeJSON(w, http.StatusOK, views.Unpriced)
}

// ownedItem loads the path item and checks it belongs to the caller's
// family. Items from other families are reported as not found.
func (h *ItemHandler) ownedItem(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	ac, _ := auth.FromContext(r.Context())

	item, err := h.items.GetItemByID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return nil, false
	}
	if item == nil || item.FamilyCode != ac.FamilyCode {
		writeError(w, http.StatusNotFound, "item not found")
		return nil, false
	}
	return item, true
}

func (h *ItemHandler) refresh(r *http.Request, familyCode string) {
	if _, err := h.engine.Refresh(context.WithoutCancel(r.Context()), familyCode); err != nil {
		h.logger.Warn("refresh after mutation", "family", familyCode, "error", err)
	}
}
