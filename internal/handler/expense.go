package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"famgrocer/internal/auth"
	"famgrocer/internal/model"
	"famgrocer/internal/store"
)

type ExpenseHandler struct {
	expenses *store.ExpenseStore
	logger   *slog.Logger
}

func NewExpenseHandler(expenses *store.ExpenseStore, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses, logger: logger}
}

type expenseRequest struct {
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	DueDate     time.Time `json:"dueDate"`
	IsRecurring bool      `json:"isRecurring"`
}

func (req *expenseRequest) validate() string {
	req.Type = strings.TrimSpace(req.Type)
	if req.Type == "" {
		return "type is required"
	}
	if req.Amount <= 0 {
		return "amount must be positive"
	}
	if req.DueDate.IsZero() {
		return "dueDate is required"
	}
	return ""
}

func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	expense, err := h.expenses.Create(ac.FamilyCode, req.Type, req.Amount, req.DueDate, req.IsRecurring, ac.UserUID)
	if err != nil {
		h.logger.Error("create expense", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create expense")
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

// List returns the family's expenses, optionally narrowed to one
// "YYYY-MM" month bucket. Without a month it returns the current one.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	month := r.URL.Query().Get("month")
	if month == "" {
		month = model.MonthBucket(time.Now())
	}

	expenses, err := h.expenses.ListByFamily(ac.FamilyCode, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.ownedExpense(w, r)
	if !ok {
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	expense, err := h.expenses.Update(existing.ID, req.Type, req.Amount, req.DueDate, req.IsRecurring)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update expense")
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// MarkPaid settles an expense. Recurring expenses roll a fresh unpaid
// copy into the following month.
func (h *ExpenseHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.ownedExpense(w, r)
	if !ok {
		return
	}
	if existing.Paid {
		writeError(w, http.StatusConflict, "expense is already paid")
		return
	}

	expense, err := h.expenses.MarkPaid(existing.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to mark expense paid")
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// Delete removes an expense. Only its creator may delete it; other
// members can edit or settle it but not make it disappear.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.ownedExpense(w, r)
	if !ok {
		return
	}

	ac, _ := auth.FromContext(r.Context())
	if existing.CreatedBy != ac.UserUID {
		writeError(w, http.StatusForbidden, "only the creator can delete an expense")
		return
	}

	if err := h.expenses.Delete(existing.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ExpenseHandler) ownedExpense(w http.ResponseWriter, r *http.Request) (*model.Expense, bool) {
	ac, _ := auth.FromContext(r.Context())

	expense, err := h.expenses.GetByID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get expense")
		return nil, false
	}
	if expense == nil || expense.FamilyCode != ac.FamilyCode {
		writeError(w, http.StatusNotFound, "expense not found")
		return nil, false
	}
	return expense, true
}
