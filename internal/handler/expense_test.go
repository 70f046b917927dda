package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"famgrocer/internal/auth"
	"famgrocer/internal/database"
	"famgrocer/internal/store"
)

func setupExpenseHandler(t *testing.T) (*ExpenseHandler, *store.ExpenseStore, string, string, string) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	alice, err := users.Create("Alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	bob, err := users.Create("Bob", "bob@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	fam, err := store.NewFamilyStore(db).Create("Home", alice.UID)
	if err != nil {
		t.Fatalf("create family: %v", err)
	}

	expenses := store.NewExpenseStore(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewExpenseHandler(expenses, logger), expenses, fam.Code, alice.UID, bob.UID
}

func expenseRequestAs(method, target, id, userUID, familyCode string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.SetPathValue("id", id)
	return req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{
		UserUID:    userUID,
		FamilyCode: familyCode,
	}))
}

func TestExpenseDeleteCreatorOnly(t *testing.T) {
	h, expenses, code, alice, bob := setupExpenseHandler(t)

	exp, err := expenses.Create(code, "rent", 1200, time.Now().UTC(), false, alice)
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	// Another family member cannot delete it.
	rec := httptest.NewRecorder()
	h.Delete(rec, expenseRequestAs("DELETE", "/api/expenses/"+exp.ID, exp.ID, bob, code))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("delete as non-creator status = %d, want 403", rec.Code)
	}
	if got, _ := expenses.GetByID(exp.ID); got == nil {
		t.Fatal("expense removed by a non-creator")
	}

	// The creator can.
	rec = httptest.NewRecorder()
	h.Delete(rec, expenseRequestAs("DELETE", "/api/expenses/"+exp.ID, exp.ID, alice, code))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete as creator status = %d, want 204", rec.Code)
	}
	if got, _ := expenses.GetByID(exp.ID); got != nil {
		t.Error("expense still present after creator delete")
	}
}

func TestExpenseUpdateStaysFamilyWide(t *testing.T) {
	h, expenses, code, alice, bob := setupExpenseHandler(t)

	exp, err := expenses.Create(code, "power", 80, time.Now().UTC(), false, alice)
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	// Any member may settle another member's expense.
	rec := httptest.NewRecorder()
	h.MarkPaid(rec, expenseRequestAs("POST", "/api/expenses/"+exp.ID+"/paid", exp.ID, bob, code))
	if rec.Code != http.StatusOK {
		t.Fatalf("mark paid as non-creator status = %d, want 200", rec.Code)
	}
	got, _ := expenses.GetByID(exp.ID)
	if got == nil || !got.Paid {
		t.Error("expense not settled")
	}
}

func TestExpenseDeleteOutsideFamily(t *testing.T) {
	h, expenses, code, alice, _ := setupExpenseHandler(t)

	exp, err := expenses.Create(code, "rent", 1200, time.Now().UTC(), false, alice)
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	rec := httptest.NewRecorder()
	h.Delete(rec, expenseRequestAs("DELETE", "/api/expenses/"+exp.ID, exp.ID, alice, "ZZZZ99"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete from another family status = %d, want 404", rec.Code)
	}
	if got, _ := expenses.GetByID(exp.ID); got == nil {
		t.Error("expense removed across family boundary")
	}
}
