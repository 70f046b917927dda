package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"famgrocer/internal/auth"
	"famgrocer/internal/database"
	"famgrocer/internal/store"
)

func setupAuthTest(t *testing.T) (*store.SessionStore, *store.UserStore, *store.FamilyStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewSessionStore(db), store.NewUserStore(db), store.NewFamilyStore(db)
}

func TestRequireAuthRejectsMissingCookie(t *testing.T) {
	sessions, users, _ := setupAuthTest(t)

	handler := RequireAuth(sessions, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without a session")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/items", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}
}

func TestRequireAuthRejectsUnknownToken(t *testing.T) {
	sessions, users, _ := setupAuthTest(t)

	handler := RequireAuth(sessions, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with a bogus token")
	}))

	req := httptest.NewRequest("GET", "/api/items", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-real-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthPopulatesContext(t *testing.T) {
	sessions, users, families := setupAuthTest(t)

	user, err := users.Create("Alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	fam, err := families.Create("Home", user.UID)
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	if err := users.SetFamily(user.UID, &fam.Code); err != nil {
		t.Fatalf("set family: %v", err)
	}
	sess, err := sessions.Create(user.UID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var got auth.AuthContext
	handler := RequireAuth(sessions, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.FromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/items", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.UserUID != user.UID || got.Name != "Alice" || got.FamilyCode != fam.Code {
		t.Errorf("auth context = %+v", got)
	}
	if got.SessionID != sess.ID {
		t.Errorf("session id = %d, want %d", got.SessionID, sess.ID)
	}
}

func TestRequireFamily(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	// No family on the auth context: 403.
	req := httptest.NewRequest("GET", "/api/items", nil)
	req = req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{UserUID: "u1"}))
	rec := httptest.NewRecorder()
	RequireFamily(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status without family = %d, want 403", rec.Code)
	}

	// With a family the request passes through.
	req = httptest.NewRequest("GET", "/api/items", nil)
	req = req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{UserUID: "u1", FamilyCode: "ABC123"}))
	rec = httptest.NewRecorder()
	RequireFamily(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status with family = %d, want 200", rec.Code)
	}
}
