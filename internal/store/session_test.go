package store

import (
	"testing"

	"famgrocer/internal/database"
)

func setupSessionTestDB(t *testing.T) (*SessionStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionStore(db), NewUserStore(db)
}

func TestSessionLifecycle(t *testing.T) {
	ss, us := setupSessionTestDB(t)
	user, _ := us.Create("Alice", "alice@example.com", "hash")

	sess, err := ss.Create(user.UID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("expected session token")
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil || got.UserUID != user.UID {
		t.Fatalf("session = %+v, want user %s", got, user.UID)
	}

	if err := ss.Delete(sess.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	gone, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get deleted: %v", err)
	}
	if gone != nil {
		t.Errorf("deleted session still resolves")
	}
}

func TestExpiredSessionNotReturned(t *testing.T) {
	ss, us := setupSessionTestDB(t)
	user, _ := us.Create("Alice", "alice@example.com", "hash")

	sess, _ := ss.Create(user.UID)
	if _, err := ss.db.Exec(`UPDATE sessions SET expires_at = datetime('now', '-1 day') WHERE id = ?`, sess.ID); err != nil {
		t.Fatalf("expire session: %v", err)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get expired: %v", err)
	}
	if got != nil {
		t.Errorf("expired session still resolves")
	}

	n, err := ss.CleanupExpired()
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 1 {
		t.Errorf("cleanup removed %d sessions, want 1", n)
	}
}

func TestDeleteByUser(t *testing.T) {
	ss, us := setupSessionTestDB(t)
	alice, _ := us.Create("Alice", "alice@example.com", "hash")
	bob, _ := us.Create("Bob", "bob@example.com", "hash")

	ss.Create(alice.UID)
	ss.Create(alice.UID)
	keep, _ := ss.Create(bob.UID)

	if err := ss.DeleteByUser(alice.UID); err != nil {
		t.Fatalf("delete by user: %v", err)
	}

	got, _ := ss.GetByToken(keep.Token)
	if got == nil {
		t.Errorf("other user's session was removed")
	}
}
