package store

import (
	"testing"

	"famgrocer/internal/database"
)

func setupPushTestDB(t *testing.T) (*PushStore, *UserStore, *FamilyStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPushStore(db), NewUserStore(db), NewFamilyStore(db)
}

func TestSubscriptionUpsertByEndpoint(t *testing.T) {
	ps, us, fs := setupPushTestDB(t)
	user, _ := us.Create("Alice", "alice@example.com", "hash")
	fam, _ := fs.Create("Home", user.UID)

	sub, err := ps.CreateSubscription(user.UID, fam.Code, "https://push.example/ep1", "p256dh", "auth", "Phone")
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	if sub.ID == 0 {
		t.Fatal("expected subscription id")
	}

	// Same endpoint again replaces the keys instead of duplicating.
	again, err := ps.CreateSubscription(user.UID, fam.Code, "https://push.example/ep1", "p256dh-new", "auth-new", "Phone")
	if err != nil {
		t.Fatalf("re-subscribe: %v", err)
	}
	if again.P256dhKey != "p256dh-new" {
		t.Errorf("keys not refreshed on re-subscribe: %+v", again)
	}

	subs, err := ps.ListByUser(user.UID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("subscriptions = %d, want 1 after upsert", len(subs))
	}
}

func TestDeleteSubscriptionOwnership(t *testing.T) {
	ps, us, fs := setupPushTestDB(t)
	alice, _ := us.Create("Alice", "alice@example.com", "hash")
	bob, _ := us.Create("Bob", "bob@example.com", "hash")
	fam, _ := fs.Create("Home", alice.UID)

	sub, _ := ps.CreateSubscription(alice.UID, fam.Code, "https://push.example/ep1", "k", "a", "")

	// Another member cannot delete it.
	if err := ps.DeleteSubscription(sub.ID, bob.UID); err != nil {
		t.Fatalf("delete as other user: %v", err)
	}
	subs, _ := ps.ListByUser(alice.UID)
	if len(subs) != 1 {
		t.Fatalf("foreign delete removed the subscription")
	}

	if err := ps.DeleteSubscription(sub.ID, alice.UID); err != nil {
		t.Fatalf("delete as owner: %v", err)
	}
	subs, _ = ps.ListByUser(alice.UID)
	if len(subs) != 0 {
		t.Errorf("owner delete did not remove the subscription")
	}
}

func TestDeleteByEndpointAndUser(t *testing.T) {
	ps, us, fs := setupPushTestDB(t)
	user, _ := us.Create("Alice", "alice@example.com", "hash")
	fam, _ := fs.Create("Home", user.UID)

	ps.CreateSubscription(user.UID, fam.Code, "https://push.example/ep1", "k", "a", "")
	ps.CreateSubscription(user.UID, fam.Code, "https://push.example/ep2", "k", "a", "")

	if err := ps.DeleteByEndpoint("https://push.example/ep1"); err != nil {
		t.Fatalf("delete by endpoint: %v", err)
	}
	subs, _ := ps.ListByUser(user.UID)
	if len(subs) != 1 {
		t.Fatalf("subscriptions = %d, want 1", len(subs))
	}

	if err := ps.DeleteByUser(user.UID); err != nil {
		t.Fatalf("delete by user: %v", err)
	}
	subs, _ = ps.ListByUser(user.UID)
	if len(subs) != 0 {
		t.Errorf("subscriptions = %d, want 0", len(subs))
	}
}

func TestListByFamily(t *testing.T) {
	ps, us, fs := setupPushTestDB(t)
	alice, _ := us.Create("Alice", "alice@example.com", "hash")
	bob, _ := us.Create("Bob", "bob@example.com", "hash")
	fam, _ := fs.Create("Home", alice.UID)
	other, _ := fs.Create("Elsewhere", bob.UID)

	ps.CreateSubscription(alice.UID, fam.Code, "https://push.example/ep1", "k", "a", "")
	ps.CreateSubscription(bob.UID, other.Code, "https://push.example/ep2", "k", "a", "")

	subs, err := ps.ListByFamily(fam.Code)
	if err != nil {
		t.Fatalf("list by family: %v", err)
	}
	if len(subs) != 1 || subs[0].UserUID != alice.UID {
		t.Errorf("family subscriptions = %+v, want only Alice's", subs)
	}
}
