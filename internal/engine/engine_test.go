package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"famgrocer/internal/database"
	"famgrocer/internal/notify"
	"famgrocer/internal/snapshot"
	"famgrocer/internal/store"
	ws "famgrocer/internal/websocket"
)

type fixture struct {
	engine     *Engine
	items      *store.ItemStore
	dispatcher *notify.Dispatcher
	familyCode string
	aliceUID   string
	bobUID     string
}

func setupEngine(t *testing.T) *fixture {
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
	users.SetFamily(alice.UID, &fam.Code)
	users.SetFamily(bob.UID, &fam.Code)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	items := store.NewItemStore(db)
	dispatcher := notify.NewDispatcher(nil, logger)
	eng := New(items, users, snapshot.NewManager(), dispatcher, ws.NewHub(logger), logger)

	return &fixture{
		engine:     eng,
		items:      items,
		dispatcher: dispatcher,
		familyCode: fam.Code,
		aliceUID:   alice.UID,
		bobUID:     bob.UID,
	}
}

func TestFirstRefreshPrimesSilently(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()

	// Rows that predate this process must not be announced on the first
	// load after startup.
	if _, err := f.items.CreateItem(f.familyCode, "Milk", 1, "pcs", "dairy", false, false, f.aliceUID, "Alice"); err != nil {
		t.Fatalf("create item: %v", err)
	}
	if _, err := f.engine.Refresh(ctx, f.familyCode); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if feed := f.dispatcher.Feed(f.bobUID); len(feed) != 0 {
		t.Fatalf("priming load dispatched %d notifications", len(feed))
	}

	// After priming, a new row is announced to the other member.
	if _, err := f.items.CreateItem(f.familyCode, "Bread", 1, "pcs", "bakery", false, false, f.aliceUID, "Alice"); err != nil {
		t.Fatalf("create item: %v", err)
	}
	if _, err := f.engine.Refresh(ctx, f.familyCode); err != nil {
		t.Fatalf("second refresh: %v", err)
	}

	feed := f.dispatcher.Feed(f.bobUID)
	if len(feed) != 1 {
		t.Fatalf("bob feed = %d notifications, want 1", len(feed))
	}
	if feed[0].Kind != notify.KindItemAdded {
		t.Errorf("kind = %q, want %q", feed[0].Kind, notify.KindItemAdded)
	}

	// The actor never hears about their own add.
	if feed := f.dispatcher.Feed(f.aliceUID); len(feed) != 0 {
		t.Errorf("alice feed = %d notifications, want 0", len(feed))
	}
}

func TestRefreshClassifiesTransitions(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()

	item, err := f.items.CreateItem(f.familyCode, "Eggs", 12, "pcs", "dairy", false, false, f.aliceUID, "Alice")
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if _, err := f.engine.Refresh(ctx, f.familyCode); err != nil {
		t.Fatalf("prime: %v", err)
	}

	price := 4.50
	if _, err := f.items.Complete(item.ID, f.bobUID, "Bob", &price, nil, nil); err != nil {
		t.Fatalf("complete: %v", err)
	}
	delta, err := f.engine.Refresh(ctx, f.familyCode)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(delta.Modified) != 1 {
		t.Fatalf("modified = %d, want 1", len(delta.Modified))
	}

	// Alice hears the completion; Bob, the actor, sees only the price
	// confirmation (never self-suppressed).
	aliceFeed := f.dispatcher.Feed(f.aliceUID)
	if len(aliceFeed) != 2 {
		t.Fatalf("alice feed = %d notifications, want completed + price", len(aliceFeed))
	}
	bobFeed := f.dispatcher.Feed(f.bobUID)
	if len(bobFeed) != 1 || bobFeed[0].Kind != notify.KindPriceAdded {
		t.Errorf("bob feed = %+v, want only price-added", bobFeed)
	}
}

func TestItemsLoadsOnFirstAccess(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()

	if _, err := f.items.CreateItem(f.familyCode, "Milk", 1, "pcs", "dairy", false, false, f.aliceUID, "Alice"); err != nil {
		t.Fatalf("create item: %v", err)
	}

	got, err := f.engine.Items(ctx, f.familyCode)
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Milk" {
		t.Errorf("items = %+v", got)
	}
}

func TestConcurrentRefreshesAnnounceEachItemOnce(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()

	if _, err := f.engine.Refresh(ctx, f.familyCode); err != nil {
		t.Fatalf("prime: %v", err)
	}

	// Several members adding at once: each created row must be announced
	// exactly once, never re-announced because a stale load applied last.
	names := []string{"Milk", "Bread", "Eggs"}
	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			if _, err := f.items.CreateItem(f.familyCode, name, 1, "pcs", "other", false, false, f.aliceUID, "Alice"); err != nil {
				t.Errorf("create %s: %v", name, err)
				return
			}
			if _, err := f.engine.Refresh(ctx, f.familyCode); err != nil {
				t.Errorf("refresh after %s: %v", name, err)
			}
		}(name)
	}
	wg.Wait()

	items, err := f.engine.Items(ctx, f.familyCode)
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(items) != len(names) {
		t.Errorf("cached items = %d, want %d", len(items), len(names))
	}

	feed := f.dispatcher.Feed(f.bobUID)
	if len(feed) != len(names) {
		t.Fatalf("bob feed = %d notifications, want %d", len(feed), len(names))
	}
	seen := make(map[string]bool)
	for _, n := range feed {
		if n.Kind != notify.KindItemAdded {
			t.Errorf("unexpected kind %q", n.Kind)
		}
		if seen[n.ItemID] {
			t.Errorf("item %s announced twice", n.ItemID)
		}
		seen[n.ItemID] = true
	}
}

func TestForgetDropsCache(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()

	f.items.CreateItem(f.familyCode, "Milk", 1, "pcs", "dairy", false, false, f.aliceUID, "Alice")
	if _, err := f.engine.Refresh(ctx, f.familyCode); err != nil {
		t.Fatalf("prime: %v", err)
	}

	f.engine.Forget(f.familyCode)

	// The next refresh re-primes silently even though the rows are the
	// same.
	if _, err := f.engine.Refresh(ctx, f.familyCode); err != nil {
		t.Fatalf("refresh after forget: %v", err)
	}
	if feed := f.dispatcher.Feed(f.bobUID); len(feed) != 0 {
		t.Errorf("re-priming dispatched %d notifications", len(feed))
	}
}
