package notify

import (
	"testing"
	"time"

	"famgrocer/internal/model"
	"famgrocer/internal/snapshot"
)

func ptr[T any](v T) *T { return &v }

func baseItem(id string) model.Item {
	return model.Item{
		ID:          id,
		FamilyCode:  "FAM001",
		Name:        "Milk",
		AddedBy:     "uid-alice",
		AddedByName: "Alice",
		CreatedAt:   time.Now(),
	}
}

func kinds(ts []Transition) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Kind
	}
	return out
}

func TestClassifyAdded(t *testing.T) {
	delta := snapshot.Delta{Added: []model.Item{baseItem("a")}}

	ts := Classify(delta)

	if len(ts) != 1 || ts[0].Kind != KindItemAdded {
		t.Fatalf("transitions = %v, want one item-added", kinds(ts))
	}
	if ts[0].ActorUID != "uid-alice" || ts[0].ActorName != "Alice" {
		t.Errorf("added transition attributed to %q, want the adder", ts[0].ActorUID)
	}
}

func TestClassifyRemovedIsSilent(t *testing.T) {
	delta := snapshot.Delta{Removed: []model.Item{baseItem("a")}}
	if ts := Classify(delta); len(ts) != 0 {
		t.Errorf("removed items produced transitions %v, want none", kinds(ts))
	}
}

func TestClassifyCompleted(t *testing.T) {
	before := baseItem("a")
	after := before
	after.Completed = true
	after.CompletedBy = ptr("uid-bob")
	after.CompletedByName = ptr("Bob")

	ts := Classify(snapshot.Delta{Modified: []snapshot.Change{{Before: before, After: after}}})

	if len(ts) != 1 || ts[0].Kind != KindItemCompleted {
		t.Fatalf("transitions = %v, want one item-completed", kinds(ts))
	}
	if ts[0].ActorUID != "uid-bob" {
		t.Errorf("completion attributed to %q, want the completer", ts[0].ActorUID)
	}
}

func TestClassifyClaimAndUnclaim(t *testing.T) {
	before := baseItem("a")
	claimed := before
	claimed.ClaimedBy = ptr("uid-bob")
	claimed.ClaimedByName = ptr("Bob")

	ts := Classify(snapshot.Delta{Modified: []snapshot.Change{{Before: before, After: claimed}}})
	if len(ts) != 1 || ts[0].Kind != KindItemClaimed || ts[0].ActorUID != "uid-bob" {
		t.Fatalf("claim transitions = %+v, want item-claimed by uid-bob", ts)
	}

	// Unclaim attribution comes from the previous claimant.
	ts = Classify(snapshot.Delta{Modified: []snapshot.Change{{Before: claimed, After: before}}})
	if len(ts) != 1 || ts[0].Kind != KindItemUnclaimed || ts[0].ActorUID != "uid-bob" {
		t.Fatalf("unclaim transitions = %+v, want item-unclaimed by previous claimant", ts)
	}
}

func TestClassifyCompleteWithPriceEmitsBoth(t *testing.T) {
	before := baseItem("a")
	after := before
	after.Completed = true
	after.CompletedBy = ptr("uid-bob")
	after.Price = ptr(4.5)

	ts := Classify(snapshot.Delta{Modified: []snapshot.Change{{Before: before, After: after}}})

	got := kinds(ts)
	if len(got) != 2 || got[0] != KindItemCompleted || got[1] != KindPriceAdded {
		t.Errorf("transitions = %v, want [item-completed price-added]", got)
	}
}

func TestClassifyZeroPriceIsNotPriceAdded(t *testing.T) {
	before := baseItem("a")
	before.Completed = true
	after := before
	after.Price = ptr(0.0)

	if ts := Classify(snapshot.Delta{Modified: []snapshot.Change{{Before: before, After: after}}}); len(ts) != 0 {
		t.Errorf("zero price produced transitions %v, want none", kinds(ts))
	}
}

func TestForeignSuppression(t *testing.T) {
	cases := []struct {
		name   string
		kind   string
		actor  string
		viewer string
		want   bool
	}{
		{"own add suppressed", KindItemAdded, "uid-alice", "uid-alice", false},
		{"foreign add surfaces", KindItemAdded, "uid-alice", "uid-bob", true},
		{"own completion suppressed", KindItemCompleted, "uid-bob", "uid-bob", false},
		{"own claim suppressed", KindItemClaimed, "uid-bob", "uid-bob", false},
		{"own unclaim suppressed", KindItemUnclaimed, "uid-bob", "uid-bob", false},
		{"price-added surfaces even to the actor", KindPriceAdded, "uid-bob", "uid-bob", true},
		{"unattributed change surfaces", KindItemUncompleted, "", "uid-bob", true},
	}
	for _, tc := range cases {
		tr := Transition{Kind: tc.kind, ActorUID: tc.actor, Item: baseItem("a")}
		if got := Foreign(tr, tc.viewer); got != tc.want {
			t.Errorf("%s: Foreign = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAllowedHonorsPreferences(t *testing.T) {
	prefs := model.DefaultPreferences()

	if !Allowed(prefs, KindItemAdded) {
		t.Errorf("default preferences should allow item-added")
	}

	prefs.ItemAdded = false
	if Allowed(prefs, KindItemAdded) {
		t.Errorf("itemAdded toggle off should block item-added")
	}
	if !Allowed(prefs, KindItemCompleted) {
		t.Errorf("itemAdded toggle must not affect item-completed")
	}

	prefs.FamilyActivity = false
	if Allowed(prefs, KindItemClaimed) || Allowed(prefs, KindItemUnclaimed) {
		t.Errorf("familyActivity toggle off should block claim notifications")
	}

	prefs = model.DefaultPreferences()
	prefs.Notifications = false
	if Allowed(prefs, KindItemAdded) || Allowed(prefs, KindPriceAdded) {
		t.Errorf("master switch off should block every category")
	}
}

func TestTabTargets(t *testing.T) {
	if Tab(KindPriceAdded) != "purchases" {
		t.Errorf("price-added should land on the purchases tab")
	}
	if Tab(KindItemAdded) != "list" {
		t.Errorf("item-added should land on the list tab")
	}
}
