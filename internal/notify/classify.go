// Package notify turns snapshot deltas into member-facing notifications.
// Classification is split from delivery: Classify and Foreign are pure,
// the Dispatcher owns feeds and push fan-out.
package notify

import (
	"fmt"

	"famgrocer/internal/model"
	"famgrocer/internal/snapshot"
)

// Transition kinds, in the order they are emitted for a single delta.
const (
	KindItemAdded       = "item-added"
	KindItemCompleted   = "item-completed"
	KindItemUncompleted = "item-uncompleted"
	KindItemClaimed     = "item-claimed"
	KindItemUnclaimed   = "item-unclaimed"
	KindPriceAdded      = "price-added"
)

// Transition is one observable change to a shared item, attributed to
// the member who caused it. ActorUID is empty when the change carries no
// attribution (for example an unclaim where the previous claimant is
// already gone from the record).
type Transition struct {
	Kind      string
	Item      model.Item
	ActorUID  string
	ActorName string
}

// Classify extracts attributed transitions from a snapshot delta.
// Removed items produce nothing: deletion is silent. A single modified
// item can yield several transitions, e.g. completing an item while
// recording its price emits both item-completed and price-added.
func Classify(delta snapshot.Delta) []Transition {
	var out []Transition

	for _, it := range delta.Added {
		out = append(out, Transition{
			Kind:      KindItemAdded,
			Item:      it,
			ActorUID:  it.AddedBy,
			ActorName: it.AddedByName,
		})
	}

	for _, ch := range delta.Modified {
		before, after := ch.Before, ch.After

		if !before.Completed && after.Completed {
			t := Transition{Kind: KindItemCompleted, Item: after}
			if after.CompletedBy != nil {
				t.ActorUID = *after.CompletedBy
			}
			if after.CompletedByName != nil {
				t.ActorName = *after.CompletedByName
			}
			out = append(out, t)
		}
		if before.Completed && !after.Completed {
			out = append(out, Transition{Kind: KindItemUncompleted, Item: after})
		}

		if before.ClaimedBy == nil && after.ClaimedBy != nil {
			t := Transition{Kind: KindItemClaimed, Item: after, ActorUID: *after.ClaimedBy}
			if after.ClaimedByName != nil {
				t.ActorName = *after.ClaimedByName
			}
			out = append(out, t)
		}
		if before.ClaimedBy != nil && after.ClaimedBy == nil {
			t := Transition{Kind: KindItemUnclaimed, Item: after, ActorUID: *before.ClaimedBy}
			if before.ClaimedByName != nil {
				t.ActorName = *before.ClaimedByName
			}
			out = append(out, t)
		}

		if !before.HasPrice() && after.HasPrice() {
			t := Transition{Kind: KindPriceAdded, Item: after}
			if after.CompletedBy != nil {
				t.ActorUID = *after.CompletedBy
			}
			if after.CompletedByName != nil {
				t.ActorName = *after.CompletedByName
			}
			out = append(out, t)
		}
	}

	return out
}

// Foreign reports whether the transition should be surfaced to viewer.
// A member never sees alerts for their own adds, completions, claims or
// unclaims. Price recording is the one exception: price-added always
// surfaces, even to the member who typed the price, so the purchases
// tab badge stays in step with the unpriced queue.
func Foreign(t Transition, viewerUID string) bool {
	if t.Kind == KindPriceAdded {
		return true
	}
	return t.ActorUID == "" || t.ActorUID != viewerUID
}

// Category maps a transition kind to the preference toggle that gates
// it. Claims and unclaims fall under the familyActivity umbrella.
func Category(kind string) string {
	switch kind {
	case KindItemAdded:
		return "itemAdded"
	case KindItemCompleted, KindItemUncompleted:
		return "itemCompleted"
	case KindPriceAdded:
		return "priceAdded"
	default:
		return "familyActivity"
	}
}

// Allowed applies the member's master switch and per-category toggle.
func Allowed(prefs model.Preferences, kind string) bool {
	if !prefs.Notifications {
		return false
	}
	switch Category(kind) {
	case "itemAdded":
		return prefs.ItemAdded
	case "itemCompleted":
		return prefs.ItemCompleted
	case "priceAdded":
		return prefs.PriceAdded
	default:
		return prefs.FamilyActivity
	}
}

// Tab is the app surface a notification should land the member on.
func Tab(kind string) string {
	if kind == KindPriceAdded {
		return "purchases"
	}
	return "list"
}

// Message renders the human-readable line for a transition.
func Message(t Transition) string {
	name := t.ActorName
	if name == "" {
		name = "Someone"
	}
	switch t.Kind {
	case KindItemAdded:
		return fmt.Sprintf("%s added %s to the list", name, t.Item.Name)
	case KindItemCompleted:
		return fmt.Sprintf("%s bought %s", name, t.Item.Name)
	case KindItemUncompleted:
		return fmt.Sprintf("%s is back on the list", t.Item.Name)
	case KindItemClaimed:
		return fmt.Sprintf("%s will get %s", name, t.Item.Name)
	case KindItemUnclaimed:
		return fmt.Sprintf("%s released %s", name, t.Item.Name)
	case KindPriceAdded:
		if t.Item.Price != nil {
			return fmt.Sprintf("%s cost %.2f", t.Item.Name, *t.Item.Price)
		}
		return fmt.Sprintf("Price recorded for %s", t.Item.Name)
	default:
		return t.Item.Name
	}
}
