// Package derive computes read-model views from an item working set.
// Every function here is pure: same inputs, same outputs, no clock or
// store access beyond the arguments.
package derive

import (
	"strings"
	"time"

	"famgrocer/internal/model"
)

// Filter names for Views. Any other value is treated as a category tag.
const (
	FilterAll       = "all"
	FilterUrgent    = "urgent"
	FilterClaimed   = "claimed"
	FilterRecurring = "recurring"
)

// ItemView wraps an item with per-viewer claim flags.
type ItemView struct {
	model.Item
	IsClaimed              bool `json:"isClaimed"`
	IsClaimedByCurrentUser bool `json:"isClaimedByCurrentUser"`
}

// Views is the full derived read model for one member's list screen.
type Views struct {
	Pending   []ItemView `json:"pending"`
	Completed []ItemView `json:"completed"`

	PendingCount   int `json:"pendingCount"`
	CompletedCount int `json:"completedCount"`
	UrgentCount    int `json:"urgentCount"`

	MonthlyTotal float64    `json:"monthlyTotal"`
	TopShopper   *Shopper   `json:"topShopper"`
	Unpriced     []ItemView `json:"unpriced"`
}

// Shopper is the member with the most completed purchases this month.
type Shopper struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Compute derives all views in one pass. filter and search narrow both
// partitions: filter by category or urgent/claimed/recurring flag,
// search by case-insensitive substring match on the item name. The
// unpriced queue and the monthly aggregates ignore the filter; they
// back the purchases tab, not the list. actorUID identifies the
// viewing member for claim flags, now anchors the monthly aggregates.
func Compute(items []model.Item, filter, search, actorUID string, now time.Time) Views {
	var v Views
	search = strings.ToLower(strings.TrimSpace(search))

	counts := make(map[string]*Shopper)
	var order []string

	for _, it := range items {
		if it.IsUrgent && !it.Completed {
			v.UrgentCount++
		}

		if it.Completed && inMonth(it, now) {
			if it.HasPrice() {
				v.MonthlyTotal += *it.Price
			}
			if it.CompletedBy != nil {
				uid := *it.CompletedBy
				s, ok := counts[uid]
				if !ok {
					name := uid
					if it.CompletedByName != nil {
						name = *it.CompletedByName
					}
					s = &Shopper{UID: uid, Name: name}
					counts[uid] = s
					order = append(order, uid)
				}
				s.Count++
			}
		}

		if search != "" && !strings.Contains(strings.ToLower(it.Name), search) {
			continue
		}

		view := ItemView{
			Item:                   it,
			IsClaimed:              it.ClaimedBy != nil,
			IsClaimedByCurrentUser: it.ClaimedBy != nil && *it.ClaimedBy == actorUID,
		}

		if it.Completed {
			if !it.HasPrice() {
				v.Unpriced = append(v.Unpriced, view)
			}
			if matchesFilter(it, filter) {
				v.Completed = append(v.Completed, view)
			}
			continue
		}
		if matchesFilter(it, filter) {
			v.Pending = append(v.Pending, view)
		}
	}

	v.PendingCount = len(v.Pending)
	v.CompletedCount = len(v.Completed)

	// Earliest-seen shopper wins a tie, so the leader is stable across
	// recomputations of the same snapshot.
	for _, uid := range order {
		s := counts[uid]
		if v.TopShopper == nil || s.Count > v.TopShopper.Count {
			v.TopShopper = s
		}
	}
	return v
}

func matchesFilter(it model.Item, filter string) bool {
	switch filter {
	case "", FilterAll:
		return true
	case FilterUrgent:
		return it.IsUrgent
	case FilterClaimed:
		return it.ClaimedBy != nil
	case FilterRecurring:
		return it.IsRecurring
	default:
		return it.Category == filter
	}
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// inMonth reports whether a completed item belongs to the month of now.
// The purchase date is authoritative: an item completed today but
// bought in May counts toward May. Unpriced completions have no
// purchase date and fall back to the completion time.
func inMonth(it model.Item, now time.Time) bool {
	if it.PurchaseDate != nil {
		return sameMonth(*it.PurchaseDate, now)
	}
	return it.CompletedAt != nil && sameMonth(*it.CompletedAt, now)
}

// BudgetUsage returns spend as a fraction of budget, clamped to [0, 1].
// A zero or negative budget reports full usage only when something was
// spent.
func BudgetUsage(monthlyTotal, budget float64) float64 {
	if budget <= 0 {
		if monthlyTotal > 0 {
			return 1
		}
		return 0
	}
	usage := monthlyTotal / budget
	if usage > 1 {
		return 1
	}
	return usage
}
