package derive

import (
	"reflect"
	"testing"
	"time"

	"famgrocer/internal/model"
)

var now = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func pending(id, name, category string) model.Item {
	return model.Item{
		ID:        id,
		Name:      name,
		Category:  category,
		Quantity:  1,
		Unit:      "pcs",
		AddedBy:   "uid-alice",
		CreatedAt: now.Add(-time.Hour),
	}
}

func completed(id, name string, price *float64, completedAt time.Time, by, byName string) model.Item {
	it := pending(id, name, model.CategoryOther)
	it.Completed = true
	it.CompletedBy = &by
	it.CompletedByName = &byName
	it.CompletedAt = &completedAt
	it.Price = price
	if price != nil {
		it.PurchaseDate = &completedAt
	}
	return it
}

func TestComputeIsPure(t *testing.T) {
	items := []model.Item{
		pending("a", "Milk", model.CategoryDairy),
		completed("b", "Eggs", ptr(4.5), now.Add(-time.Hour), "uid-bob", "Bob"),
	}
	snapshot := make([]model.Item, len(items))
	copy(snapshot, items)

	v1 := Compute(items, FilterAll, "", "uid-alice", now)
	v2 := Compute(items, FilterAll, "", "uid-alice", now)

	if !reflect.DeepEqual(v1, v2) {
		t.Errorf("same inputs produced different views")
	}
	if !reflect.DeepEqual(items, snapshot) {
		t.Errorf("Compute mutated its input")
	}
}

func TestPartitionAndCounts(t *testing.T) {
	urgent := pending("u", "Diapers", model.CategoryPersonal)
	urgent.IsUrgent = true

	items := []model.Item{
		pending("a", "Milk", model.CategoryDairy),
		urgent,
		completed("b", "Eggs", ptr(4.5), now.Add(-time.Hour), "uid-bob", "Bob"),
	}

	v := Compute(items, FilterAll, "", "uid-alice", now)

	if v.PendingCount != 2 {
		t.Errorf("pending = %d, want 2", v.PendingCount)
	}
	if v.CompletedCount != 1 {
		t.Errorf("completed = %d, want 1", v.CompletedCount)
	}
	if v.UrgentCount != 1 {
		t.Errorf("urgent = %d, want 1", v.UrgentCount)
	}
}

func TestFilters(t *testing.T) {
	claimed := pending("c", "Bread", model.CategoryBakery)
	claimed.ClaimedBy = ptr("uid-bob")
	recurring := pending("r", "Rice", model.CategoryGrains)
	recurring.IsRecurring = true
	urgent := pending("u", "Batteries", model.CategoryHousehold)
	urgent.IsUrgent = true

	items := []model.Item{
		pending("a", "Milk", model.CategoryDairy),
		claimed, recurring, urgent,
	}

	cases := []struct {
		filter string
		want   []string
	}{
		{FilterAll, []string{"a", "c", "r", "u"}},
		{FilterUrgent, []string{"u"}},
		{FilterClaimed, []string{"c"}},
		{FilterRecurring, []string{"r"}},
		{model.CategoryDairy, []string{"a"}},
		{model.CategoryFrozen, nil},
	}
	for _, tc := range cases {
		v := Compute(items, tc.filter, "", "uid-alice", now)
		var got []string
		for _, iv := range v.Pending {
			got = append(got, iv.ID)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("filter %q: got %v, want %v", tc.filter, got, tc.want)
		}
	}
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	items := []model.Item{
		pending("a", "Whole Milk", model.CategoryDairy),
		pending("b", "Eggs", model.CategoryDairy),
		completed("c", "Oat Milk", ptr(3.0), now.Add(-time.Hour), "uid-bob", "Bob"),
	}

	v := Compute(items, FilterAll, "mIlK", "uid-alice", now)

	if len(v.Pending) != 1 || v.Pending[0].ID != "a" {
		t.Errorf("pending search results = %+v, want only item a", v.Pending)
	}
	if len(v.Completed) != 1 || v.Completed[0].ID != "c" {
		t.Errorf("completed search results = %+v, want only item c", v.Completed)
	}
}

func TestClaimFlagsPerViewer(t *testing.T) {
	claimed := pending("c", "Bread", model.CategoryBakery)
	claimed.ClaimedBy = ptr("uid-bob")

	v := Compute([]model.Item{claimed}, FilterAll, "", "uid-bob", now)
	if !v.Pending[0].IsClaimed || !v.Pending[0].IsClaimedByCurrentUser {
		t.Errorf("claimant does not see their own claim")
	}

	v = Compute([]model.Item{claimed}, FilterAll, "", "uid-alice", now)
	if !v.Pending[0].IsClaimed || v.Pending[0].IsClaimedByCurrentUser {
		t.Errorf("other member sees the claim as their own")
	}
}

func TestMonthlyTotalUsesCalendarMonth(t *testing.T) {
	items := []model.Item{
		completed("a", "Eggs", ptr(4.5), now.Add(-48*time.Hour), "uid-bob", "Bob"),
		completed("b", "Milk", ptr(3.0), now.Add(-24*time.Hour), "uid-bob", "Bob"),
		// Last month, same 30-day window: must not count.
		completed("c", "Rice", ptr(10.0), time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC), "uid-bob", "Bob"),
		// This month but unpriced: contributes nothing.
		completed("d", "Bread", nil, now.Add(-time.Hour), "uid-bob", "Bob"),
	}

	v := Compute(items, FilterAll, "", "uid-alice", now)

	if v.MonthlyTotal != 7.5 {
		t.Errorf("monthly total = %v, want 7.5", v.MonthlyTotal)
	}
}

func TestMonthlyAggregatesKeyOnPurchaseDate(t *testing.T) {
	// Bought in May 2024, but the price was only recorded (and the item
	// completed) today. The spend belongs to May.
	backfilled := completed("a", "Charcoal", ptr(45.0), now, "uid-bob", "Bob")
	backfilled.PurchaseDate = ptr(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	items := []model.Item{backfilled}

	v := Compute(items, FilterAll, "", "uid-alice", now)
	if v.MonthlyTotal != 0 {
		t.Errorf("current month total = %v, want 0", v.MonthlyTotal)
	}
	if v.TopShopper != nil {
		t.Errorf("current month top shopper = %+v, want none", v.TopShopper)
	}

	may := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	v = Compute(items, FilterAll, "", "uid-alice", may)
	if v.MonthlyTotal != 45 {
		t.Errorf("May 2024 total = %v, want 45", v.MonthlyTotal)
	}
	if v.TopShopper == nil || v.TopShopper.UID != "uid-bob" {
		t.Errorf("May 2024 top shopper = %+v, want uid-bob", v.TopShopper)
	}

	// No purchase date: completion time decides the month.
	unpriced := completed("b", "Bread", nil, now.Add(-time.Hour), "uid-bob", "Bob")
	v = Compute([]model.Item{unpriced}, FilterAll, "", "uid-alice", now)
	if v.TopShopper == nil || v.TopShopper.Count != 1 {
		t.Errorf("unpriced completion not counted: %+v", v.TopShopper)
	}
}

func TestCompletedPartitionHonorsFilter(t *testing.T) {
	dairy := completed("a", "Milk", ptr(3.0), now.Add(-time.Hour), "uid-bob", "Bob")
	dairy.Category = model.CategoryDairy
	meat := completed("b", "Chicken", nil, now.Add(-time.Hour), "uid-bob", "Bob")
	meat.Category = model.CategoryMeat

	v := Compute([]model.Item{dairy, meat}, model.CategoryDairy, "", "uid-alice", now)

	if len(v.Completed) != 1 || v.Completed[0].ID != "a" {
		t.Errorf("completed under dairy filter = %+v, want only item a", v.Completed)
	}
	if v.CompletedCount != 1 {
		t.Errorf("completed count = %d, want 1", v.CompletedCount)
	}

	// The unpriced queue backs the purchases tab and ignores the filter.
	if len(v.Unpriced) != 1 || v.Unpriced[0].ID != "b" {
		t.Errorf("unpriced under dairy filter = %+v, want item b", v.Unpriced)
	}
}

func TestTopShopperFirstSeenWinsTies(t *testing.T) {
	items := []model.Item{
		completed("a", "Eggs", ptr(1.0), now.Add(-3*time.Hour), "uid-bob", "Bob"),
		completed("b", "Milk", ptr(1.0), now.Add(-2*time.Hour), "uid-carol", "Carol"),
		completed("c", "Rice", ptr(1.0), now.Add(-1*time.Hour), "uid-carol", "Carol"),
		completed("d", "Tea", ptr(1.0), now.Add(-30*time.Minute), "uid-bob", "Bob"),
	}

	v := Compute(items, FilterAll, "", "uid-alice", now)

	if v.TopShopper == nil {
		t.Fatal("expected a top shopper")
	}
	if v.TopShopper.UID != "uid-bob" || v.TopShopper.Count != 2 {
		t.Errorf("top shopper = %+v, want uid-bob with 2 (first seen wins the tie)", v.TopShopper)
	}
}

func TestUnpricedQueue(t *testing.T) {
	zero := 0.0
	items := []model.Item{
		completed("a", "Eggs", ptr(4.5), now.Add(-time.Hour), "uid-bob", "Bob"),
		completed("b", "Milk", nil, now.Add(-time.Hour), "uid-bob", "Bob"),
		completed("c", "Rice", &zero, now.Add(-time.Hour), "uid-bob", "Bob"),
		pending("p", "Bread", model.CategoryBakery),
	}

	v := Compute(items, FilterAll, "", "uid-alice", now)

	var got []string
	for _, iv := range v.Unpriced {
		got = append(got, iv.ID)
	}
	want := []string{"b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unpriced = %v, want %v (zero price counts as unpriced)", got, want)
	}
}

func TestBudgetUsage(t *testing.T) {
	cases := []struct {
		total, budget, want float64
	}{
		{0, 5000, 0},
		{2500, 5000, 0.5},
		{6000, 5000, 1},
		{100, 0, 1},
		{0, 0, 0},
	}
	for _, tc := range cases {
		if got := BudgetUsage(tc.total, tc.budget); got != tc.want {
			t.Errorf("BudgetUsage(%v, %v) = %v, want %v", tc.total, tc.budget, got, tc.want)
		}
	}
}
