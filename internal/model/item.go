package model

import "time"

// Item categories. "uncategorized" is the default when the client sends none.
const (
	CategoryFruits        = "fruits"
	CategoryDairy         = "dairy"
	CategoryMeat          = "meat"
	CategoryBakery        = "bakery"
	CategoryBeverages     = "beverages"
	CategorySnacks        = "snacks"
	CategoryHousehold     = "household"
	CategoryPersonal      = "personal"
	CategoryFrozen        = "frozen"
	CategoryGrains        = "grains"
	CategoryOther         = "other"
	CategoryUncategorized = "uncategorized"
)

// Categories lists every valid item category.
var Categories = []string{
	CategoryFruits, CategoryDairy, CategoryMeat, CategoryBakery,
	CategoryBeverages, CategorySnacks, CategoryHousehold, CategoryPersonal,
	CategoryFrozen, CategoryGrains, CategoryOther, CategoryUncategorized,
}

// Units lists every valid quantity unit.
var Units = []string{"pcs", "kg", "g", "l", "ml", "dozen", "pack"}

// Item is a grocery-list entry shared by all members of a family.
// AddedBy is set at creation and never changes. ClaimedBy is a soft
// reservation by one member; CompletedBy and the purchase fields are set
// when the item is marked purchased.
type Item struct {
	ID              string     `json:"id"`
	FamilyCode      string     `json:"familyId"`
	Name            string     `json:"name"`
	Quantity        float64    `json:"quantity"`
	Unit            string     `json:"unit"`
	Category        string     `json:"category"`
	IsUrgent        bool       `json:"isUrgent"`
	IsRecurring     bool       `json:"isRecurring"`
	Completed       bool       `json:"completed"`
	AddedBy         string     `json:"addedBy"`
	AddedByName     string     `json:"addedByName"`
	ClaimedBy       *string    `json:"claimedBy"`
	ClaimedByName   *string    `json:"claimedByName"`
	ClaimedAt       *time.Time `json:"claimedAt"`
	CompletedBy     *string    `json:"completedBy"`
	CompletedByName *string    `json:"completedByName"`
	CompletedAt     *time.Time `json:"completedAt"`
	Price           *float64   `json:"price"`
	Store           *string    `json:"store"`
	PurchaseDate    *time.Time `json:"purchaseDate"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// HasPrice reports whether a purchase price has been recorded.
// A zero price counts as unpriced: it is the queue marker for the
// retroactive price-entry form.
func (i *Item) HasPrice() bool {
	return i.Price != nil && *i.Price > 0
}

// ValidCategory reports whether c is a known category tag.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// ValidUnit reports whether u is a known quantity unit.
func ValidUnit(u string) bool {
	for _, v := range Units {
		if v == u {
			return true
		}
	}
	return false
}
