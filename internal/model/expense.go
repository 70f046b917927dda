package model

import "time"

// Expense is a recurring household bill, structurally parallel to Item
// but for non-grocery spend. Month is the "YYYY-MM" bucket used for
// filtering, derived from DueDate at write time.
type Expense struct {
	ID          string     `json:"id"`
	FamilyCode  string     `json:"familyId"`
	Type        string     `json:"type"`
	Amount      float64    `json:"amount"`
	DueDate     time.Time  `json:"dueDate"`
	PaymentDate *time.Time `json:"paymentDate"`
	Paid        bool       `json:"paid"`
	IsRecurring bool       `json:"isRecurring"`
	Month       string     `json:"month"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// MonthBucket formats t as the expense month bucket.
func MonthBucket(t time.Time) string {
	return t.Format("2006-01")
}
