package model

import "time"

// Family is a group of users sharing one grocery list. The 6-character
// code is both the invite code and the primary key.
type Family struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Member is a family member as shown on the family tab.
type Member struct {
	UID      string    `json:"uid"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	PhotoURL string    `json:"photoURL,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
}
