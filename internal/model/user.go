package model

import "time"

// DefaultBudget is the monthly spending budget assigned to new accounts.
const DefaultBudget = 5000

// Preferences are the per-user notification switches plus the monthly
// budget. The master Notifications switch gates every category; Sound
// gates audio independently of the category switches.
type Preferences struct {
	Notifications  bool    `json:"notifications"`
	Sound          bool    `json:"sound"`
	ItemAdded      bool    `json:"itemAdded"`
	ItemCompleted  bool    `json:"itemCompleted"`
	PriceAdded     bool    `json:"priceAdded"`
	FamilyActivity bool    `json:"familyActivity"`
	Budget         float64 `json:"budget"`
}

// DefaultPreferences returns the preferences assigned to a new account:
// everything on, budget at the default.
func DefaultPreferences() Preferences {
	return Preferences{
		Notifications:  true,
		Sound:          true,
		ItemAdded:      true,
		ItemCompleted:  true,
		PriceAdded:     true,
		FamilyActivity: true,
		Budget:         DefaultBudget,
	}
}

// User is an account profile. FamilyCode is nil until the user creates or
// joins a family; shared features are unavailable until then.
type User struct {
	UID                 string      `json:"uid"`
	Name                string      `json:"name"`
	Email               string      `json:"email"`
	PhotoURL            string      `json:"photoURL,omitempty"`
	FamilyCode          *string     `json:"familyId"`
	Preferences         Preferences `json:"preferences"`
	NotificationEnabled bool        `json:"notificationEnabled"`
	CreatedAt           time.Time   `json:"createdAt"`
	LastLogin           time.Time   `json:"lastLogin"`
}
