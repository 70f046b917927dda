package model

import "time"

// PushSubscription is one device's web-push registration.
type PushSubscription struct {
	ID         int64     `json:"id"`
	UserUID    string    `json:"userUid"`
	FamilyCode string    `json:"familyId"`
	Endpoint   string    `json:"endpoint"`
	P256dhKey  string    `json:"p256dhKey"`
	AuthKey    string    `json:"authKey"`
	DeviceName string    `json:"deviceName"`
	CreatedAt  time.Time `json:"createdAt"`
}
