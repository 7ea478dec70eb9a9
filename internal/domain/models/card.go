package models

import "time"

// SavedCard is a user's stored card. Only a keyed fingerprint of the number is kept.
type SavedCard struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	Fingerprint    string    `json:"-"`
	CardName       string    `json:"cardName"`
	ExpiryDate     string    `json:"expiryDate"`
	LastFourDigits string    `json:"lastFourDigits"`
	CreatedAt      time.Time `json:"createdAt"`
}
