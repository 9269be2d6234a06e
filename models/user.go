package models

import (
	"encoding/json"
	"time"
)

const (
	// DefaultUserID represents the legacy single-profile tracker owner.
	DefaultUserID = "default"
	// DefaultUserName is used when creating the initial profile.
	DefaultUserName = "Primary Profile"
)

// User models a watchdeck profile holding watchlist, interaction and
// reminder data.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	PinHash   string    `json:"-"` // bcrypt hash of PIN, excluded from JSON
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasPin returns true if the user has a PIN set.
func (u User) HasPin() bool {
	return u.PinHash != ""
}

// MarshalJSON includes the computed hasPin field without exposing the hash.
func (u User) MarshalJSON() ([]byte, error) {
	type UserAlias User // prevent recursion
	return json.Marshal(&struct {
		UserAlias
		HasPin bool `json:"hasPin"`
	}{
		UserAlias: UserAlias(u),
		HasPin:    u.HasPin(),
	})
}
