// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account.
//
// Identity comes from an external provider: the client obtains an access
// token, POSTs it to /users, and we resolve it to a stable provider user ID.
// We still generate our own internal string ID (xid) so our primary keys are
// not tied to a third party's numbering scheme. The UNIQUE constraint on
// provider_id in the DB ensures one provider account maps to exactly one
// app account.
type User struct {
	ID         string    `json:"id"`
	ProviderID string    `json:"-"`         // stable external identity ID, never exposed
	Name       string    `json:"name"`      // display name from the provider profile
	Email      string    `json:"email"`     // may be empty if hidden at the provider
	AvatarURL  string    `json:"avatarUrl"` // profile picture URL
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
