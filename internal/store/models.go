package store

import "time"

// User is a portal account. RemoteContactID is the identifier the remote
// event-management system knows this person by; it may be empty until the
// account is linked.
type User struct {
	ID              string
	Name            string
	AccessTokenHash string
	RemoteContactID string
	CreatedAt       time.Time
}
