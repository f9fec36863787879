// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered user in the system.
// It contains authentication credentials and metadata for user management.
type User struct {
	// ID is the unique identifier for the user, assigned by the storage backend.
	ID string

	// Name is the display name chosen at registration.
	Name string

	// Email is the user's email address used for authentication.
	// It is stored trimmed and lower-cased and must be unique across all users.
	Email string

	// Password is the bcrypt hash of the user's password.
	// This should never store plaintext passwords.
	Password string

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}
