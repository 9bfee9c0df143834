package models

import "strings"

// User represents a registered person.
// Users are immutable once created; deletion is rejected while they have history.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user.
	Name string

	// Email is the user's email address (unique, stored normalized).
	Email string

	// CreatedAt is the Unix timestamp when the user was created.
	CreatedAt int64
}

// NormalizeEmail lowercases and trims an email so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
