package domain

import "time"

// User is a registered identity. Usernames are stored as entered (after
// trimming); emails are always stored lowercased.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt encoded, never serialized outward
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
