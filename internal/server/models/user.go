// Package models defines the server-side persistence entities.
package models

import "time"

// User is an account owning trips. Passwords are stored bcrypt-hashed.
type User struct {
	ID             string
	Email          string
	HashedPassword string
	Name           *string
	CreatedAt      time.Time
}
