package domain

import "time"

// User represents a registered member of the gallery.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Age          int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
