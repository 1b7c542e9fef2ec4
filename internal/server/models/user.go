package models

import "time"

// User is a stored credential record. PasswordHash is a bcrypt hash and must
// never be logged or returned to clients.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
