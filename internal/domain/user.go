package domain

import "time"

// User is the domain entity for a user account.
// IsPro mirrors the entitlement held by the billing provider; the provider
// stays the source of truth and this flag is only a cache of it.
type User struct {
	ID           int64
	Email        string
	Phone        string
	PasswordHash string
	IsPro        bool
	CreatedAt    time.Time
}
