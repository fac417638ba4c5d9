package domain

import "time"

// List is the domain entity for a short-lived checklist.
// It does not depend on Gin, Postgres or Redis.
//
// ExpiresAt is initialized to CreatedAt + the configured lifespan (48h) and
// is only ever rewritten to now + lifespan by a renew. Nothing in the backend
// deletes a list when ExpiresAt passes; the countdown is advisory and a list
// stays readable and writable until it is soft-deleted.
type List struct {
	ID        string
	OwnerID   int64
	Title     string
	Items     []ListItem
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
	IsDeleted bool
}

// ListItem lives inside its parent list's Items array and has no identity
// outside of it.
type ListItem struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}
