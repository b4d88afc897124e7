// Package models holds the server-side domain types.
package models

import "time"

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Note is the authoritative copy of a note. The id is client-generated and
// immutable, which is what makes client retries idempotent.
type Note struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
