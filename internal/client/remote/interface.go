// Package remote is the stateless façade over the notes HTTP API. It
// normalizes transport failures into a small error taxonomy (see errors.go)
// and attaches the bearer token of the current session to every call except
// login and registration.
package remote

import (
	"context"

	"github.com/offnote/notesync/internal/client/models"
)

// NoteFields is a partial note update. Nil fields are left untouched by the
// server.
type NoteFields struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Client is the remote API surface the sync engine consumes.
type Client interface {
	// Login authenticates and returns the session; the returned token is
	// also retained for subsequent calls.
	Login(ctx context.Context, email, password string) (*models.Session, error)

	// Register creates an account and logs it in.
	Register(ctx context.Context, name, email, password string) (*models.Session, error)

	// Logout invalidates the server session and drops the retained token.
	Logout(ctx context.Context) error

	// GetProfile returns the authenticated user.
	GetProfile(ctx context.Context) (*models.User, error)

	// ListNotes returns all remote notes of the authenticated user.
	ListNotes(ctx context.Context) ([]models.Note, error)

	// CreateNote pushes a note the server has never acknowledged. The id
	// is client-generated; the server upserts by id, so retries are safe.
	CreateNote(ctx context.Context, note *models.Note) error

	// UpdateNote patches an already-acknowledged note.
	UpdateNote(ctx context.Context, id string, fields NoteFields) error

	// DeleteNote removes a note remotely. Deleting an id the server does
	// not know is treated as success, so delete retries converge.
	DeleteNote(ctx context.Context, id string) error

	// Ping is a cheap liveness probe used by the connectivity monitor.
	Ping(ctx context.Context) error

	// SetToken installs the bearer token of a restored cached session.
	SetToken(token string)

	// Close releases transport resources.
	Close() error
}
