// Package notes stores the authoritative copies of notes.
package notes

import (
	"context"

	"github.com/offnote/notesync/internal/server/models"
)

// Fields is a partial update; nil members are left untouched.
type Fields struct {
	Title   *string
	Content *string
}

type Repository interface {
	// Upsert inserts a note or, when the client retries a create it already
	// acknowledged, refreshes the existing row. Ownership never changes.
	Upsert(ctx context.Context, note *models.Note) (*models.Note, error)

	// Update patches the given fields of the user's note, or returns
	// common.ErrNotFound.
	Update(ctx context.Context, userID, id string, fields Fields) (*models.Note, error)

	// Delete removes the user's note, or returns common.ErrNotFound.
	Delete(ctx context.Context, userID, id string) error

	// ListByUser returns all notes of the user, newest created first.
	ListByUser(ctx context.Context, userID string) ([]models.Note, error)
}
