package notes

import (
	"context"

	"github.com/offnote/notesync/internal/client/models"
)

// Repository is the local note store: the single source of truth for what
// the UI displays. Implementations are backed by a local SQLite database.
//
// Only the sync orchestrator moves records from pending to synced; the UI
// layer mutates notes exclusively through the service layer, which always
// writes locally first.
type Repository interface {
	// Put inserts or overwrites a note by id. Callers validate upstream.
	Put(ctx context.Context, note *models.Note) error

	// Get returns a note by id, or common.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Note, error)

	// ListByOwner returns the owner's notes, most recently created first,
	// with a stable id tie-break for equal creation times.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Note, error)

	// Remove deletes a note by id. Removing a non-existent id is a no-op.
	Remove(ctx context.Context, id string) error

	// ListPending returns all notes awaiting synchronization.
	ListPending(ctx context.Context) ([]*models.Note, error)

	// MarkSynced records that the server acknowledged the note's current
	// state. No-op if the note no longer exists (it may have been deleted
	// while the push was in flight).
	MarkSynced(ctx context.Context, id string) error

	// ReplaceAll atomically clears the store and bulk-inserts the given
	// notes. Used only for the pull-on-login snapshot.
	ReplaceAll(ctx context.Context, notes []models.Note) error
}
