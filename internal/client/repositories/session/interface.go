// Package session stores the single locally cached authenticated session.
package session

import (
	"context"

	"github.com/offnote/notesync/internal/client/models"
)

// Repository holds at most one session row.
type Repository interface {
	// Set replaces the cached session.
	Set(ctx context.Context, s *models.Session) error

	// Get returns the cached authenticated session, or common.ErrNotFound
	// when nobody is logged in.
	Get(ctx context.Context) (*models.Session, error)

	// Clear wipes the cached session (logout, or a session-fatal auth
	// failure during sync).
	Clear(ctx context.Context) error
}
