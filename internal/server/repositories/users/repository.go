// Package users stores server-side user accounts.
package users

import (
	"context"

	"github.com/offnote/notesync/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills in the generated id. A duplicate
	// email returns common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the user or common.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)
}
