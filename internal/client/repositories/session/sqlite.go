package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/offnote/notesync/internal/client/models"
	"github.com/offnote/notesync/internal/common"
	"github.com/offnote/notesync/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Set replaces the single session row.
func (r *SQLiteRepository) Set(ctx context.Context, s *models.Session) error {
	if _, err := r.db.ExecContext(ctx, `delete from session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	query := `insert into session (id, email, name, is_authenticated, token) values (?, ?, ?, ?, ?)`
	auth := 0
	if s.User.IsAuthenticated {
		auth = 1
	}
	if _, err := r.db.ExecContext(ctx, query, s.User.ID, s.User.Email, s.User.Name, auth, s.Token); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get returns the cached authenticated session.
func (r *SQLiteRepository) Get(ctx context.Context) (*models.Session, error) {
	query := `select id, email, name, is_authenticated, token from session where is_authenticated=1`
	row := r.db.QueryRowContext(ctx, query)

	var (
		s    models.Session
		auth int
	)
	if err := row.Scan(&s.User.ID, &s.User.Email, &s.User.Name, &auth, &s.Token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	s.User.IsAuthenticated = auth != 0
	return &s, nil
}

// Clear wipes the session row.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `delete from session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
