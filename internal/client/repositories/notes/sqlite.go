package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/offnote/notesync/internal/client/models"
	"github.com/offnote/notesync/internal/common"
	"github.com/offnote/notesync/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or
// *sql.Tx). Timestamps are stored as unix nanoseconds so that ordering and
// tie-breaking are exact regardless of driver time handling.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const noteColumns = `id, owner_id, title, content, created_at, updated_at, sync_state, remote_ack`

func scanNote(scan func(dest ...any) error) (*models.Note, error) {
	var (
		n                    models.Note
		createdAt, updatedAt int64
		syncState, remoteAck int
	)
	if err := scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &createdAt, &updatedAt, &syncState, &remoteAck); err != nil {
		return nil, err
	}
	n.CreatedAt = time.Unix(0, createdAt).UTC()
	n.UpdatedAt = time.Unix(0, updatedAt).UTC()
	n.SyncState = models.SyncState(syncState)
	n.RemoteAck = remoteAck != 0
	return &n, nil
}

// Put upserts a note by id. On conflict all mutable columns are updated.
func (r *SQLiteRepository) Put(ctx context.Context, n *models.Note) error {
	query := ` INSERT INTO notes (` + noteColumns + `)
			values (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET owner_id = excluded.owner_id,
				title = excluded.title,
				content = excluded.content,
				created_at = excluded.created_at,
				updated_at = excluded.updated_at,
				sync_state = excluded.sync_state,
				remote_ack = excluded.remote_ack
	`
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.OwnerID, n.Title, n.Content,
		n.CreatedAt.UnixNano(), n.UpdatedAt.UnixNano(),
		int(n.SyncState), boolToInt(n.RemoteAck))
	if err != nil {
		return fmt.Errorf("failed to upsert note: %w", err)
	}
	return nil
}

// Get returns a note by id or common.ErrNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Note, error) {
	query := `select ` + noteColumns + ` from notes where id=?`
	row := r.db.QueryRowContext(ctx, query, id)

	n, err := scanNote(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return n, nil
}

// ListByOwner lists the owner's notes, newest created first. Equal creation
// times break ties by id so the order is stable across calls.
func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Note, error) {
	query := `select ` + noteColumns + ` from notes where owner_id=?
			order by created_at desc, id asc`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	var result []models.Note
	for rows.Next() {
		n, err := scanNote(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Remove deletes a note by id. Deleting a missing id is not an error.
func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `delete from notes where id=?`, id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// ListPending returns notes with sync_state=0 (awaiting sync), oldest first,
// so retried pushes happen in a stable order.
func (r *SQLiteRepository) ListPending(ctx context.Context) ([]*models.Note, error) {
	query := `select ` + noteColumns + ` from notes where sync_state=0
			order by created_at asc, id asc`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending notes: %w", err)
	}
	defer rows.Close()

	var pending []*models.Note
	for rows.Next() {
		n, err := scanNote(rows.Scan)
		if err != nil {
			return nil, err
		}
		pending = append(pending, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pending, nil
}

// MarkSynced flips a note to synced and records the server acknowledgement.
// Zero rows affected means the note was deleted meanwhile; that is fine.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	query := `update notes set sync_state=1, remote_ack=1 where id=?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark note synced: %w", err)
	}
	return nil
}

// ReplaceAll swaps the whole table content for the given snapshot. When the
// repository is bound to a *sql.DB the swap runs in its own transaction;
// bound to a *sql.Tx it joins the caller's.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, notes []models.Note) error {
	if db, ok := r.db.(*sql.DB); ok {
		return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return replaceAll(ctx, tx, notes)
		})
	}
	return replaceAll(ctx, r.db, notes)
}

func replaceAll(ctx context.Context, tx dbx.DBTX, notes []models.Note) error {
	if _, err := tx.ExecContext(ctx, `delete from notes`); err != nil {
		return fmt.Errorf("failed to clear notes: %w", err)
	}
	for i := range notes {
		if err := NewSQLiteRepository(tx).Put(ctx, &notes[i]); err != nil {
			return err
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
