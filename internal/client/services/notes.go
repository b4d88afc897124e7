// Package services contains application services for the notesync client:
// user-facing note mutations and authentication. Every mutation is written
// to the local store first and reaches the server either by an optimistic
// immediate push (when online) or through a later sync pass.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/offnote/notesync/internal/client/models"
	"github.com/offnote/notesync/internal/client/remote"
	"github.com/offnote/notesync/internal/client/repositories/notes"
	"github.com/offnote/notesync/internal/client/repositories/session"
	"github.com/offnote/notesync/internal/client/repositories/tombstones"
	"github.com/offnote/notesync/internal/common"
	"github.com/offnote/notesync/internal/dbx"
	"github.com/offnote/notesync/internal/logging"
)

// OnlineStatus is the connectivity view the services need.
type OnlineStatus interface {
	Online() bool
}

// NoteService exposes the note operations the UI calls. The UI never touches
// sync state directly.
type NoteService interface {
	Create(ctx context.Context, title, content string) (*models.Note, error)
	Update(ctx context.Context, id, title, content string) (*models.Note, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Note, error)
	Get(ctx context.Context, id string) (*models.Note, error)
}

type noteService struct {
	db     *sql.DB
	client remote.Client
	status OnlineStatus
	log    logging.Logger
}

// NewNoteService constructs a NoteService bound to the local DB and the
// remote client.
func NewNoteService(db *sql.DB, client remote.Client, status OnlineStatus, log logging.Logger) NoteService {
	return &noteService{db: db, client: client, status: status, log: log.With("component", "notes")}
}

func (s *noteService) notesRepo() notes.Repository {
	return notes.NewSQLiteRepository(s.db)
}

func (s *noteService) owner(ctx context.Context) (string, error) {
	sess, err := session.NewSQLiteRepository(s.db).Get(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrUnauthorized
		}
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return sess.User.ID, nil
}

// Create stores a new note locally and, when online, pushes it immediately.
// The id is assigned here, once, and never changes.
func (s *noteService) Create(ctx context.Context, title, content string) (*models.Note, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	n := &models.Note{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
		SyncState: models.SyncStatePending,
	}
	if err := s.notesRepo().Put(ctx, n); err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}

	s.tryImmediatePush(ctx, n)
	return n, nil
}

// Update edits a note. An edit always moves the note back to pending and
// refreshes its update time, whatever its previous state.
func (s *noteService) Update(ctx context.Context, id, title, content string) (*models.Note, error) {
	repo := s.notesRepo()
	n, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	n.Title = title
	n.Content = content
	n.UpdatedAt = time.Now().UTC()
	n.SyncState = models.SyncStatePending
	if err := repo.Put(ctx, n); err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}

	s.tryImmediatePush(ctx, n)
	return n, nil
}

// tryImmediatePush attempts one optimistic remote write. Any failure leaves
// the note pending for the next sync pass; the caller already succeeded
// locally.
func (s *noteService) tryImmediatePush(ctx context.Context, n *models.Note) {
	if !s.status.Online() {
		return
	}

	var err error
	if n.RemoteAck {
		err = s.client.UpdateNote(ctx, n.ID, remote.NoteFields{Title: &n.Title, Content: &n.Content})
	} else {
		err = s.client.CreateNote(ctx, n)
	}
	if err != nil {
		s.log.Warn(ctx, "immediate push failed, note left pending", "id", n.ID, "error", err)
		return
	}

	if err := s.notesRepo().MarkSynced(ctx, n.ID); err != nil {
		s.log.Error(ctx, "failed to mark note synced", "id", n.ID, "error", err)
		return
	}
	n.SyncState = models.SyncStateSynced
	n.RemoteAck = true
}

// Delete removes a note. When online it first tries the remote delete: on
// success no tombstone is needed. Offline, or when the remote call fails,
// the record removal and the tombstone insert happen in one transaction so
// a record and its tombstone never coexist.
func (s *noteService) Delete(ctx context.Context, id string) error {
	if s.status.Online() {
		if err := s.client.DeleteNote(ctx, id); err == nil {
			if err := s.notesRepo().Remove(ctx, id); err != nil {
				return fmt.Errorf("error deleting note: %w", err)
			}
			return nil
		} else {
			s.log.Warn(ctx, "immediate remote delete failed, tombstoning", "id", id, "error", err)
		}
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := notes.NewSQLiteRepository(tx).Remove(ctx, id); err != nil {
			return err
		}
		return tombstones.NewSQLiteRepository(tx).Add(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("error deleting note: %w", err)
	}
	return nil
}

// List returns the current user's notes, most recently created first.
func (s *noteService) List(ctx context.Context) ([]models.Note, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	result, err := s.notesRepo().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	return result, nil
}

// Get returns a single note by id.
func (s *noteService) Get(ctx context.Context, id string) (*models.Note, error) {
	n, err := s.notesRepo().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving note: %w", err)
	}
	return n, nil
}
