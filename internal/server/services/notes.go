package services

import (
	"context"

	"github.com/offnote/notesync/internal/server/models"
	"github.com/offnote/notesync/internal/server/repositories/notes"
)

type NoteService struct {
	repo notes.Repository
}

func NewNoteService(repo notes.Repository) *NoteService {
	return &NoteService{repo: repo}
}

// Upsert stores a note under the given user. Retried creates with the same
// client-generated id converge on the same row.
func (s *NoteService) Upsert(ctx context.Context, userID, id, title, content string) (*models.Note, error) {
	return s.repo.Upsert(ctx, &models.Note{
		ID:      id,
		UserID:  userID,
		Title:   title,
		Content: content,
	})
}

// Update patches the user's note.
func (s *NoteService) Update(ctx context.Context, userID, id string, fields notes.Fields) (*models.Note, error) {
	return s.repo.Update(ctx, userID, id, fields)
}

// Delete removes the user's note.
func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

// List returns all notes of the user.
func (s *NoteService) List(ctx context.Context, userID string) ([]models.Note, error) {
	return s.repo.ListByUser(ctx, userID)
}
