package notes

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/offnote/notesync/internal/common"
	"github.com/offnote/notesync/internal/server/models"
)

func setupMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestUpsert_Success(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO notes (id, user_id, title, content)`)).
		WithArgs("n1", "u1", "title", "content").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	note, err := repo.Upsert(context.Background(), &models.Note{
		ID: "n1", UserID: "u1", Title: "title", Content: "content",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if note.CreatedAt.IsZero() {
		t.Errorf("expected server timestamps to be filled in")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpsert_ForeignOwner(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	// the WHERE clause filters out the conflicting row, so nothing returns
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO notes (id, user_id, title, content)`)).
		WithArgs("n1", "u2", "title", "content").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))

	_, err := repo.Upsert(context.Background(), &models.Note{
		ID: "n1", UserID: "u2", Title: "title", Content: "content",
	})
	if !errors.Is(err, common.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	title := "new title"
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "content", "created_at", "updated_at"}).
		AddRow("n1", "u1", "new title", "old content", now, now)
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE notes SET`)).
		WithArgs("n1", "u1", "new title", nil).
		WillReturnRows(rows)

	note, err := repo.Update(context.Background(), "u1", "n1", Fields{Title: &title})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if note.Title != "new title" || note.Content != "old content" {
		t.Errorf("unexpected note: %+v", note)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	title := "x"
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE notes SET`)).
		WithArgs("missing", "u1", "x", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "content", "created_at", "updated_at"}))

	_, err := repo.Update(context.Background(), "u1", "missing", Fields{Title: &title})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM notes WHERE id = $1 AND user_id = $2`)).
		WithArgs("n1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "u1", "n1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM notes WHERE id = $1 AND user_id = $2`)).
		WithArgs("missing", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "u1", "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByUser(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "content", "created_at", "updated_at"}).
		AddRow("n2", "u1", "second", "c2", now, now).
		AddRow("n1", "u1", "first", "c1", now.Add(-time.Hour), now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, title, content, created_at, updated_at FROM notes`)).
		WithArgs("u1").
		WillReturnRows(rows)

	list, err := repo.ListByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0].ID != "n2" {
		t.Errorf("unexpected list: %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
