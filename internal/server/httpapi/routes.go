// Package httpapi provides HTTP routing, middleware, and handlers for the
// notesync server API.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/offnote/notesync/internal/logging"
	"github.com/offnote/notesync/internal/server/models"
	"github.com/offnote/notesync/internal/server/repositories/notes"
)

// UserService defines the account operations the handlers need.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UserIDFromToken(tokenString string) (string, error)
}

// NoteService defines the note operations the handlers need.
type NoteService interface {
	Upsert(ctx context.Context, userID, id, title, content string) (*models.Note, error)
	Update(ctx context.Context, userID, id string, fields notes.Fields) (*models.Note, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string) ([]models.Note, error)
}

// NewRouter constructs the HTTP handler serving the notes API.
//
// Routes:
//
//	GET  /ping                       → liveness probe (public)
//	POST /users                      → register (public)
//	POST /auth/login                 → login (public)
//	POST /auth/logout                → logout (bearer)
//	GET  /auth/profile               → authenticated user (bearer)
//	GET  /notes                      → list user's notes (bearer)
//	POST /notes/note/user/{userID}   → create/upsert a note (bearer)
//	PATCH /notes/{id}                → partial update (bearer)
//	DELETE /notes/{id}               → delete (bearer)
func NewRouter(users UserService, noteSvc NoteService, logger logging.Logger) http.Handler {
	h := &handler{users: users, notes: noteSvc, log: logger.With("component", "httpapi")}

	r := chi.NewRouter()

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(withRequestLogging(logger))

	r.Get("/ping", h.ping)
	r.Post("/users", h.register)
	r.Post("/auth/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(bearerAuth(users))

		r.Post("/auth/logout", h.logout)
		r.Get("/auth/profile", h.profile)

		r.Get("/notes", h.listNotes)
		r.Post("/notes/note/user/{userID}", h.createNote)
		r.Patch("/notes/{id}", h.updateNote)
		r.Delete("/notes/{id}", h.deleteNote)
	})

	return r
}
