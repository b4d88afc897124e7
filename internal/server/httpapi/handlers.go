package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/offnote/notesync/internal/common"
	"github.com/offnote/notesync/internal/logging"
	"github.com/offnote/notesync/internal/server/models"
	"github.com/offnote/notesync/internal/server/repositories/notes"
)

type handler struct {
	users UserService
	notes NoteService
	log   logging.Logger
}

// wire DTOs, shared with the client's remote package

type userDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type authResponse struct {
	User  userDTO `json:"user"`
	Token string  `json:"token"`
}

type noteDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{ID: u.ID, Email: u.Email, Name: u.Name}
}

func toNoteDTO(n *models.Note) noteDTO {
	return noteDTO{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *handler) ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, token, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			http.Error(w, "email already registered", http.StatusConflict)
			return
		}
		h.log.Error(r.Context(), "registration failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{User: toUserDTO(user), Token: token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.log.Error(r.Context(), "login failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: toUserDTO(user), Token: token})
}

// logout is a no-op server-side: tokens are stateless and simply dropped by
// the client. The endpoint exists so clients can report the intent.
func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), userID(r.Context()))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			http.Error(w, "unknown user", http.StatusUnauthorized)
			return
		}
		h.log.Error(r.Context(), "profile fetch failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toUserDTO(user))
}

func (h *handler) listNotes(w http.ResponseWriter, r *http.Request) {
	list, err := h.notes.List(r.Context(), userID(r.Context()))
	if err != nil {
		h.log.Error(r.Context(), "notes list failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	dtos := make([]noteDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, toNoteDTO(&list[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

type createNoteRequest struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *handler) createNote(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "userID") != userID(r.Context()) {
		http.Error(w, "cannot create notes for another user", http.StatusForbidden)
		return
	}

	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	note, err := h.notes.Upsert(r.Context(), userID(r.Context()), req.ID, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			http.Error(w, "id already in use", http.StatusConflict)
			return
		}
		h.log.Error(r.Context(), "note create failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toNoteDTO(note))
}

type updateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (h *handler) updateNote(w http.ResponseWriter, r *http.Request) {
	var req updateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	note, err := h.notes.Update(r.Context(), userID(r.Context()), chi.URLParam(r, "id"),
		notes.Fields{Title: req.Title, Content: req.Content})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			http.Error(w, "note not found", http.StatusNotFound)
			return
		}
		h.log.Error(r.Context(), "note update failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toNoteDTO(note))
}

func (h *handler) deleteNote(w http.ResponseWriter, r *http.Request) {
	err := h.notes.Delete(r.Context(), userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			http.Error(w, "note not found", http.StatusNotFound)
			return
		}
		h.log.Error(r.Context(), "note delete failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
