package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/offnote/notesync/internal/common"
	"github.com/offnote/notesync/internal/logging"
	"github.com/offnote/notesync/internal/server/models"
	"github.com/offnote/notesync/internal/server/repositories/notes"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeUsers struct {
	registerErr error
	loginErr    error
	user        *models.User
	token       string

	// tokens maps bearer token to user id
	tokens map[string]string
}

func (f *fakeUsers) Register(_ context.Context, name, email, password string) (*models.User, string, error) {
	if f.registerErr != nil {
		return nil, "", f.registerErr
	}
	return f.user, f.token, nil
}

func (f *fakeUsers) Login(_ context.Context, email, password string) (*models.User, string, error) {
	if f.loginErr != nil {
		return nil, "", f.loginErr
	}
	return f.user, f.token, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, common.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeUsers) UserIDFromToken(tokenString string) (string, error) {
	id, ok := f.tokens[tokenString]
	if !ok {
		return "", common.ErrInvalidToken
	}
	return id, nil
}

type fakeNotes struct {
	store     map[string]*models.Note
	upsertErr error
}

func newFakeNotes() *fakeNotes {
	return &fakeNotes{store: map[string]*models.Note{}}
}

func (f *fakeNotes) Upsert(_ context.Context, userID, id, title, content string) (*models.Note, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	n := &models.Note{ID: id, UserID: userID, Title: title, Content: content,
		CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.store[id] = n
	return n, nil
}

func (f *fakeNotes) Update(_ context.Context, userID, id string, fields notes.Fields) (*models.Note, error) {
	n, ok := f.store[id]
	if !ok || n.UserID != userID {
		return nil, common.ErrNotFound
	}
	if fields.Title != nil {
		n.Title = *fields.Title
	}
	if fields.Content != nil {
		n.Content = *fields.Content
	}
	return n, nil
}

func (f *fakeNotes) Delete(_ context.Context, userID, id string) error {
	n, ok := f.store[id]
	if !ok || n.UserID != userID {
		return common.ErrNotFound
	}
	delete(f.store, id)
	return nil
}

func (f *fakeNotes) List(_ context.Context, userID string) ([]models.Note, error) {
	var out []models.Note
	for _, n := range f.store {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func setup(t *testing.T) (*httptest.Server, *fakeUsers, *fakeNotes) {
	t.Helper()
	users := &fakeUsers{
		user:   &models.User{ID: "u1", Name: "Alice", Email: "alice@example.org"},
		token:  "tok-u1",
		tokens: map[string]string{"tok-u1": "u1"},
	}
	noteSvc := newFakeNotes()
	srv := httptest.NewServer(NewRouter(users, noteSvc, testLogger()))
	t.Cleanup(srv.Close)
	return srv, users, noteSvc
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestPing_Public(t *testing.T) {
	srv, _, _ := setup(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/ping", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegister_Success(t *testing.T) {
	srv, _, _ := setup(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/users", "",
		map[string]string{"name": "Alice", "email": "alice@example.org", "password": "pw"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out authResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "u1", out.User.ID)
	require.Equal(t, "tok-u1", out.Token)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	srv, users, _ := setup(t)
	users.registerErr = common.ErrAlreadyExists

	resp := doJSON(t, http.MethodPost, srv.URL+"/users", "",
		map[string]string{"email": "alice@example.org", "password": "pw"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegister_MissingFields(t *testing.T) {
	srv, _, _ := setup(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/users", "",
		map[string]string{"name": "Alice"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_Success(t *testing.T) {
	srv, _, _ := setup(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "",
		map[string]string{"email": "alice@example.org", "password": "pw"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out authResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "alice@example.org", out.User.Email)
}

func TestLogin_BadCredentials(t *testing.T) {
	srv, users, _ := setup(t)
	users.loginErr = common.ErrUnauthorized

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "",
		map[string]string{"email": "alice@example.org", "password": "bad"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBearerAuth_MissingToken(t *testing.T) {
	srv, _, _ := setup(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/notes", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBearerAuth_InvalidToken(t *testing.T) {
	srv, _, _ := setup(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/notes", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProfile(t *testing.T) {
	srv, _, _ := setup(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/auth/profile", "tok-u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out userDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "u1", out.ID)
}

func TestLogout(t *testing.T) {
	srv, _, _ := setup(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/logout", "tok-u1", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCreateNote_Success(t *testing.T) {
	srv, _, noteSvc := setup(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/notes/note/user/u1", "tok-u1",
		map[string]string{"id": "n1", "title": "groceries", "content": "milk"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out noteDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "n1", out.ID)
	require.Equal(t, "u1", out.UserID)
	require.Contains(t, noteSvc.store, "n1")
}

func TestCreateNote_ForeignUser(t *testing.T) {
	srv, _, _ := setup(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/notes/note/user/u2", "tok-u1",
		map[string]string{"id": "n1", "title": "t", "content": "c"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCreateNote_MissingID(t *testing.T) {
	srv, _, _ := setup(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/notes/note/user/u1", "tok-u1",
		map[string]string{"title": "t"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateNote_Partial(t *testing.T) {
	srv, _, noteSvc := setup(t)
	_, err := noteSvc.Upsert(context.Background(), "u1", "n1", "old", "content")
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPatch, srv.URL+"/notes/n1", "tok-u1",
		map[string]string{"title": "new"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out noteDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "new", out.Title)
	require.Equal(t, "content", out.Content)
}

func TestUpdateNote_NotFound(t *testing.T) {
	srv, _, _ := setup(t)

	resp := doJSON(t, http.MethodPatch, srv.URL+"/notes/missing", "tok-u1",
		map[string]string{"title": "x"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteNote_Success(t *testing.T) {
	srv, _, noteSvc := setup(t)
	_, err := noteSvc.Upsert(context.Background(), "u1", "n1", "t", "c")
	require.NoError(t, err)

	resp := doJSON(t, http.MethodDelete, srv.URL+"/notes/n1", "tok-u1", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.NotContains(t, noteSvc.store, "n1")
}

func TestDeleteNote_NotFound(t *testing.T) {
	srv, _, _ := setup(t)

	resp := doJSON(t, http.MethodDelete, srv.URL+"/notes/missing", "tok-u1", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListNotes_ScopedToUser(t *testing.T) {
	srv, users, noteSvc := setup(t)
	users.tokens["tok-u2"] = "u2"

	_, err := noteSvc.Upsert(context.Background(), "u1", "n1", "mine", "c")
	require.NoError(t, err)
	_, err = noteSvc.Upsert(context.Background(), "u2", "n2", "theirs", "c")
	require.NoError(t, err)

	resp := doJSON(t, http.MethodGet, srv.URL+"/notes", "tok-u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []noteDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 1)
	require.Equal(t, "n1", out[0].ID)
}

func TestListNotes_InternalError(t *testing.T) {
	srv, _, noteSvc := setup(t)
	noteSvc.upsertErr = errors.New("boom")

	resp := doJSON(t, http.MethodPost, srv.URL+"/notes/note/user/u1", "tok-u1",
		map[string]string{"id": "n1"})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
