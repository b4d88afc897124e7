package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/offnote/notesync/internal/client/models"
	"github.com/offnote/notesync/internal/logging"
)

const (
	requestTimeout = 10 * time.Second
	pingTimeout    = 3 * time.Second

	retryBase = 200 * time.Millisecond
	// retryMax bounds in-call retries of transient failures; anything still
	// failing is left to the next sync pass.
	retryMax = 2
)

// HTTPClient implements Client over the JSON API described in the server's
// httpapi package.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	log     logging.Logger

	mu    sync.RWMutex
	token string
}

// NewHTTPClient returns a client for the API at baseURL, e.g.
// "http://localhost:3000".
func NewHTTPClient(baseURL string, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: requestTimeout},
		log:     log.With("component", "remote"),
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// wire DTOs

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

func (d noteDTO) toModel() models.Note {
	return models.Note{
		ID:        d.ID,
		OwnerID:   d.UserID,
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		SyncState: models.SyncStateSynced,
		RemoteAck: true,
	}
}

// statusError carries the HTTP status alongside the taxonomy sentinel.
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

// httpStatus extracts the HTTP status from an error chain, or 0.
func httpStatus(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.status
	}
	return 0
}

// classify maps an HTTP status to the error taxonomy. 2xx maps to nil.
func classify(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return &statusError{status, fmt.Errorf("%w: status %d", ErrAuth, status)}
	case status >= 400 && status < 500:
		return &statusError{status, fmt.Errorf("%w: status %d: %s", ErrValidation, status, strings.TrimSpace(string(body)))}
	default:
		return &statusError{status, fmt.Errorf("%w: status %d", ErrServer, status)}
	}
}

// do performs one API call. Transient failures (ErrNetwork, ErrServer) are
// retried in place with capped fibonacci backoff; every attempt builds a
// fresh request so the body is re-sent.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any, withAuth bool) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	backoff := retry.WithMaxRetries(retryMax, retry.NewFibonacci(retryBase))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.attempt(ctx, method, path, payload, out, withAuth)
		if isTransient(err) {
			c.log.Debug(ctx, "transient remote failure", "method", method, "path", path, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *HTTPClient) attempt(ctx context.Context, method, path string, payload []byte, out any, withAuth bool) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withAuth {
		if token := c.currentToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}

	if err := classify(resp.StatusCode, respBody); err != nil {
		return err
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func isTransient(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrServer)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.Session, error) {
	in := map[string]string{"email": email, "password": password}
	var out authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out, false); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	c.SetToken(out.Token)
	return sessionFromAuth(out), nil
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) (*models.Session, error) {
	in := map[string]string{"name": name, "email": email, "password": password}
	var out authResponse
	if err := c.do(ctx, http.MethodPost, "/users", in, &out, false); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	c.SetToken(out.Token)
	return sessionFromAuth(out), nil
}

func sessionFromAuth(a authResponse) *models.Session {
	return &models.Session{
		User: models.User{
			ID:              a.User.ID,
			Email:           a.User.Email,
			Name:            a.User.Name,
			IsAuthenticated: true,
		},
		Token: a.Token,
	}
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, true); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	c.SetToken("")
	return nil
}

func (c *HTTPClient) GetProfile(ctx context.Context) (*models.User, error) {
	var out userDTO
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &out, true); err != nil {
		return nil, fmt.Errorf("profile fetch failed: %w", err)
	}
	return &models.User{ID: out.ID, Email: out.Email, Name: out.Name, IsAuthenticated: true}, nil
}

func (c *HTTPClient) ListNotes(ctx context.Context) ([]models.Note, error) {
	var out []noteDTO
	if err := c.do(ctx, http.MethodGet, "/notes", nil, &out, true); err != nil {
		return nil, fmt.Errorf("notes fetch failed: %w", err)
	}
	result := make([]models.Note, 0, len(out))
	for _, d := range out {
		result = append(result, d.toModel())
	}
	return result, nil
}

func (c *HTTPClient) CreateNote(ctx context.Context, note *models.Note) error {
	in := map[string]string{"id": note.ID, "title": note.Title, "content": note.Content}
	path := "/notes/note/user/" + note.OwnerID
	if err := c.do(ctx, http.MethodPost, path, in, nil, true); err != nil {
		return fmt.Errorf("note create failed: %w", err)
	}
	return nil
}

func (c *HTTPClient) UpdateNote(ctx context.Context, id string, fields NoteFields) error {
	if err := c.do(ctx, http.MethodPatch, "/notes/"+id, fields, nil, true); err != nil {
		return fmt.Errorf("note update failed: %w", err)
	}
	return nil
}

// DeleteNote removes a note remotely. A 404 counts as success: the previous
// pass may have deleted the note without us seeing the acknowledgement, and
// the tombstone must still converge.
func (c *HTTPClient) DeleteNote(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/notes/"+id, nil, nil, true)
	if err == nil || httpStatus(err) == http.StatusNotFound {
		return nil
	}
	return fmt.Errorf("note delete failed: %w", err)
}

// Ping probes liveness with a single attempt and a short timeout. No retry:
// the connectivity monitor wants a prompt answer, not eventual success.
func (c *HTTPClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	return c.attempt(ctx, http.MethodGet, "/ping", nil, nil, false)
}

func (c *HTTPClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}
