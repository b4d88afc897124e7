package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/offnote/notesync/internal/client/models"
	"github.com/offnote/notesync/internal/client/remote"
	"github.com/offnote/notesync/internal/client/repositories/session"
	"github.com/offnote/notesync/internal/common"
	"github.com/offnote/notesync/internal/logging"
)

// Puller performs the pull-on-login snapshot. Satisfied by the sync
// orchestrator.
type Puller interface {
	OnLogin(ctx context.Context, ownerID string) error
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login/Register: authenticate against the server, cache the session,
//     and pull the remote note snapshot.
//   - Logout: best-effort remote logout, then wipe the cached session.
//   - Profile: the authenticated user; served from cache when offline.
//   - InvalidateSession: wipe the cached session after the server rejected
//     it (wired to the orchestrator's auth-failure hook).
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Register(ctx context.Context, name, email, password string) (*models.Session, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*models.User, error)
	CurrentSession(ctx context.Context) (*models.Session, error)
	InvalidateSession(ctx context.Context) error
	Close() error
}

type authService struct {
	db     *sql.DB
	client remote.Client
	puller Puller
	status OnlineStatus
	log    logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client,
// local DB, and snapshot puller.
func NewAuthService(db *sql.DB, client remote.Client, puller Puller, status OnlineStatus, log logging.Logger) AuthService {
	return &authService{db: db, client: client, puller: puller, status: status, log: log.With("component", "auth")}
}

func (a *authService) sessionRepo() session.Repository {
	return session.NewSQLiteRepository(a.db)
}

// Login authenticates, replaces the cached session, and pulls the remote
// snapshot. A failed pull does not undo the login: the note list may be
// stale until the next successful pass, which is the offline-first deal.
func (a *authService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	s, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	if err := a.sessionRepo().Set(ctx, s); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}

	if err := a.puller.OnLogin(ctx, s.User.ID); err != nil {
		a.log.Warn(ctx, "pull-on-login failed, local cache may be stale", "error", err)
	}
	return s, nil
}

// Register creates an account on the server and logs it in. The pull clears
// whatever the previous user left in the local store.
func (a *authService) Register(ctx context.Context, name, email, password string) (*models.Session, error) {
	s, err := a.client.Register(ctx, name, email, password)
	if err != nil {
		return nil, fmt.Errorf("registration error: %w", err)
	}

	if err := a.sessionRepo().Set(ctx, s); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}

	if err := a.puller.OnLogin(ctx, s.User.ID); err != nil {
		a.log.Warn(ctx, "pull-on-login failed, local cache may be stale", "error", err)
	}
	return s, nil
}

// Logout tells the server best-effort and always wipes the cached session.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		a.log.Warn(ctx, "remote logout failed, clearing local session anyway", "error", err)
	}
	a.client.SetToken("")
	if err := a.sessionRepo().Clear(ctx); err != nil {
		return fmt.Errorf("session clearing error: %w", err)
	}
	return nil
}

// Profile returns the authenticated user, from the server when online and
// from the cached session otherwise.
func (a *authService) Profile(ctx context.Context) (*models.User, error) {
	if a.status.Online() {
		u, err := a.client.GetProfile(ctx)
		if err == nil {
			return u, nil
		}
		if errors.Is(err, remote.ErrAuth) {
			return nil, err
		}
		a.log.Warn(ctx, "profile fetch failed, falling back to cache", "error", err)
	}

	s, err := a.sessionRepo().Get(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return &s.User, nil
}

// CurrentSession returns the cached session, or common.ErrNotFound.
func (a *authService) CurrentSession(ctx context.Context) (*models.Session, error) {
	return a.sessionRepo().Get(ctx)
}

// InvalidateSession wipes the cached session and the retained token. Wired
// to the orchestrator's auth-failure hook so a 401 mid-pass forces a fresh
// login.
func (a *authService) InvalidateSession(ctx context.Context) error {
	a.client.SetToken("")
	if err := a.sessionRepo().Clear(ctx); err != nil {
		return fmt.Errorf("session clearing error: %w", err)
	}
	return nil
}

// Close releases resources held by the underlying client.
func (a *authService) Close() error {
	return a.client.Close()
}
