package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/offnote/notesync/internal/client/config"
	"github.com/offnote/notesync/internal/client/localdb"
	"github.com/offnote/notesync/internal/client/remote"
	"github.com/offnote/notesync/internal/client/repositories/notes"
	"github.com/offnote/notesync/internal/client/repositories/tombstones"
	"github.com/offnote/notesync/internal/client/services"
	clientsync "github.com/offnote/notesync/internal/client/sync"
	"github.com/offnote/notesync/internal/logging"
)

// syncer is the sync surface the CLI commands need. The real Orchestrator
// satisfies it; tests provide a stub.
type syncer interface {
	ForceSync(ctx context.Context) (*clientsync.Outcome, error)
	PendingCount(ctx context.Context) (int, error)
}

type App struct {
	config      *config.Config
	db          *sql.DB
	apiClient   remote.Client
	authService services.AuthService
	noteService services.NoteService
	status      services.OnlineStatus
	sync        syncer
	monitor     *clientsync.Monitor
	log         logging.Logger

	// mu guards userName, which the auth-failure hook writes from the
	// monitor goroutine while the REPL goroutine reads it.
	mu       sync.Mutex
	userName string

	reader *bufio.Reader
}

// NewApp wires the full client: local store, API client, connectivity
// monitor, orchestrator, and the services on top of them.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := localdb.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient := remote.NewHTTPClient(c.ServerURL, log)
	monitor := clientsync.NewMonitor(apiClient, c.OnlineCheckInterval, log)

	orch := clientsync.NewOrchestrator(
		notes.NewSQLiteRepository(db),
		tombstones.NewSQLiteRepository(db),
		apiClient, monitor, log)

	app := &App{
		config:      c,
		db:          db,
		apiClient:   apiClient,
		authService: services.NewAuthService(db, apiClient, orch, monitor, log),
		noteService: services.NewNoteService(db, apiClient, monitor, log),
		status:      monitor,
		sync:        orch,
		monitor:     monitor,
		log:         log,
		reader:      bufio.NewReader(os.Stdin),
	}

	// Coming back online is the only automatic sync trigger. The callback
	// runs on the monitor goroutine; overlapping triggers are dropped by the
	// orchestrator's single-flight guard.
	monitor.OnBecameOnline(func(ctx context.Context) {
		if _, err := orch.RunSyncPass(ctx); err != nil {
			log.Error(ctx, "sync pass failed", "error", err)
		}
	})

	// A rejected session is fatal for the whole session, not one request.
	orch.OnAuthFailure(func(ctx context.Context) {
		if err := app.authService.InvalidateSession(ctx); err != nil {
			log.Error(ctx, "failed to invalidate session", "error", err)
		}
		app.setUserName("")
		printlnFn("Session expired, please login again")
	})

	return app, nil
}

// restoreSession loads the cached session, if any, so a restart does not
// require connectivity to keep working with local notes.
func (a *App) restoreSession(ctx context.Context) {
	s, err := a.authService.CurrentSession(ctx)
	if err != nil {
		return
	}
	a.apiClient.SetToken(s.Token)
	a.setUserName(s.User.Email)
}

func (a *App) setUserName(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.userName = name
}

func (a *App) currentUserName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userName
}

func (a *App) isLoggedIn() bool {
	return a.currentUserName() != ""
}

func (a *App) getStatus() string {
	mode := "offline"
	if a.status.Online() {
		mode = "online"
	}
	name := a.currentUserName()
	if name == "" {
		return fmt.Sprintf("(%s)", mode)
	}
	return fmt.Sprintf("(%s %s)", name, mode)
}

// Run restores the cached session, starts the connectivity watcher, and
// blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer func() { _ = a.authService.Close() }()
	defer func() { _ = a.db.Close() }()

	a.restoreSession(ctx)

	go a.monitor.Start(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
