package sync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/offnote/notesync/internal/client/models"
	"github.com/offnote/notesync/internal/client/remote"
	"github.com/offnote/notesync/internal/client/repositories/notes"
	"github.com/offnote/notesync/internal/client/repositories/tombstones"
	"github.com/offnote/notesync/internal/logging"
)

// ErrOffline is reported by ForceSync when no connection is available.
var ErrOffline = errors.New("no connection available")

// Outcome summarizes one sync pass.
type Outcome struct {
	// Synced counts notes confirmed by the server during this pass.
	Synced int
	// StillPending counts notes left pending for the next pass.
	StillPending int
	// Deleted counts remote deletes confirmed during this pass.
	Deleted int
	// StillTombstoned counts deletes left unconfirmed for the next pass.
	StillTombstoned int
	// AuthFailed is set when the server invalidated the session mid-pass.
	AuthFailed bool
}

// Status is the connectivity view the orchestrator needs.
type Status interface {
	Online() bool
}

// Orchestrator is the only component that moves notes between pending and
// synced and purges tombstones, by actually talking to the remote store.
type Orchestrator struct {
	notes  notes.Repository
	tombs  tombstones.Repository
	client remote.Client
	status Status
	log    logging.Logger

	// busy is the single-flight guard: one pass at a time, overlapping
	// triggers are dropped rather than queued.
	busy atomic.Bool

	onAuthFailure func(ctx context.Context)
}

// NewOrchestrator wires the orchestrator to its stores, the remote client,
// and the connectivity status source.
func NewOrchestrator(n notes.Repository, t tombstones.Repository, c remote.Client, s Status, log logging.Logger) *Orchestrator {
	return &Orchestrator{
		notes:  n,
		tombs:  t,
		client: c,
		status: s,
		log:    log.With("component", "sync"),
	}
}

// OnAuthFailure registers the hook fired once per pass in which the server
// rejected the session. Typically wired to clearing the cached session.
func (o *Orchestrator) OnAuthFailure(fn func(ctx context.Context)) {
	o.onAuthFailure = fn
}

// OnLogin performs the full pull that establishes the baseline for
// incremental sync: fetches all remote notes of the owner and replaces the
// local store with them, all synced.
//
// This is a destructive snapshot: local-only pending notes that were never
// pushed are lost if a pull happens before a push. Preserved deliberately;
// see DESIGN.md.
func (o *Orchestrator) OnLogin(ctx context.Context, ownerID string) error {
	remoteNotes, err := o.client.ListNotes(ctx)
	if err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}

	snapshot := make([]models.Note, 0, len(remoteNotes))
	for _, n := range remoteNotes {
		n.OwnerID = ownerID
		n.SyncState = models.SyncStateSynced
		n.RemoteAck = true
		snapshot = append(snapshot, n)
	}

	if err := o.notes.ReplaceAll(ctx, snapshot); err != nil {
		return fmt.Errorf("snapshot replace failed: %w", err)
	}
	o.log.Info(ctx, "pulled remote snapshot", "owner", ownerID, "notes", len(snapshot))
	return nil
}

// RunSyncPass reconciles local pending state with the remote store. Offline
// it is a no-op. A pass already in flight drops the trigger and returns a
// nil outcome; the next trigger picks up whatever is still pending.
func (o *Orchestrator) RunSyncPass(ctx context.Context) (*Outcome, error) {
	if !o.busy.CompareAndSwap(false, true) {
		o.log.Debug(ctx, "sync pass already running, trigger dropped")
		return nil, nil
	}
	defer o.busy.Store(false)

	if !o.status.Online() {
		return nil, nil
	}

	pending, err := o.notes.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending notes: %w", err)
	}
	tombs, err := o.tombs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read tombstones: %w", err)
	}
	if len(pending) == 0 && len(tombs) == 0 {
		return &Outcome{}, nil
	}

	out := &Outcome{}
	o.pushPhase(ctx, pending, out)

	// A session-fatal failure makes the remaining deletes pointless; they
	// would all come back 401. Leave the tombstones for the next session.
	if out.AuthFailed {
		out.StillTombstoned = len(tombs)
	} else {
		o.deletePhase(ctx, tombs, out)
	}

	if out.AuthFailed && o.onAuthFailure != nil {
		o.onAuthFailure(ctx)
	}

	o.log.Info(ctx, "sync pass finished",
		"synced", out.Synced, "pending", out.StillPending,
		"deleted", out.Deleted, "tombstoned", out.StillTombstoned,
		"auth_failed", out.AuthFailed)
	return out, nil
}

// pushPhase sends every pending note. Failure of one item never aborts the
// batch, except an auth failure, which aborts the rest of the phase.
func (o *Orchestrator) pushPhase(ctx context.Context, pending []*models.Note, out *Outcome) {
	for i, n := range pending {
		if Resolve(n, nil) != PushLocal {
			continue
		}

		err := o.pushOne(ctx, n)
		if err == nil {
			if err := o.notes.MarkSynced(ctx, n.ID); err != nil {
				o.log.Error(ctx, "failed to mark note synced", "id", n.ID, "error", err)
				out.StillPending++
				continue
			}
			out.Synced++
			continue
		}

		if errors.Is(err, remote.ErrAuth) {
			o.log.Warn(ctx, "session rejected by server, aborting push phase", "id", n.ID)
			out.AuthFailed = true
			out.StillPending += len(pending) - i
			return
		}

		// Transient and validation failures alike: the note stays pending
		// and the pass moves on.
		o.log.Warn(ctx, "note push failed", "id", n.ID, "error", err)
		out.StillPending++
	}
}

func (o *Orchestrator) pushOne(ctx context.Context, n *models.Note) error {
	if !n.RemoteAck {
		return o.client.CreateNote(ctx, n)
	}
	return o.client.UpdateNote(ctx, n.ID, remote.NoteFields{Title: &n.Title, Content: &n.Content})
}

// deletePhase confirms tombstoned deletes against the remote store.
func (o *Orchestrator) deletePhase(ctx context.Context, tombs []string, out *Outcome) {
	for i, id := range tombs {
		err := o.client.DeleteNote(ctx, id)
		if err == nil {
			if err := o.tombs.Remove(ctx, id); err != nil {
				o.log.Error(ctx, "failed to purge tombstone", "id", id, "error", err)
				out.StillTombstoned++
				continue
			}
			out.Deleted++
			continue
		}

		if errors.Is(err, remote.ErrAuth) {
			o.log.Warn(ctx, "session rejected by server, aborting delete phase", "id", id)
			out.AuthFailed = true
			out.StillTombstoned += len(tombs) - i
			return
		}

		o.log.Warn(ctx, "remote delete failed", "id", id, "error", err)
		out.StillTombstoned++
	}
}

// ForceSync is the caller-invoked pass. Unlike the connectivity-triggered
// path it fails fast when offline so the UI can tell the user no sync is
// possible right now.
func (o *Orchestrator) ForceSync(ctx context.Context) (*Outcome, error) {
	if !o.status.Online() {
		return nil, ErrOffline
	}
	return o.RunSyncPass(ctx)
}

// PendingCount reports how many notes await synchronization. Read-only.
func (o *Orchestrator) PendingCount(ctx context.Context) (int, error) {
	pending, err := o.notes.ListPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read pending notes: %w", err)
	}
	return len(pending), nil
}
