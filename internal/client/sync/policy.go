package sync

import "github.com/offnote/notesync/internal/client/models"

// Decision is the outcome of comparing a local note against the remote copy.
type Decision int

const (
	// KeepRemote means the remote version stands; nothing is pushed.
	KeepRemote Decision = iota

	// PushLocal means the local version overwrites the remote one.
	PushLocal
)

// Resolve decides which version of a note wins. The remote store has no
// write path outside this system, so conflicts reduce to "does the remote
// accept the local version": whole-record last-writer-wins at the
// granularity of a push round. Every pending local note unconditionally
// overwrites the remote copy of the same id.
//
// Known limitation, not a bug: concurrent edits to the same note from two
// devices end with one device's edit silently discarded. There is no
// field-level merge and no causality tracking.
func Resolve(local *models.Note, remote *models.Note) Decision {
	if local == nil {
		return KeepRemote
	}
	if local.SyncState == models.SyncStatePending {
		return PushLocal
	}
	return KeepRemote
}
