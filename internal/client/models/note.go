// Package models defines client-side data models used by the notesync CLI.
package models

import "time"

// SyncState tells whether the latest local state of a note has been
// confirmed as stored remotely.
type SyncState int

const (
	// SyncStatePending marks a note whose latest local change has not yet
	// reached the server.
	SyncStatePending SyncState = 0

	// SyncStateSynced marks a note whose local state matches what the
	// server is believed to hold.
	SyncStateSynced SyncState = 1
)

func (s SyncState) String() string {
	if s == SyncStateSynced {
		return "synced"
	}
	return "pending"
}

// Note is a locally cached note record.
type Note struct {
	// ID is a client-generated UUID, assigned once at creation and never
	// reassigned.
	ID string

	// OwnerID identifies the user whose note set this record belongs to.
	OwnerID string

	Title string

	// Content is an opaque rich-text payload. The sync engine never
	// inspects it.
	Content string

	CreatedAt time.Time
	UpdatedAt time.Time

	SyncState SyncState

	// RemoteAck is set once the server has acknowledged this id (a create
	// succeeded, or the record arrived via a pull). A pending note without
	// it is pushed as a create, with it as an update.
	RemoteAck bool
}
