// Package tombstones stores ids whose deletion has been acknowledged locally
// but not yet confirmed against the remote store. A tombstone for an id never
// coexists with a note record for the same id.
package tombstones

import "context"

// Repository is the durable tombstone set.
type Repository interface {
	// Add records a pending remote delete. Adding an existing id is a no-op.
	Add(ctx context.Context, id string) error

	// Remove purges a tombstone once the remote delete is confirmed.
	// Removing a missing id is a no-op.
	Remove(ctx context.Context, id string) error

	// List returns all tombstoned ids.
	List(ctx context.Context) ([]string, error)
}
