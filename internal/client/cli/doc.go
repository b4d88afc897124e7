// Package cli provides the interactive notesync command-line client.
//
// It wires configuration, the local SQLite store, the remote API client, the
// connectivity monitor, and the sync orchestrator into an interactive REPL
// that works online and offline. Notes are always written locally first;
// synchronization happens in the background when connectivity allows.
//
// Key features:
//   - Register / Login / Logout with a cached session for offline restarts
//   - Add / Edit / Show / Delete / List notes, online or offline
//   - Manual sync and a status line with connectivity and pending count
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, sync.Monitor, and runREPL for details.
package cli
