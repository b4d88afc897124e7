package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/offnote/notesync/internal/client/models"
	"github.com/offnote/notesync/internal/client/sync"
)

func syncMarker(n *models.Note) string {
	if n.SyncState == models.SyncStateSynced {
		return " "
	}
	return "*"
}

// Add prompts for a title and content and creates a note. Works offline; the
// note is pushed on the next sync pass.
func (a *App) Add(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "Enter content", os.Stdout)
	if err != nil {
		return err
	}

	n, err := a.noteService.Create(ctx, title, content)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	printlnFn("Created note", n.ID)
	return nil
}

// Edit prompts for a note id and its new title and content.
func (a *App) Edit(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter note id to edit", os.Stdout)
	if err != nil {
		return err
	}
	title, err := getSimpleText(a.reader, "Enter new title", os.Stdout)
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "Enter new content", os.Stdout)
	if err != nil {
		return err
	}

	if _, err := a.noteService.Update(ctx, id, title, content); err != nil {
		printlnFn("Error:", err)
		return err
	}
	printlnFn("Updated note", id)
	return nil
}

// Show prints a single note.
func (a *App) Show(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter note id to show", os.Stdout)
	if err != nil {
		return err
	}

	n, err := a.noteService.Get(ctx, id)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	printlnFn(fmt.Sprintf("[%s] %s", n.ID, n.Title))
	printlnFn(n.Content)
	printlnFn(fmt.Sprintf("state: %s, updated: %s", n.SyncState, n.UpdatedAt.Local().Format("2006-01-02 15:04:05")))
	return nil
}

// Delete removes a note locally and, online, remotely.
func (a *App) Delete(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter note id to delete", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.noteService.Delete(ctx, id); err != nil {
		printlnFn("Error:", err)
		return err
	}
	printlnFn("Deleted note", id)
	return nil
}

// List prints the current user's notes, pending ones marked with '*'.
func (a *App) List(ctx context.Context) error {
	list, err := a.noteService.List(ctx)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	if len(list) == 0 {
		printlnFn("No notes yet")
		return nil
	}
	for i := range list {
		n := &list[i]
		printlnFn(fmt.Sprintf("%s %s  %s", syncMarker(n), n.ID, n.Title))
	}
	return nil
}

// Sync runs a sync pass right now, or reports that the client is offline.
func (a *App) Sync(ctx context.Context) error {
	out, err := a.sync.ForceSync(ctx)
	if err != nil {
		if errors.Is(err, sync.ErrOffline) {
			printlnFn("Offline, cannot sync now")
			return nil
		}
		printlnFn("Sync failed:", err)
		return err
	}
	if out == nil {
		printlnFn("Sync already in progress")
		return nil
	}
	printlnFn(fmt.Sprintf("Synced %d, pending %d, deleted %d, tombstoned %d",
		out.Synced, out.StillPending, out.Deleted, out.StillTombstoned))
	return nil
}

// Status prints connectivity and how many notes await synchronization.
func (a *App) Status(ctx context.Context) error {
	mode := "offline"
	if a.status.Online() {
		mode = "online"
	}
	pending, err := a.sync.PendingCount(ctx)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	printlnFn(fmt.Sprintf("%s, %d pending", mode, pending))
	return nil
}
