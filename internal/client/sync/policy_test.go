package sync

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/offnote/notesync/internal/client/models"
)

func TestResolve_PendingLocalWins(t *testing.T) {
	local := &models.Note{ID: "n1", SyncState: models.SyncStatePending}
	remote := &models.Note{ID: "n1", Title: "remote edit", SyncState: models.SyncStateSynced}

	require.Equal(t, PushLocal, Resolve(local, remote))
	require.Equal(t, PushLocal, Resolve(local, nil))
}

func TestResolve_SyncedLocalKeepsRemote(t *testing.T) {
	local := &models.Note{ID: "n1", SyncState: models.SyncStateSynced}
	require.Equal(t, KeepRemote, Resolve(local, nil))
}

func TestResolve_NoLocalKeepsRemote(t *testing.T) {
	require.Equal(t, KeepRemote, Resolve(nil, &models.Note{ID: "n1"}))
}
