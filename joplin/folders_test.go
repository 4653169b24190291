package joplin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainstemapp/brainstem/joplin"
)

func TestFolderCRUD(t *testing.T) {
	_, client := newTestServer(t)
	ctx := t.Context()

	parent, err := client.CreateFolder(ctx, joplin.NewFolder{Title: "Projects"})
	require.NoError(t, err)
	assert.Len(t, parent.ID, 32)

	child, err := client.CreateFolder(ctx, joplin.NewFolder{Title: "Alpha", ParentID: parent.ID})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, child.ParentID)

	renamed, err := client.UpdateFolder(ctx, child.ID, joplin.FolderPatch{Title: joplin.Ptr("Beta")})
	require.NoError(t, err)
	assert.Equal(t, "Beta", renamed.Title)
	assert.Equal(t, parent.ID, renamed.ParentID)

	require.NoError(t, client.DeleteFolder(ctx, child.ID))
	_, err = client.Folder(ctx, child.ID)
	assert.ErrorIs(t, err, joplin.ErrNotFound)
}

func TestFolderNotes(t *testing.T) {
	_, client := newTestServer(t)
	ctx := t.Context()

	inbox, err := client.CreateFolder(ctx, joplin.NewFolder{Title: "Inbox"})
	require.NoError(t, err)
	archive, err := client.CreateFolder(ctx, joplin.NewFolder{Title: "Archive"})
	require.NoError(t, err)

	for _, title := range []string{"one", "two"} {
		_, err := client.CreateNote(ctx, joplin.NewNote{Title: title, ParentID: inbox.ID})
		require.NoError(t, err)
	}
	_, err = client.CreateNote(ctx, joplin.NewNote{Title: "elsewhere", ParentID: archive.ID})
	require.NoError(t, err)

	notes, err := joplin.Collect(client.FolderNotes(ctx, inbox.ID, nil))
	require.NoError(t, err)
	require.Len(t, notes, 2)
	for _, n := range notes {
		assert.Equal(t, inbox.ID, n.ParentID)
	}

	_, err = joplin.Collect(client.FolderNotes(ctx, "0123456789abcdef0123456789abcdef", nil))
	assert.ErrorIs(t, err, joplin.ErrNotFound)
}
