package brain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainstemapp/brainstem/brain"
	"github.com/brainstemapp/brainstem/joplin"
	"github.com/brainstemapp/brainstem/joplin/joplintest"
)

func newTestBrain(t *testing.T) (*joplintest.Server, *joplin.Client, *brain.Brain) {
	t.Helper()
	srv := joplintest.New("test-token")
	t.Cleanup(srv.Close)

	client, err := joplin.New(joplin.Options{BaseURL: srv.URL(), Token: srv.Token()})
	require.NoError(t, err)
	return srv, client, brain.New(client, nil)
}

func TestEnsureTag(t *testing.T) {
	_, _, b := newTestBrain(t)
	ctx := t.Context()

	tag, created, err := b.EnsureTag(ctx, "ProjectX")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "projectx", tag.Title)

	// Same title in any casing resolves to the existing tag.
	again, created, err := b.EnsureTag(ctx, "  PROJECTX ")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, tag.ID, again.ID)

	_, _, err = b.EnsureTag(ctx, "   ")
	assert.ErrorIs(t, err, brain.ErrEmptyTagTitle)
}

func TestTagNoteIsIdempotent(t *testing.T) {
	srv, client, b := newTestBrain(t)
	ctx := t.Context()

	note, err := client.CreateNote(ctx, joplin.NewNote{Title: "inbox item"})
	require.NoError(t, err)

	first, err := b.TagNote(ctx, note.ID, "urgent")
	require.NoError(t, err)

	srv.ResetRequests()
	second, err := b.TagNote(ctx, note.ID, "Urgent")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// The note already carried the tag, so no create or attach happened.
	assert.Zero(t, srv.CountRequests("POST", "/tags/"))
	assert.Zero(t, srv.CountRequests("POST", "/tags/{id}/notes"))
}

func TestUntagNote(t *testing.T) {
	srv, client, b := newTestBrain(t)
	ctx := t.Context()

	note, err := client.CreateNote(ctx, joplin.NewNote{Title: "inbox item"})
	require.NoError(t, err)
	_, err = b.TagNote(ctx, note.ID, "urgent")
	require.NoError(t, err)

	require.NoError(t, b.UntagNote(ctx, note.ID, "URGENT"))

	titles, err := b.NoteTagTitles(ctx, note.ID)
	require.NoError(t, err)
	assert.Empty(t, titles)

	// Detaching a tag the note does not carry issues no detach call.
	srv.ResetRequests()
	require.NoError(t, b.UntagNote(ctx, note.ID, "urgent"))
	assert.Zero(t, srv.CountRequests("DELETE", "/tags/{id}/notes/{noteID}"))
}

func TestReplaceNoteTagsMinimalCalls(t *testing.T) {
	srv, client, b := newTestBrain(t)
	ctx := t.Context()

	note, err := client.CreateNote(ctx, joplin.NewNote{Title: "inbox item"})
	require.NoError(t, err)
	require.NoError(t, b.ReplaceNoteTags(ctx, note.ID, []string{"alpha", "beta"}))

	srv.ResetRequests()
	require.NoError(t, b.ReplaceNoteTags(ctx, note.ID, []string{"beta", "gamma"}))

	titles, err := b.NoteTagTitles(ctx, note.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"beta", "gamma"}, titles)

	// alpha detached, gamma attached, beta untouched.
	assert.Equal(t, 1, srv.CountRequests("DELETE", "/tags/{id}/notes/{noteID}"))
	assert.Equal(t, 1, srv.CountRequests("POST", "/tags/{id}/notes"))
}

func TestReplaceNoteTagsNoChanges(t *testing.T) {
	srv, client, b := newTestBrain(t)
	ctx := t.Context()

	note, err := client.CreateNote(ctx, joplin.NewNote{Title: "stable"})
	require.NoError(t, err)
	require.NoError(t, b.ReplaceNoteTags(ctx, note.ID, []string{"keep"}))

	srv.ResetRequests()
	require.NoError(t, b.ReplaceNoteTags(ctx, note.ID, []string{"KEEP"}))
	assert.Zero(t, srv.CountRequests("DELETE", "/tags/{id}/notes/{noteID}"))
	assert.Zero(t, srv.CountRequests("POST", "/tags/{id}/notes"))
}

func TestReplaceNoteTagsToEmpty(t *testing.T) {
	_, client, b := newTestBrain(t)
	ctx := t.Context()

	note, err := client.CreateNote(ctx, joplin.NewNote{Title: "cleared"})
	require.NoError(t, err)
	require.NoError(t, b.ReplaceNoteTags(ctx, note.ID, []string{"one", "two"}))

	require.NoError(t, b.ReplaceNoteTags(ctx, note.ID, nil))

	titles, err := b.NoteTagTitles(ctx, note.ID)
	require.NoError(t, err)
	assert.Empty(t, titles)
}

func TestEnsureFolderPath(t *testing.T) {
	srv, client, b := newTestBrain(t)
	ctx := t.Context()

	leaf, err := b.EnsureFolderPath(ctx, "Projects/Alpha/Specs")
	require.NoError(t, err)
	assert.Equal(t, "Specs", leaf.Title)
	assert.Equal(t, 3, srv.CountRequests("POST", "/folders/"))

	// Verify the chain of parents.
	parent, err := client.Folder(ctx, leaf.ParentID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", parent.Title)
	root, err := client.Folder(ctx, parent.ParentID)
	require.NoError(t, err)
	assert.Equal(t, "Projects", root.Title)
	assert.Empty(t, root.ParentID)

	// A second walk reuses every segment.
	srv.ResetRequests()
	again, err := b.EnsureFolderPath(ctx, "Projects/Alpha/Specs")
	require.NoError(t, err)
	assert.Equal(t, leaf.ID, again.ID)
	assert.Zero(t, srv.CountRequests("POST", "/folders/"))

	// A sibling path only creates the missing tail.
	sibling, err := b.EnsureFolderPath(ctx, "Projects/Beta")
	require.NoError(t, err)
	assert.Equal(t, "Beta", sibling.Title)
	assert.Equal(t, root.ID, sibling.ParentID)
	assert.Equal(t, 1, srv.CountRequests("POST", "/folders/"))
}

func TestEnsureFolderPathDistinguishesParents(t *testing.T) {
	_, client, b := newTestBrain(t)
	ctx := t.Context()

	// Two folders titled "Notes" under different parents must stay distinct.
	a, err := b.EnsureFolderPath(ctx, "Work/Notes")
	require.NoError(t, err)
	p, err := b.EnsureFolderPath(ctx, "Personal/Notes")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, p.ID)

	workNotes, err := client.Folder(ctx, a.ParentID)
	require.NoError(t, err)
	assert.Equal(t, "Work", workNotes.Title)
}

func TestEnsureFolderPathEmpty(t *testing.T) {
	_, _, b := newTestBrain(t)

	_, err := b.EnsureFolderPath(t.Context(), " / / ")
	assert.ErrorIs(t, err, brain.ErrEmptyFolderPath)
}

func TestCapture(t *testing.T) {
	_, client, b := newTestBrain(t)
	ctx := t.Context()

	note, err := b.Capture(ctx, "Inbox/2026", "Idea", "a body")
	require.NoError(t, err)
	assert.Equal(t, "Idea", note.Title)

	folder, err := client.Folder(ctx, note.ParentID)
	require.NoError(t, err)
	assert.Equal(t, "2026", folder.Title)

	// Capturing into the same path reuses the folders.
	second, err := b.Capture(ctx, "Inbox/2026", "Another", "")
	require.NoError(t, err)
	assert.Equal(t, note.ParentID, second.ParentID)
}
