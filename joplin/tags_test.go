package joplin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainstemapp/brainstem/joplin"
)

func TestTagTitlesAreLowercased(t *testing.T) {
	_, client := newTestServer(t)

	tag, err := client.CreateTag(t.Context(), joplin.NewTag{Title: "ProjectX"})
	require.NoError(t, err)
	// The application normalizes tag titles to lowercase on creation.
	assert.Equal(t, "projectx", tag.Title)
}

func TestTagAttachDetach(t *testing.T) {
	_, client := newTestServer(t)
	ctx := t.Context()

	note, err := client.CreateNote(ctx, joplin.NewNote{Title: "tagged"})
	require.NoError(t, err)
	tag, err := client.CreateTag(ctx, joplin.NewTag{Title: "urgent"})
	require.NoError(t, err)

	require.NoError(t, client.AddTagToNote(ctx, tag.ID, note.ID))

	tags, err := joplin.Collect(client.NoteTags(ctx, note.ID, nil))
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, tag.ID, tags[0].ID)

	notes, err := joplin.Collect(client.TagNotes(ctx, tag.ID, nil))
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, note.ID, notes[0].ID)

	// Attaching again is idempotent server-side.
	require.NoError(t, client.AddTagToNote(ctx, tag.ID, note.ID))
	tags, err = joplin.Collect(client.NoteTags(ctx, note.ID, nil))
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	require.NoError(t, client.RemoveTagFromNote(ctx, tag.ID, note.ID))
	tags, err = joplin.Collect(client.NoteTags(ctx, note.ID, nil))
	require.NoError(t, err)
	assert.Empty(t, tags)

	// Detaching an absent association is a 404.
	err = client.RemoveTagFromNote(ctx, tag.ID, note.ID)
	assert.ErrorIs(t, err, joplin.ErrNotFound)
}

func TestAttachTagToMissingNote(t *testing.T) {
	_, client := newTestServer(t)
	ctx := t.Context()

	tag, err := client.CreateTag(ctx, joplin.NewTag{Title: "orphan"})
	require.NoError(t, err)

	err = client.AddTagToNote(ctx, tag.ID, "0123456789abcdef0123456789abcdef")
	assert.ErrorIs(t, err, joplin.ErrNotFound)
}

func TestDeleteTagRemovesAssociations(t *testing.T) {
	_, client := newTestServer(t)
	ctx := t.Context()

	note, err := client.CreateNote(ctx, joplin.NewNote{Title: "kept"})
	require.NoError(t, err)
	tag, err := client.CreateTag(ctx, joplin.NewTag{Title: "doomed"})
	require.NoError(t, err)
	require.NoError(t, client.AddTagToNote(ctx, tag.ID, note.ID))

	require.NoError(t, client.DeleteTag(ctx, tag.ID))

	tags, err := joplin.Collect(client.NoteTags(ctx, note.ID, nil))
	require.NoError(t, err)
	assert.Empty(t, tags)
}
