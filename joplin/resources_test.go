package joplin_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainstemapp/brainstem/joplin"
)

func TestResourceUploadAndDownload(t *testing.T) {
	_, client := newTestServer(t)
	ctx := t.Context()

	blob := []byte("\x89PNG\r\nfake image bytes")
	created, err := client.CreateResource(ctx, joplin.NewResource{
		Title:    "diagram",
		Filename: "diagram.png",
		Mime:     "image/png",
	}, bytes.NewReader(blob))
	require.NoError(t, err)
	assert.Len(t, created.ID, 32)
	assert.Equal(t, "diagram", created.Title)
	assert.Equal(t, int64(len(blob)), created.Size)

	data, err := client.ResourceData(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, blob, data)

	meta, err := client.Resource(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "diagram.png", meta.Filename)
	assert.Equal(t, "image/png", meta.Mime)
}

func TestResourceMetadataUpdate(t *testing.T) {
	_, client := newTestServer(t)
	ctx := t.Context()

	created, err := client.CreateResource(ctx, joplin.NewResource{Title: "doc"},
		bytes.NewReader([]byte("v1")))
	require.NoError(t, err)

	updated, err := client.UpdateResource(ctx, created.ID, joplin.ResourcePatch{
		Title: joplin.Ptr("doc (final)"),
	})
	require.NoError(t, err)
	assert.Equal(t, "doc (final)", updated.Title)

	// Metadata update leaves the blob alone.
	data, err := client.ResourceData(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), data)
}

func TestUpdateResourceData(t *testing.T) {
	_, client := newTestServer(t)
	ctx := t.Context()

	created, err := client.CreateResource(ctx, joplin.NewResource{Title: "doc"},
		bytes.NewReader([]byte("v1")))
	require.NoError(t, err)

	updated, err := client.UpdateResourceData(ctx, created.ID, joplin.NewResource{Title: "doc"},
		bytes.NewReader([]byte("version two")))
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, int64(len("version two")), updated.Size)

	data, err := client.ResourceData(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("version two"), data)
}

func TestResourceNotFound(t *testing.T) {
	_, client := newTestServer(t)

	_, err := client.ResourceData(t.Context(), "0123456789abcdef0123456789abcdef")
	require.ErrorIs(t, err, joplin.ErrNotFound)

	var nf *joplin.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "resource", nf.Kind)
}

func TestCreateResourceRequiresTitle(t *testing.T) {
	srv, client := newTestServer(t)

	_, err := client.CreateResource(t.Context(), joplin.NewResource{},
		bytes.NewReader([]byte("data")))
	require.Error(t, err)
	assert.Empty(t, srv.Requests())
}
