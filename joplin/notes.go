package joplin

import (
	"context"
	"iter"
)

// Notes returns all notes, transparently following pagination.
func (c *Client) Notes(ctx context.Context, opts *ListOptions) iter.Seq2[Note, error] {
	return listItems[Note](ctx, c, noteKind, "/notes", nil, opts)
}

// Note fetches a note by ID. Requesting specific fields limits the response
// to those fields.
func (c *Client) Note(ctx context.Context, id string, fields ...string) (*Note, error) {
	return getItem[Note](ctx, c, noteKind, id, fields)
}

// CreateNote creates a note and returns the record with its server-assigned ID.
func (c *Client) CreateNote(ctx context.Context, n NewNote) (*Note, error) {
	return createItem[Note](ctx, c, noteKind, n)
}

// UpdateNote applies a partial update to a note.
func (c *Client) UpdateNote(ctx context.Context, id string, patch NotePatch) (*Note, error) {
	return updateItem[Note](ctx, c, noteKind, id, patch)
}

// DeleteNote moves a note to the application's trash.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return deleteItem(ctx, c, noteKind, id, false)
}

// DeleteNotePermanent deletes a note outright, bypassing the trash.
func (c *Client) DeleteNotePermanent(ctx context.Context, id string) error {
	return deleteItem(ctx, c, noteKind, id, true)
}

// NoteTags returns the tags attached to a note.
func (c *Client) NoteTags(ctx context.Context, noteID string, opts *ListOptions) iter.Seq2[Tag, error] {
	return listItems[Tag](ctx, c, tagKind, "/notes/"+noteID+"/tags", nil, opts)
}
