package joplin

import (
	"context"
	"iter"
)

// Revisions and events are read-only from this layer: the application writes
// them, clients only observe.

// Revisions returns all item revisions.
func (c *Client) Revisions(ctx context.Context, opts *ListOptions) iter.Seq2[Revision, error] {
	return listItems[Revision](ctx, c, revisionKind, "/revisions", nil, opts)
}

// Revision fetches a revision by ID.
func (c *Client) Revision(ctx context.Context, id string, fields ...string) (*Revision, error) {
	return getItem[Revision](ctx, c, revisionKind, id, fields)
}
