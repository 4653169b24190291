package joplin

import (
	"context"
	"iter"
	"strconv"
)

// Events returns the application's change log. An automation layer can poll
// this to react to edits made in the Joplin UI.
func (c *Client) Events(ctx context.Context, opts *ListOptions) iter.Seq2[Event, error] {
	return listItems[Event](ctx, c, eventKind, "/events", nil, opts)
}

// Event fetches a single change-log record by ID.
func (c *Client) Event(ctx context.Context, id int64, fields ...string) (*Event, error) {
	return getItem[Event](ctx, c, eventKind, strconv.FormatInt(id, 10), fields)
}
