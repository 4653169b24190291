package joplin

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"iter"
	"net/http"
)

// Tags returns all tags.
func (c *Client) Tags(ctx context.Context, opts *ListOptions) iter.Seq2[Tag, error] {
	return listItems[Tag](ctx, c, tagKind, "/tags", nil, opts)
}

// Tag fetches a tag by ID.
func (c *Client) Tag(ctx context.Context, id string, fields ...string) (*Tag, error) {
	return getItem[Tag](ctx, c, tagKind, id, fields)
}

// CreateTag creates a tag and returns the record with its server-assigned ID.
func (c *Client) CreateTag(ctx context.Context, t NewTag) (*Tag, error) {
	return createItem[Tag](ctx, c, tagKind, t)
}

// UpdateTag applies a partial update to a tag.
func (c *Client) UpdateTag(ctx context.Context, id string, patch TagPatch) (*Tag, error) {
	return updateItem[Tag](ctx, c, tagKind, id, patch)
}

// DeleteTag deletes a tag. Its note associations are removed with it.
func (c *Client) DeleteTag(ctx context.Context, id string) error {
	return deleteItem(ctx, c, tagKind, id, false)
}

// AddTagToNote attaches a tag to a note through the tag-note join resource.
// Attaching a tag that is already on the note succeeds without effect.
func (c *Client) AddTagToNote(ctx context.Context, tagID, noteID string) error {
	payload := struct {
		ID string `json:"id"`
	}{ID: noteID}

	data, err := json.Marshal(payload)
	if err != nil {
		return wrapError("addTagToNote", tagID, fmt.Errorf("encode payload: %w", err))
	}

	if _, err := c.do(ctx, http.MethodPost, "/tags/"+tagID+"/notes", nil, bytes.NewReader(data), "application/json"); err != nil {
		return wrapError("addTagToNote", tagID, tagKind.identify(err, tagID))
	}
	return nil
}

// RemoveTagFromNote detaches a tag from a note. The API reports 404 when the
// association does not exist; that surfaces as a NotFoundError.
func (c *Client) RemoveTagFromNote(ctx context.Context, tagID, noteID string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/tags/"+tagID+"/notes/"+noteID, nil, nil, ""); err != nil {
		return wrapError("removeTagFromNote", tagID, tagKind.identify(err, tagID))
	}
	return nil
}

// TagNotes returns the notes carrying a tag.
func (c *Client) TagNotes(ctx context.Context, tagID string, opts *ListOptions) iter.Seq2[Note, error] {
	return listItems[Note](ctx, c, noteKind, "/tags/"+tagID+"/notes", nil, opts)
}
