package joplin

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// itemKind describes one Data API item collection: its route, its name as
// used in errors and search type parameters, and its allowed fields.
type itemKind struct {
	name   string
	route  string
	fields fieldSet
}

var (
	noteKind     = itemKind{name: "note", route: "notes", fields: noteFields}
	folderKind   = itemKind{name: "folder", route: "folders", fields: folderFields}
	tagKind      = itemKind{name: "tag", route: "tags", fields: tagFields}
	resourceKind = itemKind{name: "resource", route: "resources", fields: resourceFields}
	revisionKind = itemKind{name: "revision", route: "revisions", fields: revisionFields}
	eventKind    = itemKind{name: "event", route: "events", fields: eventFields}
)

// identify fills in kind and ID on a bare NotFoundError produced by do().
func (k itemKind) identify(err error, id string) error {
	var nf *NotFoundError
	if errors.As(err, &nf) && nf.Kind == "" {
		nf.Kind = k.name
		nf.ID = id
	}
	return err
}

// getItem fetches a single item by ID. Requesting specific fields limits the
// response to those fields; otherwise the server's defaults apply.
func getItem[T any](ctx context.Context, c *Client, k itemKind, id string, fields []string) (*T, error) {
	op := "get" + titleCase(k.name)
	q := url.Values{}
	if len(fields) > 0 {
		joined, err := k.fields.join(k.name, fields)
		if err != nil {
			return nil, wrapError(op, id, err)
		}
		q.Set("fields", joined)
	}

	body, err := c.do(ctx, http.MethodGet, "/"+k.route+"/"+id, q, nil, "")
	if err != nil {
		return nil, wrapError(op, id, k.identify(err, id))
	}

	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, wrapError(op, id, fmt.Errorf("parse response: %w", err))
	}
	return &v, nil
}

// createItem posts a new item and decodes the created record, which carries
// the server-assigned identifier.
func createItem[T any](ctx context.Context, c *Client, k itemKind, payload any) (*T, error) {
	op := "create" + titleCase(k.name)
	if err := validate.Validate(payload); err != nil {
		return nil, wrapError(op, "", err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, wrapError(op, "", fmt.Errorf("encode payload: %w", err))
	}

	body, err := c.do(ctx, http.MethodPost, "/"+k.route, nil, bytes.NewReader(data), "application/json")
	if err != nil {
		return nil, wrapError(op, "", err)
	}

	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, wrapError(op, "", fmt.Errorf("parse response: %w", err))
	}
	return &v, nil
}

// updateItem sends a partial update; only the patch's set fields are
// transmitted.
func updateItem[T any](ctx context.Context, c *Client, k itemKind, id string, patch any) (*T, error) {
	op := "update" + titleCase(k.name)
	data, err := json.Marshal(patch)
	if err != nil {
		return nil, wrapError(op, id, fmt.Errorf("encode patch: %w", err))
	}

	body, err := c.do(ctx, http.MethodPut, "/"+k.route+"/"+id, nil, bytes.NewReader(data), "application/json")
	if err != nil {
		return nil, wrapError(op, id, k.identify(err, id))
	}

	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, wrapError(op, id, fmt.Errorf("parse response: %w", err))
	}
	return &v, nil
}

// deleteItem deletes by ID. The API reports 404 when the item is already
// gone; that surfaces as a NotFoundError rather than silent success.
// permanent skips the application's trash.
func deleteItem(ctx context.Context, c *Client, k itemKind, id string, permanent bool) error {
	op := "delete" + titleCase(k.name)
	var q url.Values
	if permanent {
		q = url.Values{"permanent": {"1"}}
	}
	if _, err := c.do(ctx, http.MethodDelete, "/"+k.route+"/"+id, q, nil, ""); err != nil {
		return wrapError(op, id, k.identify(err, id))
	}
	return nil
}

// titleCase upper-cases the first byte of an ASCII item name.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
