package joplin

import (
	"fmt"
	"strings"
)

// Order is a server-side sort direction for list calls.
type Order string

const (
	OrderAsc  Order = "ASC"
	OrderDesc Order = "DESC"
)

// fieldSet is the set of fields an item kind may carry, per the Data API
// reference. List calls validate requested fields against it before any
// request is issued.
type fieldSet map[string]struct{}

func newFieldSet(names ...string) fieldSet {
	fs := make(fieldSet, len(names))
	for _, n := range names {
		fs[n] = struct{}{}
	}
	return fs
}

// join validates names and concatenates them into the comma-separated form
// the fields query parameter expects.
func (fs fieldSet) join(kind string, names []string) (string, error) {
	for _, n := range names {
		if _, ok := fs[n]; !ok {
			return "", fmt.Errorf("%q is not a valid %s field", n, kind)
		}
	}
	return strings.Join(names, ","), nil
}

func (fs fieldSet) has(name string) bool {
	_, ok := fs[name]
	return ok
}

var noteFields = newFieldSet(
	"id", "parent_id", "title", "body", "created_time", "updated_time",
	"is_conflict", "latitude", "longitude", "altitude", "author",
	"source_url", "is_todo", "todo_due", "todo_completed", "source",
	"source_application", "application_data", "order", "user_created_time",
	"user_updated_time", "encryption_cipher_text", "encryption_applied",
	"markup_language", "is_shared", "share_id", "conflict_original_id",
	"master_key_id", "user_data", "deleted_time", "body_html", "base_url",
	"image_data_url", "crop_rect",
)

var folderFields = newFieldSet(
	"id", "title", "created_time", "updated_time", "user_created_time",
	"user_updated_time", "encryption_cipher_text", "encryption_applied",
	"parent_id", "is_shared", "share_id", "master_key_id", "icon",
	"user_data", "deleted_time",
)

var tagFields = newFieldSet(
	"id", "title", "created_time", "updated_time", "user_created_time",
	"user_updated_time", "encryption_cipher_text", "encryption_applied",
	"is_shared", "parent_id", "user_data",
)

var resourceFields = newFieldSet(
	"id", "title", "mime", "filename", "created_time", "updated_time",
	"user_created_time", "user_updated_time", "file_extension",
	"encryption_cipher_text", "encryption_applied",
	"encryption_blob_encrypted", "size", "is_shared", "share_id",
	"master_key_id", "user_data", "blob_updated_time", "ocr_text",
	"ocr_details", "ocr_status", "ocr_error",
)

var revisionFields = newFieldSet(
	"id", "parent_id", "item_type", "item_id", "item_updated_time",
	"title_diff", "body_diff", "metadata_diff", "encryption_cipher_text",
	"encryption_applied", "updated_time", "created_time",
)

var eventFields = newFieldSet(
	"id", "item_type", "item_id", "type", "created_time", "source",
	"before_change_item",
)
