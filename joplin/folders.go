package joplin

import (
	"context"
	"iter"
)

// Folders returns all folders. The server decides ordering and represents
// nesting through ParentID only.
func (c *Client) Folders(ctx context.Context, opts *ListOptions) iter.Seq2[Folder, error] {
	return listItems[Folder](ctx, c, folderKind, "/folders", nil, opts)
}

// Folder fetches a folder by ID.
func (c *Client) Folder(ctx context.Context, id string, fields ...string) (*Folder, error) {
	return getItem[Folder](ctx, c, folderKind, id, fields)
}

// CreateFolder creates a folder and returns the record with its
// server-assigned ID.
func (c *Client) CreateFolder(ctx context.Context, f NewFolder) (*Folder, error) {
	return createItem[Folder](ctx, c, folderKind, f)
}

// UpdateFolder applies a partial update to a folder.
func (c *Client) UpdateFolder(ctx context.Context, id string, patch FolderPatch) (*Folder, error) {
	return updateItem[Folder](ctx, c, folderKind, id, patch)
}

// DeleteFolder moves a folder and its notes to the trash.
func (c *Client) DeleteFolder(ctx context.Context, id string) error {
	return deleteItem(ctx, c, folderKind, id, false)
}

// DeleteFolderPermanent deletes a folder outright, bypassing the trash.
func (c *Client) DeleteFolderPermanent(ctx context.Context, id string) error {
	return deleteItem(ctx, c, folderKind, id, true)
}

// FolderNotes returns the notes directly inside a folder.
func (c *Client) FolderNotes(ctx context.Context, folderID string, opts *ListOptions) iter.Seq2[Note, error] {
	return listItems[Note](ctx, c, noteKind, "/folders/"+folderID+"/notes", nil, opts)
}
