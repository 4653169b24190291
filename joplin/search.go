package joplin

import (
	"context"
	"iter"
	"net/url"
)

// Search uses the application's search engine; see the Joplin documentation
// for the query syntax. Searches default to notes, so other item kinds carry
// an explicit type parameter, per the Data API convention.

// SearchNotes searches notes matching query.
func (c *Client) SearchNotes(ctx context.Context, query string, opts *ListOptions) iter.Seq2[Note, error] {
	return listItems[Note](ctx, c, noteKind, "/search", url.Values{"query": {query}}, opts)
}

// SearchFolders searches folders matching query.
func (c *Client) SearchFolders(ctx context.Context, query string, opts *ListOptions) iter.Seq2[Folder, error] {
	return listItems[Folder](ctx, c, folderKind, "/search", searchQuery(query, folderKind), opts)
}

// SearchTags searches tags matching query.
func (c *Client) SearchTags(ctx context.Context, query string, opts *ListOptions) iter.Seq2[Tag, error] {
	return listItems[Tag](ctx, c, tagKind, "/search", searchQuery(query, tagKind), opts)
}

func searchQuery(query string, k itemKind) url.Values {
	return url.Values{
		"query": {query},
		"type":  {k.name},
	}
}
