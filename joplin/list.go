package joplin

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"
)

// ListOptions controls list and search traversals. A nil *ListOptions is
// valid and means server defaults with the client's page size.
type ListOptions struct {
	// Fields selects which item fields the server should include.
	// Validated against the item kind's field set before any request.
	Fields []string

	// OrderBy sorts server-side by the named field.
	OrderBy string

	// OrderDir is OrderAsc or OrderDesc. Only meaningful with OrderBy.
	OrderDir Order

	// PageSize overrides the client's page size for this traversal.
	PageSize int
}

// page is the Data API's list envelope.
type page[T any] struct {
	Items   []T  `json:"items"`
	HasMore bool `json:"has_more"`
}

// listItems returns a lazy sequence over every item behind a paginated list
// route. Pages are fetched on demand; the sequence is finite and restartable,
// with each fresh traversal re-issuing the underlying requests from page one.
// Item order is whatever the server returns.
//
// On failure the sequence yields the zero item with a non-nil error and
// stops; callers must check the error of every pair.
func listItems[T any](ctx context.Context, c *Client, k itemKind, path string, base url.Values, opts *ListOptions) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		q, err := listQuery(c, k, base, opts)
		if err != nil {
			yield(zero, wrapError("list"+titleCase(k.name)+"s", "", err))
			return
		}

		for pageNum := 1; ; pageNum++ {
			q.Set("page", strconv.Itoa(pageNum))

			body, err := c.do(ctx, http.MethodGet, path, q, nil, "")
			if err != nil {
				yield(zero, wrapError("list"+titleCase(k.name)+"s", "", err))
				return
			}

			var p page[T]
			if err := json.Unmarshal(body, &p); err != nil {
				yield(zero, wrapError("list"+titleCase(k.name)+"s", "", fmt.Errorf("parse page %d: %w", pageNum, err)))
				return
			}

			for i := range p.Items {
				if !yield(p.Items[i], nil) {
					return
				}
			}

			if !p.HasMore {
				return
			}
		}
	}
}

// listQuery builds the fixed query parameters for one traversal.
func listQuery(c *Client, k itemKind, base url.Values, opts *ListOptions) (url.Values, error) {
	q := url.Values{}
	for key, vs := range base {
		q[key] = vs
	}

	limit := c.pageSize
	if opts != nil && opts.PageSize > 0 {
		limit = opts.PageSize
	}
	q.Set("limit", strconv.Itoa(limit))

	if opts == nil {
		return q, nil
	}

	if len(opts.Fields) > 0 {
		joined, err := k.fields.join(k.name, opts.Fields)
		if err != nil {
			return nil, err
		}
		q.Set("fields", joined)
	}
	if opts.OrderBy != "" {
		if !k.fields.has(opts.OrderBy) {
			return nil, fmt.Errorf("%q is not a valid %s field to order by", opts.OrderBy, k.name)
		}
		q.Set("order_by", opts.OrderBy)
	}
	if opts.OrderDir != "" {
		if opts.OrderDir != OrderAsc && opts.OrderDir != OrderDesc {
			return nil, fmt.Errorf("order direction must be %s or %s, not %q", OrderAsc, OrderDesc, opts.OrderDir)
		}
		q.Set("order_dir", string(opts.OrderDir))
	}

	return q, nil
}

// Collect drains a list sequence into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
