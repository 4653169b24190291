package joplin

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"iter"
	"mime/multipart"
	"net/http"
)

// Resources returns all resources.
func (c *Client) Resources(ctx context.Context, opts *ListOptions) iter.Seq2[Resource, error] {
	return listItems[Resource](ctx, c, resourceKind, "/resources", nil, opts)
}

// Resource fetches resource metadata by ID.
func (c *Client) Resource(ctx context.Context, id string, fields ...string) (*Resource, error) {
	return getItem[Resource](ctx, c, resourceKind, id, fields)
}

// CreateResource uploads a resource. The Data API takes a multipart request:
// the blob in a "data" file part and the metadata in a "props" part.
func (c *Client) CreateResource(ctx context.Context, r NewResource, data io.Reader) (*Resource, error) {
	if err := validate.Validate(r); err != nil {
		return nil, wrapError("createResource", "", err)
	}

	body, contentType, err := resourceForm(r, data)
	if err != nil {
		return nil, wrapError("createResource", "", err)
	}

	respBody, err := c.do(ctx, http.MethodPost, "/resources", nil, body, contentType)
	if err != nil {
		return nil, wrapError("createResource", "", err)
	}

	var res Resource
	if err := json.Unmarshal(respBody, &res); err != nil {
		return nil, wrapError("createResource", "", fmt.Errorf("parse response: %w", err))
	}
	return &res, nil
}

// UpdateResource applies a partial metadata update to a resource.
func (c *Client) UpdateResource(ctx context.Context, id string, patch ResourcePatch) (*Resource, error) {
	return updateItem[Resource](ctx, c, resourceKind, id, patch)
}

// UpdateResourceData replaces a resource's blob, keeping its identity.
func (c *Client) UpdateResourceData(ctx context.Context, id string, r NewResource, data io.Reader) (*Resource, error) {
	body, contentType, err := resourceForm(r, data)
	if err != nil {
		return nil, wrapError("updateResourceData", id, err)
	}

	respBody, err := c.do(ctx, http.MethodPut, "/resources/"+id, nil, body, contentType)
	if err != nil {
		return nil, wrapError("updateResourceData", id, resourceKind.identify(err, id))
	}

	var res Resource
	if err := json.Unmarshal(respBody, &res); err != nil {
		return nil, wrapError("updateResourceData", id, fmt.Errorf("parse response: %w", err))
	}
	return &res, nil
}

// ResourceData downloads a resource's blob.
func (c *Client) ResourceData(ctx context.Context, id string) ([]byte, error) {
	data, err := c.do(ctx, http.MethodGet, "/resources/"+id+"/file", nil, nil, "")
	if err != nil {
		return nil, wrapError("getResourceData", id, resourceKind.identify(err, id))
	}
	return data, nil
}

// DeleteResource deletes a resource and its blob.
func (c *Client) DeleteResource(ctx context.Context, id string) error {
	return deleteItem(ctx, c, resourceKind, id, false)
}

// resourceForm builds the multipart body for resource upload routes.
func resourceForm(r NewResource, data io.Reader) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	filename := r.Filename
	if filename == "" {
		filename = r.Title
	}
	fw, err := mw.CreateFormFile("data", filename)
	if err != nil {
		return nil, "", fmt.Errorf("create data part: %w", err)
	}
	if _, err := io.Copy(fw, data); err != nil {
		return nil, "", fmt.Errorf("copy resource data: %w", err)
	}

	props, err := json.Marshal(r)
	if err != nil {
		return nil, "", fmt.Errorf("encode props: %w", err)
	}
	if err := mw.WriteField("props", string(props)); err != nil {
		return nil, "", fmt.Errorf("write props part: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize form: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
