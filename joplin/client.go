// Package joplin provides a client for the Joplin Data API, the local REST
// interface exposed by the Joplin desktop application's Web Clipper service.
//
// The client is a thin, stateless mapping from typed method calls to HTTP
// requests: it holds nothing beyond its configuration, so every read reflects
// the application's state at call time. List operations transparently follow
// the API's page-based pagination and are exposed as restartable iterators.
//
// Usage:
//
//	client, err := joplin.New(joplin.Options{Token: token})
//	if err != nil {
//		return err
//	}
//	note, err := client.CreateNote(ctx, joplin.NewNote{Title: "Hello"})
package joplin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/brainstemapp/brainstem/internal/validation"
)

const (
	// DefaultBaseURL is the Data API endpoint the Joplin desktop
	// application listens on by default.
	DefaultBaseURL = "http://localhost:41184"

	// DefaultPageSize is the per-request item limit for list calls.
	DefaultPageSize = 100

	defaultTimeout = 30 * time.Second

	// Burst allowance when client-side rate limiting is enabled.
	rateBurst = 3
)

// Options configures a Client. The zero value is usable for a local Joplin
// instance once Token is set.
type Options struct {
	// BaseURL is the root of the Data API endpoint.
	// Defaults to DefaultBaseURL.
	BaseURL string `json:"base_url" validate:"omitempty,url"`

	// Token is the API token issued by the Joplin application. It is
	// injected into every request. Required for all routes except Ping
	// and the interactive auth flow.
	Token string `json:"token"`

	// PageSize is the number of items requested per page in list calls.
	// Defaults to DefaultPageSize, which is also the API's maximum.
	PageSize int `json:"page_size" validate:"omitempty,gt=0,lte=100"`

	// Timeout applies per request. Defaults to 30s. Ignored when
	// HTTPClient is supplied.
	Timeout time.Duration

	// RequestsPerSecond enables client-side rate limiting when positive.
	// The Data API is served by a desktop application; pacing requests
	// keeps its UI responsive during bulk traversals.
	RequestsPerSecond float64 `validate:"omitempty,gt=0"`

	// Logger receives per-request debug logs. A nil logger discards.
	Logger *slog.Logger

	// HTTPClient overrides the transport, e.g. for tests.
	HTTPClient *http.Client
}

var validate = validation.New()

// Client issues authenticated requests against one Joplin Data API endpoint.
// Its configuration is immutable; Client is safe for concurrent use.
type Client struct {
	baseURL  string
	token    string
	pageSize int
	http     *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// New creates a Client from opts.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.PageSize == 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if err := validate.Validate(opts); err != nil {
		return nil, fmt.Errorf("joplin: invalid options: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), rateBurst)
	}

	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		token:    opts.Token,
		pageSize: opts.PageSize,
		http:     httpClient,
		limiter:  limiter,
		logger:   logger,
	}, nil
}

// WithToken returns a copy of the client authenticating with token.
// Useful after completing the interactive auth flow with a token-less client.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// BaseURL returns the configured endpoint root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do executes one HTTP request against the Data API and classifies failures.
// The API token is injected as a query parameter, per the API's convention.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	q := url.Values{}
	for k, vs := range query {
		q[k] = vs
	}
	if c.token != "" {
		q.Set("token", c.token)
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debug("joplin request",
		"method", method,
		"path", path,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &RequestError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	return data, nil
}
