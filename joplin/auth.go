package joplin

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const pingResponse = "JoplinClipperServer"

// Ping checks that the Data API is reachable and is actually Joplin.
func (c *Client) Ping(ctx context.Context) error {
	body, err := c.do(ctx, http.MethodGet, "/ping", nil, nil, "")
	if err != nil {
		return wrapError("ping", "", err)
	}
	if strings.TrimSpace(string(body)) != pingResponse {
		return wrapError("ping", "", fmt.Errorf("unexpected response %q", string(body)))
	}
	return nil
}

// AuthStatus is the state of an interactive authorisation request.
type AuthStatus string

const (
	AuthWaiting  AuthStatus = "waiting"
	AuthAccepted AuthStatus = "accepted"
	AuthRejected AuthStatus = "rejected"
)

// RequestAuthToken starts the interactive authorisation flow. The Joplin
// application shows the user a grant dialog; the returned auth token tracks
// that pending request and is not an API token itself. Pass it to
// AwaitAuthToken to obtain the API token once the user responds.
func (c *Client) RequestAuthToken(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/auth", nil, nil, "")
	if err != nil {
		return "", wrapError("requestAuthToken", "", err)
	}

	var resp struct {
		AuthToken string `json:"auth_token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", wrapError("requestAuthToken", "", fmt.Errorf("parse response: %w", err))
	}
	if resp.AuthToken == "" {
		return "", wrapError("requestAuthToken", "", fmt.Errorf("empty auth token in response"))
	}
	return resp.AuthToken, nil
}

// AwaitAuthToken polls the auth check route until the user accepts or
// rejects the request started by RequestAuthToken, and returns the granted
// API token. Rejection surfaces as ErrAuthRejected. Cancellation is the
// caller's context; interval defaults to one second.
func (c *Client) AwaitAuthToken(ctx context.Context, authToken string, interval time.Duration) (string, error) {
	if interval <= 0 {
		interval = time.Second
	}

	q := url.Values{"auth_token": {authToken}}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		body, err := c.do(ctx, http.MethodGet, "/auth/check", q, nil, "")
		if err != nil {
			return "", wrapError("awaitAuthToken", "", err)
		}

		var resp struct {
			Status AuthStatus `json:"status"`
			Token  string     `json:"token"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", wrapError("awaitAuthToken", "", fmt.Errorf("parse response: %w", err))
		}

		switch resp.Status {
		case AuthAccepted:
			return resp.Token, nil
		case AuthRejected:
			return "", wrapError("awaitAuthToken", "", ErrAuthRejected)
		}

		select {
		case <-ctx.Done():
			return "", wrapError("awaitAuthToken", "", ctx.Err())
		case <-ticker.C:
		}
	}
}
