package joplin

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound matches any NotFoundError.
	ErrNotFound = errors.New("joplin: not found")
	// ErrConnection matches any ConnectionError.
	ErrConnection = errors.New("joplin: connection failed")
	// ErrAuthRejected is returned when the user denies an interactive
	// authorisation request in the Joplin application.
	ErrAuthRejected = errors.New("joplin: authorisation rejected by user")
)

// NotFoundError reports that the requested item does not exist server-side
// (HTTP 404 from the Data API).
type NotFoundError struct {
	Kind string // item kind, e.g. "note"
	ID   string
}

func (e *NotFoundError) Error() string {
	switch {
	case e.Kind == "" && e.ID == "":
		return "joplin: not found"
	case e.ID == "":
		return fmt.Sprintf("joplin: %s not found", e.Kind)
	default:
		return fmt.Sprintf("joplin: %s %s not found", e.Kind, e.ID)
	}
}

// Is reports a match for the ErrNotFound sentinel.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// RequestError reports a non-2xx response from the Data API other than 404.
// It carries the status code and response body for diagnostics.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("joplin: request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("joplin: request failed with status %d: %s", e.StatusCode, e.Body)
}

// ConnectionError reports a transport-level failure: unreachable endpoint,
// timeout, or a response body that could not be read.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "joplin: connection failed: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is reports a match for the ErrConnection sentinel.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // operation, e.g. "getNote"
	ID  string // item ID, if applicable
	Err error
}

func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("joplin %s [%s]: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("joplin %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with operation context.
func wrapError(op, id string, err error) error {
	return &Error{Op: op, ID: id, Err: err}
}
