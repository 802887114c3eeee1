// Package apierr classifies every failure the client can surface.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// NetworkError covers transport level failures: no connection, connection
// lost, unreachable host and timeouts.
type NetworkError struct {
	Err     error
	Timeout bool
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return "network timeout: " + e.Err.Error()
	}

	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

type HTTPStatusError struct {
	Code int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected http status %d %s", e.Code, http.StatusText(e.Code))
}

// ParseError means a response matched none of the known shapes.
type ParseError struct {
	Shape   string
	Missing string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: missing %s", e.Shape, e.Missing)
}

// InvalidResponseError means a response was well formed but semantically
// unusable.
type InvalidResponseError struct {
	Reason string
}

func (e *InvalidResponseError) Error() string {
	return "invalid response: " + e.Reason
}

type Attempt struct {
	Persona string
	Err     error
}

// StreamExhaustedError is returned once every persona failed to yield a
// playable stream.
type StreamExhaustedError struct {
	VideoID  string
	Attempts []Attempt
}

func (e *StreamExhaustedError) Personas() []string {
	out := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		out[i] = a.Persona
	}

	return out
}

func (e *StreamExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return "no playable stream for " + e.VideoID + ": no persona could be tried"
	}

	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Persona + ": " + a.Err.Error()
	}

	return fmt.Sprintf(
		"no playable stream for %s after trying %s (%s)",
		e.VideoID,
		strings.Join(e.Personas(), ", "),
		strings.Join(parts, "; "),
	)
}

func (e *StreamExhaustedError) Unwrap() []error {
	out := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		out[i] = a.Err
	}

	return out
}

// FromTransport wraps an error returned by http.Client.Do. Cancellation by
// the caller is returned unchanged.
func FromTransport(err error) error {
	if nil == err {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	var netErr net.Error
	timeout := errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		(errors.As(err, &netErr) && netErr.Timeout())

	return &NetworkError{Err: err, Timeout: timeout}
}

// IsRetryable reports whether repeating the failed operation may succeed.
func IsRetryable(err error) bool {
	if nil == err || errors.Is(err, context.Canceled) {
		return false
	}

	// Exhaustion is terminal whatever its individual attempts failed with.
	var exhausted *StreamExhaustedError
	if errors.As(err, &exhausted) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}

	return false
}

const (
	MsgConnection  = "Check your internet connection and try again"
	MsgTimeout     = "The request timed out, please try again"
	MsgRateLimited = "Too many requests, please wait a moment"
	MsgServer      = "The service is having trouble right now, please try again later"
	MsgNotFound    = "This item is no longer available"
	MsgUnplayable  = "Unable to play this item"
	MsgGeneric     = "Something went wrong, please try again"
)

// UserMessage maps any error to one short, non-technical message.
func UserMessage(err error) string {
	var (
		exhausted *StreamExhaustedError
		netErr    *NetworkError
		statusErr *HTTPStatusError
		invalid   *InvalidResponseError
	)

	switch {
	case nil == err:
		return ""
	case errors.As(err, &exhausted):
		return MsgUnplayable
	case errors.Is(err, context.DeadlineExceeded):
		return MsgTimeout
	case errors.As(err, &netErr):
		if netErr.Timeout {
			return MsgTimeout
		}
		return MsgConnection
	case errors.As(err, &statusErr):
		switch code := statusErr.Code; {
		case code == http.StatusTooManyRequests:
			return MsgRateLimited
		case code == http.StatusNotFound || code == http.StatusGone:
			return MsgNotFound
		case code >= 500:
			return MsgServer
		default:
			return MsgGeneric
		}
	case errors.As(err, &invalid):
		return MsgUnplayable
	default:
		return MsgGeneric
	}
}
