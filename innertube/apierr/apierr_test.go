package apierr_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xeptore/innertune/innertube/apierr"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "network", err: &apierr.NetworkError{Err: errors.New("connection refused")}, expected: true},
		{name: "wrapped network", err: fmt.Errorf("search: %w", &apierr.NetworkError{Err: errors.New("reset")}), expected: true},
		{name: "deadline", err: context.DeadlineExceeded, expected: true},
		{name: "canceled", err: context.Canceled, expected: false},
		{name: "500", err: &apierr.HTTPStatusError{Code: 500}, expected: true},
		{name: "503", err: &apierr.HTTPStatusError{Code: 503}, expected: true},
		{name: "429", err: &apierr.HTTPStatusError{Code: 429}, expected: true},
		{name: "403", err: &apierr.HTTPStatusError{Code: 403}, expected: false},
		{name: "404", err: &apierr.HTTPStatusError{Code: 404}, expected: false},
		{name: "parse", err: &apierr.ParseError{Shape: "search", Missing: "contents"}, expected: false},
		{name: "invalid", err: &apierr.InvalidResponseError{Reason: "LOGIN_REQUIRED"}, expected: false},
		{
			name: "exhausted",
			err: &apierr.StreamExhaustedError{
				VideoID:  "x",
				Attempts: []apierr.Attempt{{Persona: "IOS", Err: &apierr.NetworkError{Err: errors.New("reset")}}},
			},
			expected: false,
		},
		{name: "unclassified", err: errors.New("boom"), expected: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, apierr.IsRetryable(tc.err))
		})
	}
}

func TestFromTransport(t *testing.T) {
	t.Parallel()

	assert.NoError(t, apierr.FromTransport(nil))
	assert.ErrorIs(t, apierr.FromTransport(context.Canceled), context.Canceled)
	assert.False(t, apierr.IsRetryable(apierr.FromTransport(fmt.Errorf("do: %w", context.Canceled))))

	var netErr *apierr.NetworkError
	err := apierr.FromTransport(timeoutErr{})
	assert.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout)

	err = apierr.FromTransport(errors.New("no such host"))
	assert.ErrorAs(t, err, &netErr)
	assert.False(t, netErr.Timeout)
	assert.True(t, apierr.IsRetryable(err))
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "connection", err: &apierr.NetworkError{Err: errors.New("refused")}, expected: apierr.MsgConnection},
		{name: "timeout", err: &apierr.NetworkError{Err: errors.New("slow"), Timeout: true}, expected: apierr.MsgTimeout},
		{name: "rate limited", err: &apierr.HTTPStatusError{Code: 429}, expected: apierr.MsgRateLimited},
		{name: "server", err: &apierr.HTTPStatusError{Code: 502}, expected: apierr.MsgServer},
		{name: "not found", err: &apierr.HTTPStatusError{Code: 404}, expected: apierr.MsgNotFound},
		{name: "forbidden", err: &apierr.HTTPStatusError{Code: 403}, expected: apierr.MsgGeneric},
		{name: "exhausted", err: &apierr.StreamExhaustedError{VideoID: "x"}, expected: apierr.MsgUnplayable},
		{name: "parse", err: &apierr.ParseError{Shape: "home", Missing: "contents"}, expected: apierr.MsgGeneric},
		{name: "unclassified", err: errors.New("boom"), expected: apierr.MsgGeneric},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, apierr.UserMessage(tc.err))
		})
	}
}

func TestStreamExhaustedError(t *testing.T) {
	t.Parallel()

	errStatus := &apierr.HTTPStatusError{Code: 403}
	err := &apierr.StreamExhaustedError{
		VideoID: "dQw4w9WgXcQ",
		Attempts: []apierr.Attempt{
			{Persona: "ANDROID_VR", Err: errStatus},
			{Persona: "IOS", Err: &apierr.InvalidResponseError{Reason: "no audio format"}},
		},
	}

	assert.Equal(t, []string{"ANDROID_VR", "IOS"}, err.Personas())
	assert.Contains(t, err.Error(), "ANDROID_VR")
	assert.Contains(t, err.Error(), "IOS")
	assert.ErrorIs(t, err, errStatus)
}
