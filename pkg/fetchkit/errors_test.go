package fetchkit_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetchkit-io/fetchkit/pkg/fetchkit"
)

func TestURLBuildError(t *testing.T) {
	t.Parallel()

	inner := errors.New("parse failed")
	err := &fetchkit.URLBuildError{Base: "bad url", Path: "v3/apps", Err: inner}

	assert.Equal(t, `building URL from base "bad url" and path "v3/apps": parse failed`, err.Error())
	require.ErrorIs(t, err, inner)
}

func TestTransportError(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection refused")
	err := &fetchkit.TransportError{Err: inner}

	assert.Equal(t, "transport error: connection refused", err.Error())
	require.ErrorIs(t, err, inner)
	assert.True(t, fetchkit.IsTransport(err))
	assert.True(t, fetchkit.IsTransport(fmt.Errorf("sending request: %w", err)))
	assert.False(t, fetchkit.IsTransport(inner))
}

func TestHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("with body", func(t *testing.T) {
		t.Parallel()

		err := &fetchkit.HTTPError{StatusCode: 422, Body: []byte(`{"detail":"name taken"}`)}
		assert.Equal(t, `HTTP 422: {"detail":"name taken"}`, err.Error())
	})

	t.Run("without body", func(t *testing.T) {
		t.Parallel()

		err := &fetchkit.HTTPError{StatusCode: 500}
		assert.Equal(t, "HTTP 500", err.Error())
	})
}

func TestAuthRefreshError(t *testing.T) {
	t.Parallel()

	inner := errors.New("invalid_grant")
	err := &fetchkit.AuthRefreshError{Err: inner}

	assert.Equal(t, "credential refresh failed: invalid_grant", err.Error())
	require.ErrorIs(t, err, inner)
	assert.True(t, fetchkit.IsRefreshFailure(err))
	assert.True(t, fetchkit.IsRefreshFailure(fmt.Errorf("fetching: %w", err)))
	assert.False(t, fetchkit.IsRefreshFailure(inner))
}

func TestDecodeError(t *testing.T) {
	t.Parallel()

	inner := errors.New("unexpected end of JSON input")
	err := &fetchkit.DecodeError{Err: inner}

	assert.Equal(t, "decoding response: unexpected end of JSON input", err.Error())
	require.ErrorIs(t, err, inner)
}

//nolint:funlen // Test functions can be longer for detailed testing
func TestStatusHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		authFailure bool
		notFound    bool
		forbidden   bool
	}{
		{
			name:        "unauthorized",
			err:         &fetchkit.HTTPError{StatusCode: 401},
			authFailure: true,
		},
		{
			name:     "not found",
			err:      &fetchkit.HTTPError{StatusCode: 404},
			notFound: true,
		},
		{
			name:      "forbidden",
			err:       &fetchkit.HTTPError{StatusCode: 403},
			forbidden: true,
		},
		{
			name: "server error",
			err:  &fetchkit.HTTPError{StatusCode: 500},
		},
		{
			name:     "wrapped not found",
			err:      fmt.Errorf("fetching resource: %w", &fetchkit.HTTPError{StatusCode: 404}),
			notFound: true,
		},
		{
			name: "other error type",
			err:  errors.New("some error"),
		},
		{
			name: "nil error",
			err:  nil,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.authFailure, fetchkit.IsAuthFailure(tt.err))
			assert.Equal(t, tt.notFound, fetchkit.IsNotFound(tt.err))
			assert.Equal(t, tt.forbidden, fetchkit.IsForbidden(tt.err))
		})
	}
}
