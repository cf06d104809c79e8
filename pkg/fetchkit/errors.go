package fetchkit

import (
	"errors"
	"fmt"
	"net/http"
)

// Static errors that can be wrapped with context.
var (
	ErrMissingBaseURL    = errors.New("no base URL configured")
	ErrMissingLocalData  = errors.New("operation requires local resource data that is absent")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrNotReadable       = errors.New("resource does not support read")
	ErrNotListable       = errors.New("resource does not support list")
	ErrNotCreatable      = errors.New("resource does not support create")
	ErrNotUpdatable      = errors.New("resource does not support update")
	ErrNotDeletable      = errors.New("resource does not support delete")
	ErrNoMorePages       = errors.New("no more pages")
	ErrSuperseded        = errors.New("request superseded by a newer operation")
	ErrBaseURLRequired   = errors.New("base URL is required")
	ErrConfigRequired    = errors.New("config is required")
	ErrUnknownConfigKey  = errors.New("unknown configuration key")
	ErrNoCredentials     = errors.New("no valid credentials available")
	ErrRefreshInProgress = errors.New("credential refresh already in progress")
)

// URLBuildError indicates that an endpoint could not be resolved into a
// concrete request URL.
type URLBuildError struct {
	Base string
	Path string
	Err  error
}

func (e *URLBuildError) Error() string {
	return fmt.Sprintf("building URL from base %q and path %q: %v", e.Base, e.Path, e.Err)
}

func (e *URLBuildError) Unwrap() error {
	return e.Err
}

// TransportError indicates a network-level failure (connection, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError represents a non-2xx response from the API.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}

	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, string(e.Body))
}

// AuthRefreshError indicates that a credential refresh attempt failed.
// It is terminal for every request waiting on that refresh.
type AuthRefreshError struct {
	Err error
}

func (e *AuthRefreshError) Error() string {
	return fmt.Sprintf("credential refresh failed: %v", e.Err)
}

func (e *AuthRefreshError) Unwrap() error {
	return e.Err
}

// DecodeError indicates that a response body did not match the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsAuthFailure checks whether the error indicates an invalid credential
// (as opposed to an authorization/permission mismatch).
func IsAuthFailure(err error) bool {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusUnauthorized
	}

	return false
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusNotFound
	}

	return false
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusForbidden
	}

	return false
}

// IsTransport checks if the error is a network-level failure.
func IsTransport(err error) bool {
	transportErr := &TransportError{}

	return errors.As(err, &transportErr)
}

// IsRefreshFailure checks if the error came from a failed credential refresh.
func IsRefreshFailure(err error) bool {
	refreshErr := &AuthRefreshError{}

	return errors.As(err, &refreshErr)
}
