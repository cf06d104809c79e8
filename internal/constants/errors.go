package constants

import "errors"

// Configuration errors.
var (
	ErrNoEndpointConfigured = errors.New("no endpoint configured, use 'fetchkit config set endpoint <url>' to set one")
	ErrNoRefreshToken       = errors.New("no refresh token available, please run 'fetchkit login' again")
	ErrProfileNotFound      = errors.New("profile not found")
)

// Credential errors.
var (
	ErrTokenRequestFailed = errors.New("token request failed")
	ErrEmptyAccessToken   = errors.New("token response carried no access token")
	ErrNotAuthenticated   = errors.New("not authenticated, run 'fetchkit login' first")
)

// Validation errors.
var (
	ErrInvalidPerPage  = errors.New("per-page must be between 1 and 5000")
	ErrNameRequired    = errors.New("resource name is required")
	ErrPathRequired    = errors.New("resource path is required")
	ErrInvalidEnabled  = errors.New("enabled flag must be 'true' or 'false'")
	ErrNotRegularFile  = errors.New("path is not a regular file")
	ErrOutputUnknown   = errors.New("unknown output format")
	ErrTraversalInPath = errors.New("directory traversal detected in file path")
)
