package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// RefreshHTTPTimeout bounds a single credential refresh round trip.
	RefreshHTTPTimeout = 15 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 30 * time.Second
)

// Credential lifecycle.
const (
	// TokenExpiryMargin is subtracted from a credential's expiry when
	// deciding whether it still authorizes a request; credentials inside
	// the margin are refreshed before use.
	TokenExpiryMargin = 30 * time.Second

	// DefaultTokenLifetime is assumed when a token response carries no
	// expires_in field.
	DefaultTokenLifetime = 10 * time.Minute
)

// Caching and deduplication.
const (
	// DefaultCacheSize bounds the in-memory response cache.
	DefaultCacheSize = 1000

	// DefaultCacheTTL bounds response-cache entry freshness.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultDedupTTL bounds how long a committed result suppresses an
	// identical follow-up fetch.
	DefaultDedupTTL = 30 * time.Second
)

// Pagination.
const (
	// DefaultPerPage is the page size requested when none is given.
	DefaultPerPage = 50

	// MaxPerPage is the largest page size the engine will request.
	MaxPerPage = 5000
)
