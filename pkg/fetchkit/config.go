package fetchkit

import "time"

// Logger is the logging interface used throughout the engine.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config describes how to build an engine client.
//
// # Authentication precedence
//
//  1. AccessToken: used directly as a static Bearer token.
//  2. RefreshToken: the coordinator renews access tokens against TokenURL.
//  3. ClientID/ClientSecret: OAuth2 client_credentials grant.
//  4. Username/Password: OAuth2 password grant.
//  5. No credentials: requests are sent without authentication.
//
// Credential refresh always runs on its own HTTP channel, outside the
// interceptor chain, so a refresh can never be intercepted recursively.
type Config struct {
	// BaseURL for the API (e.g., "https://api.example.com"). Normalized by
	// trimming a trailing slash and adding "https://" when no scheme is
	// present.
	BaseURL string

	// Authentication options (provide one).
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	// TokenURL is the full OAuth2 token endpoint; required whenever a
	// refreshable grant is configured.
	TokenURL string

	// Retry tuning for transient transport failures (>=500, 429, connection
	// errors). Zero values take the defaults.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// DedupTTL bounds the freshness of deduplicated results. Zero takes the
	// default.
	DedupTTL time.Duration

	// Cache configures the optional response cache. Nil disables it.
	Cache *CacheConfig

	// OnRefreshFailure is invoked once per failed credential refresh cycle,
	// after the stored credential has been discarded. Typical use is
	// prompting the user to log in again.
	OnRefreshFailure func(error)

	// Debug enables verbose request/response logging when a Logger is set.
	Debug bool

	// Logger is the optional structured logger.
	Logger Logger

	// UserAgent overrides the default User-Agent header.
	UserAgent string
}
