// Package fkclient provides the main entry point for creating engine clients.
package fkclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fetchkit-io/fetchkit/internal/auth"
	"github.com/fetchkit-io/fetchkit/internal/constants"
	"github.com/fetchkit-io/fetchkit/internal/httpclient"
	"github.com/fetchkit-io/fetchkit/pkg/fetchkit"
)

// Client bundles the transport, base URL and credential coordinator that
// bindings are created against.
type Client struct {
	config      *fetchkit.Config
	transport   *httpclient.Client
	base        fetchkit.StaticBaseURL
	coordinator *auth.Coordinator
	cache       *fetchkit.CacheManager
}

// New creates a client from configuration.
func New(config *fetchkit.Config) (*Client, error) {
	if config == nil {
		return nil, fetchkit.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, fetchkit.ErrBaseURLRequired
	}

	// Normalize base URL
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	config.BaseURL = baseURL

	coordinator := buildCoordinator(config)

	cacheManager, err := buildCacheManager(config)
	if err != nil {
		return nil, err
	}

	retryMax, waitMin, waitMax := retrySettings(config)

	opts := []httpclient.Option{
		httpclient.WithRetryConfig(retryMax, waitMin, waitMax),
	}

	if config.Logger != nil {
		opts = append(opts, httpclient.WithLogger(config.Logger), httpclient.WithDebug(config.Debug))
	}

	if config.UserAgent != "" {
		opts = append(opts, httpclient.WithUserAgent(config.UserAgent))
	}

	if cacheManager != nil {
		var policy *fetchkit.CachingPolicy
		if config.Cache != nil {
			policy = config.Cache.Policy
		}

		opts = append(opts, httpclient.WithCache(cacheManager, policy))
	}

	var provider httpclient.AuthProvider
	if coordinator != nil {
		provider = coordinator
	}

	return &Client{
		config:      config,
		transport:   httpclient.NewClient(baseURL, provider, opts...),
		base:        fetchkit.StaticBaseURL(baseURL),
		coordinator: coordinator,
		cache:       cacheManager,
	}, nil
}

// NewWithEndpoint creates an unauthenticated client for a base URL.
func NewWithEndpoint(endpoint string) (*Client, error) {
	return New(&fetchkit.Config{
		BaseURL: endpoint,
	})
}

// NewWithToken creates a client using a static access token.
func NewWithToken(endpoint, token string) (*Client, error) {
	return New(&fetchkit.Config{
		BaseURL:     endpoint,
		AccessToken: token,
	})
}

// NewWithClientCredentials creates a client using the OAuth2
// client_credentials grant.
func NewWithClientCredentials(endpoint, tokenURL, clientID, clientSecret string) (*Client, error) {
	return New(&fetchkit.Config{
		BaseURL:      endpoint,
		TokenURL:     tokenURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}

// NewWithPassword creates a client using the OAuth2 password grant.
func NewWithPassword(endpoint, tokenURL, username, password string) (*Client, error) {
	return New(&fetchkit.Config{
		BaseURL:  endpoint,
		TokenURL: tokenURL,
		Username: username,
		Password: password,
	})
}

// Authenticate eagerly obtains a credential, verifying the configured
// credentials against the token endpoint. It returns the access token so
// callers can persist it.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if c.coordinator == nil {
		return "", fetchkit.ErrNoCredentials
	}

	token, err := c.coordinator.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("authenticating: %w", err)
	}

	return token, nil
}

// Transport returns the client's transport for direct request execution.
func (c *Client) Transport() fetchkit.Transport {
	return c.transport
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return string(c.base)
}

// IsAuthenticated reports whether a usable credential is currently held.
func (c *Client) IsAuthenticated() bool {
	return c.coordinator != nil && c.coordinator.IsAuthenticated()
}

// CacheStats returns response-cache counters, or zeroes when caching is off.
func (c *Client) CacheStats() fetchkit.CacheStats {
	if c.cache == nil {
		return fetchkit.CacheStats{}
	}

	return c.cache.GetStats()
}

// Bind creates a binding for a single-valued resource descriptor.
func Bind[T any](c *Client, resource any, opts ...fetchkit.BindingOption) *fetchkit.Binding[T] {
	return fetchkit.NewBinding[T](resource, c.transport, c.base, c.bindingOptions(opts)...)
}

// BindList creates a binding for a list resource descriptor.
func BindList[T any](c *Client, resource any, opts ...fetchkit.BindingOption) *fetchkit.ListBinding[T] {
	return fetchkit.NewListBinding[T](resource, c.transport, c.base, c.bindingOptions(opts)...)
}

// bindingOptions prepends client-level defaults so per-binding options win.
func (c *Client) bindingOptions(opts []fetchkit.BindingOption) []fetchkit.BindingOption {
	defaults := make([]fetchkit.BindingOption, 0, len(opts)+2)

	if c.config.Logger != nil {
		defaults = append(defaults, fetchkit.WithBindingLogger(c.config.Logger))
	}

	if c.config.DedupTTL > 0 {
		defaults = append(defaults, fetchkit.WithDedupTTL(c.config.DedupTTL))
	}

	return append(defaults, opts...)
}

// buildCoordinator wires the credential refresh coordinator, or returns nil
// for an unauthenticated client.
func buildCoordinator(config *fetchkit.Config) *auth.Coordinator {
	hasCredentials := config.AccessToken != "" || config.RefreshToken != "" ||
		config.ClientID != "" || config.Username != ""
	if !hasCredentials {
		return nil
	}

	manager := auth.NewOAuth2TokenManager(&auth.OAuth2Config{
		TokenURL:     config.TokenURL,
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Username:     config.Username,
		Password:     config.Password,
		AccessToken:  config.AccessToken,
		RefreshToken: config.RefreshToken,
	})

	var opts []auth.CoordinatorOption
	if config.OnRefreshFailure != nil {
		opts = append(opts, auth.WithRefreshFailureHook(config.OnRefreshFailure))
	}

	return auth.NewCoordinator(manager, opts...)
}

func buildCacheManager(config *fetchkit.Config) (*fetchkit.CacheManager, error) {
	if config.Cache == nil {
		return nil, nil
	}

	backend, err := fetchkit.NewCacheFromConfig(config.Cache)
	if err != nil {
		return nil, fmt.Errorf("building cache backend: %w", err)
	}

	return fetchkit.NewCacheManager(backend, config.Logger), nil
}

func retrySettings(config *fetchkit.Config) (int, time.Duration, time.Duration) {
	retryMax := config.RetryMax
	if retryMax <= 0 {
		retryMax = constants.DefaultRetryMax
	}

	waitMin := config.RetryWaitMin
	if waitMin <= 0 {
		waitMin = constants.DefaultRetryWaitMin
	}

	waitMax := config.RetryWaitMax
	if waitMax <= 0 {
		waitMax = constants.DefaultRetryWaitMax
	}

	return retryMax, waitMin, waitMax
}
