// Package httpclient provides the concrete Transport implementation: a
// retrying HTTP client with credential rotation, interceptors and response
// caching layered around request execution.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fetchkit-io/fetchkit/internal/constants"
	"github.com/fetchkit-io/fetchkit/pkg/fetchkit"
)

// AuthProvider supplies credentials for outbound requests and rotates them
// when the server rejects one. A nil provider sends unauthenticated requests.
type AuthProvider interface {
	Token(ctx context.Context) (string, error)
	HandleAuthFailure(ctx context.Context) (string, error)
}

// Client executes request descriptors against a base URL. It implements
// fetchkit.Transport.
type Client struct {
	baseURL      string
	auth         AuthProvider
	httpClient   *retryablehttp.Client
	logger       fetchkit.Logger
	debug        bool
	userAgent    string
	interceptors *fetchkit.InterceptorChain
	cache        *fetchkit.CacheManager
	cachePolicy  *fetchkit.CachingPolicy
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug output.
func WithLogger(logger fetchkit.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig tunes the retry behavior.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = maxRetries
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithInterceptors replaces the interceptor chain.
func WithInterceptors(chain *fetchkit.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithCache enables response caching under the given policy. A nil policy
// takes the default GET-only policy.
func WithCache(manager *fetchkit.CacheManager, policy *fetchkit.CachingPolicy) Option {
	return func(c *Client) {
		c.cache = manager

		if policy != nil {
			c.cachePolicy = policy
		}
	}
}

// WithHTTPTimeout sets the per-attempt request timeout.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string, auth AuthProvider, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.Logger = nil

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		auth:         auth,
		httpClient:   retryClient,
		userAgent:    "fetchkit/1.0",
		interceptors: fetchkit.NewInterceptorChain(),
		cachePolicy:  fetchkit.DefaultCachingPolicy(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do executes a request descriptor. Non-2xx responses are returned together
// with an *fetchkit.HTTPError so callers can inspect both.
func (c *Client) Do(ctx context.Context, req *fetchkit.Request) (*fetchkit.Response, error) {
	err := c.interceptors.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp, ok := c.cachedResponse(ctx, req); ok {
		return resp, nil
	}

	token, err := c.requestToken(ctx, req)
	if err != nil {
		return nil, err
	}

	c.logRequest(req)

	resp, err := c.send(ctx, req, token)
	if err != nil {
		return nil, err
	}

	// A rejected credential gets one rotation and one retry; a second
	// rejection surfaces as a plain HTTP error.
	if resp.StatusCode == http.StatusUnauthorized && c.auth != nil {
		fresh, err := c.auth.HandleAuthFailure(ctx)
		if err != nil {
			return nil, err
		}

		resp, err = c.send(ctx, req, fresh)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		resp.Error = &fetchkit.HTTPError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	c.logResponse(req, resp)

	err = c.interceptors.ExecuteResponseInterceptors(ctx, req, resp)
	if err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return resp, resp.Error
	}

	c.storeResponse(ctx, req, resp)

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*fetchkit.Response, error) {
	return c.Do(ctx, &fetchkit.Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*fetchkit.Response, error) {
	return c.doJSON(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*fetchkit.Response, error) {
	return c.doJSON(ctx, http.MethodPut, path, body)
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*fetchkit.Response, error) {
	return c.doJSON(ctx, http.MethodPatch, path, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*fetchkit.Response, error) {
	return c.Do(ctx, &fetchkit.Request{Method: http.MethodDelete, Path: path})
}

func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}) (*fetchkit.Response, error) {
	var (
		encoded     []byte
		contentType string
	)

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		encoded = data
		contentType = "application/json"
	}

	return c.Do(ctx, &fetchkit.Request{
		Method:      method,
		Path:        path,
		Body:        encoded,
		ContentType: contentType,
	})
}

// send performs one HTTP exchange, mapping network failures to TransportError.
func (c *Client) send(ctx context.Context, req *fetchkit.Request, token string) (*fetchkit.Response, error) {
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, c.requestURL(req), bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if len(req.Body) > 0 {
		contentType := req.ContentType
		if contentType == "" {
			contentType = "application/json"
		}

		httpReq.Header.Set("Content-Type", contentType)
	}

	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &fetchkit.TransportError{Err: err}
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &fetchkit.TransportError{Err: err}
	}

	return &fetchkit.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}, nil
}

// requestToken fetches a credential unless the request is unauthenticated or
// already carries an Authorization header.
func (c *Client) requestToken(ctx context.Context, req *fetchkit.Request) (string, error) {
	if c.auth == nil {
		return "", nil
	}

	if _, ok := req.Headers["Authorization"]; ok {
		return "", nil
	}

	token, err := c.auth.Token(ctx)
	if err != nil {
		return "", err
	}

	return token, nil
}

func (c *Client) requestURL(req *fetchkit.Request) string {
	resolved := req.URL
	if resolved == "" {
		resolved = c.baseURL + "/" + strings.TrimPrefix(req.Path, "/")
	}

	if len(req.Query) > 0 {
		resolved += "?" + req.Query.Encode()
	}

	return resolved
}

func (c *Client) cacheKey(req *fetchkit.Request) string {
	params := make(map[string]string, len(req.Query))
	for key := range req.Query {
		params[key] = req.Query.Get(key)
	}

	return c.cache.GetCacheKey(req.Method, req.Path, params)
}

func (c *Client) cachedResponse(ctx context.Context, req *fetchkit.Request) (*fetchkit.Response, bool) {
	if c.cache == nil || req.Method != http.MethodGet || !c.cachePolicy.ShouldCache(req.Method, req.Path, http.StatusOK) {
		return nil, false
	}

	data, err := c.cache.Get(ctx, c.cacheKey(req))
	if err != nil {
		return nil, false
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("cache hit", map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
		})
	}

	return &fetchkit.Response{StatusCode: http.StatusOK, Body: data}, true
}

func (c *Client) storeResponse(ctx context.Context, req *fetchkit.Request, resp *fetchkit.Response) {
	if c.cache == nil || !c.cachePolicy.ShouldCache(req.Method, req.Path, resp.StatusCode) {
		return
	}

	ttl := c.cachePolicy.DefaultTTL
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTL
	}

	err := c.cache.SetWithETag(ctx, c.cacheKey(req), resp.Body, resp.Headers.Get("ETag"), ttl)
	if err != nil && c.logger != nil {
		c.logger.Warn("failed to cache response", map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
			"error":  err.Error(),
		})
	}
}

func (c *Client) logRequest(req *fetchkit.Request) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Request", map[string]interface{}{
		"method": req.Method,
		"path":   req.Path,
		"url":    c.requestURL(req),
	})
}

func (c *Client) logResponse(req *fetchkit.Request, resp *fetchkit.Response) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Response", map[string]interface{}{
		"method":      req.Method,
		"path":        req.Path,
		"status_code": resp.StatusCode,
	})
}
