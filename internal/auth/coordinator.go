package auth

import (
	"context"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/fetchkit-io/fetchkit/pkg/fetchkit"
)

// TokenManager obtains, refreshes and replaces credentials.
type TokenManager interface {
	// GetToken returns a valid access token, refreshing if necessary.
	GetToken(ctx context.Context) (string, error)

	// Current returns the stored token without triggering a refresh.
	Current() *Token

	// ClearToken discards the stored token.
	ClearToken()
}

const refreshFlightKey = "refresh"

// Coordinator serializes credential refresh across concurrent requests.
// Any number of callers that find the credential invalid at the same time
// produce exactly one refresh; the rest wait and share its outcome. A failed
// refresh clears the stored credential, delivers the same error to every
// waiter, and fires the failure hook once for that refresh cycle.
type Coordinator struct {
	manager         TokenManager
	group           singleflight.Group
	onRefreshFailed func(error)
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithRefreshFailureHook installs a hook invoked once per failed refresh
// cycle, after the stored credential has been cleared. The hook runs on the
// refreshing goroutine and must not block.
func WithRefreshFailureHook(hook func(error)) CoordinatorOption {
	return func(c *Coordinator) {
		c.onRefreshFailed = hook
	}
}

// NewCoordinator wraps a token manager with refresh coordination.
func NewCoordinator(manager TokenManager, opts ...CoordinatorOption) *Coordinator {
	coordinator := &Coordinator{manager: manager}

	for _, opt := range opts {
		opt(coordinator)
	}

	return coordinator
}

// Token returns a credential that authorizes a request right now, refreshing
// through the shared flight when the stored one is invalid or near expiry.
func (c *Coordinator) Token(ctx context.Context) (string, error) {
	if token := c.manager.Current(); token.Valid() {
		return token.AccessToken, nil
	}

	return c.refresh(ctx)
}

// HandleAuthFailure discards the credential the server just rejected and
// obtains a fresh one, coalescing with any refresh already in flight. The
// caller retries the original request once with the returned credential.
func (c *Coordinator) HandleAuthFailure(ctx context.Context) (string, error) {
	c.manager.ClearToken()

	return c.refresh(ctx)
}

// Authorize attaches a Bearer credential to an outbound request.
func (c *Coordinator) Authorize(ctx context.Context, req *http.Request) error {
	token, err := c.Token(ctx)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+token)

	return nil
}

// IsAuthenticated reports whether a usable credential is currently stored.
func (c *Coordinator) IsAuthenticated() bool {
	return c.manager.Current().Valid()
}

func (c *Coordinator) refresh(ctx context.Context) (string, error) {
	value, err, _ := c.group.Do(refreshFlightKey, func() (interface{}, error) {
		// A waiter queued behind a finished flight starts a new one; if
		// that earlier flight already stored a fresh credential, reuse it
		// instead of refreshing again.
		if token := c.manager.Current(); token.Valid() {
			return token.AccessToken, nil
		}

		token, err := c.manager.GetToken(ctx)
		if err != nil {
			c.manager.ClearToken()

			if c.onRefreshFailed != nil {
				c.onRefreshFailed(err)
			}

			return nil, &fetchkit.AuthRefreshError{Err: err}
		}

		return token, nil
	})
	if err != nil {
		return "", err
	}

	token, ok := value.(string)
	if !ok {
		return "", fetchkit.ErrNotAuthenticated
	}

	return token, nil
}
