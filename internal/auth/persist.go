package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoTokenPersister = errors.New("no token persister configured")
)

// TokenPersister saves refreshed credentials so later invocations can reuse
// them. The CLI persists to its profile file; libraries usually leave this
// unset.
type TokenPersister interface {
	UpdateToken(endpoint, accessToken string, expiresAt time.Time, refreshToken string) error
}

// PersistingTokenManager wraps an OAuth2TokenManager and writes every
// refreshed credential through a TokenPersister.
type PersistingTokenManager struct {
	*OAuth2TokenManager

	persister TokenPersister
	endpoint  string
}

// NewPersistingTokenManager creates a persisting token manager. An initial
// token, when present, seeds the store so a still-valid persisted credential
// skips the first refresh.
func NewPersistingTokenManager(config *OAuth2Config, persister TokenPersister, endpoint string, initialToken string, initialExpiry time.Time) *PersistingTokenManager {
	manager := NewOAuth2TokenManager(config)

	if initialToken != "" {
		manager.store.Set(&Token{
			AccessToken:  initialToken,
			TokenType:    "bearer",
			RefreshToken: config.RefreshToken,
			ExpiresAt:    initialExpiry,
		})
	}

	return &PersistingTokenManager{
		OAuth2TokenManager: manager,
		persister:          persister,
		endpoint:           endpoint,
	}
}

// GetToken returns a valid access token, persisting it when the call caused
// a refresh.
func (m *PersistingTokenManager) GetToken(ctx context.Context) (string, error) {
	before := m.Current()

	token, err := m.OAuth2TokenManager.GetToken(ctx)
	if err != nil {
		return "", err
	}

	current := m.Current()
	if current != nil && (before == nil || current.AccessToken != before.AccessToken) {
		err := m.persistToken(current)
		if err != nil {
			// A failed save must not fail the request that triggered it.
			_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to persist refreshed token: %v\n", err)
		}
	}

	return token, nil
}

// persistToken saves the token through the configured persister.
func (m *PersistingTokenManager) persistToken(token *Token) error {
	if m.persister == nil {
		return ErrNoTokenPersister
	}

	err := m.persister.UpdateToken(m.endpoint, token.AccessToken, token.ExpiresAt, token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	return nil
}
