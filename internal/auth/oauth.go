package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fetchkit-io/fetchkit/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrNoValidCredentials = errors.New("no valid credentials available")
	ErrNoTokenURL         = errors.New("no token URL configured")
)

// OAuth2Config configures the OAuth2 token manager. At least one credential
// source must be set: a refresh token, a username/password pair, or a client
// ID/secret pair. A bare AccessToken yields a manager that serves the static
// token and cannot refresh.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	AccessToken  string
	RefreshToken string
	Scopes       []string

	// HTTPClient issues token requests. It must not route through the
	// authenticated transport, or an expired credential could deadlock its
	// own refresh. Nil takes a plain client with a refresh timeout.
	HTTPClient *http.Client
}

// OAuth2TokenManager obtains and refreshes OAuth2 tokens.
type OAuth2TokenManager struct {
	config     *OAuth2Config
	store      *TokenStore
	httpClient *http.Client
}

// NewOAuth2TokenManager creates a token manager from configuration.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.RefreshHTTPTimeout}
	}

	store := NewTokenStore()
	if config.AccessToken != "" {
		store.Set(&Token{
			AccessToken:  config.AccessToken,
			TokenType:    "bearer",
			RefreshToken: config.RefreshToken,
		})
	}

	return &OAuth2TokenManager{
		config:     config,
		store:      store,
		httpClient: httpClient,
	}
}

// GetToken returns a valid access token, refreshing if necessary.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	refreshed, err := m.requestToken(ctx, token)
	if err != nil {
		return "", err
	}

	m.store.Set(refreshed)

	return refreshed.AccessToken, nil
}

// RefreshToken forces a token refresh regardless of current validity.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	refreshed, err := m.requestToken(ctx, m.store.Get())
	if err != nil {
		return err
	}

	m.store.Set(refreshed)

	return nil
}

// SetToken manually sets the access token.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	})
}

// Current returns the stored token without triggering a refresh.
func (m *OAuth2TokenManager) Current() *Token {
	return m.store.Get()
}

// ClearToken discards the stored token.
func (m *OAuth2TokenManager) ClearToken() {
	m.store.Clear()
}

// requestToken performs one token request, picking the strongest grant the
// configuration supports: refresh_token, then password, then
// client_credentials.
func (m *OAuth2TokenManager) requestToken(ctx context.Context, current *Token) (*Token, error) {
	refreshToken := m.config.RefreshToken
	if current != nil && current.RefreshToken != "" {
		refreshToken = current.RefreshToken
	}

	form := url.Values{}

	switch {
	case refreshToken != "":
		form.Set("grant_type", "refresh_token")
		form.Set("refresh_token", refreshToken)
	case m.config.Username != "" && m.config.Password != "":
		form.Set("grant_type", "password")
		form.Set("username", m.config.Username)
		form.Set("password", m.config.Password)
	case m.config.ClientID != "" && m.config.ClientSecret != "":
		form.Set("grant_type", "client_credentials")
	default:
		return nil, ErrNoValidCredentials
	}

	if len(m.config.Scopes) > 0 {
		form.Set("scope", strings.Join(m.config.Scopes, " "))
	}

	return m.postTokenRequest(ctx, form)
}

func (m *OAuth2TokenManager) postTokenRequest(ctx context.Context, form url.Values) (*Token, error) {
	if m.config.TokenURL == "" {
		return nil, ErrNoTokenURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	if m.config.ClientID != "" {
		req.SetBasicAuth(m.config.ClientID, m.config.ClientSecret)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, tokenRequestError(resp.StatusCode, body)
	}

	var token Token

	err = json.Unmarshal(body, &token)
	if err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}

	if token.AccessToken == "" {
		return nil, constants.ErrEmptyAccessToken
	}

	if token.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	return &token, nil
}

// tokenRequestError maps an OAuth2 error response body onto an error carrying
// the server's error code and description.
func tokenRequestError(statusCode int, body []byte) error {
	var errResp struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}

	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return fmt.Errorf("%w (status %d): %s: %s",
			constants.ErrTokenRequestFailed, statusCode, errResp.Error, errResp.ErrorDescription)
	}

	return fmt.Errorf("%w (status %d): %s", constants.ErrTokenRequestFailed, statusCode, strings.TrimSpace(string(body)))
}
