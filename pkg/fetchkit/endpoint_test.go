package fetchkit_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetchkit-io/fetchkit/pkg/fetchkit"
)

var errNoServerSelected = errors.New("no server selected")

type failingBaseURL struct{}

func (failingBaseURL) BaseURL(ctx context.Context) (string, error) {
	return "", errNoServerSelected
}

//nolint:funlen // Test functions can be longer for detailed testing
func TestEndpoint_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		base     string
		endpoint fetchkit.Endpoint
		expected string
	}{
		{
			name:     "plain join",
			base:     "https://api.example.com",
			endpoint: fetchkit.Endpoint{Method: "GET", Path: "v3/apps"},
			expected: "https://api.example.com/v3/apps",
		},
		{
			name:     "trailing slash on base",
			base:     "https://api.example.com/",
			endpoint: fetchkit.Endpoint{Method: "GET", Path: "users/7"},
			expected: "https://api.example.com/users/7",
		},
		{
			name:     "leading slash on path",
			base:     "https://api.example.com",
			endpoint: fetchkit.Endpoint{Method: "GET", Path: "/users/7"},
			expected: "https://api.example.com/users/7",
		},
		{
			name:     "both slashes collapse to one",
			base:     "https://api.example.com/",
			endpoint: fetchkit.Endpoint{Method: "GET", Path: "/users/7"},
			expected: "https://api.example.com/users/7",
		},
		{
			name:     "base with path prefix",
			base:     "https://api.example.com/v2",
			endpoint: fetchkit.Endpoint{Method: "GET", Path: "apps"},
			expected: "https://api.example.com/v2/apps",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			request, err := tt.endpoint.Resolve(context.Background(), fetchkit.StaticBaseURL(tt.base))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, request.URL)
			assert.Equal(t, tt.endpoint.Method, request.Method)
			assert.Equal(t, tt.endpoint.Path, request.Path)
		})
	}
}

func TestEndpoint_Resolve_MissingBase(t *testing.T) {
	t.Parallel()

	endpoint := fetchkit.Endpoint{Method: "GET", Path: "v3/apps"}

	t.Run("nil provider", func(t *testing.T) {
		t.Parallel()

		_, err := endpoint.Resolve(context.Background(), nil)
		require.ErrorIs(t, err, fetchkit.ErrMissingBaseURL)
	})

	t.Run("empty base", func(t *testing.T) {
		t.Parallel()

		_, err := endpoint.Resolve(context.Background(), fetchkit.StaticBaseURL(""))
		require.ErrorIs(t, err, fetchkit.ErrMissingBaseURL)
	})

	t.Run("provider error", func(t *testing.T) {
		t.Parallel()

		_, err := endpoint.Resolve(context.Background(), failingBaseURL{})
		require.ErrorIs(t, err, errNoServerSelected)
	})
}

func TestEndpoint_Resolve_InvalidBase(t *testing.T) {
	t.Parallel()

	endpoint := fetchkit.Endpoint{Method: "GET", Path: "v3/apps"}

	tests := []struct {
		name string
		base string
	}{
		{name: "unparseable", base: "https://api.example.com/%zz"},
		{name: "no scheme", base: "api.example.com"},
		{name: "no host", base: "https://"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := endpoint.Resolve(context.Background(), fetchkit.StaticBaseURL(tt.base))

			var buildErr *fetchkit.URLBuildError

			require.ErrorAs(t, err, &buildErr)
			assert.Equal(t, tt.base, buildErr.Base)
			assert.Equal(t, "v3/apps", buildErr.Path)
		})
	}
}

func TestEndpoint_Resolve_Bodies(t *testing.T) {
	t.Parallel()
	t.Run("JSON body", func(t *testing.T) {
		t.Parallel()

		endpoint := fetchkit.Endpoint{
			Method:   "POST",
			Path:     "v3/apps",
			Body:     map[string]string{"name": "my-app"},
			Encoding: fetchkit.BodyEncodingJSON,
		}

		request, err := endpoint.Resolve(context.Background(), fetchkit.StaticBaseURL("https://api.example.com"))
		require.NoError(t, err)
		assert.Equal(t, "application/json", request.ContentType)
		assert.JSONEq(t, `{"name":"my-app"}`, string(request.Body))
	})

	t.Run("form body", func(t *testing.T) {
		t.Parallel()

		endpoint := fetchkit.Endpoint{
			Method:   "POST",
			Path:     "oauth/token",
			Body:     url.Values{"grant_type": []string{"client_credentials"}},
			Encoding: fetchkit.BodyEncodingForm,
		}

		request, err := endpoint.Resolve(context.Background(), fetchkit.StaticBaseURL("https://login.example.com"))
		require.NoError(t, err)
		assert.Equal(t, "application/x-www-form-urlencoded", request.ContentType)
		assert.Equal(t, "grant_type=client_credentials", string(request.Body))
	})

	t.Run("form body rejects non-values", func(t *testing.T) {
		t.Parallel()

		endpoint := fetchkit.Endpoint{
			Method:   "POST",
			Path:     "oauth/token",
			Body:     map[string]string{"grant_type": "password"},
			Encoding: fetchkit.BodyEncodingForm,
		}

		_, err := endpoint.Resolve(context.Background(), fetchkit.StaticBaseURL("https://login.example.com"))
		require.ErrorIs(t, err, fetchkit.ErrFormBodyNotValues)
	})

	t.Run("no encoding sends no body", func(t *testing.T) {
		t.Parallel()

		endpoint := fetchkit.Endpoint{
			Method: "POST",
			Path:   "v3/apps/guid/actions/start",
			Body:   map[string]string{"ignored": "yes"},
		}

		request, err := endpoint.Resolve(context.Background(), fetchkit.StaticBaseURL("https://api.example.com"))
		require.NoError(t, err)
		assert.Nil(t, request.Body)
		assert.Empty(t, request.ContentType)
	})
}

func TestEndpoint_Resolve_CopiesQueryAndHeaders(t *testing.T) {
	t.Parallel()

	query := url.Values{"names": []string{"app1"}}
	headers := map[string]string{"X-Trace": "abc"}
	endpoint := fetchkit.Endpoint{Method: "GET", Path: "v3/apps", Query: query, Headers: headers}

	request, err := endpoint.Resolve(context.Background(), fetchkit.StaticBaseURL("https://api.example.com"))
	require.NoError(t, err)

	request.Query.Set("names", "mutated")
	request.Headers["X-Trace"] = "mutated"

	assert.Equal(t, []string{"app1"}, query["names"])
	assert.Equal(t, "abc", headers["X-Trace"])
}
