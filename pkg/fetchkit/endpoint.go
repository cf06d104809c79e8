package fetchkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// BodyEncoding selects how an endpoint's body model is encoded on the wire.
type BodyEncoding int

const (
	// BodyEncodingNone sends no request body.
	BodyEncodingNone BodyEncoding = iota

	// BodyEncodingJSON marshals the body model as JSON.
	BodyEncodingJSON

	// BodyEncodingForm URL-encodes the body values as a form.
	BodyEncodingForm
)

// Endpoint is an immutable description of one logical API operation.
// Resolving an endpoint against a base URL is a pure function of its fields;
// endpoints carry no hidden state.
type Endpoint struct {
	Method   string
	Path     string
	Query    url.Values
	Headers  map[string]string
	Body     interface{}
	Encoding BodyEncoding
}

// BaseURLProvider supplies the base URL an endpoint is resolved against.
// Implementations may resolve it asynchronously (e.g., from user-selected
// server configuration) and may legitimately have none configured.
type BaseURLProvider interface {
	BaseURL(ctx context.Context) (string, error)
}

// StaticBaseURL is a BaseURLProvider backed by a fixed string.
type StaticBaseURL string

// BaseURL implements BaseURLProvider.
func (s StaticBaseURL) BaseURL(ctx context.Context) (string, error) {
	return string(s), nil
}

// Resolve materializes the endpoint into a concrete request descriptor using
// the given provider. It fails with ErrMissingBaseURL when the provider has
// no URL and with URLBuildError when the base URL cannot be parsed.
func (e Endpoint) Resolve(ctx context.Context, provider BaseURLProvider) (*Request, error) {
	if provider == nil {
		return nil, ErrMissingBaseURL
	}

	base, err := provider.BaseURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving base URL: %w", err)
	}

	if base == "" {
		return nil, ErrMissingBaseURL
	}

	parsed, err := url.Parse(base)
	if err != nil {
		return nil, &URLBuildError{Base: base, Path: e.Path, Err: err}
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &URLBuildError{Base: base, Path: e.Path, Err: ErrBaseURLRequired}
	}

	resolved := strings.TrimSuffix(parsed.String(), "/") + "/" + strings.TrimPrefix(e.Path, "/")

	body, contentType, err := e.encodeBody()
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(e.Headers))
	for key, value := range e.Headers {
		headers[key] = value
	}

	var query url.Values
	if len(e.Query) > 0 {
		query = make(url.Values, len(e.Query))
		for key, values := range e.Query {
			query[key] = append([]string(nil), values...)
		}
	}

	return &Request{
		Method:      e.Method,
		Path:        e.Path,
		URL:         resolved,
		Query:       query,
		Headers:     headers,
		Body:        body,
		ContentType: contentType,
	}, nil
}

func (e Endpoint) encodeBody() ([]byte, string, error) {
	if e.Body == nil || e.Encoding == BodyEncodingNone {
		return nil, "", nil
	}

	switch e.Encoding {
	case BodyEncodingJSON:
		data, err := json.Marshal(e.Body)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}

		return data, "application/json", nil

	case BodyEncodingForm:
		values, ok := e.Body.(url.Values)
		if !ok {
			return nil, "", fmt.Errorf("encoding request body: %w", ErrFormBodyNotValues)
		}

		return []byte(values.Encode()), "application/x-www-form-urlencoded", nil

	default:
		return nil, "", nil
	}
}

// ErrFormBodyNotValues indicates a form-encoded endpoint whose body model is
// not url.Values.
var ErrFormBodyNotValues = errors.New("form body must be url.Values")
