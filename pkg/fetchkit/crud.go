package fetchkit

import "encoding/json"

// CRUD capability interfaces. A resource descriptor implements the subset of
// capabilities it supports; bindings dispatch via interface satisfaction.
// Each endpoint-building method may fail with a typed error (most commonly
// ErrMissingLocalData when a refetch needs local context that is absent).

// Readable describes a resource that can be fetched as a single value.
type Readable[T any] interface {
	// ReadEndpoint builds the read endpoint, optionally using the currently
	// held resource (nil on first fetch).
	ReadEndpoint(current *T) (Endpoint, error)

	// DecodeRead maps a response body and the previous value to the resource.
	DecodeRead(body []byte, current *T) (T, error)
}

// Listable describes a resource that can be fetched as an ordered sequence
// with incremental pagination.
type Listable[T any] interface {
	// FirstPageEndpoint builds the endpoint for the first page.
	FirstPageEndpoint(params *QueryParams) Endpoint

	// NextPageEndpoint builds the endpoint for the page after lastPage, or
	// reports false when no page follows.
	NextPageEndpoint(current []T, params *QueryParams, lastPage Page) (Endpoint, bool)

	// DecodePage decodes one page of results.
	DecodePage(body []byte) (*ListResponse[T], error)
}

// Creatable describes a resource that can be created from a parameters model.
type Creatable[T any] interface {
	CreateEndpoint(params any) (Endpoint, error)
	DecodeCreated(body []byte) (T, error)
}

// Updatable describes a resource that can be updated with a parameters model.
type Updatable[T any] interface {
	UpdateEndpoint(current *T, params any) (Endpoint, error)
	DecodeUpdated(body []byte, current *T) (T, error)
}

// Deletable describes a resource that can be deleted.
type Deletable[T any] interface {
	DeleteEndpoint(current *T) (Endpoint, error)
}

// JSONResource is a ready-made descriptor for conventional JSON REST
// resources: GET <path> reads, GET <collection> lists, POST creates,
// PATCH updates, DELETE deletes. It implements every capability; resources
// with bespoke wire shapes implement the interfaces directly instead.
type JSONResource[T any] struct {
	// CollectionPath is the list/create path, e.g. "v3/apps".
	CollectionPath string

	// ItemPath builds the single-resource path from the current value,
	// e.g. "v3/apps/"+app.GUID. Required for read, update and delete.
	ItemPath func(current T) string
}

// ReadEndpoint implements Readable.
func (r JSONResource[T]) ReadEndpoint(current *T) (Endpoint, error) {
	if current == nil || r.ItemPath == nil {
		return Endpoint{}, ErrMissingLocalData
	}

	return Endpoint{Method: "GET", Path: r.ItemPath(*current)}, nil
}

// DecodeRead implements Readable.
func (r JSONResource[T]) DecodeRead(body []byte, current *T) (T, error) {
	var value T

	err := json.Unmarshal(body, &value)
	if err != nil {
		return value, &DecodeError{Err: err}
	}

	return value, nil
}

// FirstPageEndpoint implements Listable.
func (r JSONResource[T]) FirstPageEndpoint(params *QueryParams) Endpoint {
	query := params.Clone()
	if query.Page == 0 {
		query.WithPage(1)
	}

	return Endpoint{Method: "GET", Path: r.CollectionPath, Query: query.ToValues()}
}

// NextPageEndpoint implements Listable.
func (r JSONResource[T]) NextPageEndpoint(current []T, params *QueryParams, lastPage Page) (Endpoint, bool) {
	if !lastPage.HasNext() {
		return Endpoint{}, false
	}

	query := params.Clone().WithPage(lastPage.Page + 1)
	if lastPage.PerPage > 0 {
		query = query.WithPerPage(lastPage.PerPage)
	}

	return Endpoint{Method: "GET", Path: r.CollectionPath, Query: query.ToValues()}, true
}

// DecodePage implements Listable.
func (r JSONResource[T]) DecodePage(body []byte) (*ListResponse[T], error) {
	var page ListResponse[T]

	err := json.Unmarshal(body, &page)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	return &page, nil
}

// CreateEndpoint implements Creatable with JSON-encoded parameters.
func (r JSONResource[T]) CreateEndpoint(params any) (Endpoint, error) {
	return Endpoint{Method: "POST", Path: r.CollectionPath, Body: params, Encoding: BodyEncodingJSON}, nil
}

// DecodeCreated implements Creatable.
func (r JSONResource[T]) DecodeCreated(body []byte) (T, error) {
	return r.DecodeRead(body, nil)
}

// UpdateEndpoint implements Updatable with JSON-encoded parameters.
func (r JSONResource[T]) UpdateEndpoint(current *T, params any) (Endpoint, error) {
	if current == nil || r.ItemPath == nil {
		return Endpoint{}, ErrMissingLocalData
	}

	return Endpoint{Method: "PATCH", Path: r.ItemPath(*current), Body: params, Encoding: BodyEncodingJSON}, nil
}

// DecodeUpdated implements Updatable.
func (r JSONResource[T]) DecodeUpdated(body []byte, current *T) (T, error) {
	return r.DecodeRead(body, current)
}

// DeleteEndpoint implements Deletable.
func (r JSONResource[T]) DeleteEndpoint(current *T) (Endpoint, error) {
	if current == nil || r.ItemPath == nil {
		return Endpoint{}, ErrMissingLocalData
	}

	return Endpoint{Method: "DELETE", Path: r.ItemPath(*current)}, nil
}
