package fetchkit

import (
	"context"
	"errors"
)

// MergePage folds one fetched page into an accumulated list.
//
// The rules keep accumulation monotonic and ordered:
//   - an empty accumulation is replaced wholesale by the page (first-page case);
//   - when the page is the next sequential one (the accumulation currently
//     covers pages 1..len/perPage and the response claims a later page), its
//     items are appended;
//   - any other page (stale, duplicate, out of order) leaves the accumulation
//     unchanged. Pages are never inserted out of order and never duplicated.
func MergePage[T any](oldValue []T, page *ListResponse[T]) []T {
	if page == nil {
		return oldValue
	}

	if len(oldValue) == 0 {
		return append([]T(nil), page.Resources...)
	}

	if page.Pagination.PerPage <= 0 {
		return oldValue
	}

	lastPage := len(oldValue) / page.Pagination.PerPage
	if lastPage < page.Pagination.Page {
		return append(oldValue, page.Resources...)
	}

	return oldValue
}

// PageFetcher fetches one page of a listable resource.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, params *QueryParams) (*ListResponse[T], error)
}

// PaginationOptions tune the page-walking helpers.
type PaginationOptions struct {
	// PageSize is the per_page value to request. Zero leaves the server default.
	PageSize int

	// MaxPages bounds how many pages are fetched. Zero means all pages.
	MaxPages int
}

// DefaultPaginationOptions returns the default options.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{}
}

// PageIterator walks a paginated collection item by item, fetching pages
// lazily.
type PageIterator[T any] struct {
	ctx     context.Context
	fetcher PageFetcher[T]
	params  *QueryParams

	buffer   []T
	index    int
	page     Page
	fetched  bool
	finished bool
}

// NewPageIterator creates an iterator over the given fetcher.
func NewPageIterator[T any](ctx context.Context, fetcher PageFetcher[T], params *QueryParams) *PageIterator[T] {
	return &PageIterator[T]{
		ctx:     ctx,
		fetcher: fetcher,
		params:  params.Clone(),
	}
}

// HasNext reports whether another item is available without consuming it.
func (it *PageIterator[T]) HasNext() bool {
	if it.index < len(it.buffer) {
		return true
	}

	if it.finished {
		return false
	}

	// Before the first fetch we optimistically assume the collection is
	// non-empty; Next surfaces the truth.
	if !it.fetched {
		return true
	}

	return it.page.HasNext()
}

// Next returns the next item, fetching the next page when the buffered one
// is exhausted.
func (it *PageIterator[T]) Next() (T, error) {
	var zero T

	if it.index >= len(it.buffer) {
		err := it.fetchNextPage()
		if err != nil {
			return zero, err
		}
	}

	if it.index >= len(it.buffer) {
		return zero, ErrNoMorePages
	}

	item := it.buffer[it.index]
	it.index++

	return item, nil
}

// All collects every remaining item.
func (it *PageIterator[T]) All() ([]T, error) {
	var all []T

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			if errors.Is(err, ErrNoMorePages) {
				break
			}

			return nil, err
		}

		all = append(all, item)
	}

	return all, nil
}

// ForEach applies fn to every remaining item, stopping on the first error.
func (it *PageIterator[T]) ForEach(fn func(T) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			if errors.Is(err, ErrNoMorePages) {
				return nil
			}

			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return nil
}

func (it *PageIterator[T]) fetchNextPage() error {
	if it.finished {
		return nil
	}

	params := it.params.Clone()
	if it.fetched {
		if !it.page.HasNext() {
			it.finished = true

			return nil
		}

		params.WithPage(it.page.Page + 1)
	} else if params.Page == 0 {
		params.WithPage(1)
	}

	response, err := it.fetcher.FetchPage(it.ctx, params)
	if err != nil {
		return err
	}

	it.buffer = response.Resources
	it.index = 0
	it.page = response.Pagination
	it.fetched = true

	if !it.page.HasNext() {
		it.finished = true
	}

	return nil
}

// FetchAllPages collects every item of a paginated collection, bounded by
// options.MaxPages when set.
func FetchAllPages[T any](ctx context.Context, fetcher PageFetcher[T], params *QueryParams, options *PaginationOptions) ([]T, error) {
	if options == nil {
		options = DefaultPaginationOptions()
	}

	params = params.Clone()
	if options.PageSize > 0 {
		params.WithPerPage(options.PageSize)
	}

	var all []T

	page := 1
	for {
		response, err := fetcher.FetchPage(ctx, params.Clone().WithPage(page))
		if err != nil {
			return nil, err
		}

		all = MergePage(all, response)

		if !response.Pagination.HasNext() {
			break
		}

		if options.MaxPages > 0 && page >= options.MaxPages {
			break
		}

		page++
	}

	return all, nil
}

// PageResult carries one page delivered by StreamPages.
type PageResult[T any] struct {
	Items []T
	Page  Page
	Err   error
}

// StreamPages fetches pages sequentially and delivers each on the returned
// channel. The channel closes after the last page, the first error, or
// context cancellation.
func StreamPages[T any](ctx context.Context, fetcher PageFetcher[T], params *QueryParams, options *PaginationOptions) <-chan PageResult[T] {
	if options == nil {
		options = DefaultPaginationOptions()
	}

	params = params.Clone()
	if options.PageSize > 0 {
		params.WithPerPage(options.PageSize)
	}

	results := make(chan PageResult[T])

	go func() {
		defer close(results)

		page := 1
		for {
			response, err := fetcher.FetchPage(ctx, params.Clone().WithPage(page))
			if err != nil {
				select {
				case results <- PageResult[T]{Err: err}:
				case <-ctx.Done():
				}

				return
			}

			select {
			case results <- PageResult[T]{Items: response.Resources, Page: response.Pagination}:
			case <-ctx.Done():
				return
			}

			if !response.Pagination.HasNext() {
				return
			}

			if options.MaxPages > 0 && page >= options.MaxPages {
				return
			}

			page++
		}
	}()

	return results
}
