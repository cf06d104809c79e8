package fetchkit

import (
	"context"
	"sync"
	"time"
)

// bindingOptions carry optional binding configuration.
type bindingOptions struct {
	logger   Logger
	scope    string
	dedupTTL time.Duration
	noDedup  bool
}

// BindingOption configures a binding.
type BindingOption func(*bindingOptions)

// WithBindingLogger sets the binding's logger.
func WithBindingLogger(logger Logger) BindingOption {
	return func(o *bindingOptions) {
		o.logger = logger
	}
}

// WithScope sets the dedup-cache scope, separating otherwise identical
// request keys issued for different purposes.
func WithScope(scope string) BindingOption {
	return func(o *bindingOptions) {
		o.scope = scope
	}
}

// WithDedupTTL bounds the freshness of deduplicated results.
func WithDedupTTL(ttl time.Duration) BindingOption {
	return func(o *bindingOptions) {
		o.dedupTTL = ttl
	}
}

// WithoutDedup disables request deduplication for the binding.
func WithoutDedup() BindingOption {
	return func(o *bindingOptions) {
		o.noDedup = true
	}
}

const defaultDedupTTL = 30 * time.Second

func applyBindingOptions(opts []BindingOption) bindingOptions {
	options := bindingOptions{dedupTTL: defaultDedupTTL}
	for _, opt := range opts {
		opt(&options)
	}

	return options
}

// observable owns one ResourceState and serializes every write to it.
// Operations carry the issue sequence captured at dispatch; a commit is
// dropped when a newer operation has been issued since (the superseded
// call's result must never overwrite fresher state).
type observable[T any] struct {
	mu        sync.Mutex
	seq       uint64
	state     ResourceState[T]
	observers map[int]func(ResourceState[T])
	nextObs   int
}

func newObservable[T any]() *observable[T] {
	return &observable[T]{
		state:     Idle[T](),
		observers: make(map[int]func(ResourceState[T])),
	}
}

// State returns the current state.
func (o *observable[T]) State() ResourceState[T] {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.state
}

// Subscribe registers an observer called after every state transition. The
// returned function cancels the subscription.
func (o *observable[T]) Subscribe(fn func(ResourceState[T])) func() {
	o.mu.Lock()
	id := o.nextObs
	o.nextObs++
	o.observers[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.observers, id)
		o.mu.Unlock()
	}
}

// begin issues a new operation: it bumps the sequence and transitions to
// loading, returning the operation's sequence number.
func (o *observable[T]) begin() uint64 {
	o.mu.Lock()
	o.seq++
	seq := o.seq
	state := Loading[T]()
	o.state = state
	observers := o.snapshotLocked()
	o.mu.Unlock()

	notifyObservers(observers, state)

	return seq
}

// commit writes state for the operation with sequence seq, unless a newer
// operation has been issued since.
func (o *observable[T]) commit(seq uint64, state ResourceState[T]) bool {
	o.mu.Lock()
	if seq != o.seq {
		o.mu.Unlock()

		return false
	}

	o.state = state
	observers := o.snapshotLocked()
	o.mu.Unlock()

	notifyObservers(observers, state)

	return true
}

func (o *observable[T]) snapshotLocked() []func(ResourceState[T]) {
	observers := make([]func(ResourceState[T]), 0, len(o.observers))
	for _, fn := range o.observers {
		observers = append(observers, fn)
	}

	return observers
}

// Observers run outside the state lock so they may read State or issue new
// operations without deadlocking.
func notifyObservers[T any](observers []func(ResourceState[T]), state ResourceState[T]) {
	for _, fn := range observers {
		fn(state)
	}
}

// Binding binds one single-valued resource to the pipeline: endpoint
// resolution, transport, deduplication, and an observable state machine.
type Binding[T any] struct {
	resource  any
	transport Transport
	base      BaseURLProvider
	logger    Logger
	dedup     *ResultCache[T]
	scope     string

	obs *observable[T]
}

// NewBinding creates a binding for a resource descriptor implementing some
// subset of the CRUD capabilities for T.
func NewBinding[T any](resource any, transport Transport, base BaseURLProvider, opts ...BindingOption) *Binding[T] {
	options := applyBindingOptions(opts)

	binding := &Binding[T]{
		resource:  resource,
		transport: transport,
		base:      base,
		logger:    options.logger,
		scope:     options.scope,
		obs:       newObservable[T](),
	}

	if !options.noDedup {
		binding.dedup = NewResultCache[T](options.dedupTTL)
	}

	return binding
}

// State returns the binding's current resource state.
func (b *Binding[T]) State() ResourceState[T] {
	return b.obs.State()
}

// Subscribe registers a state observer; the returned function cancels it.
func (b *Binding[T]) Subscribe(fn func(ResourceState[T])) func() {
	return b.obs.Subscribe(fn)
}

// Read fetches the resource. With force unset, an already-available value is
// returned as-is (freshness policy is the caller's); with force set the
// binding transitions straight to loading and bypasses the dedup cache.
func (b *Binding[T]) Read(ctx context.Context, force bool) (T, error) {
	var zero T

	readable, ok := b.resource.(Readable[T])
	if !ok {
		return zero, ErrNotReadable
	}

	if !force {
		if value, ok := b.obs.State().Get(); ok {
			return value, nil
		}
	}

	current := b.currentValue()
	seq := b.obs.begin()

	endpoint, err := readable.ReadEndpoint(current)
	if err != nil {
		return b.fail(seq, err)
	}

	key := ResultCacheKey(b.scope, endpoint.Method+" "+endpoint.Path)

	if b.dedup != nil {
		if force {
			b.dedup.Invalidate(key)
		} else if value, ok := b.dedup.Resolve(key); ok {
			return b.succeed(seq, value)
		}
	}

	value, err := b.execute(ctx, endpoint, func(body []byte) (T, error) {
		return readable.DecodeRead(body, current)
	})
	if err != nil {
		return b.fail(seq, err)
	}

	if b.dedup != nil {
		// A forced reload skipped Resolve, so arm the key before storing.
		if force {
			b.dedup.Resolve(key)
		}

		b.dedup.Store(key, value)
	}

	return b.succeed(seq, value)
}

// Create creates the resource from a parameters model and makes the decoded
// result the available value.
func (b *Binding[T]) Create(ctx context.Context, params any) (T, error) {
	var zero T

	creatable, ok := b.resource.(Creatable[T])
	if !ok {
		return zero, ErrNotCreatable
	}

	seq := b.obs.begin()

	endpoint, err := creatable.CreateEndpoint(params)
	if err != nil {
		return b.fail(seq, err)
	}

	value, err := b.execute(ctx, endpoint, creatable.DecodeCreated)
	if err != nil {
		return b.fail(seq, err)
	}

	return b.succeed(seq, value)
}

// Update updates the resource with a parameters model.
func (b *Binding[T]) Update(ctx context.Context, params any) (T, error) {
	var zero T

	updatable, ok := b.resource.(Updatable[T])
	if !ok {
		return zero, ErrNotUpdatable
	}

	current := b.currentValue()
	seq := b.obs.begin()

	endpoint, err := updatable.UpdateEndpoint(current, params)
	if err != nil {
		return b.fail(seq, err)
	}

	value, err := b.execute(ctx, endpoint, func(body []byte) (T, error) {
		return updatable.DecodeUpdated(body, current)
	})
	if err != nil {
		return b.fail(seq, err)
	}

	return b.succeed(seq, value)
}

// Delete deletes the resource. On success the binding returns to idle.
func (b *Binding[T]) Delete(ctx context.Context) error {
	deletable, ok := b.resource.(Deletable[T])
	if !ok {
		return ErrNotDeletable
	}

	current := b.currentValue()
	seq := b.obs.begin()

	endpoint, err := deletable.DeleteEndpoint(current)
	if err != nil {
		_, err = b.fail(seq, err)

		return err
	}

	_, err = b.execute(ctx, endpoint, func(body []byte) (T, error) {
		var zero T

		return zero, nil
	})
	if err != nil {
		_, err = b.fail(seq, err)

		return err
	}

	if !b.obs.commit(seq, Idle[T]()) {
		return ErrSuperseded
	}

	return nil
}

func (b *Binding[T]) currentValue() *T {
	if value, ok := b.obs.State().Get(); ok {
		return &value
	}

	return nil
}

func (b *Binding[T]) execute(ctx context.Context, endpoint Endpoint, decode func([]byte) (T, error)) (T, error) {
	var zero T

	req, err := endpoint.Resolve(ctx, b.base)
	if err != nil {
		return zero, err
	}

	resp, err := b.transport.Do(ctx, req)
	if err != nil {
		return zero, err
	}

	return decode(resp.Body)
}

func (b *Binding[T]) succeed(seq uint64, value T) (T, error) {
	if !b.obs.commit(seq, Available(value)) {
		var zero T

		return zero, ErrSuperseded
	}

	return value, nil
}

func (b *Binding[T]) fail(seq uint64, err error) (T, error) {
	var zero T

	if b.logger != nil {
		b.logger.Debug("resource operation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if !b.obs.commit(seq, Failure[T](err)) {
		return zero, ErrSuperseded
	}

	return zero, err
}

// ListBinding binds one list resource to the pipeline, accumulating pages
// into an ordered sequence.
type ListBinding[T any] struct {
	resource  any
	transport Transport
	base      BaseURLProvider
	logger    Logger
	dedup     *ResultCache[*ListResponse[T]]
	scope     string

	obs *observable[[]T]

	mu      sync.Mutex
	params  *QueryParams
	last    Page
	hasLast bool
}

// NewListBinding creates a binding for a resource descriptor implementing
// Listable for T.
func NewListBinding[T any](resource any, transport Transport, base BaseURLProvider, opts ...BindingOption) *ListBinding[T] {
	options := applyBindingOptions(opts)

	binding := &ListBinding[T]{
		resource:  resource,
		transport: transport,
		base:      base,
		logger:    options.logger,
		scope:     options.scope,
		obs:       newObservable[[]T](),
	}

	if !options.noDedup {
		binding.dedup = NewResultCache[*ListResponse[T]](options.dedupTTL)
	}

	return binding
}

// State returns the binding's current list state.
func (b *ListBinding[T]) State() ResourceState[[]T] {
	return b.obs.State()
}

// Subscribe registers a state observer; the returned function cancels it.
func (b *ListBinding[T]) Subscribe(fn func(ResourceState[[]T])) func() {
	return b.obs.Subscribe(fn)
}

// HasNextPage reports whether another page follows the last fetched one.
func (b *ListBinding[T]) HasNextPage() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.hasLast && b.last.HasNext()
}

// FirstPage fetches the first page. A forced reload resets pagination
// accumulation and transitions straight to loading; otherwise an
// already-available accumulation is returned as-is.
func (b *ListBinding[T]) FirstPage(ctx context.Context, params *QueryParams, force bool) ([]T, error) {
	listable, ok := b.resource.(Listable[T])
	if !ok {
		return nil, ErrNotListable
	}

	if !force {
		if value, ok := b.obs.State().Get(); ok {
			return value, nil
		}
	}

	b.mu.Lock()
	b.params = params.Clone()
	b.hasLast = false
	b.mu.Unlock()

	endpoint := listable.FirstPageEndpoint(params)

	return b.fetchPage(ctx, listable, endpoint, nil, force)
}

// NextPage fetches the page after the last one and appends it to the
// accumulation. It reports false when no page follows.
func (b *ListBinding[T]) NextPage(ctx context.Context) ([]T, bool, error) {
	listable, ok := b.resource.(Listable[T])
	if !ok {
		return nil, false, ErrNotListable
	}

	current, ok := b.obs.State().Get()
	if !ok {
		return nil, false, ErrMissingLocalData
	}

	b.mu.Lock()

	if !b.hasLast {
		b.mu.Unlock()

		return nil, false, ErrMissingLocalData
	}

	params := b.params.Clone()
	last := b.last
	b.mu.Unlock()

	endpoint, ok := listable.NextPageEndpoint(current, params, last)
	if !ok {
		return current, false, nil
	}

	merged, err := b.fetchPage(ctx, listable, endpoint, current, false)
	if err != nil {
		return nil, false, err
	}

	return merged, b.HasNextPage(), nil
}

func (b *ListBinding[T]) fetchPage(ctx context.Context, listable Listable[T], endpoint Endpoint, oldValue []T, force bool) ([]T, error) {
	seq := b.obs.begin()

	key := ResultCacheKey(b.scope, endpoint.Method+" "+endpoint.Path+"?"+endpoint.Query.Encode())

	var (
		response *ListResponse[T]
		cached   bool
	)

	if b.dedup != nil {
		if force {
			b.dedup.Invalidate(key)
		} else if value, ok := b.dedup.Resolve(key); ok {
			response, cached = value, true
		}
	}

	if !cached {
		req, err := endpoint.Resolve(ctx, b.base)
		if err != nil {
			return b.failList(seq, err)
		}

		resp, err := b.transport.Do(ctx, req)
		if err != nil {
			return b.failList(seq, err)
		}

		response, err = listable.DecodePage(resp.Body)
		if err != nil {
			return b.failList(seq, err)
		}

		if b.dedup != nil {
			if force {
				b.dedup.Resolve(key)
			}

			b.dedup.Store(key, response)
		}
	}

	merged := MergePage(oldValue, response)

	b.mu.Lock()
	b.last = response.Pagination
	b.hasLast = true
	b.mu.Unlock()

	if !b.obs.commit(seq, Available(merged)) {
		return nil, ErrSuperseded
	}

	return merged, nil
}

func (b *ListBinding[T]) failList(seq uint64, err error) ([]T, error) {
	if b.logger != nil {
		b.logger.Debug("list operation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if !b.obs.commit(seq, Failure[[]T](err)) {
		return nil, ErrSuperseded
	}

	return nil, err
}

// FetchPage implements PageFetcher against the binding's resource without
// touching the binding's accumulated state, for use with the pagination
// helpers.
func (b *ListBinding[T]) FetchPage(ctx context.Context, params *QueryParams) (*ListResponse[T], error) {
	listable, ok := b.resource.(Listable[T])
	if !ok {
		return nil, ErrNotListable
	}

	endpoint := listable.FirstPageEndpoint(params)

	req, err := endpoint.Resolve(ctx, b.base)
	if err != nil {
		return nil, err
	}

	resp, err := b.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	return listable.DecodePage(resp.Body)
}
