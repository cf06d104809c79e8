package fetchkit

// Phase identifies which case of a ResourceState holds.
type Phase int

const (
	// PhaseIdle means no fetch has been issued yet.
	PhaseIdle Phase = iota

	// PhaseLoading means a fetch is in flight.
	PhaseLoading

	// PhaseAvailable means the last fetch succeeded and Value holds the resource.
	PhaseAvailable

	// PhaseFailure means the last fetch failed and Err holds the error.
	PhaseFailure
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseAvailable:
		return "available"
	case PhaseFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// ResourceState is the lifecycle of a fetched resource. Exactly one case
// holds at any instant: Value is meaningful only in PhaseAvailable and Err
// only in PhaseFailure. A transition to failure discards any previously
// available value; callers needing stale-while-error must cache externally.
type ResourceState[T any] struct {
	Phase Phase
	Value T
	Err   error
}

// Idle returns the initial state.
func Idle[T any]() ResourceState[T] {
	return ResourceState[T]{Phase: PhaseIdle}
}

// Loading returns a loading state.
func Loading[T any]() ResourceState[T] {
	return ResourceState[T]{Phase: PhaseLoading}
}

// Available returns a state holding a fetched value.
func Available[T any](value T) ResourceState[T] {
	return ResourceState[T]{Phase: PhaseAvailable, Value: value}
}

// Failure returns a state holding a fetch error.
func Failure[T any](err error) ResourceState[T] {
	return ResourceState[T]{Phase: PhaseFailure, Err: err}
}

// IsLoading reports whether a fetch is in flight.
func (s ResourceState[T]) IsLoading() bool {
	return s.Phase == PhaseLoading
}

// Get returns the available value, or false when the state holds none.
func (s ResourceState[T]) Get() (T, bool) {
	if s.Phase == PhaseAvailable {
		return s.Value, true
	}

	var zero T

	return zero, false
}
