package fetchkit_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fetchkit-io/fetchkit/pkg/fetchkit"
)

var errFetchFailed = errors.New("fetch failed")

func TestResourceState_Constructors(t *testing.T) {
	t.Parallel()
	t.Run("idle", func(t *testing.T) {
		t.Parallel()

		state := fetchkit.Idle[string]()

		assert.Equal(t, fetchkit.PhaseIdle, state.Phase)
		assert.False(t, state.IsLoading())

		_, ok := state.Get()
		assert.False(t, ok)
	})

	t.Run("loading", func(t *testing.T) {
		t.Parallel()

		state := fetchkit.Loading[string]()

		assert.Equal(t, fetchkit.PhaseLoading, state.Phase)
		assert.True(t, state.IsLoading())

		_, ok := state.Get()
		assert.False(t, ok)
	})

	t.Run("available", func(t *testing.T) {
		t.Parallel()

		state := fetchkit.Available("payload")

		assert.Equal(t, fetchkit.PhaseAvailable, state.Phase)
		assert.False(t, state.IsLoading())

		value, ok := state.Get()
		assert.True(t, ok)
		assert.Equal(t, "payload", value)
		assert.NoError(t, state.Err)
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()

		state := fetchkit.Failure[string](errFetchFailed)

		assert.Equal(t, fetchkit.PhaseFailure, state.Phase)
		assert.ErrorIs(t, state.Err, errFetchFailed)

		value, ok := state.Get()
		assert.False(t, ok)
		assert.Empty(t, value)
	})
}

func TestPhase_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", fetchkit.PhaseIdle.String())
	assert.Equal(t, "loading", fetchkit.PhaseLoading.String())
	assert.Equal(t, "available", fetchkit.PhaseAvailable.String())
	assert.Equal(t, "failure", fetchkit.PhaseFailure.String())
	assert.Equal(t, "unknown", fetchkit.Phase(42).String())
}
