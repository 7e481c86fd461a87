package listener_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emitkit/emitkit/core/event"
	"github.com/emitkit/emitkit/core/listener"
)

func noop(context.Context, event.Envelope) error { return nil }

func TestRegistry_RegisterAndLookup(t *testing.T) {
	t.Parallel()

	r := listener.NewRegistry()

	require.NoError(t, r.Register("user.joined", noop))
	require.NoError(t, r.Register("user.joined", noop))
	require.NoError(t, r.Register("user.left", noop))

	assert.Len(t, r.Lookup("user.joined"), 2)
	assert.Len(t, r.Lookup("user.left"), 1)
	assert.Empty(t, r.Lookup("unknown"))
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_RejectsNilListener(t *testing.T) {
	t.Parallel()

	r := listener.NewRegistry()
	err := r.Register("user.joined", nil)
	require.ErrorIs(t, err, listener.ErrNilListener)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_PreservesRegistrationOrder(t *testing.T) {
	t.Parallel()

	r := listener.NewRegistry()

	var calls []string
	mark := func(name string) listener.Func {
		return func(context.Context, event.Envelope) error {
			calls = append(calls, name)
			return nil
		}
	}

	require.NoError(t, r.Register("k", mark("A")))
	require.NoError(t, r.Register("k", mark("B")))
	require.NoError(t, r.Register("k", mark("C")))

	for _, fn := range r.Lookup("k") {
		require.NoError(t, fn(context.Background(), event.New("k")))
	}

	assert.Equal(t, []string{"A", "B", "C"}, calls)
}

func TestRegistry_LookupIsSnapshot(t *testing.T) {
	t.Parallel()

	r := listener.NewRegistry()
	require.NoError(t, r.Register("k", noop))

	snapshot := r.Lookup("k")
	require.NoError(t, r.Register("k", noop))

	assert.Len(t, snapshot, 1)
	assert.Len(t, r.Lookup("k"), 2)
}

func TestRegistry_Clear(t *testing.T) {
	t.Parallel()

	r := listener.NewRegistry()
	require.NoError(t, r.Register("a", noop))
	require.NoError(t, r.Register("b", noop))

	r.Clear()

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Lookup("a"))
}

func TestRegistry_ConcurrentRegisterAndLookup(t *testing.T) {
	t.Parallel()

	r := listener.NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.Register("k", noop)
		}()
		go func() {
			defer wg.Done()
			for _, fn := range r.Lookup("k") {
				_ = fn(context.Background(), event.New("k"))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, r.Len())
}
