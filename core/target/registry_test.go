package target_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emitkit/emitkit/core/target"
)

func TestRegistry_RegisterAndMatch(t *testing.T) {
	t.Parallel()

	r := target.NewRegistry()

	require.NoError(t, r.Register("https://a/hook"))
	require.NoError(t, r.Register(map[string]any{
		"kind":    "url",
		"address": "https://b/hook",
		"events":  []string{"JOIN"},
	}))
	require.NoError(t, r.Register(map[string]any{
		"kind":    "queue",
		"address": "redis://localhost:6379/0",
		"events":  []string{"LEAVE"},
	}))

	join := r.Matching("JOIN")
	require.Len(t, join, 2)
	assert.Equal(t, "https://a/hook", join[0].Address)
	assert.Equal(t, "https://b/hook", join[1].Address)

	leave := r.Matching("LEAVE")
	require.Len(t, leave, 2)
	assert.Equal(t, target.KindQueue, leave[1].Kind)

	other := r.Matching("OTHER")
	require.Len(t, other, 1)
	assert.Equal(t, "https://a/hook", other[0].Address)
}

func TestRegistry_RejectsMalformedSynchronously(t *testing.T) {
	t.Parallel()

	r := target.NewRegistry()
	require.ErrorIs(t, r.Register(42), target.ErrUnsupportedTarget)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_DuplicatesKept(t *testing.T) {
	t.Parallel()

	r := target.NewRegistry()
	require.NoError(t, r.Register("https://a/hook"))
	require.NoError(t, r.Register("https://a/hook"))

	assert.Len(t, r.Matching("X"), 2)
}

func TestRegistry_Clear(t *testing.T) {
	t.Parallel()

	r := target.NewRegistry()
	require.NoError(t, r.Register("https://a/hook"))

	r.Clear()

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Matching("X"))
}

func TestRegistry_MatchingReturnsIsolatedCopies(t *testing.T) {
	t.Parallel()

	r := target.NewRegistry()
	require.NoError(t, r.Register(map[string]any{
		"kind":    "url",
		"address": "https://a/hook",
		"headers": map[string]any{"K": "v"},
		"events":  []string{"JOIN"},
	}))

	got := r.Matching("JOIN")
	require.Len(t, got, 1)
	got[0].Headers["K"] = "tampered"
	got[0].Events[0] = "LEAVE"

	// The registered target is unaffected by mutations of a returned copy.
	again := r.Matching("JOIN")
	require.Len(t, again, 1)
	assert.Equal(t, "v", again[0].Headers["K"])
	assert.Equal(t, []string{"JOIN"}, again[0].Events)
	assert.Empty(t, r.Matching("LEAVE"))
}

func TestRegistry_ConcurrentRegisterAndMatch(t *testing.T) {
	t.Parallel()

	r := target.NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.Register("https://a/hook")
		}()
		go func() {
			defer wg.Done()
			_ = r.Matching("X")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, r.Len())
}
