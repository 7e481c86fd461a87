package task_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emitkit/emitkit/core/task"
)

func TestManager_BarrierCompleteness(t *testing.T) {
	t.Parallel()

	m := task.NewManager()

	var done atomic.Int32
	errBoom := errors.New("boom")

	// Mix of instantly-failing and instantly-succeeding tasks.
	for i := 0; i < 10; i++ {
		fail := i%2 == 0
		m.Schedule(context.Background(), "mixed", func(context.Context) error {
			done.Add(1)
			if fail {
				return errBoom
			}
			return nil
		})
	}

	err := m.WaitAll(context.Background())
	require.ErrorIs(t, err, errBoom)

	assert.Equal(t, int32(10), done.Load())
	assert.Equal(t, 0, m.Len())

	stats := m.Stats()
	assert.Equal(t, int64(10), stats.Scheduled)
	assert.Equal(t, int64(5), stats.Completed)
	assert.Equal(t, int64(5), stats.Failed)
}

func TestManager_WaitAllWithZeroTasks(t *testing.T) {
	t.Parallel()

	m := task.NewManager()
	require.NoError(t, m.WaitAll(context.Background()))
}

func TestManager_ErrorsDrainedPerBarrier(t *testing.T) {
	t.Parallel()

	m := task.NewManager()
	m.Schedule(context.Background(), "failing", func(context.Context) error {
		return errors.New("boom")
	})

	require.Error(t, m.WaitAll(context.Background()))

	// A second barrier with no new failures is clean.
	require.NoError(t, m.WaitAll(context.Background()))
}

func TestManager_BarrierObservesConcurrentlyScheduledTasks(t *testing.T) {
	t.Parallel()

	m := task.NewManager()

	var second atomic.Bool
	release := make(chan struct{})

	m.Schedule(context.Background(), "first", func(ctx context.Context) error {
		<-release
		// Schedule more work while the barrier is already waiting; the
		// barrier must observe it too.
		m.Schedule(ctx, "second", func(context.Context) error {
			time.Sleep(10 * time.Millisecond)
			second.Store(true)
			return nil
		})
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- m.WaitAll(context.Background()) }()

	close(release)

	require.NoError(t, <-done)
	assert.True(t, second.Load())
	assert.Equal(t, 0, m.Len())
}

func TestManager_PanicRecoveredAsFailure(t *testing.T) {
	t.Parallel()

	m := task.NewManager()
	m.Schedule(context.Background(), "panicky", func(context.Context) error {
		panic("kaboom")
	})

	err := m.WaitAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
	assert.Contains(t, err.Error(), "panicky")
}

func TestManager_FailureDoesNotCancelSiblings(t *testing.T) {
	t.Parallel()

	m := task.NewManager()

	var sibling atomic.Bool
	m.Schedule(context.Background(), "failing", func(context.Context) error {
		return errors.New("boom")
	})
	m.Schedule(context.Background(), "sibling", func(context.Context) error {
		time.Sleep(20 * time.Millisecond)
		sibling.Store(true)
		return nil
	})

	require.Error(t, m.WaitAll(context.Background()))
	assert.True(t, sibling.Load())
}

func TestManager_ScheduleDoesNotBlockCaller(t *testing.T) {
	t.Parallel()

	m := task.NewManager()
	release := make(chan struct{})

	start := time.Now()
	m.Schedule(context.Background(), "slow", func(context.Context) error {
		<-release
		return nil
	})
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(release)
	require.NoError(t, m.WaitAll(context.Background()))
}

func TestManager_ShutdownIdempotent(t *testing.T) {
	t.Parallel()

	m := task.NewManager()

	var done atomic.Int32
	for i := 0; i < 5; i++ {
		m.Schedule(context.Background(), "work", func(context.Context) error {
			done.Add(1)
			return nil
		})
	}

	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, int32(5), done.Load())

	// Work scheduled after shutdown is rejected, not run untracked.
	m.Schedule(context.Background(), "late", func(context.Context) error {
		done.Add(1)
		return nil
	})
	require.NoError(t, m.WaitAll(context.Background()))
	assert.Equal(t, int32(5), done.Load())
}

func TestManager_WaitAllHonorsContext(t *testing.T) {
	t.Parallel()

	m := task.NewManager()
	release := make(chan struct{})
	defer close(release)

	m.Schedule(context.Background(), "stuck", func(context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := m.WaitAll(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestManager_RunDrainsOnCancel(t *testing.T) {
	t.Parallel()

	m := task.NewManager(task.WithShutdownTimeout(time.Second))

	var done atomic.Int32
	m.Schedule(context.Background(), "work", func(context.Context) error {
		time.Sleep(10 * time.Millisecond)
		done.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- m.Run(ctx)() }()

	cancel()

	require.NoError(t, <-runErr)
	assert.Equal(t, int32(1), done.Load())
	assert.Equal(t, 0, m.Len())
}

func TestManager_ConcurrentScheduling(t *testing.T) {
	t.Parallel()

	m := task.NewManager()

	var wg sync.WaitGroup
	var done atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				m.Schedule(context.Background(), "work", func(context.Context) error {
					done.Add(1)
					return nil
				})
			}
		}()
	}
	wg.Wait()

	require.NoError(t, m.WaitAll(context.Background()))
	assert.Equal(t, int32(200), done.Load())
	assert.Equal(t, 0, m.Len())
}
