package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emitkit/emitkit/core/dispatch"
	"github.com/emitkit/emitkit/core/event"
	"github.com/emitkit/emitkit/core/target"
)

type fakeBroker struct {
	mu    sync.Mutex
	added []*redis.XAddArgs
	err   error
}

func (f *fakeBroker) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.mu.Lock()
	f.added = append(f.added, a)
	f.mu.Unlock()

	cmd := redis.NewStringCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal("1-0")
	}
	return cmd
}

func queueTarget() target.Target {
	return target.Target{
		Kind:         target.KindQueue,
		Address:      "redis://localhost:6379/0",
		QueueName:    "hooks",
		FunctionName: "handle_event",
	}
}

func TestNewQueueDispatcher_RequiresClient(t *testing.T) {
	t.Parallel()

	_, err := dispatch.NewQueueDispatcher(nil)
	require.ErrorIs(t, err, dispatch.ErrQueueClientNil)
}

func TestQueueDispatcher_SubmitsTaskCall(t *testing.T) {
	t.Parallel()

	broker := &fakeBroker{}
	d, err := dispatch.NewQueueDispatcher(broker)
	require.NoError(t, err)

	env := event.New("JOIN", "Archer", 7)
	env.Kwargs["guild"] = "isdf"

	require.NoError(t, d.Dispatch(context.Background(), queueTarget(), env))

	require.Len(t, broker.added, 1)
	added := broker.added[0]
	assert.Equal(t, "hooks", added.Stream)
	assert.Equal(t, "handle_event", added.Values.(map[string]any)[dispatch.FieldTask])
	assert.NotEmpty(t, added.Values.(map[string]any)[dispatch.FieldID])

	var call dispatch.TaskCall
	payload := added.Values.(map[string]any)[dispatch.FieldPayload].(string)
	require.NoError(t, json.Unmarshal([]byte(payload), &call))

	// Event key leads the positional arguments.
	assert.Equal(t, []any{"JOIN", "Archer", float64(7)}, call.Args)
	assert.Equal(t, map[string]any{"guild": "isdf"}, call.Kwargs)
}

func TestQueueDispatcher_BrokerFailure(t *testing.T) {
	t.Parallel()

	broker := &fakeBroker{err: errors.New("connection refused")}
	d, err := dispatch.NewQueueDispatcher(broker)
	require.NoError(t, err)

	err = d.Dispatch(context.Background(), queueTarget(), event.New("X"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handle_event")
	assert.Contains(t, err.Error(), "hooks")
}
