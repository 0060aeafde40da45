package eventbus_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpflow/triago/pkg/channels/gochannel"
	"github.com/helpflow/triago/pkg/eventbus"
	"github.com/helpflow/triago/pkg/events"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu       sync.Mutex
		received []*events.TicketReceived
	)

	err := bus.Handle(events.TicketReceivedEvent, func(_ context.Context, event any) error {
		ticketEvent, ok := event.(*events.TicketReceived)
		require.True(t, ok)

		mu.Lock()
		received = append(received, ticketEvent)
		mu.Unlock()

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	published := events.TicketReceived{
		BaseEvent: events.NewBaseEvent(events.TicketReceivedEvent, "tk-1"),
		Source:    "api",
	}

	require.NoError(t, bus.Publish(ctx, "tk-1", published))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(received) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, "tk-1", received[0].TicketID)
	assert.Equal(t, "api", received[0].Source)
	assert.Equal(t, events.TicketReceivedEvent, received[0].GetType())
}

func TestWatermillEventBus_UnhandledEventTypeIsAcked(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu        sync.Mutex
		completed int
	)

	err := bus.Handle(events.WorkflowCompletedEvent, func(_ context.Context, _ any) error {
		mu.Lock()
		completed++
		mu.Unlock()

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered for failures; the message is dropped, not redelivered.
	failed := events.WorkflowFailed{
		BaseEvent:  events.NewBaseEvent(events.WorkflowFailedEvent, "tk-1"),
		WorkflowID: "wf-1",
		Error:      "boom",
	}
	require.NoError(t, bus.Publish(ctx, "tk-1", failed))

	done := events.WorkflowCompleted{
		BaseEvent:  events.NewBaseEvent(events.WorkflowCompletedEvent, "tk-2"),
		WorkflowID: "wf-2",
	}
	require.NoError(t, bus.Publish(ctx, "tk-2", done))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return completed == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
