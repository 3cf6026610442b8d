package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
)

func testEvent(agentID string) *entities.AppointmentEvent {
	return entities.NewAppointmentEvent(entities.AppointmentEventConfirmed, &entities.Appointment{
		ID:       "apt-1",
		AgentID:  agentID,
		DoctorID: "doc-1",
		Status:   entities.AppointmentStatusConfirmed,
		Date:     "2025-11-02",
		TimeSlot: "09:00 AM",
	}, nil)
}

func receive(t *testing.T, ch <-chan *entities.AppointmentEvent) *entities.AppointmentEvent {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestMemoryEventBus_FansOutToSubscribers(t *testing.T) {
	bus := NewMemoryEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := bus.Subscribe(ctx, providers.EventChannelAppointmentUpdates)
	require.NoError(t, err)
	second, err := bus.Subscribe(ctx, providers.EventChannelAppointmentUpdates)
	require.NoError(t, err)

	event := testEvent("agent-1")
	require.NoError(t, bus.Publish(ctx, providers.EventChannelAppointmentUpdates, event))

	assert.Equal(t, event.ID, receive(t, first).ID)
	assert.Equal(t, event.ID, receive(t, second).ID)
}

func TestPublishAppointmentEvent_ReachesAgentChannel(t *testing.T) {
	bus := NewMemoryEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mine, err := bus.Subscribe(ctx, providers.GetAgentChannel("agent-1"))
	require.NoError(t, err)
	other, err := bus.Subscribe(ctx, providers.GetAgentChannel("agent-2"))
	require.NoError(t, err)

	require.NoError(t, providers.PublishAppointmentEvent(ctx, bus, testEvent("agent-1")))

	got := receive(t, mine)
	assert.Equal(t, entities.AppointmentEventConfirmed, got.EventType)

	select {
	case <-other:
		t.Fatal("event leaked to another agent's channel")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryEventBus_CancelClosesSubscription(t *testing.T) {
	bus := NewMemoryEventBus()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := bus.Subscribe(ctx, "agent:x")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription was not closed")
	}
}
