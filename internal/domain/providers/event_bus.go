package providers

import (
	"context"

	"github.com/corpcare/agentbooking/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.AppointmentEvent) error

	// Subscribe subscribes to events on a channel until ctx is cancelled
	Subscribe(ctx context.Context, channel string) (<-chan *entities.AppointmentEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelAppointmentUpdates carries every appointment event
	EventChannelAppointmentUpdates = "appointments:updates"

	// EventChannelAgentPrefix is the prefix for per-agent channels
	EventChannelAgentPrefix = "agent:"
)

// GetAgentChannel returns the channel name for a specific agent
func GetAgentChannel(agentID string) string {
	return EventChannelAgentPrefix + agentID
}

// PublishAppointmentEvent publishes event on the global appointment channel
// and on the owning agent's channel
func PublishAppointmentEvent(ctx context.Context, bus EventBus, event *entities.AppointmentEvent) error {
	if err := bus.Publish(ctx, EventChannelAppointmentUpdates, event); err != nil {
		return err
	}
	return bus.Publish(ctx, GetAgentChannel(event.AgentID), event)
}
