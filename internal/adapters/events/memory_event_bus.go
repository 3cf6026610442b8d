package events

import (
	"context"
	"sync"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
)

// MemoryEventBus is a process-local EventBus. It serves single-instance
// deployments without Redis and tests.
type MemoryEventBus struct {
	mu          sync.RWMutex
	subscribers subscriberSet
	closed      bool
}

// NewMemoryEventBus creates a new in-process event bus
func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{subscribers: make(subscriberSet)}
}

var _ providers.EventBus = (*MemoryEventBus)(nil)

// Publish delivers event to every current subscriber of channel without blocking
func (b *MemoryEventBus) Publish(ctx context.Context, channel string, event *entities.AppointmentEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	b.subscribers.deliver(channel, event)
	return nil
}

// Subscribe subscribes to channel until ctx is cancelled
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.AppointmentEvent, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		eventChan := make(chan *entities.AppointmentEvent)
		close(eventChan)
		return eventChan, nil
	}
	eventChan, _ := b.subscribers.add(channel)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		b.subscribers.remove(channel, eventChan)
		b.mu.Unlock()
	}()

	return eventChan, nil
}

// Unsubscribe closes every subscription on channel
func (b *MemoryEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers.closeChannel(channel)
	return nil
}

// Close closes every subscription
func (b *MemoryEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for channel := range b.subscribers {
		b.subscribers.closeChannel(channel)
	}
	b.closed = true
	return nil
}
