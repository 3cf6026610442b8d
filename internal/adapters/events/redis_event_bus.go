package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
	redisclient "github.com/corpcare/agentbooking/internal/infrastructure/clients/redis"
)

// RedisEventBus carries appointment events between API instances over Redis
// Pub/Sub. Each instance opens at most one Redis subscription per channel
// (the shared appointment channel or an "agent:<id>" channel) and fans the
// messages out to its local SSE streams, websocket hub and cache invalidator.
type RedisEventBus struct {
	client        *redisclient.Client
	subscriptions map[string]*redis.PubSub
	subscribers   subscriberSet
	mu            sync.RWMutex
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:        client,
		subscriptions: make(map[string]*redis.PubSub),
		subscribers:   make(subscriberSet),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Publish sends event to every instance subscribed to channel. An event is
// refused on an agent channel that does not own the appointment.
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.AppointmentEvent) error {
	if !visibleOn(channel, event) {
		return fmt.Errorf("event %s for agent %s cannot be published on %s", event.ID, event.AgentID, channel)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal appointment event: %w", err)
	}
	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish appointment event: %w", err)
	}

	log.Debug().
		Str("channel", channel).
		Str("event_id", event.ID).
		Str("event_type", string(event.EventType)).
		Str("appointment_id", event.AppointmentID).
		Msg("Published appointment event")
	return nil
}

// Subscribe follows channel until ctx is cancelled. The Redis subscription
// is shared by every local subscriber of the channel.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.AppointmentEvent, error) {
	b.mu.Lock()
	if _, exists := b.subscriptions[channel]; !exists {
		pubsub := b.client.Client().Subscribe(b.ctx, channel)
		b.subscriptions[channel] = pubsub
		go b.receiveMessages(channel, pubsub)
	}
	eventChan, count := b.subscribers.add(channel)
	b.mu.Unlock()

	log.Debug().Str("channel", channel).Int("subscribers", count).Msg("Subscribed to appointment events")

	go func() {
		<-ctx.Done()
		b.removeSubscriber(channel, eventChan)
	}()

	return eventChan, nil
}

func (b *RedisEventBus) receiveMessages(channel string, pubsub *redis.PubSub) {
	defer func() {
		if err := b.cleanupChannel(channel); err != nil {
			log.Error().Err(err).Str("channel", channel).Msg("Failed to clean up channel")
		}
	}()

	messages := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}

			var event entities.AppointmentEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("Discarding malformed appointment event")
				continue
			}

			b.mu.RLock()
			b.subscribers.deliver(channel, &event)
			b.mu.RUnlock()
		}
	}
}

// removeSubscriber drops one local subscriber and releases the Redis
// subscription once the channel has none left.
func (b *RedisEventBus) removeSubscriber(channel string, eventChan chan *entities.AppointmentEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, empty := b.subscribers.remove(channel, eventChan); !empty {
		return
	}
	if pubsub, ok := b.subscriptions[channel]; ok {
		_ = pubsub.Close()
		delete(b.subscriptions, channel)
		log.Debug().Str("channel", channel).Msg("Released Redis subscription")
	}
}

func (b *RedisEventBus) cleanupChannel(channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers.closeChannel(channel)

	pubsub, ok := b.subscriptions[channel]
	if !ok {
		return nil
	}
	delete(b.subscriptions, channel)
	if err := pubsub.Close(); err != nil {
		return fmt.Errorf("failed to close subscription %s: %w", channel, err)
	}
	return nil
}

// Unsubscribe closes every local subscriber of channel
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	return b.cleanupChannel(channel)
}

// Close stops every subscription
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.RLock()
	channels := make([]string, 0, len(b.subscriptions))
	for channel := range b.subscriptions {
		channels = append(channels, channel)
	}
	b.mu.RUnlock()

	var errs []error
	for _, channel := range channels {
		if err := b.cleanupChannel(channel); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing event bus: %w", errors.Join(errs...))
	}

	log.Info().Msg("Appointment event bus closed")
	return nil
}
