//go:build integration

package events_test

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpcare/agentbooking/internal/adapters/events"
	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
	"github.com/corpcare/agentbooking/internal/infrastructure/clients/redis"
	"github.com/corpcare/agentbooking/pkg/config"
)

func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}
	port, err := strconv.Atoi(os.Getenv("TEST_REDIS_PORT"))
	if err != nil {
		port = 6379
	}

	client, err := redis.NewClient(&config.RedisConfig{Host: host, Port: port})
	require.NoError(t, err, "Failed to create redis client")
	t.Cleanup(func() { client.Close() })
	return client
}

func waitForEvent(t *testing.T, ch <-chan *entities.AppointmentEvent) *entities.AppointmentEvent {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestRedisEventBusFanoutIntegration(t *testing.T) {
	bus := events.NewRedisEventBus(newTestRedisClient(t))
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	admin, err := bus.Subscribe(ctx, providers.EventChannelAppointmentUpdates)
	require.NoError(t, err)
	agent, err := bus.Subscribe(ctx, providers.GetAgentChannel("agent-redis-1"))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	appointment := &entities.Appointment{
		ID: "appt-redis-1", AgentID: "agent-redis-1", DoctorID: "doc-1",
		Date: "2030-01-15", TimeSlot: "09:00", Status: entities.AppointmentStatusPending,
	}
	event := entities.NewAppointmentEvent(entities.AppointmentEventCreated, appointment, nil)
	require.NoError(t, providers.PublishAppointmentEvent(context.Background(), bus, event))

	fromAdmin := waitForEvent(t, admin)
	fromAgent := waitForEvent(t, agent)
	assert.Equal(t, event.ID, fromAdmin.ID)
	assert.Equal(t, event.ID, fromAgent.ID)
	assert.Equal(t, "agent-redis-1", fromAgent.AgentID)
}

func TestRedisEventBusRefusesForeignAgentChannelIntegration(t *testing.T) {
	bus := events.NewRedisEventBus(newTestRedisClient(t))
	defer bus.Close()

	appointment := &entities.Appointment{ID: "appt-redis-2", AgentID: "agent-redis-1", Date: "2030-01-15", TimeSlot: "10:00"}
	event := entities.NewAppointmentEvent(entities.AppointmentEventCreated, appointment, nil)

	err := bus.Publish(context.Background(), providers.GetAgentChannel("agent-redis-2"), event)
	assert.Error(t, err)
}
