package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
)

// CacheInvalidationService drops cached slot lists and dashboards when
// appointment events arrive, so every API instance sees bookings made by the others
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	started  bool
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins listening for appointment events
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelAppointmentUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to appointment updates: %w", err)
	}

	s.started = true
	go s.processEvents(eventChan)
	log.Info().Msg("Cache invalidation service started")
	return nil
}

// Stop stops listening and waits for the event loop to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	if s.started {
		<-s.done
	}
	log.Info().Msg("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.AppointmentEvent) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.HandleEvent(event)
		}
	}
}

// HandleEvent invalidates the caches an appointment event makes stale. Every
// cached day of the doctor is dropped because an update may have moved the
// appointment off its previous date.
func (s *CacheInvalidationService) HandleEvent(event *entities.AppointmentEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger := log.With().Str("event_id", event.ID).Str("event_type", string(event.EventType)).Logger()

	if event.DoctorID != "" {
		if err := s.cache.DeletePattern(ctx, SlotsCacheKey(event.DoctorID, "*")); err != nil {
			logger.Warn().Err(err).Str("doctor_id", event.DoctorID).Msg("Failed to invalidate slot cache")
		}
	}
	if event.AgentID != "" {
		if err := s.cache.Delete(ctx, DashboardCacheKey(event.AgentID)); err != nil {
			logger.Warn().Err(err).Str("agent_id", event.AgentID).Msg("Failed to invalidate dashboard cache")
		}
	}
	logger.Debug().Msg("Processed cache invalidation")
}
