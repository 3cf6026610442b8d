package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
	"github.com/corpcare/agentbooking/internal/infrastructure/auth"
)

const sseHeartbeatInterval = 30 * time.Second

// SSEHandler streams appointment events over Server-Sent Events
type SSEHandler struct {
	eventBus  providers.EventBus
	heartbeat time.Duration

	mu      sync.RWMutex
	clients map[string]int // channel -> connected clients
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus) *SSEHandler {
	return &SSEHandler{
		eventBus:  eventBus,
		heartbeat: sseHeartbeatInterval,
		clients:   make(map[string]int),
	}
}

// channelFor returns the event channel a caller may follow: agents see their
// own appointments, administrators see every appointment.
func channelFor(claims *providers.AccessClaims) string {
	if agentID := auth.ScopeAgentID(claims); agentID != "" {
		return providers.GetAgentChannel(agentID)
	}
	return providers.EventChannelAppointmentUpdates
}

// StreamAppointments handles GET /api/stream/appointments
func (h *SSEHandler) StreamAppointments(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	if claims.Role != entities.UserRoleAdmin && claims.AgentID == "" {
		respondWithError(w, http.StatusForbidden, "an agent account is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	channel := channelFor(claims)
	events, err := h.eventBus.Subscribe(r.Context(), channel)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("Failed to subscribe to event channel")
		respondWithError(w, http.StatusServiceUnavailable, "live updates are unavailable")
		return
	}

	h.registerClient(channel)
	defer h.unregisterClient(channel)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	h.sendEvent(w, "connected", map[string]interface{}{
		"channel":   channel,
		"timestamp": time.Now().UTC(),
	})
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Debug().Str("channel", channel).Msg("Client disconnected from appointment stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now().UTC(),
			})
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

func (h *SSEHandler) registerClient(channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[channel]++
}

func (h *SSEHandler) unregisterClient(channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[channel]--
	if h.clients[channel] <= 0 {
		delete(h.clients, channel)
	}
}

func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("Failed to marshal event data")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// GetClientCount returns the number of connected clients
func (h *SSEHandler) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, n := range h.clients {
		count += n
	}
	return count
}
