// Package realtime pushes appointment events to connected websocket clients.
// Each client is subscribed to topics named after event bus channels: an
// agent receives its own agent channel, an administrator receives the
// channel carrying every appointment event.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
)

const (
	sendBufferSize = 256
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// ClientMessage is an inbound subscribe/unsubscribe request
type ClientMessage struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

// Client is a single websocket connection.
type Client struct {
	ID     string
	Topics []string
	Send   chan []byte

	// allowed limits which topics the client may join after registration
	allowed map[string]struct{}
}

// NewClient creates a client that may subscribe only to the given topics and
// starts out subscribed to all of them.
func NewClient(topics ...string) *Client {
	allowed := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		allowed[t] = struct{}{}
	}
	return &Client{
		ID:      uuid.New().String(),
		Topics:  append([]string(nil), topics...),
		Send:    make(chan []byte, sendBufferSize),
		allowed: allowed,
	}
}

// Hub tracks clients and their topic subscriptions.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // topic -> clients
	all     map[*Client]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		all:     make(map[*Client]struct{}),
	}
}

// Register adds a client and subscribes it to its initial topics.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.all[client] = struct{}{}
	for _, topic := range client.Topics {
		h.join(client, topic)
	}
}

// Unregister removes a client from every topic and closes its Send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}
	for _, topic := range client.Topics {
		h.leave(client, topic)
	}
	delete(h.all, client)
	close(client.Send)
}

// Subscribe adds topics to a registered client. Topics outside the client's
// allowance are ignored.
func (h *Hub) Subscribe(client *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range topics {
		if _, ok := client.allowed[topic]; !ok {
			continue
		}
		if _, ok := h.clients[topic][client]; ok {
			continue
		}
		h.join(client, topic)
		client.Topics = append(client.Topics, topic)
	}
}

// Unsubscribe removes topics from a registered client.
func (h *Hub) Unsubscribe(client *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	remove := make(map[string]struct{}, len(topics))
	for _, topic := range topics {
		remove[topic] = struct{}{}
		h.leave(client, topic)
	}

	remaining := client.Topics[:0]
	for _, t := range client.Topics {
		if _, ok := remove[t]; !ok {
			remaining = append(remaining, t)
		}
	}
	client.Topics = remaining
}

func (h *Hub) join(client *Client, topic string) {
	if h.clients[topic] == nil {
		h.clients[topic] = make(map[*Client]struct{})
	}
	h.clients[topic][client] = struct{}{}
}

func (h *Hub) leave(client *Client, topic string) {
	if subscribers, ok := h.clients[topic]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.clients, topic)
		}
	}
}

// ProcessMessage applies an inbound client message.
func (h *Hub) ProcessMessage(client *Client, msg ClientMessage) {
	switch msg.Action {
	case "subscribe":
		h.Subscribe(client, msg.Topics)
	case "unsubscribe":
		h.Unsubscribe(client, msg.Topics)
	}
}

// Broadcast sends data to every client subscribed to topic. Slow clients
// with a full buffer miss the message.
func (h *Hub) Broadcast(topic string, data []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.clients[topic] {
		select {
		case client.Send <- data:
			delivered++
		default:
			log.Warn().Str("client_id", client.ID).Str("topic", topic).Msg("Websocket client buffer full, dropping message")
		}
	}
	return delivered
}

// BroadcastEvent routes an appointment event to the owning agent's topic and
// to the topic carrying every appointment event.
func (h *Hub) BroadcastEvent(event *entities.AppointmentEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("event_id", event.ID).Msg("Failed to marshal appointment event")
		return
	}
	if event.AgentID != "" {
		h.Broadcast(providers.GetAgentChannel(event.AgentID), data)
	}
	h.Broadcast(providers.EventChannelAppointmentUpdates, data)
}

// Run forwards events from the bus to connected clients until ctx is done.
func (h *Hub) Run(ctx context.Context, bus providers.EventBus) error {
	events, err := bus.Subscribe(ctx, providers.EventChannelAppointmentUpdates)
	if err != nil {
		return err
	}

	log.Info().Msg("Websocket hub listening for appointment events")
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			h.BroadcastEvent(event)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// TopicCount returns the number of clients subscribed to topic.
func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

// Upgrader upgrades HTTP requests to websocket connections and runs the
// client pumps against a hub.
type Upgrader struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewUpgrader creates an Upgrader. An empty origin list or "*" accepts any origin.
func NewUpgrader(hub *Hub, allowedOrigins []string) *Upgrader {
	origins := make(map[string]struct{}, len(allowedOrigins))
	anyOrigin := len(allowedOrigins) == 0
	for _, o := range allowedOrigins {
		if o == "*" {
			anyOrigin = true
		}
		origins[o] = struct{}{}
	}

	return &Upgrader{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if anyOrigin || origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

// Serve upgrades the request and registers a client limited to topics. It
// returns once the connection is established; pumps run until it closes.
func (u *Upgrader) Serve(w http.ResponseWriter, r *http.Request, topics ...string) error {
	ws, err := u.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := NewClient(topics...)
	u.hub.Register(client)

	log.Debug().Str("client_id", client.ID).Strs("topics", topics).Msg("Websocket client connected")

	go writePump(client, ws)
	go readPump(u.hub, client, ws)
	return nil
}

func readPump(hub *Hub, client *Client, ws *websocket.Conn) {
	defer func() {
		hub.Unregister(client)
		ws.Close()
	}()

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		hub.ProcessMessage(client, msg)
	}
}

func writePump(client *Client, ws *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
