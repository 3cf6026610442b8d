package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/infrastructure/realtime"
)

// WebSocketHandler upgrades authenticated requests to websocket connections
type WebSocketHandler struct {
	upgrader *realtime.Upgrader
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(upgrader *realtime.Upgrader) *WebSocketHandler {
	return &WebSocketHandler{upgrader: upgrader}
}

// Connect handles GET /ws. The connection is limited to the caller's
// appointment channel.
func (h *WebSocketHandler) Connect(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	if claims.Role != entities.UserRoleAdmin && claims.AgentID == "" {
		respondWithError(w, http.StatusForbidden, "an agent account is required")
		return
	}

	if err := h.upgrader.Serve(w, r, channelFor(claims)); err != nil {
		// the upgrader has already written the failure response
		log.Debug().Err(err).Str("user_id", claims.UserID).Msg("Websocket upgrade failed")
	}
}
