package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
	"github.com/corpcare/agentbooking/internal/infrastructure/auth"
)

var (
	agentClaims = &providers.AccessClaims{UserID: "user-1", Role: entities.UserRoleAgent, AgentID: "agent-1"}
	adminClaims = &providers.AccessClaims{UserID: "admin-1", Role: entities.UserRoleAdmin}
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newRequest(method, target, body string, claims *providers.AccessClaims) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if claims != nil {
		req = req.WithContext(auth.WithClaims(req.Context(), claims))
	}
	return req
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return env
}
