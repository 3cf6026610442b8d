package middleware_test

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpcare/agentbooking/internal/api/middleware"
	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
)

var (
	agentClaims = &providers.AccessClaims{UserID: "user-1", Role: entities.UserRoleAgent, AgentID: "agent-1"}
	adminClaims = &providers.AccessClaims{UserID: "admin-1", Role: entities.UserRoleAdmin}
)

func TestResponseOptimization(t *testing.T) {
	handler := middleware.ResponseOptimization(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))

	t.Run("compresses and tags json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
		etag := w.Header().Get("ETag")
		require.NotEmpty(t, etag)
		assert.Equal(t, "private, max-age=60, must-revalidate", w.Header().Get("Cache-Control"))

		gz, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(gz)
		require.NoError(t, err)
		assert.Equal(t, `{"success":true,"data":[]}`, string(body))

		req = httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		req.Header.Set("If-None-Match", etag)
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotModified, w.Code)
	})

	t.Run("leaves streams untouched", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/stream/appointments", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Empty(t, w.Header().Get("ETag"))
		assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	})

	t.Run("per-agent data is revalidated", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/appointments", nil))
		assert.Equal(t, "private, no-cache, must-revalidate", w.Header().Get("Cache-Control"))
	})
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	restricted := middleware.CORSMiddleware([]string{"https://portal.example.com"})(next)
	req := httptest.NewRequest(http.MethodOptions, "/api/appointments", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	w := httptest.NewRecorder()
	restricted.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://portal.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")

	req = httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	restricted.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	open := middleware.CORSMiddleware(nil)(next)
	req = httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
	req.Header.Set("Origin", "https://anything.example.com")
	w = httptest.NewRecorder()
	open.ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
