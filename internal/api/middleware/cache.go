package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/corpcare/agentbooking/internal/domain/providers"
	"github.com/corpcare/agentbooking/internal/infrastructure/auth"
)

const httpCachePrefix = "http:cache:"

// CacheConfig holds cache configuration for a route prefix
type CacheConfig struct {
	TTLSeconds int
	Enabled    bool
}

// CacheMiddleware caches successful GET responses of read-mostly routes and
// drops them again when a write under the same prefix succeeds.
type CacheMiddleware struct {
	cache        providers.CacheProvider
	routeConfigs map[string]CacheConfig
}

// NewCacheMiddleware creates a cache middleware for the doctor catalogue
func NewCacheMiddleware(cache providers.CacheProvider) *CacheMiddleware {
	return &CacheMiddleware{
		cache: cache,
		routeConfigs: map[string]CacheConfig{
			"/api/doctors": {TTLSeconds: 60, Enabled: true},
		},
	}
}

// NewCacheMiddlewareWithConfig creates a cache middleware with custom route config
func NewCacheMiddlewareWithConfig(cache providers.CacheProvider, configs map[string]CacheConfig) *CacheMiddleware {
	return &CacheMiddleware{cache: cache, routeConfigs: configs}
}

// Middleware returns the cache middleware handler. It must run after
// authentication since responses differ per role.
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil || m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}

		prefix, config := m.getRouteConfig(r.URL.Path)
		if !config.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method != http.MethodGet {
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)
			if rec.statusCode < http.StatusBadRequest {
				m.InvalidateCache(r, prefix)
			}
			return
		}

		cacheKey := m.generateCacheKey(r, prefix)
		if cached, err := m.cache.Get(r.Context(), cacheKey); err == nil {
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}
		w.Header().Set("X-Cache", "MISS")

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode == http.StatusOK && recorder.body.Len() > 0 {
			if err := m.cache.Set(r.Context(), cacheKey, recorder.body.Bytes(), config.TTLSeconds); err != nil {
				log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache response")
			}
		}
	})
}

// getRouteConfig returns the longest configured prefix matching path
func (m *CacheMiddleware) getRouteConfig(path string) (string, CacheConfig) {
	var (
		matched string
		config  CacheConfig
	)
	for prefix, c := range m.routeConfigs {
		if (path == prefix || strings.HasPrefix(path, prefix+"/")) && len(prefix) > len(matched) {
			matched, config = prefix, c
		}
	}
	return matched, config
}

func (m *CacheMiddleware) generateCacheKey(r *http.Request, prefix string) string {
	role := "anonymous"
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		role = string(claims.Role)
	}

	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}
	hash := sha256.Sum256([]byte(role + ":" + key))
	return httpCachePrefix + prefix + ":" + hex.EncodeToString(hash[:])
}

// InvalidateCache drops every cached response under prefix
func (m *CacheMiddleware) InvalidateCache(r *http.Request, prefix string) {
	pattern := httpCachePrefix + prefix + ":*"
	if err := m.cache.DeletePattern(r.Context(), pattern); err != nil {
		log.Warn().Err(err).Str("pattern", pattern).Msg("Failed to invalidate cached responses")
	}
}

// responseRecorder tees the response body so it can be cached
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	if !r.written {
		r.statusCode = statusCode
		r.ResponseWriter.WriteHeader(statusCode)
		r.written = true
	}
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
