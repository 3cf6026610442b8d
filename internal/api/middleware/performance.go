package middleware

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"sync"
)

// streaming reports whether the request holds a long-lived connection that
// must not be buffered or compressed.
func streaming(r *http.Request) bool {
	return r.URL.Path == "/ws" ||
		strings.HasPrefix(r.URL.Path, "/api/stream/") ||
		strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// Compression gzips responses for clients that accept it
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if streaming(r) || !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gz := gzipWriterPool.Get().(*gzip.Writer)
		defer gzipWriterPool.Put(gz)
		gz.Reset(w)
		defer gz.Close()

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		w.Header().Del("Content-Length")

		next.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, Writer: gz}, r)
	})
}

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		gz, _ := gzip.NewWriterLevel(io.Discard, 5)
		return gz
	},
}

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

// ETag answers conditional GETs with 304 when the body is unchanged
func ETag(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if (r.Method != http.MethodGet && r.Method != http.MethodHead) || streaming(r) {
			next.ServeHTTP(w, r)
			return
		}

		rec := &etagResponseRecorder{ResponseWriter: w, buffer: &bytes.Buffer{}}
		next.ServeHTTP(rec, r)

		if rec.statusCode == 0 || rec.statusCode == http.StatusOK {
			hash := sha256.Sum256(rec.buffer.Bytes())
			etag := `"` + hex.EncodeToString(hash[:16]) + `"`

			w.Header().Set("ETag", etag)
			if r.Header.Get("If-None-Match") == etag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			if rec.statusCode > 0 {
				w.WriteHeader(rec.statusCode)
			}
			_, _ = w.Write(rec.buffer.Bytes())
			return
		}

		w.WriteHeader(rec.statusCode)
		_, _ = w.Write(rec.buffer.Bytes())
	})
}

type etagResponseRecorder struct {
	http.ResponseWriter
	buffer     *bytes.Buffer
	statusCode int
}

func (r *etagResponseRecorder) Write(b []byte) (int, error) {
	return r.buffer.Write(b)
}

func (r *etagResponseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
}

// CacheControl marks API responses as private. The doctor catalogue may be
// reused briefly by the browser; everything else is per-agent and revalidated.
func CacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case streaming(r):
			w.Header().Set("Cache-Control", "no-cache")
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/doctors"):
			w.Header().Set("Cache-Control", "private, max-age=60, must-revalidate")
		default:
			w.Header().Set("Cache-Control", "private, no-cache, must-revalidate")
		}
		next.ServeHTTP(w, r)
	})
}

// ResponseOptimization chains CacheControl, ETag and Compression
func ResponseOptimization(next http.Handler) http.Handler {
	return CacheControl(ETag(Compression(next)))
}
