// Package mw holds the HTTP middleware shared by the JSON API and the SSE
// gateway.
package mw

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"migration-scorer/pkg/logger"
)

// GzipMiddleware compresses JSON responses, skipping clients that don't
// accept gzip and skipping SSE streams outright (they must not be buffered).
type GzipMiddleware struct {
	Level int
	Log   *logger.Logger
}

// NewGzip builds a GzipMiddleware at level (gzip.BestSpeed if 0).
func NewGzip(level int, log *logger.Logger) *GzipMiddleware {
	if level == 0 {
		level = gzip.BestSpeed
	}
	return &GzipMiddleware{Level: level, Log: log}
}

func (m *GzipMiddleware) Handler(next http.Handler) http.Handler {
	pool := sync.Pool{
		New: func() any {
			w, _ := gzip.NewWriterLevel(io.Discard, m.Level)
			return w
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(r.Header.Get("Accept"), "text/event-stream") {
			next.ServeHTTP(w, r)
			return
		}

		gzw := pool.Get().(*gzip.Writer)
		defer pool.Put(gzw)
		gzw.Reset(w)
		defer func() {
			if err := gzw.Close(); err != nil {
				m.Log.Warn("failed to close gzip writer", logger.Err(err))
			}
		}()

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		next.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, gz: gzw}, r)
	})
}

// gzipResponseWriter routes body writes through the pooled gzip.Writer
// instead of straight to the client.
type gzipResponseWriter struct {
	http.ResponseWriter
	gz *gzip.Writer
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	return w.gz.Write(b)
}

func (w *gzipResponseWriter) Flush() {
	_ = w.gz.Flush()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
