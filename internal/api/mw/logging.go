package mw

import (
	"net/http"
	"time"

	"migration-scorer/pkg/logger"
)

// LoggingMiddleware logs one structured line per request.
type LoggingMiddleware struct {
	Log *logger.Logger
}

func NewLogging(log *logger.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{Log: log}
}

func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingRW{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lrw, r)

		m.Log.Info("http_request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", lrw.status),
			logger.Int("size", lrw.size),
			logger.Duration("duration", time.Since(start)),
		)
	})
}

type loggingRW struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *loggingRW) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *loggingRW) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func (w *loggingRW) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
