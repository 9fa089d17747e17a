package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"migration-scorer/internal/api/mw"
	"migration-scorer/internal/observability"
)

// BuildRouter assembles the chi router serving both the JSON API and the SSE
// gateway behind a shared middleware stack.
func BuildRouter(a *API, logMW *mw.LoggingMiddleware, gzipMW *mw.GzipMiddleware) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	if logMW != nil {
		r.Use(logMW.Handler)
	}
	if gzipMW != nil {
		r.Use(gzipMW.Handler)
	}

	r.Get("/health", a.Health)
	r.Mount("/metrics", observability.Handler())

	r.Get("/tokens", a.Tokens)
	r.Get("/tokens/{address}", func(w http.ResponseWriter, req *http.Request) {
		a.TokenByAddress(w, req, chi.URLParam(req, "address"))
	})
	r.Get("/stats", a.Stats)
	r.Post("/analyze", a.Analyze)
	r.Get("/stream", a.Stream)

	return r
}
