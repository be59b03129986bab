// Package server assembles the HTTP surface: REST handlers, the websocket
// endpoint, and the shared middleware stack.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	healthhandler "wtrfll/server/internal/health/handler"
	lyricshandler "wtrfll/server/internal/lyrics/handler"
	passagehandler "wtrfll/server/internal/passage/handler"
	sessionhandler "wtrfll/server/internal/session/handler"
)

// Deps are the handlers the router mounts. Realtime is the upgraded
// websocket endpoint.
type Deps struct {
	Sessions *sessionhandler.Handler
	Passages *passagehandler.Handler
	Lyrics   *lyricshandler.Handler
	Health   *healthhandler.Handler
	Realtime http.Handler
}

// NewRouter builds the chi router with the standard middleware stack.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", deps.Health.Healthz)
	r.Handle("/realtime", deps.Realtime)

	r.Route("/api", func(api chi.Router) {
		api.Post("/sessions", deps.Sessions.Create)
		api.Get("/sessions/upcoming", deps.Sessions.Upcoming)
		api.Post("/sessions/{id}/join", deps.Sessions.Join)

		api.Get("/passages", deps.Passages.GetPassage)
		api.Get("/translations", deps.Passages.GetTranslations)

		api.Route("/lyrics", func(lr chi.Router) {
			lr.Get("/", deps.Lyrics.List)
			lr.Post("/", deps.Lyrics.Create)
			lr.Get("/{id}", deps.Lyrics.Get)
			lr.Put("/{id}", deps.Lyrics.Update)
			lr.Delete("/{id}", deps.Lyrics.Delete)
		})
	})

	return r
}

// NewHandler wraps the router in the otelhttp server instrumentation.
func NewHandler(deps Deps) http.Handler {
	return otelhttp.NewHandler(NewRouter(deps), "wtrfll.http")
}
