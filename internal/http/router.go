package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/preston-bernstein/fixture-data-service/internal/http/handlers"
	"github.com/preston-bernstein/fixture-data-service/internal/http/middleware"
	"github.com/preston-bernstein/fixture-data-service/internal/metrics"
)

// Options carries the cross-cutting pieces of the router.
type Options struct {
	Logger      *slog.Logger
	Metrics     *metrics.Recorder
	CORSOrigins []string
}

// NewRouter registers the HTTP routes. admin may be nil, in which case the admin routes are absent.
func NewRouter(handler *handlers.Handler, admin *handlers.AdminHandler, opts Options) nethttp.Handler {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.LoggingMiddleware(opts.Logger, opts.Metrics))
	r.Use(chimw.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{nethttp.MethodGet, nethttp.MethodHead, nethttp.MethodPost, nethttp.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler)

	r.NotFound(func(w nethttp.ResponseWriter, req *nethttp.Request) {
		handlers.WriteError(w, req, nethttp.StatusNotFound, "not found", opts.Logger)
	})
	r.MethodNotAllowed(func(w nethttp.ResponseWriter, req *nethttp.Request) {
		handlers.WriteError(w, req, nethttp.StatusMethodNotAllowed, "method not allowed", opts.Logger)
	})

	r.Get("/health", handler.Health)
	r.Get("/ready", handler.Ready)
	r.Route("/fixtures", func(r chi.Router) {
		r.Get("/live", handler.LiveFixtures)
		r.Get("/date/{date}", handler.FixturesByDate)
		r.Get("/league/{leagueID}", handler.FixturesByLeague)
		r.Get("/{id}", handler.FixtureByID)
	})
	if admin != nil {
		r.Post("/admin/cache/refresh", admin.RefreshCache)
	}
	return r
}
