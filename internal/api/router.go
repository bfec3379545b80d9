// Package api serves the listing catalog over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cognicore/autotag/internal/auth"
	"github.com/cognicore/autotag/pkg/autotag"
)

// Options configures the router
type Options struct {
	Catalog *autotag.Catalog
	Auth    *auth.Manager

	CORSOrigins []string

	// RateLimit caps inference-backed requests per client IP per
	// RateWindow. Zero disables limiting.
	RateLimit  int
	RateWindow time.Duration
}

// Handler holds the dependencies shared by all endpoints
type Handler struct {
	catalog  *autotag.Catalog
	validate *validator.Validate
}

// NewRouter builds the HTTP handler:
//
//	GET    /healthz
//	GET    /metrics
//	POST   /tags
//	GET    /cuisines?prompt=
//	GET    /cuisines/mine       (token)
//	GET    /cuisines/{id}
//	POST   /cuisines            (token)
//	PUT    /cuisines/{id}       (token)
//	DELETE /cuisines/{id}       (token)
func NewRouter(opts Options) http.Handler {
	h := &Handler{
		catalog:  opts.Catalog,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", auth.HeaderName},
		MaxAge:         300,
	}))
	r.Use(instrument)

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	limited := func(r chi.Router) {
		if opts.RateLimit > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimit, opts.RateWindow))
		}
	}

	r.Group(func(r chi.Router) {
		limited(r)
		r.Post("/tags", h.Tags)
		r.Get("/cuisines", h.Search)
	})

	r.Get("/cuisines/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(opts.Auth.Require)
		r.Get("/cuisines/mine", h.ListMine)
		r.Delete("/cuisines/{id}", h.Delete)

		r.Group(func(r chi.Router) {
			limited(r)
			r.Post("/cuisines", h.Create)
			r.Put("/cuisines/{id}", h.Update)
		})
	})

	return r
}
