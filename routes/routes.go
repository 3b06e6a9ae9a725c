package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/newsletter/app"
	"github.com/upb/newsletter/handlers"
	"github.com/upb/newsletter/middleware"
	"github.com/upb/newsletter/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware. Tracing wraps Recoverer so recovered panics are
	// recorded as 500s on the request span.
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestTracing(deps.Logger, deps.Metrics))
	r.Use(chimiddleware.Recoverer)
	if timeout := deps.Config.Server.RequestTimeout; timeout > 0 {
		r.Use(chimiddleware.Timeout(timeout))
	}

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Config.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "traceparent", "tracestate"},
		MaxAge:         300,
	}))

	var db handlers.DatabaseChecker
	if deps.DB != nil {
		db = deps.DB
	}
	health := handlers.NewHealthHandler(db, deps.Logger)
	subscriptions := handlers.NewSubscriptionHandler(deps.Subscriptions, deps.Metrics, deps.Logger)

	// Health check endpoints
	r.Get("/health_check", health.HandleHealthCheck)
	r.Get("/readyz", health.HandleReadiness)

	r.Post("/subscriptions", subscriptions.HandleSubscribe)

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteMethodNotAllowed(w, "")
	})

	return r
}
