package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// HealthService reports whether the dependencies are reachable.
type HealthService interface {
	Probe(ctx context.Context) error
}

// RouterDependencies collects handler dependencies.
type RouterDependencies struct {
	REST           *RESTHandlers
	Health         HealthService
	RPC            http.Handler
	WS             http.Handler
	AllowedOrigins []string
}

// NewRouter wires the HTTP routes.
func NewRouter(logger *slog.Logger, deps RouterDependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	if len(deps.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: deps.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost,
				http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		payload := map[string]string{"status": "ok"}

		if deps.Health != nil {
			if err := deps.Health.Probe(ctx); err != nil {
				logger.Error("health probe failed", "error", err)
				status = http.StatusServiceUnavailable
				payload["status"] = "degraded"
			}
		}

		respondJSON(w, status, payload)
	})

	if h := deps.REST; h != nil {
		r.Route("/api", func(r chi.Router) {
			r.Get("/transactions", h.listTransactions)
			r.Post("/transactions", h.recordTransaction)
			r.Get("/rewards", h.listRewards)
			r.Get("/rewards/eligible", h.eligibleTransactions)
			r.Post("/rewards/claim", h.claimReward)
			r.Get("/profile", h.profile)
			r.Get("/usernames/{name}", h.resolveUsername)
			r.Post("/usernames", h.registerUsername)
		})
	}

	if deps.RPC != nil {
		r.Handle("/rpc", deps.RPC)
	}
	if deps.WS != nil {
		r.Handle("/ws", deps.WS)
	}

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
