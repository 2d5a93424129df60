package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vncsmyrnk/accounts/internal/core/ports"
	"github.com/vncsmyrnk/accounts/internal/logging"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

func NewHandler(authService ports.AuthService, userService ports.UserService, db Pinger, reg *prometheus.Registry) http.Handler {
	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	metrics := NewMetrics(reg)
	authenticate := Authenticate(authService)

	r := chi.NewRouter()
	r.Use(withCorrelationID)
	r.Use(withRequestLogging)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/healthz", health(db))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Post("/login", authHandler.Login)
	r.With(authenticate).Post("/verify", authHandler.Verify)
	r.With(authenticate).Post("/refresh", authHandler.Refresh)

	r.Route("/user", func(r chi.Router) {
		r.Post("/", userHandler.Register)
		r.Post("/confirm", userHandler.Confirm)
		r.With(authenticate).Get("/", userHandler.GetMe)
		r.With(authenticate).Delete("/", userHandler.Remove)
	})
	r.With(authenticate).Put("/password", userHandler.ChangePassword)

	return r
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorEnvelope{
				Error:         "database unavailable",
				CorrelationID: logging.CorrelationID(r.Context()),
			})
			return
		}
		writeData(w, r, http.StatusOK, "ok")
	}
}
