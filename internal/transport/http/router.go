package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gatehouse/internal/platform/metrics"
	"gatehouse/internal/platform/middleware"
	"gatehouse/internal/transport/http/shared"
)

// Registrar is implemented by every module handler.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter wires the middleware chain, the health and metrics endpoints,
// and every module's routes.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	r.Use(m.Latency)

	r.Get("/health", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
