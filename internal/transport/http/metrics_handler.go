package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// StatsProvider reports runtime counters as a JSON-friendly map
type StatsProvider interface {
	Stats() map[string]interface{}
}

// MetricsHandler exposes the Prometheus scrape endpoint and the websocket
// hub counters
type MetricsHandler struct {
	prometheus http.Handler
	hub        StatsProvider
}

// NewMetricsHandler creates a metrics handler. prometheus is nil when
// metrics are disabled.
func NewMetricsHandler(prometheus http.Handler, hub StatsProvider) *MetricsHandler {
	return &MetricsHandler{prometheus: prometheus, hub: hub}
}

// Routes sets up the JSON metrics routes, mounted at /api/metrics
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/websocket", h.GetWebSocketStats)
	return r
}

// Prometheus handles GET /metrics
func (h *MetricsHandler) Prometheus(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		http.Error(w, "metrics disabled", http.StatusNotFound)
		return
	}
	h.prometheus.ServeHTTP(w, r)
}

// GetWebSocketStats returns the hub counters
func (h *MetricsHandler) GetWebSocketStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.hub.Stats())
}
