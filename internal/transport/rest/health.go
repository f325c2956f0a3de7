// Package rest serves the plain HTTP endpoints of the gateway.
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// dbPinger defines the minimal interface for DB health checks.
type dbPinger interface {
	Ping(ctx context.Context) error
}

// busProbe reports whether a shared bus is connected. The in-process bus
// has no probe.
type busProbe interface {
	Listening() bool
}

// connCounter reports the number of open gateway connections.
type connCounter interface {
	Count() int
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	db      dbPinger
	bus     busProbe
	conns   connCounter
	version string
}

// NewHealthHandler creates a HealthHandler. bus may be nil.
func NewHealthHandler(db dbPinger, bus busProbe, conns connCounter, version string) *HealthHandler {
	return &HealthHandler{db: db, bus: bus, conns: conns, version: version}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status      string                `json:"status"`
	Version     string                `json:"version,omitempty"`
	Components  map[string]CompStatus `json:"components,omitempty"`
	Connections *int                  `json:"connections,omitempty"`
	Timestamp   time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready is the readiness probe: 200 when the database answers and the bus
// (if shared) is listening, 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil || !h.busUp() {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "down",
			Timestamp: time.Now(),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Health is the full health check: DB ping with latency, bus state, open
// connections and version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	components := make(map[string]CompStatus)
	overallStatus := "ok"

	start := time.Now()
	err := h.db.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		components["database"] = CompStatus{Status: "down"}
		overallStatus = "down"
	} else {
		components["database"] = CompStatus{
			Status:  "ok",
			Latency: latency.String(),
		}
	}

	if h.bus != nil {
		if h.bus.Listening() {
			components["bus"] = CompStatus{Status: "ok"}
		} else {
			components["bus"] = CompStatus{Status: "down"}
			overallStatus = "down"
		}
	}

	status := http.StatusOK
	if overallStatus != "ok" {
		status = http.StatusServiceUnavailable
	}

	resp := HealthResponse{
		Status:     overallStatus,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	}
	if h.conns != nil {
		n := h.conns.Count()
		resp.Connections = &n
	}

	writeJSON(w, status, resp)
}

func (h *HealthHandler) busUp() bool {
	return h.bus == nil || h.bus.Listening()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
