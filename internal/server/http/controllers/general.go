package controllers

import (
	"net/http"

	"github.com/beaconhq/beacon/internal/runtime"
	notifysvc "github.com/beaconhq/beacon/internal/services/notify"
)

// GeneralController handles endpoints that are not tied to a single topic:
// health, topic listing, and stats.
type GeneralController struct {
	rt  *runtime.Runtime
	svc *notifysvc.Service
}

// NewGeneralController creates a new general controller.
func NewGeneralController(rt *runtime.Runtime, svc *notifysvc.Service) *GeneralController {
	return &GeneralController{rt: rt, svc: svc}
}

// RegisterRoutes registers general routes with the given mux.
func (c *GeneralController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/healthz", c.handleHealth)
	mux.HandleFunc("/v1/topics", c.handleListTopics)
	mux.HandleFunc("/v1/stats", c.handleStats)
}

// handleHealth returns 200 with {"status": "ok"} when storage responds,
// 503 otherwise.
func (c *GeneralController) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := c.rt.CheckHealth(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_serving")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleListTopics lists known topic names.
func (c *GeneralController) handleListTopics(w http.ResponseWriter, r *http.Request) {
	metas, err := c.rt.ListTopics()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list topics")
		return
	}
	names := make([]string, 0, len(metas))
	for _, m := range metas {
		names = append(names, m.Name)
	}
	writeJSON(w, map[string]any{"topics": names})
}

// handleStats returns per-topic sequence ranges and live subscriber counts.
func (c *GeneralController) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.svc.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to collect stats")
		return
	}
	writeJSON(w, map[string]any{"topics": stats})
}
