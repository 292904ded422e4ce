package controllers

import (
	"net/http"

	"github.com/beaconhq/beacon/internal/runtime"
	notifysvc "github.com/beaconhq/beacon/internal/services/notify"
	logpkg "github.com/beaconhq/beacon/pkg/log"
)

// ControllerRegistry manages all HTTP controllers.
//
// It provides a centralized way to register all controller routes
// and manages the lifecycle of individual controllers.
type ControllerRegistry struct {
	general *GeneralController
	events  *EventsController
	sse     *SSEController
	ws      *WSController
}

// NewControllerRegistry creates a new controller registry.
//
// It initializes all controllers with the provided runtime and service.
func NewControllerRegistry(rt *runtime.Runtime, svc *notifysvc.Service, logger logpkg.Logger) *ControllerRegistry {
	return &ControllerRegistry{
		general: NewGeneralController(rt, svc),
		events:  NewEventsController(rt.Config(), svc),
		sse:     NewSSEController(rt.Config(), svc),
		ws:      NewWSController(rt.Config(), svc, logger),
	}
}

// RegisterAllRoutes registers all controller routes with the given mux.
//
// This method sets up every transport endpoint: health and stats, publish
// and polling, SSE, and WebSocket.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.events.RegisterRoutes(mux)
	r.sse.RegisterRoutes(mux)
	r.ws.RegisterRoutes(mux)
}
