package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	cfgpkg "github.com/beaconhq/beacon/internal/config"
	"github.com/beaconhq/beacon/internal/eventlog"
	notifysvc "github.com/beaconhq/beacon/internal/services/notify"
)

// EventsController handles publish, poll, and long-poll endpoints.
type EventsController struct {
	cfg cfgpkg.Config
	svc *notifysvc.Service
}

// NewEventsController creates a new events controller.
func NewEventsController(cfg cfgpkg.Config, svc *notifysvc.Service) *EventsController {
	return &EventsController{cfg: cfg, svc: svc}
}

// RegisterRoutes registers event routes with the given mux.
//
// This method sets up HTTP endpoints for:
// - Publishing (/v1/publish)
// - Stateless polling (/v1/messages)
// - Bounded long-polling (/v1/poll)
// - Consumer group acks (/v1/ack, /v1/cursor)
func (c *EventsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/publish", c.handlePublish)
	mux.HandleFunc("/v1/messages", c.handleMessages)
	mux.HandleFunc("/v1/poll", c.handlePoll)
	mux.HandleFunc("/v1/ack", c.handleAck)
	mux.HandleFunc("/v1/cursor", c.handleCursor)
}

// handlePublish appends one event. Expects a JSON body with topic, payload,
// and optional headers. Returns the assigned sequence.
func (c *EventsController) handlePublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req publishReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Topic == "" {
		req.Topic = c.cfg.DefaultTopic
	}
	if req.Payload == "" {
		writeError(w, http.StatusBadRequest, "payload is required")
		return
	}
	item, err := c.svc.Publish(r.Context(), req.Topic, []byte(req.Payload), req.Headers)
	if err != nil {
		if errors.Is(err, notifysvc.ErrPayloadTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		writeServiceError(w, err, "failed to publish")
		return
	}
	writeJSON(w, publishResp{Seq: item.Seq, ProducedAtMs: item.ProducedAtMs})
}

// handleMessages returns recent events without blocking. With last_id set it
// returns everything newer; otherwise the newest `limit` events.
func (c *EventsController) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	topic := topicParam(r, c.cfg)
	q := r.URL.Query()

	if lastID := q.Get("last_id"); lastID != "" {
		items, cursor, err := c.svc.ReadSince(r.Context(), topic, parseUint(lastID), parseLimit(q.Get("limit")))
		if err != nil {
			writeServiceError(w, err, "failed to read")
			return
		}
		writeJSON(w, map[string]any{"events": toEventJSONs(items), "cursor": cursor})
		return
	}

	limit := parseLimit(q.Get("limit"))
	if limit == 0 {
		limit = c.cfg.ReplayLast
	}
	items, err := c.svc.ReadLast(r.Context(), topic, limit)
	if err != nil {
		writeServiceError(w, err, "failed to read")
		return
	}
	cursor := uint64(0)
	if n := len(items); n > 0 {
		cursor = items[n-1].Seq
	}
	writeJSON(w, map[string]any{"events": toEventJSONs(items), "cursor": cursor})
}

// handlePoll blocks until an event newer than last_id arrives or the window
// lapses. A timeout is a normal 200 response with status "timeout".
func (c *EventsController) handlePoll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	topic := topicParam(r, c.cfg)
	q := r.URL.Query()
	cursor := parseUint(q.Get("last_id"))
	timeout := pollTimeout(q.Get("timeout_ms"), c.cfg)

	res, err := c.svc.WaitForNew(r.Context(), topic, cursor, timeout, q.Get("filter"))
	if err != nil {
		if r.Context().Err() != nil {
			// Client went away; nothing to write.
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if res.TimedOut {
		writeJSON(w, pollResp{Status: "timeout", Cursor: res.Cursor})
		return
	}
	writeJSON(w, pollResp{Status: "new_data", Cursor: res.Cursor, Events: toEventJSONs(res.Items)})
}

// handleAck commits a consumer group cursor.
func (c *EventsController) handleAck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req ackReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Topic == "" {
		req.Topic = c.cfg.DefaultTopic
	}
	if req.Group == "" {
		writeError(w, http.StatusBadRequest, "group is required")
		return
	}
	if err := c.svc.Ack(r.Context(), req.Topic, req.Group, req.Seq); err != nil {
		if errors.Is(err, eventlog.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "unknown sequence")
			return
		}
		writeServiceError(w, err, "failed to ack")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCursor reports a consumer group's committed cursor.
func (c *EventsController) handleCursor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	topic := topicParam(r, c.cfg)
	group := r.URL.Query().Get("group")
	if group == "" {
		writeError(w, http.StatusBadRequest, "group is required")
		return
	}
	seq, err := c.svc.Cursor(topic, group)
	if err != nil {
		writeServiceError(w, err, "failed to read cursor")
		return
	}
	writeJSON(w, map[string]any{"topic": topic, "group": group, "cursor": seq})
}
