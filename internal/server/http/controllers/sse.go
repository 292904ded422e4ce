package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	cfgpkg "github.com/beaconhq/beacon/internal/config"
	"github.com/beaconhq/beacon/internal/eventlog"
	notifysvc "github.com/beaconhq/beacon/internal/services/notify"
)

// SSEController streams events over Server-Sent Events.
type SSEController struct {
	cfg cfgpkg.Config
	svc *notifysvc.Service
}

// NewSSEController creates a new SSE controller.
func NewSSEController(cfg cfgpkg.Config, svc *notifysvc.Service) *SSEController {
	return &SSEController{cfg: cfg, svc: svc}
}

// RegisterRoutes registers the SSE route with the given mux.
func (c *SSEController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/events", c.handleEvents)
}

// sseSink implements the SubscribeSink interface for Server-Sent Events.
//
// Each event is framed with an id: line carrying the sequence so browsers
// resume via Last-Event-ID after a reconnect.
type sseSink struct {
	w http.ResponseWriter
	r *http.Request
}

// Send formats and writes one event per the SSE wire format.
func (s sseSink) Send(it notifysvc.SubscribeItem) error {
	b, _ := json.Marshal(toEventJSON(it))
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: message\ndata: %s\n\n", it.Seq, b); err != nil {
		return err
	}
	return nil
}

// Context returns the request context for cancellation.
func (s sseSink) Context() context.Context {
	return s.r.Context()
}

// Flush flushes the HTTP response writer if it supports flushing.
func (s sseSink) Flush() error {
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// handleEvents streams the topic to the client. The resume cursor comes
// from the Last-Event-ID header (set by browsers on reconnect) or the
// last_id query parameter; fresh connections replay the recent window.
func (c *SSEController) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	topic := topicParam(r, c.cfg)
	// Reject bad names before the stream headers are committed.
	if err := eventlog.ValidateTopic(topic); err != nil {
		writeError(w, http.StatusBadRequest, "invalid topic name")
		return
	}
	q := r.URL.Query()

	cursor := parseUint(q.Get("last_id"))
	if h := r.Header.Get("Last-Event-ID"); h != "" {
		if seq, err := strconv.ParseUint(h, 10, 64); err == nil {
			cursor = seq
		}
	}
	replay := c.cfg.ReplayLast
	if v := q.Get("replay"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			replay = n
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Ask clients to back off before reconnecting.
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", 3000)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	err := c.svc.Subscribe(r.Context(), topic, notifysvc.SubscribeOptions{
		Cursor:     cursor,
		ReplayLast: replay,
		Filter:     q.Get("filter"),
		Limit:      parseLimit(q.Get("limit")),
	}, sseSink{w: w, r: r})
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), r.Context().Err() != nil:
		// Client disconnected.
	case errors.Is(err, notifysvc.ErrSlowConsumer):
		// The stream already started; the client re-syncs via Last-Event-ID.
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
