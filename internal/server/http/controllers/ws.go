package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	cfgpkg "github.com/beaconhq/beacon/internal/config"
	"github.com/beaconhq/beacon/internal/eventlog"
	notifysvc "github.com/beaconhq/beacon/internal/services/notify"
	logpkg "github.com/beaconhq/beacon/pkg/log"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 45 * time.Second
)

// WSController serves a bidirectional WebSocket transport. Connected clients
// receive every topic event; text frames they send are published back to the
// topic, so all transports (and other WS clients) observe them.
type WSController struct {
	cfg    cfgpkg.Config
	svc    *notifysvc.Service
	logger logpkg.Logger

	upgrader websocket.Upgrader
}

// NewWSController creates a new WebSocket controller.
func NewWSController(cfg cfgpkg.Config, svc *notifysvc.Service, logger logpkg.Logger) *WSController {
	if logger == nil {
		logger = logpkg.NewLogger().With(logpkg.Component("ws"))
	}
	return &WSController{
		cfg:    cfg,
		svc:    svc,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from any origin, same policy as CORS.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// RegisterRoutes registers the WebSocket route with the given mux.
func (c *WSController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/ws", c.handleWS)
}

// wsSink implements SubscribeSink over a WebSocket connection. The mutex is
// shared with the ping loop; gorilla connections allow one writer at a time.
type wsSink struct {
	ctx  context.Context
	conn *websocket.Conn
	mu   *sync.Mutex
}

func (s wsSink) Send(it notifysvc.SubscribeItem) error {
	b, _ := json.Marshal(map[string]any{"type": "event", "event": toEventJSON(it)})
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.conn.WriteMessage(websocket.TextMessage, b)
}

func (s wsSink) Context() context.Context { return s.ctx }

// Flush is a no-op; WriteMessage frames are delivered as written.
func (s wsSink) Flush() error { return nil }

func (c *WSController) handleWS(w http.ResponseWriter, r *http.Request) {
	topic := topicParam(r, c.cfg)
	if err := eventlog.ValidateTopic(topic); err != nil {
		writeError(w, http.StatusBadRequest, "invalid topic name")
		return
	}
	q := r.URL.Query()
	name := q.Get("name")
	if name == "" {
		name = "anonymous"
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var writeMu sync.Mutex
	logger := c.logger.With(logpkg.Str("topic", topic), logpkg.Str("name", name))
	logger.Info("ws.connected")

	joinMsg, _ := json.Marshal(map[string]string{"kind": "system", "text": name + " joined"})
	if _, err := c.svc.Publish(ctx, topic, joinMsg, wsHeaders(name, "join")); err != nil {
		logger.With(logpkg.Err(err)).Warn("ws.join_publish_failed")
	}

	// Push topic events to this client until it disconnects.
	subDone := make(chan error, 1)
	go func() {
		subDone <- c.svc.Subscribe(ctx, topic, notifysvc.SubscribeOptions{
			Cursor:     parseUint(q.Get("last_id")),
			ReplayLast: c.cfg.ReplayLast,
			Filter:     q.Get("filter"),
		}, wsSink{ctx: ctx, conn: conn, mu: &writeMu})
	}()

	// Keepalive pings; a missed pong tears the read loop down.
	go func() {
		t := time.NewTicker(wsPingPeriod)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				writeMu.Lock()
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				err := conn.WriteMessage(websocket.PingMessage, nil)
				writeMu.Unlock()
				if err != nil {
					cancel()
					return
				}
			}
		}
	}()

	conn.SetReadLimit(int64(c.cfg.PayloadMaxBytes))
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// Read loop: every text frame from the client becomes a published event.
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if kind != websocket.TextMessage || len(data) == 0 {
			continue
		}
		if _, err := c.svc.Publish(ctx, topic, data, wsHeaders(name, "chat")); err != nil {
			logger.With(logpkg.Err(err)).Warn("ws.publish_failed")
		}
	}
	cancel()

	leaveMsg, _ := json.Marshal(map[string]string{"kind": "system", "text": name + " left"})
	if _, err := c.svc.Publish(context.Background(), topic, leaveMsg, wsHeaders(name, "leave")); err != nil {
		logger.With(logpkg.Err(err)).Warn("ws.leave_publish_failed")
	}
	logger.Info("ws.disconnected")
	<-subDone
}

func wsHeaders(name, kind string) map[string]string {
	return map[string]string{"source": "ws", "name": name, "kind": kind}
}
