package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/beaconhq/beacon/internal/runtime"
	"github.com/beaconhq/beacon/internal/server/http/controllers"
	notifysvc "github.com/beaconhq/beacon/internal/services/notify"
	idpkg "github.com/beaconhq/beacon/pkg/id"
	logpkg "github.com/beaconhq/beacon/pkg/log"
)

// Server hosts every HTTP transport: JSON polling, long-poll, SSE, and
// WebSocket, all backed by one notify service so sequences line up across
// transports.
type Server struct {
	rt     *runtime.Runtime
	srv    *http.Server
	lis    net.Listener
	svc    *notifysvc.Service
	logger logpkg.Logger
	ids    *idpkg.Generator
}

// New builds a Server around the runtime. A nil logger gets a default.
func New(rt *runtime.Runtime, logger logpkg.Logger) *Server {
	if logger == nil {
		logger = logpkg.NewLogger().With(logpkg.Component("http"))
	}
	svc := notifysvc.NewWithLogger(rt, logger.With(logpkg.Component("notify")))
	s := &Server{rt: rt, svc: svc, logger: logger, ids: idpkg.NewGenerator()}

	mux := http.NewServeMux()
	controllers.NewControllerRegistry(rt, svc, logger.With(logpkg.Component("ws"))).RegisterAllRoutes(mux)

	s.srv = &http.Server{Handler: cors(s.withRequestID(mux))}
	return s
}

// Service exposes the underlying notify service, mainly for embedding the
// server in tests and the demo producer.
func (s *Server) Service() *notifysvc.Service { return s.svc }

// Handler returns the fully wrapped handler, for httptest servers.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// ListenAndServe serves until ctx is done, then shuts down gracefully.
// Request contexts derive from a base context canceled at shutdown, so
// streaming handlers (SSE, WebSocket) exit instead of riding out the drain;
// Shutdown alone never cancels in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	s.srv.BaseContext = func(net.Listener) context.Context { return baseCtx }

	s.logger.With(logpkg.Str("addr", l.Addr().String())).Info("http.listening")
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cancelBase()
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Addr reports the bound listen address, empty before ListenAndServe.
func (s *Server) Addr() string {
	if s.lis == nil {
		return ""
	}
	return s.lis.Addr().String()
}

// Close tears the listener down without draining.
func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

// withRequestID tags each request with a sortable id, echoes it in the
// response, and makes it available to handler logging via the context.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-Id")
		if rid == "" {
			rid = s.ids.Next().String()
		}
		w.Header().Set("X-Request-Id", rid)
		ctx := context.WithValue(r.Context(), logpkg.RequestIDKey, rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Last-Event-ID, X-Request-Id")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
