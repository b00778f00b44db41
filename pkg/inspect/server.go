package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weft-ui/weft/pkg/scene"
	"github.com/weft-ui/weft/pkg/weft"
)

// Server exposes a running App over HTTP for inspection: scene-graph
// snapshots, subscription counts, Prometheus metrics and a WebSocket stats
// stream. It is a development and operations surface; nothing in the
// reactive core depends on it.
type Server struct {
	app      *weft.App
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	interval time.Duration

	upgrader websocket.Upgrader

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer serves /metrics from the given Prometheus gatherer. Pass the
// same registry handed to weft.WithMetrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger replaces the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithStatsInterval sets the push interval of the /live stream.
func WithStatsInterval(d time.Duration) Option {
	return func(s *Server) { s.interval = d }
}

// NewServer creates an inspection server for app.
func NewServer(app *weft.App, opts ...Option) *Server {
	s := &Server{
		app:      app,
		interval: time.Second,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Inspection is a local development surface.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "inspect")
	}
	return s
}

// Router returns the HTTP handler. Embeddings with their own server mount
// it instead of calling Start.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/scene", s.handleScene)
	r.Get("/registry", s.handleRegistry)
	r.Get("/live", s.handleLive)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Start listens on addr (":0" picks an ephemeral port) and serves in the
// background. It returns the bound address.
func (s *Server) Start(addr string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String(), nil
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("inspect listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.server = server
	s.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("inspect server failed", "error", err)
		}
	}()

	s.logger.Info("inspect server listening", "addr", listener.Addr().String())
	return listener.Addr().String(), nil
}

// Shutdown stops the server, waiting briefly for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleScene serves a deep snapshot of the host scene graph. Only the
// in-memory tree host supports snapshots; other hosts get 503.
func (s *Server) handleScene(w http.ResponseWriter, _ *http.Request) {
	tree, ok := s.app.Host().(*scene.Tree)
	if !ok {
		http.Error(w, "host does not support snapshots", http.StatusServiceUnavailable)
		return
	}

	resp := struct {
		Nodes int                  `json:"nodes"`
		Roots []scene.SnapshotNode `json:"roots"`
	}{
		Nodes: tree.NodeCount(),
		Roots: tree.Snapshot(),
	}
	writeJSON(w, s.logger, resp)
}

// Stats is one point-in-time reading of the app, served by /registry and
// streamed by /live.
type Stats struct {
	Subscriptions int   `json:"subscriptions"`
	Roots         int   `json:"roots"`
	Nodes         int   `json:"nodes,omitempty"`
	Timestamp     int64 `json:"timestamp"`
}

func (s *Server) stats() Stats {
	st := Stats{
		Subscriptions: s.app.Registry().LiveCount(),
		Roots:         len(s.app.Roots()),
		Timestamp:     time.Now().UnixMilli(),
	}
	if tree, ok := s.app.Host().(*scene.Tree); ok {
		st.Nodes = tree.NodeCount()
	}
	return st
}

func (s *Server) handleRegistry(w http.ResponseWriter, _ *http.Request) {
	type rootInfo struct {
		Node          scene.NodeID `json:"node"`
		State         string       `json:"state"`
		Subscriptions int          `json:"subscriptions"`
	}
	roots := s.app.Roots()
	resp := struct {
		Stats
		RootDetails []rootInfo `json:"rootDetails,omitempty"`
	}{Stats: s.stats()}
	for _, h := range roots {
		resp.RootDetails = append(resp.RootDetails, rootInfo{
			Node:          h.NodeID(),
			State:         h.State().String(),
			Subscriptions: s.app.Registry().LiveCountFor(h.NodeID()),
		})
	}
	writeJSON(w, s.logger, resp)
}

// handleLive upgrades to WebSocket and pushes Stats on a fixed interval
// until the client disconnects.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Drain client frames so close and ping are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// First reading immediately, then one per interval.
	if err := conn.WriteJSON(s.stats()); err != nil {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteJSON(s.stats()); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Error("encode response", "error", err)
		http.Error(w, "encode error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
