// Telemetry server for the armctl host
//
// Serves the host state over HTTP: Prometheus metrics at /metrics, a JSON
// state snapshot at /status, and a WebSocket stream of snapshots at /ws for
// live visualization clients.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	pkgerrors "github.com/pkg/errors"

	"armctl-go/pkg/log"
	"armctl-go/pkg/metrics"
)

// Snapshot is one point-in-time view of the host state, as published to
// /status and streamed over /ws.
type Snapshot struct {
	Timestamp       float64   `json:"timestamp"`
	Holding         bool      `json:"holding"`
	JointPositions  []float64 `json:"joint_positions"`
	JointVelocities []float64 `json:"joint_velocities"`
	ToolPosition    []float64 `json:"tool_position"`

	// ToolRotation is the end-effector rotation matrix, row major.
	ToolRotation []float64 `json:"tool_rotation"`

	ReferencePosition []float64 `json:"reference_position,omitempty"`
}

// SnapshotFunc produces the current host snapshot. It is called from server
// goroutines and must be safe to call concurrently with the control loop.
type SnapshotFunc func() Snapshot

// Config holds the telemetry server settings.
type Config struct {
	// Addr is the listen address, e.g. ":9100".
	Addr string

	// Snapshot produces the current host state.
	Snapshot SnapshotFunc

	// Metrics is the metrics sink served at /metrics. Optional.
	Metrics *metrics.ArmMetrics

	// StreamInterval is the WebSocket publish period. Zero selects 100ms.
	StreamInterval time.Duration

	Logger *log.Logger
}

// Server serves host telemetry over HTTP and WebSocket.
type Server struct {
	cfg      Config
	logger   *log.Logger
	server   *http.Server
	upgrader websocket.Upgrader

	mu      sync.Mutex
	running bool
}

// New creates a telemetry server.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Discard()
	}
	if cfg.StreamInterval <= 0 {
		cfg.StreamInterval = 100 * time.Millisecond
	}
	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWS)
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start runs the server, blocking until Shutdown.
func (s *Server) Start() error {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	s.logger.Info("telemetry server listening", "addr", s.cfg.Addr)
	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return pkgerrors.Wrap(err, "telemetry server")
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	if s.cfg.Metrics == nil {
		return
	}
	_, _ = w.Write([]byte(s.cfg.Metrics.Gather()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.cfg.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// handleWS upgrades the connection and streams snapshots at the configured
// interval until the client disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	s.logger.Debug("websocket client connected", "remote", conn.RemoteAddr().String())

	done := make(chan struct{})

	// Read pump: incoming frames are ignored, the read detects close.
	go func() {
		defer close(done)
		conn.SetReadLimit(4 * 1024)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.cfg.StreamInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(s.cfg.Snapshot()); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Warn("websocket write failed", "err", err)
				}
				return
			}
		}
	}
}
