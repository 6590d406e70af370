// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package observability serves the metrics and health probes of a wardrobe
// process over HTTP.
package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"
)

// ReadinessChecker reports whether the process serves requests yet.
type ReadinessChecker func() bool

// Server exposes /metrics and the /healthz probes.
type Server struct {
	addr       string
	listener   net.Listener
	httpServer *http.Server
	registry   *prometheus.Registry
	isReady    ReadinessChecker
	logger     *slog.Logger
	running    atomic.Bool
}

// NewServer creates a server for the metrics of registry. The Go and
// process collectors are added to it. addr is "host:port"; port 0 picks a
// free port.
func NewServer(addr string, registry *prometheus.Registry, ready ReadinessChecker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return &Server{
		addr:     addr,
		registry: registry,
		isReady:  ready,
		logger:   logger,
	}
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	mux.HandleFunc("GET /healthz/liveness", func(w http.ResponseWriter, _ *http.Request) {
		probe(w, true)
	})
	mux.HandleFunc("GET /healthz/readiness", func(w http.ResponseWriter, _ *http.Request) {
		probe(w, s.isReady == nil || s.isReady())
	})
	return mux
}

// Start listens and serves in the background. The returned channel receives
// a serve failure and is closed when the server stops.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Code("METRICS_SERVER_RUNNING").Errorf("observability server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.Code("METRICS_LISTEN_FAILED").With("addr", s.addr).Wrap(err)
	}
	s.listener = listener
	s.httpServer = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func(srv *http.Server) {
		defer close(errCh)
		err := srv.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return
		}
		s.logger.Error("observability server failed", "error", err)
		errCh <- err
	}(s.httpServer)

	s.logger.Info("observability server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop shuts the server down. Stopping a stopped server is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.running.Store(true)
		return oops.Code("METRICS_SHUTDOWN_FAILED").Wrap(err)
	}
	s.logger.Info("observability server stopped")
	return nil
}

// Addr returns the listening address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func probe(w http.ResponseWriter, ok bool) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	body := "ok\n"
	if !ok {
		w.WriteHeader(http.StatusServiceUnavailable)
		body = "not ready\n"
	}
	_, _ = io.WriteString(w, body)
}
