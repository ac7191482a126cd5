// Package health serves liveness, readiness and Prometheus metrics endpoints
// while the CLI runs.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Checker reports whether one dependency is usable
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker
type CheckerFunc func(ctx context.Context) error

// Check calls f
func (f CheckerFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// Server is a lightweight HTTP server for probes and metrics scraping.
type Server struct {
	serviceName string
	version     string
	port        int
	metricsPath string
	metrics     http.Handler
	checks      map[string]Checker
	logger      *logrus.Logger

	server *http.Server
	mu     sync.RWMutex
	ready  bool
}

// Config holds the configuration for the server.
type Config struct {
	ServiceName string
	Version     string
	Port        int
	MetricsPath string
	Metrics     http.Handler
	Checks      map[string]Checker
	Logger      *logrus.Logger
}

// NewServer creates a new probe server. Port 0 picks a free port on Start.
func NewServer(cfg Config) *Server {
	path := cfg.MetricsPath
	if path == "" {
		path = "/metrics"
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
		port:        cfg.Port,
		metricsPath: path,
		metrics:     cfg.Metrics,
		checks:      cfg.Checks,
		logger:      log,
	}
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Handler returns the server's routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/live", s.handleLive)
	if s.metrics != nil {
		mux.Handle(s.metricsPath, s.metrics)
	}
	return mux
}

// Start binds the listener and serves in the background until ctx is done.
// It returns the bound address.
func (s *Server) Start(ctx context.Context) (string, error) {
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(s.port))
	if err != nil {
		return "", fmt.Errorf("failed to bind probe server: %w", err)
	}

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	addr := ln.Addr().String()
	go func() {
		s.logger.WithFields(logrus.Fields{
			"addr":    addr,
			"service": s.serviceName,
			"metrics": s.metricsPath,
		}).Info("Probe server starting")

		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("Probe server error")
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()

	return addr, nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("Probe server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.version,
	})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: s.serviceName})
}

// handleReady runs every registered check
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string, len(s.checks)+1)
	allHealthy := true

	if !s.IsReady() {
		allHealthy = false
		checks["service"] = "not_ready"
	} else {
		checks["service"] = "ok"
	}

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	for _, name := range names {
		if err := s.checks[name].Check(ctx); err != nil {
			allHealthy = false
			checks[name] = fmt.Sprintf("error: %v", err)
		} else {
			checks[name] = "ok"
		}
	}

	response := ReadyResponse{
		Status:   "ok",
		Service:  s.serviceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}
	status := http.StatusOK
	if !allHealthy {
		response.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
