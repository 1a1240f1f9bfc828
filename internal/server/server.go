// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-quorum.
//
// go-quorum is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package server runs a custodian node: the custodian gRPC service plus an
// optional HTTP listener for Prometheus metrics and health probes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeremyhahn/go-quorum/internal/config"
	grpcinternal "github.com/jeremyhahn/go-quorum/internal/grpc"
	"github.com/jeremyhahn/go-quorum/pkg/correlation"
	"github.com/jeremyhahn/go-quorum/pkg/health"
	"github.com/jeremyhahn/go-quorum/pkg/logging"
	"github.com/jeremyhahn/go-quorum/pkg/metrics"
	"github.com/jeremyhahn/go-quorum/pkg/ratelimit"
	"github.com/jeremyhahn/go-quorum/pkg/storage"
)

const (
	// ShutdownTimeout bounds graceful shutdown of all listeners.
	ShutdownTimeout = 30 * time.Second

	collectorInterval = 15 * time.Second
	readinessTimeout  = 2 * time.Second
)

// Server is a custodian node
type Server struct {
	config *config.Config
	logger logging.Logger
	store  *storage.ShareStore

	grpcServer   *grpcinternal.Server
	grpcListener net.Listener
	httpServer   *http.Server
	httpListener net.Listener

	healthChecker    *health.Checker
	metricsCollector *metrics.ResourceCollector

	// Lifecycle
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	errCh        chan error
	shutdownOnce sync.Once
	shutdownCh   chan struct{}
}

// Option customises a Server.
type Option func(*Server)

// WithLogger replaces the logger built from the logging configuration.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithStore supplies the share store instead of a new empty one.
func WithStore(store *storage.ShareStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// New creates a custodian node from cfg. Listeners are opened by Start.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server: config is required")
	}

	f, err := cfg.Field()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:     cfg,
		ctx:        ctx,
		cancel:     cancel,
		errCh:      make(chan error, 2),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = setupLogger(cfg.Logging)
	}
	if s.store == nil {
		s.store = storage.NewShareStore()
	}

	var rateLimit *ratelimit.Config
	if cfg.RateLimit.Enabled {
		rateLimit = &ratelimit.Config{
			Enabled:           true,
			RequestsPerMinute: cfg.RateLimit.RequestsPerMin,
			Burst:             cfg.RateLimit.Burst,
		}
	}

	s.grpcServer, err = grpcinternal.NewServer(&grpcinternal.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		NodeID:         cfg.Server.NodeID,
		Field:          f,
		StrictScalars:  cfg.Custody.StrictScalars,
		Store:          s.store,
		Logger:         s.logger,
		RateLimit:      rateLimit,
		EnableLogging:  true,
		EnableRecovery: true,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	s.initializeHealth()

	return s, nil
}

// setupLogger configures the logger based on config
func setupLogger(cfg config.LoggingConfig) logging.Logger {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	return logging.NewSlogAdapter(&logging.SlogConfig{
		Level:  level,
		Format: cfg.Format,
		Output: os.Stdout,
	})
}

// Version returns the build version from the module build information.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.version" && setting.Value != "" && setting.Value != "devel" {
			return setting.Value
		}
		if setting.Key == "vcs.revision" {
			if len(setting.Value) >= 7 {
				return setting.Value[:7]
			}
			return setting.Value
		}
	}

	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	return "dev"
}

// initializeHealth registers the node's readiness check: the gRPC
// listener must be open and accepting connections.
func (s *Server) initializeHealth() {
	s.healthChecker = health.NewChecker()

	s.healthChecker.RegisterCheck("grpc", health.WithTimeout("grpc", readinessTimeout,
		func(ctx context.Context) error {
			addr := s.grpcServer.Addr()
			if addr == "" {
				return errors.New("gRPC listener not started")
			}
			var d net.Dialer
			conn, err := d.DialContext(ctx, "tcp", addr)
			if err != nil {
				return fmt.Errorf("gRPC listener %s not accepting connections: %w", addr, err)
			}
			return conn.Close()
		}))
}

// Start opens the gRPC listener and, when enabled, the metrics listener,
// and serves both in the background. Call Shutdown even when Start fails.
func (s *Server) Start() error {
	s.logger.Info("Starting custodian node",
		logging.String("node_id", s.config.Server.NodeID),
		logging.String("version", Version()),
		logging.String("field", s.config.Custody.Field))

	grpcAddr := net.JoinHostPort(s.config.Server.Host, strconv.Itoa(s.config.Server.Port))
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", grpcAddr, err)
	}
	s.grpcListener = lis

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.grpcServer.Serve(lis); err != nil {
			s.logger.Error("gRPC server error", logging.Error(err))
			s.errCh <- err
		}
	}()

	if s.config.Metrics.Enabled {
		if err := s.startMetrics(); err != nil {
			return err
		}
	} else {
		metrics.Disable()
	}

	s.healthChecker.MarkStarted()
	s.logger.Info("Custodian node started", logging.String("grpc_addr", lis.Addr().String()))

	return nil
}

// startMetrics starts the resource collector and the HTTP listener serving
// Prometheus metrics and health probes.
func (s *Server) startMetrics() error {
	metrics.Enable()
	s.metricsCollector = metrics.StartResourceCollector(s.ctx, collectorInterval, s.store.Len)

	addr := net.JoinHostPort(s.config.Server.Host, strconv.Itoa(s.config.Metrics.Port))
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen for metrics on %s: %w", addr, err)
	}
	s.httpListener = lis

	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Starting metrics server",
		logging.String("address", lis.Addr().String()),
		logging.String("path", s.config.Metrics.Path))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server error", logging.Error(err))
			s.errCh <- err
		}
	}()

	return nil
}

// Router builds the HTTP handler for metrics and health probes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(correlation.Middleware)
	r.Use(metrics.HTTPMiddleware)

	path := s.config.Metrics.Path
	if path == "" {
		path = "/metrics"
	}
	r.Handle(path, promhttp.Handler())
	r.Mount("/healthz", health.Router(s.healthChecker))

	return r
}

// Run starts the node and blocks until ctx is cancelled or a listener
// fails, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		_ = s.Shutdown()
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutdown requested")
	case runErr = <-s.errCh:
	}

	if err := s.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown gracefully shuts down all listeners. It is safe to call more
// than once.
func (s *Server) Shutdown() error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info("Shutting down custodian node...")
		s.healthChecker.MarkNotStarted()

		if s.metricsCollector != nil {
			s.metricsCollector.Stop()
		}
		s.cancel()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("Error shutting down metrics server", logging.Error(err))
				shutdownErr = err
			}
		}

		if err := s.grpcServer.Stop(); err != nil {
			s.logger.Error("Error shutting down gRPC server", logging.Error(err))
			shutdownErr = err
		}

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			s.logger.Info("All listeners stopped")
		case <-shutdownCtx.Done():
			s.logger.Warn("Shutdown timeout exceeded, forcing stop")
		}

		close(s.shutdownCh)
		s.logger.Info("Custodian node shutdown complete",
			logging.Int("shares_held", s.store.Len()))
	})

	return shutdownErr
}

// WaitForShutdown blocks until the server is shut down
func (s *Server) WaitForShutdown() {
	<-s.shutdownCh
}

// GRPCAddr returns the gRPC listener address, or "" before Start.
func (s *Server) GRPCAddr() string {
	if s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// HTTPAddr returns the metrics listener address, or "" when disabled.
func (s *Server) HTTPAddr() string {
	if s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// Store returns the node's share store.
func (s *Server) Store() *storage.ShareStore {
	return s.store
}

// HealthChecker returns the node's health checker.
func (s *Server) HealthChecker() *health.Checker {
	return s.healthChecker
}

// SetupSignalHandler returns a context cancelled on SIGINT or SIGTERM.
func SetupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signalCh
		slog.Info("Received shutdown signal")
		cancel()
	}()

	return ctx
}
