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

package grpc

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	pb "github.com/jeremyhahn/go-quorum/api/proto/custodianv1"
	"github.com/jeremyhahn/go-quorum/pkg/crypto/field"
	"github.com/jeremyhahn/go-quorum/pkg/logging"
	"github.com/jeremyhahn/go-quorum/pkg/metrics"
	"github.com/jeremyhahn/go-quorum/pkg/ratelimit"
	"github.com/jeremyhahn/go-quorum/pkg/storage"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// DefaultStopTimeout bounds how long Stop waits for in-flight calls.
const DefaultStopTimeout = 30 * time.Second

// Server wraps the gRPC server with lifecycle management
type Server struct {
	service  *Service
	grpcSrv  *grpc.Server
	health   *health.Server
	limiter  *ratelimit.Limiter
	logger   logging.Logger
	host     string
	field    string
	stopWait time.Duration

	mu       sync.Mutex
	listener net.Listener
	port     int
}

// ServerConfig contains configuration for the gRPC server
type ServerConfig struct {
	// Host is the interface to bind. Empty binds all interfaces.
	Host string

	// Port to listen on. 0 picks an ephemeral port, see Port().
	Port int

	// NodeID identifies the node in logs.
	NodeID string

	// Field shares are decoded into. Defaults to field.Default().
	Field field.Field

	// StrictScalars rejects out-of-range coordinates instead of reducing them.
	StrictScalars bool

	// Store holds the shares. A new empty store is created when nil.
	Store *storage.ShareStore

	Logger logging.Logger

	// RateLimit configures per-peer throttling. Nil disables it.
	RateLimit *ratelimit.Config

	EnableLogging  bool
	EnableRecovery bool

	// StopTimeout bounds graceful shutdown. Defaults to DefaultStopTimeout.
	StopTimeout time.Duration

	// ServerOptions are appended to the server's own options, e.g.
	// credentials supplied by the embedding application.
	ServerOptions []grpc.ServerOption
}

// NewServer creates a new custodian gRPC server
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("grpc: server config is required")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("grpc: invalid port %d", cfg.Port)
	}

	log := cfg.Logger
	if log == nil {
		log = logging.NewSlogAdapter(&logging.SlogConfig{
			Level: logging.LevelInfo,
		})
	}

	service := NewService(&ServiceConfig{
		NodeID:        cfg.NodeID,
		Field:         cfg.Field,
		StrictScalars: cfg.StrictScalars,
		Store:         cfg.Store,
		Logger:        log,
	})

	stopWait := cfg.StopTimeout
	if stopWait == 0 {
		stopWait = DefaultStopTimeout
	}

	server := &Server{
		service:  service,
		health:   health.NewServer(),
		limiter:  ratelimit.New(cfg.RateLimit),
		logger:   log.With(logging.String("node_id", cfg.NodeID)),
		host:     cfg.Host,
		port:     cfg.Port,
		field:    service.field.Name(),
		stopWait: stopWait,
	}

	var unaryInterceptors []grpc.UnaryServerInterceptor
	var streamInterceptors []grpc.StreamServerInterceptor

	// Correlation first so every later log line carries the id
	unaryInterceptors = append(unaryInterceptors, server.correlationUnaryInterceptor)
	streamInterceptors = append(streamInterceptors, server.correlationStreamInterceptor)

	unaryInterceptors = append(unaryInterceptors, metrics.GRPCUnaryServerInterceptor())
	streamInterceptors = append(streamInterceptors, metrics.GRPCStreamServerInterceptor())

	if server.limiter.IsEnabled() {
		unaryInterceptors = append(unaryInterceptors, ratelimit.UnaryServerInterceptor(server.limiter))
		streamInterceptors = append(streamInterceptors, ratelimit.StreamServerInterceptor(server.limiter))
	}

	if cfg.EnableLogging {
		unaryInterceptors = append(unaryInterceptors, server.loggingUnaryInterceptor)
		streamInterceptors = append(streamInterceptors, server.loggingStreamInterceptor)
	}

	if cfg.EnableRecovery {
		unaryInterceptors = append(unaryInterceptors, server.recoveryUnaryInterceptor)
		streamInterceptors = append(streamInterceptors, server.recoveryStreamInterceptor)
	}

	unaryInterceptors = append(unaryInterceptors, errorHandlingUnaryInterceptor)
	streamInterceptors = append(streamInterceptors, errorHandlingStreamInterceptor)

	opts := []grpc.ServerOption{
		grpc.ForceServerCodec(pb.Codec()),
		grpc.ChainUnaryInterceptor(unaryInterceptors...),
		grpc.ChainStreamInterceptor(streamInterceptors...),
	}
	opts = append(opts, cfg.ServerOptions...)

	grpcSrv := grpc.NewServer(opts...)
	pb.RegisterCustodianServer(grpcSrv, service)
	healthpb.RegisterHealthServer(grpcSrv, server.health)

	server.grpcSrv = grpcSrv

	return server, nil
}

// Service returns the custodian service handled by the server.
func (s *Server) Service() *Service {
	return s.service
}

// Start listens on the configured host and port and serves until Stop is
// called.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.Port()))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(listener)
}

// Serve accepts connections on an existing listener until Stop is called.
func (s *Server) Serve(listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}
	port := s.port
	s.mu.Unlock()

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(pb.Custodian_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	s.logger.Info("Starting custodian gRPC server",
		logging.String("addr", listener.Addr().String()),
		logging.Int("port", port),
		logging.String("field", s.field))

	if err := s.grpcSrv.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop gracefully stops the gRPC server, forcing it down after the stop
// timeout.
func (s *Server) Stop() error {
	s.logger.Info("Stopping custodian gRPC server")

	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpcSrv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.logger.Info("gRPC server stopped gracefully")
	case <-time.After(s.stopWait):
		s.logger.Warn("Forcing gRPC server stop after timeout")
		s.grpcSrv.Stop()
	}

	s.limiter.Stop()
	return nil
}

// Port returns the port the server is listening on
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Addr returns the listener address, or "" before Serve.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
