package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"medsync/services/medsync/internal/health"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name clients pass to grpc.health.v1.Health/Check.
const ServiceName = "medsync"

// Server wraps the gRPC server
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	health     *grpchealth.Server
	checker    *health.Checker
}

// NewServer listens on port and serves the standard health service.
func NewServer(port int, checker *health.Checker) (*Server, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", port, err)
	}
	return NewServerWithListener(listener, checker), nil
}

// NewServerWithListener serves on an existing listener.
func NewServerWithListener(listener net.Listener, checker *health.Checker) *Server {
	grpcServer := grpc.NewServer()
	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	reflection.Register(grpcServer)

	s := &Server{
		grpcServer: grpcServer,
		listener:   listener,
		health:     hs,
		checker:    checker,
	}
	s.Refresh(context.Background())
	return s
}

// Refresh runs the checks once and publishes the result for both the
// overall ("") and the named service.
func (s *Server) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	report := s.checker.Run(ctx)
	if !report.Healthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		logrus.WithField("checks", report.Checks).Warn("health check failing")
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

// Monitor refreshes the status every interval until ctx ends.
func (s *Server) Monitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Start starts the gRPC server (blocking)
func (s *Server) Start() error {
	return s.grpcServer.Serve(s.listener)
}

// Stop gracefully stops the gRPC server
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

// GetAddr returns the server address
func (s *Server) GetAddr() string {
	return s.listener.Addr().String()
}
