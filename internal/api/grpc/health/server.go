package health

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/micromax/isara-emulator/internal/logger"
)

// ServiceEmulator is the service name reporting overall readiness.
const ServiceEmulator = ""

// Server serves the gRPC health-checking protocol.
type Server struct {
	// grpcServer hosts the health service.
	grpcServer *grpc.Server
	// health tracks the serving status of each service.
	health *grpchealth.Server
}

// NewServer creates a health server with every service in NOT_SERVING state.
func NewServer(services ...string) *Server {
	s := &Server{
		grpcServer: grpc.NewServer(),
		health:     grpchealth.NewServer(),
	}

	healthpb.RegisterHealthServer(s.grpcServer, s.health)

	s.health.SetServingStatus(ServiceEmulator, healthpb.HealthCheckResponse_NOT_SERVING)

	for _, service := range services {
		s.health.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)
	}

	return s
}

// SetServing marks a service as serving or not.
func (s *Server) SetServing(service string, serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}

	s.health.SetServingStatus(service, status)
}

// Serve answers health checks on lis until ctx is done.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	ctx = logger.WithName(ctx, "health")

	logger.InfoKV(ctx, "Health server listening", "address", lis.Addr().String())

	// Closed after GracefulStop returns so Serve never outlives the shutdown.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		close(done)
	}()

	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "Health server stopped")

	return nil
}
