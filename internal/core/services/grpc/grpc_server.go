package grpc

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// TrafficService is the health-check name of the realtime traffic feed.
const TrafficService = "navify.traffic"

// GrpcServer exposes the standard gRPC health service for the traffic feed.
type GrpcServer struct {
	server *grpc.Server
	health *health.Server
}

func NewGrpcServer() *GrpcServer {
	s := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	hs.SetServingStatus(TrafficService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &GrpcServer{server: s, health: hs}
}

// SetServing flips the traffic service (and the overall server) status.
func (g *GrpcServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	g.health.SetServingStatus(TrafficService, status)
	g.health.SetServingStatus("", status)
}

// Serve marks the traffic service SERVING and blocks until ctx is cancelled
// or the listener fails.
func (g *GrpcServer) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		g.health.Shutdown()
		g.server.GracefulStop()
	}()

	g.SetServing(true)
	slog.Info("gRPC health service ready", "addr", lis.Addr().String(), "service", TrafficService)

	if err := g.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
