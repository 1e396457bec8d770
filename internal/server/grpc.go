package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// HealthCheckInterval is how often the gRPC serving status is refreshed.
const HealthCheckInterval = 15 * time.Second

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewGRPCServer creates a gRPC server with standard interceptors, registers
// the health service and reflection, and returns both ready to serve.
func NewGRPCServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			LoggingInterceptor,
		),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return srv, hs
}

// WatchHealth sets the overall serving status of hs from p.Ping, once
// immediately and then every interval, until ctx is done. On return the
// status is set to NOT_SERVING.
func WatchHealth(ctx context.Context, hs *health.Server, p Pinger, interval time.Duration, logger *slog.Logger) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		if err := p.Ping(pingCtx); err != nil {
			logger.Warn("store ping failed", "error", err)
			hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			return
		}
		hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			return
		case <-ticker.C:
			check()
		}
	}
}
