package grpcserver

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is reported alongside the overall ("") status.
const ServiceName = "guessingGame"

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthMonitor keeps the gRPC health status in line with database reachability.
type HealthMonitor struct {
	hs       *health.Server
	db       Pinger
	interval time.Duration
	logger   *slog.Logger
}

func NewHealthMonitor(db Pinger, interval time.Duration, logger *slog.Logger) *HealthMonitor {
	return &HealthMonitor{
		hs:       health.NewServer(),
		db:       db,
		interval: interval,
		logger:   logger.With("component", "health"),
	}
}

// Check pings the database once and publishes the result.
func (m *HealthMonitor) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := m.db.PingContext(ctx); err != nil {
		m.logger.Warn("database ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	m.hs.SetServingStatus("", status)
	m.hs.SetServingStatus(ServiceName, status)
	return status
}

// Run checks immediately and then every interval until ctx is done.
func (m *HealthMonitor) Run(ctx context.Context) {
	m.Check(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Serve registers the health service on a new gRPC server and serves lis in
// the background. It returns a shutdown function. The monitor is not started.
func Serve(lis net.Listener, m *HealthMonitor) func(context.Context) error {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, m.hs)

	go func() {
		if err := srv.Serve(lis); err != nil {
			m.logger.Error("serve failed", "error", err)
		}
	}()

	return func(ctx context.Context) error {
		m.hs.Shutdown()
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}
}

// StartHealth listens on addr, serves the health service there and runs the
// monitor until the returned shutdown function is called.
func StartHealth(addr string, m *HealthMonitor) (func(context.Context) error, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	runCtx, stopMonitor := context.WithCancel(context.Background())
	go m.Run(runCtx)
	shutdown := Serve(lis, m)
	return func(ctx context.Context) error {
		stopMonitor()
		return shutdown(ctx)
	}, nil
}
