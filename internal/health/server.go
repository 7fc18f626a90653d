// Package health runs the gRPC health service, tracking storage reachability.
package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/thatlq1812/sitetools/internal/logger"
)

// ServiceName is the health service key reported alongside the overall ("") status
const ServiceName = "sitetools.LegalService"

// Pinger reports storage reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves grpc.health.v1 with status driven by periodic store pings
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *grpchealth.Server
	store      Pinger
	interval   time.Duration
	log        *logger.Logger
}

// New listens on addr and registers the health and reflection services
func New(addr string, store Pinger, interval time.Duration, log *logger.Logger) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}

	grpcServer := grpc.NewServer()
	healthServer := grpchealth.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	s := &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		store:      store,
		interval:   interval,
		log:        log.With("component", "grpc"),
	}
	s.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return s, nil
}

// Addr returns the listener address
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve runs until ctx is cancelled, then stops gracefully
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}

	s.Check(ctx)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()
	s.log.Info().Str("addr", s.Addr()).Msg("gRPC health server listening")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			s.grpcServer.GracefulStop()
			<-serveErr
			return nil
		case err := <-serveErr:
			if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("serve gRPC: %w", err)
			}
			return nil
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

// Check pings the store once and updates the serving status
func (s *Server) Check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.store.Ping(pingCtx); err != nil {
		s.log.Warn().Err(err).Msg("store ping failed")
		s.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		return
	}
	s.setStatus(grpc_health_v1.HealthCheckResponse_SERVING)
}

func (s *Server) setStatus(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
