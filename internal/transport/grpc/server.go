package grpc_server

import (
	"context"
	"log"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is reported alongside the overall ("") status.
const ServiceName = "careermate"

// Pinger is a dependency whose reachability decides the serving status.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function, e.g. a redis client's Ping.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthServer struct {
	server   *grpc.Server
	health   *health.Server
	checks   map[string]Pinger
	interval time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	serving bool
}

func NewHealthServer(interval time.Duration, checks map[string]Pinger) *HealthServer {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	s := &HealthServer{
		server:   grpc.NewServer(),
		health:   health.NewServer(),
		checks:   checks,
		interval: interval,
		timeout:  5 * time.Second,
	}
	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Check pings every dependency once and publishes the result.
func (s *HealthServer) Check(ctx context.Context) bool {
	ok := true
	for name, check := range s.checks {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := check.Ping(pctx)
		cancel()
		if err != nil {
			log.Printf("health: %s unreachable: %v", name, err)
			ok = false
		}
	}

	s.mu.Lock()
	changed := ok != s.serving
	s.serving = ok
	s.mu.Unlock()

	if ok {
		s.setStatus(healthpb.HealthCheckResponse_SERVING)
	} else {
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	}
	if changed {
		log.Printf("health: serving=%t", ok)
	}
	return ok
}

// Run checks immediately and then every interval until ctx is done.
func (s *HealthServer) Run(ctx context.Context) {
	s.Check(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

func (s *HealthServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

// GracefulStop marks everything NOT_SERVING so watchers see the shutdown, then drains.
func (s *HealthServer) GracefulStop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

func (s *HealthServer) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
