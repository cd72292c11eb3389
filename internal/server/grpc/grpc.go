package grpc

import (
	"errors"
	"fmt"
	rpc "github.com/litetable/litetable-scan/internal/grpc"
	"github.com/rs/zerolog/log"
	grpc2 "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"net"
	"time"
)

//go:generate mockgen -destination=grpc_mock.go -package=grpc -source=grpc.go

type grpcServer interface {
	Serve(lis net.Listener) error
	GracefulStop()
}

// Server implements the app.Dependency interface for the tablet scan gRPC server
type Server struct {
	address  string
	server   grpcServer
	health   *health.Server
	port     int
	listener net.Listener
}

type Config struct {
	Address string
	Port    int
	Scanner scanner
	// Listener replaces the TCP listener built from Address and Port.
	Listener net.Listener
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Listener == nil {
		if c.Address == "" {
			errGrp = append(errGrp, fmt.Errorf("address required"))
		}
		if c.Port == 0 {
			errGrp = append(errGrp, fmt.Errorf("port required"))
		}
	}
	if c.Scanner == nil {
		errGrp = append(errGrp, fmt.Errorf("scanner required"))
	}

	return errors.Join(errGrp...)
}

// NewServer creates a new gRPC server instance
func NewServer(cfg *Config) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	srv := grpc2.NewServer()
	srv.RegisterService(&rpc.TabletService_ServiceDesc, &tabletService{scanner: cfg.Scanner})

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	lis := cfg.Listener
	if lis == nil {
		var err error
		lis, err = net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Address, cfg.Port))
		if err != nil {
			return nil, fmt.Errorf("failed to create listener on port %d: %w", cfg.Port, err)
		}
	}

	return &Server{
		address:  cfg.Address,
		server:   srv,
		health:   hs,
		port:     cfg.Port,
		listener: lis,
	}, nil
}

func (s *Server) Start() error {
	log.Info().Msgf("gRPC server listening at %s", s.listener.Addr())

	errCh := make(chan error, 1)

	go func() {
		if err := s.server.Serve(s.listener); err != nil {
			errCh <- err
			log.Error().Err(err).Msg("gRPC server failed")
			return
		}
		errCh <- nil
	}()

	// Block briefly for error or nil return
	select {
	case err := <-errCh:
		return err
	case <-time.After(500 * time.Millisecond):
		if s.health != nil {
			s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		}
		return nil
	}
}

func (s *Server) Stop() error {
	log.Info().Msg("Stopping gRPC server")
	if s.health != nil {
		s.health.Shutdown()
	}
	s.server.GracefulStop()
	return nil
}

func (s *Server) Name() string {
	return "gRPC Server"
}
