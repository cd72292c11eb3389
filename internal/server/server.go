package server

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/litetable/litetable-scan/internal/data"
	"github.com/litetable/litetable-scan/internal/iterators"
	"github.com/litetable/litetable-scan/internal/tablet"
	"github.com/rs/zerolog/log"
	"net/http"
	"time"
)

//go:generate mockgen -destination=server_mock.go -package=server -source=server.go

const (
	serverName      = "Admin HTTP Server"
	shutdownTimeout = 5 * time.Second
)

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

type tableAdmin interface {
	Tables() []tablet.TableInfo
	Put(table string, entries ...data.Entry) error
}

type compactionQueue interface {
	Reap(table string) error
}

// Server exposes health, operator documentation and table administration over HTTP.
type Server struct {
	address string
	port    int
	server  httpServer
}

type Config struct {
	Address  string
	Port     int
	Registry *iterators.Registry
	Tables   tableAdmin
	Reaper   compactionQueue
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Address == "" {
		errGrp = append(errGrp, errors.New("address is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errGrp = append(errGrp, errors.New("port must be between 1 and 65535"))
	}
	if c.Registry == nil {
		errGrp = append(errGrp, errors.New("registry is required"))
	}
	if c.Tables == nil {
		errGrp = append(errGrp, errors.New("tables are required"))
	}
	if c.Reaper == nil {
		errGrp = append(errGrp, errors.New("reaper is required"))
	}
	return errors.Join(errGrp...)
}

func New(cfg *Config) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	h := &handlers{registry: cfg.Registry, tables: cfg.Tables, reaper: cfg.Reaper}
	return &Server{
		address: cfg.Address,
		port:    cfg.Port,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
			Handler:           h.routes(),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

func (h *handlers) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", h.health)
	r.Route("/iterators", func(r chi.Router) {
		r.Get("/", h.listIterators)
		r.Post("/validate", h.validateStack)
		r.Get("/{name}", h.describeIterator)
	})
	r.Route("/tables", func(r chi.Router) {
		r.Get("/", h.listTables)
		r.Post("/{name}/entries", h.putEntries)
		r.Post("/{name}/compact", h.compactTable)
	})
	return r
}

func (s *Server) Start() error {
	log.Info().Msgf("admin server listening at %s:%d", s.address, s.port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("admin server failed: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down admin server: %w", err)
	}
	return nil
}

func (s *Server) Name() string {
	return serverName
}
