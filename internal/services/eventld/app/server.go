// Package app wires the eventld runtime: event source, cache, synthesis
// service, metrics and the HTTP lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/louisbranch/eventld/internal/platform/telemetry/metrics"
	"github.com/louisbranch/eventld/internal/platform/timeouts"
	"github.com/louisbranch/eventld/internal/services/eventld/api/httpapi"
	"github.com/louisbranch/eventld/internal/services/eventld/localecache"
	eventsqlite "github.com/louisbranch/eventld/internal/services/eventld/storage/sqlite"
	"github.com/louisbranch/eventld/internal/services/eventld/storage/yamlfile"
	"github.com/louisbranch/eventld/internal/services/eventld/synthesis"
)

// Config defines the inputs for the eventld process.
type Config struct {
	HTTPAddr             string
	DBPath               string
	EventsFile           string
	DefaultEventDuration time.Duration
	CacheTTL             time.Duration
	ReadHeaderTimeout    time.Duration
	ShutdownTimeout      time.Duration
}

// Server hosts the structured data HTTP surface.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	listener        net.Listener
	httpServer      *http.Server
	source          io.Closer
}

// NewServer opens the configured event source and builds the HTTP server.
func NewServer(ctx context.Context, config Config) (*Server, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}

	source, closer, err := openSource(ctx, config)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder, err := metrics.New(registry)
	if err != nil {
		closeQuietly(closer)
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	cache := localecache.New(localecache.Config{TTL: config.CacheTTL})
	service, err := synthesis.NewService(source, cache, synthesis.Config{
		DefaultEventDuration: config.DefaultEventDuration,
		Metrics:              recorder,
	})
	if err != nil {
		closeQuietly(closer)
		return nil, fmt.Errorf("init synthesis service: %w", err)
	}

	listener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		closeQuietly(closer)
		return nil, fmt.Errorf("listen on %s: %w", httpAddr, err)
	}

	handler := httpapi.NewHandler(service, httpapi.Config{
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		WriteTimeout:      timeouts.Write,
		IdleTimeout:       timeouts.Idle,
	}

	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
		listener:        listener,
		httpServer:      httpServer,
		source:          closer,
	}, nil
}

// Run creates and serves an eventld server until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServer(ctx, config)
	if err != nil {
		return fmt.Errorf("init eventld server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve eventld: %w", err)
	}
	return nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("eventld server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("eventld server listening on %s", s.Addr())
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	closeQuietly(s.source)
	s.source = nil
}

// openSource opens exactly one configured event source.
func openSource(ctx context.Context, config Config) (synthesis.Source, io.Closer, error) {
	dbPath := strings.TrimSpace(config.DBPath)
	eventsFile := strings.TrimSpace(config.EventsFile)
	switch {
	case dbPath != "" && eventsFile != "":
		return nil, nil, errors.New("configure either a database path or an events file, not both")
	case dbPath != "":
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
		store, err := eventsqlite.Open(ctx, dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open event sqlite store: %w", err)
		}
		return store, store, nil
	case eventsFile != "":
		store, err := yamlfile.Open(eventsFile)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("loaded events file: path=%s events=%d", eventsFile, len(store.EventIDs()))
		return store, nil, nil
	default:
		return nil, nil, errors.New("an event source is required")
	}
}

func closeQuietly(closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		log.Printf("close event store: %v", err)
	}
}
