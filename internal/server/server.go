package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/muurk/netscope/internal/codec"
	"github.com/muurk/netscope/internal/discovery"
	"github.com/muurk/netscope/internal/logging"
	"github.com/muurk/netscope/internal/txtrecord"
	"go.uber.org/zap"
)

// DefaultShutdownTimeout bounds how long Shutdown waits for open requests
const DefaultShutdownTimeout = 10 * time.Second

// Config holds the server configuration
type Config struct {
	Listen          string        // host:port, e.g. ":8080"
	ShutdownTimeout time.Duration // 0 means DefaultShutdownTimeout
}

// Source is the discovery state the server exposes. *discovery.Coordinator
// satisfies it.
type Source interface {
	codec.Source
	Device(id uuid.UUID) (discovery.Device, bool)
	Categories() []string
	Subscribe() (<-chan discovery.Change, func())
}

// Server serves the device registry over HTTP and pushes snapshots to
// websocket clients after every change
type Server struct {
	config *Config
	source Source
	interp *txtrecord.Interpreter
	hub    *Hub

	mu         sync.Mutex
	listener   net.Listener
	httpServer *http.Server
}

// New creates a new Server instance. A nil interpreter uses the default
// tables.
func New(config *Config, source Source, interp *txtrecord.Interpreter) (*Server, error) {
	if config == nil {
		return nil, fmt.Errorf("server config is required")
	}
	if source == nil {
		return nil, fmt.Errorf("server source is required")
	}
	if interp == nil {
		interp = txtrecord.New()
	}

	return &Server{
		config: config,
		source: source,
		interp: interp,
		hub:    NewHub(),
	}, nil
}

// Start listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on an existing listener until ctx is cancelled
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.listener = listener
	s.httpServer = httpServer
	s.mu.Unlock()

	logging.Info("Server listening for connections",
		zap.String("addr", listener.Addr().String()),
	)

	pumpCtx, stopPump := context.WithCancel(ctx)
	defer stopPump()
	go s.forwardChanges(pumpCtx)

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown requested, stopping server...")
		timeout := s.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = DefaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	}
}

// Addr returns the listening address, or nil before Start
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	s.hub.CloseAll()

	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()
	if httpServer == nil {
		return nil
	}

	if err := httpServer.Shutdown(ctx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		_ = httpServer.Close()
	}

	logging.Sync()
	return nil
}

// ActiveClients returns the number of connected websocket clients
func (s *Server) ActiveClients() int {
	return s.hub.ClientCount()
}

// forwardChanges broadcasts a fresh snapshot for every change until ctx is
// done or the source closes the subscription
func (s *Server) forwardChanges(ctx context.Context) {
	changes, cancel := s.source.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			s.hub.Broadcast(NewChangeMessage(change, codec.Take(s.source)))
		}
	}
}
