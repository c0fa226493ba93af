package scout

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/dirscout/dirscout/internal/logger"
	"github.com/dirscout/dirscout/pkg/identity"
)

// ServerConfig holds configuration for the scout protocol server.
type ServerConfig struct {
	// Bind is the address to listen on (empty means all interfaces).
	Bind string

	// Port is the TCP port to listen on.
	Port int

	// Store is the credential ledger gating every session.
	Store *identity.Store

	// SessionLogDir is the directory for per-session log files.
	SessionLogDir string

	// ScratchDir is the directory for per-session path list files.
	ScratchDir string

	// Metrics receives protocol counters. Nil disables collection.
	Metrics Metrics
}

// Server accepts scout protocol connections and runs one session goroutine
// per connection. Sessions share no mutable state beyond the credential
// ledger; each gets its own path list file and log sink.
type Server struct {
	config        ServerConfig
	mu            sync.Mutex // guards listener
	listener      net.Listener
	shutdown      chan struct{}
	shutdownOnce  sync.Once
	wg            sync.WaitGroup
	listenerReady chan struct{}
	nextSession   atomic.Uint64
}

// NewServer creates a scout server with the given configuration.
func NewServer(cfg ServerConfig) *Server {
	return &Server{
		config:        cfg,
		shutdown:      make(chan struct{}),
		listenerReady: make(chan struct{}),
	}
}

// Serve listens and accepts connections until the context is cancelled or
// Stop is called. A listen failure is an unrecoverable startup error.
// Serve blocks until all in-flight sessions have finished.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Bind, s.config.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen TCP %s: %w", addr, err)
	}
	// Stop may have fired before the listener existed; in that window it
	// had nothing to close, so honor it here instead of serving.
	s.mu.Lock()
	select {
	case <-s.shutdown:
		s.mu.Unlock()
		close(s.listenerReady)
		_ = listener.Close()
		return nil
	default:
		s.listener = listener
	}
	s.mu.Unlock()
	close(s.listenerReady)

	logger.Info("Scout server started", "address", listener.Addr().String())

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.shutdown:
		}
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
			default:
				logger.Error("Accept error", "error", err)
			}
			break
		}

		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			s.handleConn(c)
		}(conn)
	}

	// Already-spawned sessions run to completion before Serve returns.
	s.wg.Wait()
	logger.Info("Scout server stopped")
	return nil
}

// handleConn runs one full session lifecycle on conn.
func (s *Server) handleConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	id := s.nextSession.Add(1)
	if s.config.Metrics != nil {
		s.config.Metrics.SessionStarted()
		defer s.config.Metrics.SessionEnded()
	}

	sess := newSession(id, conn, s.config.Store, s.config.SessionLogDir, s.config.ScratchDir, s.config.Metrics)
	sess.run()
}

// Stop closes the listening socket and stops the accept loop. Sessions in
// progress are not interrupted; Serve waits for them.
func (s *Server) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)
		s.mu.Lock()
		if s.listener != nil {
			_ = s.listener.Close()
		}
		s.mu.Unlock()
	})
}

// WaitReady returns a channel closed once the listener is bound and
// accepting connections. Callers should select on it with a timeout to
// detect startup failures.
func (s *Server) WaitReady() <-chan struct{} {
	return s.listenerReady
}

// Addr returns the listener address, or an empty string before Serve.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
