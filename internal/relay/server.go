package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"github.com/sonari-audio/sonari/internal/metrics"
	"github.com/sonari-audio/sonari/internal/relayerr"
)

var errThrottled = errors.New("source address exceeded accept rate")

// ThrottleConfig controls the per-IP accept-rate limiter (an ambient
// hardening concern, not part of the wire protocol).
type ThrottleConfig struct {
	PerSecond float64
	Burst     int
}

// DefaultThrottleConfig matches what a single well-behaved client
// needs (one connection, the occasional reconnect) while still
// bounding a single source's ability to flood the accept loop.
var DefaultThrottleConfig = ThrottleConfig{PerSecond: 5, Burst: 10}

// Server is the Acceptor & Lifecycle Controller: it binds the
// listening socket, admits new clients, wires up their reader/sender
// goroutines, and orchestrates graceful shutdown.
type Server struct {
	registry *Registry
	mixer    *Mixer
	logger   *slog.Logger
	throttle *ipThrottle

	listener net.Listener
	wg       sync.WaitGroup

	shuttingDown atomic.Bool
}

// NewServer builds a Server; clock drives the mixer's cadence (inject
// a clockwork.FakeClock in tests).
func NewServer(clock clockwork.Clock, logger *slog.Logger, throttleCfg ThrottleConfig) *Server {
	registry := NewRegistry()
	return &Server{
		registry: registry,
		mixer:    NewMixer(registry, clock, logger),
		logger:   logger,
		throttle: newIPThrottle(throttleCfg.PerSecond, throttleCfg.Burst),
	}
}

// Listen binds the relay's fixed listening port with SO_REUSEADDR.
func (s *Server) Listen(ctx context.Context) error {
	lc := listenConfig()
	ln, err := lc.Listen(ctx, "tcp", ":"+strconv.Itoa(ListenPort))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", ListenPort, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound listener's address; only valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve runs the mixer and the accept loop. It blocks until the
// listener is closed by Shutdown.
func (s *Server) Serve() error {
	go s.mixer.Run()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.shuttingDown.Load() {
				return nil
			}
			metrics.AcceptFailuresTotal.WithLabelValues("accept_error").Inc()
			acceptErr := relayerr.New(relayerr.AcceptFailed, "Server.Serve", err)
			s.logger.Warn("accept failed", "error", acceptErr)
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			continue
		}

		if !s.throttle.allow(conn.RemoteAddr()) {
			metrics.ConnectionsThrottledTotal.Inc()
			throttleErr := relayerr.New(relayerr.AcceptFailed, "Server.Serve", errThrottled)
			s.logger.Warn("connection throttled", "remote_addr", conn.RemoteAddr(), "error", throttleErr)
			_ = conn.Close()
			continue
		}

		s.admit(conn)
	}
}

// admit tunes, registers, and spawns the reader/sender goroutines for
// a newly accepted connection.
func (s *Server) admit(conn net.Conn) {
	tuneConn(conn)

	entry := s.registry.Insert(conn)
	metrics.ActiveClients.Set(float64(s.registry.Len()))
	s.logger.Info("client connected", "client_id", entry.ID, "remote_addr", conn.RemoteAddr())

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		runIngress(entry, s.registry, s.mixer, s.logger)
		metrics.ActiveClients.Set(float64(s.registry.Len()))
	}()
	go func() {
		defer s.wg.Done()
		runEgress(entry, s.registry, s.logger)
	}()
}

// Shutdown sets the shutdown flag and closes the listener so the
// accept loop stops, tears down every registered client, waits until
// every reader and sender goroutine has exited, and then joins the
// mixer.
func (s *Server) Shutdown() {
	s.shuttingDown.Store(true)
	_ = s.listener.Close()

	s.registry.ForEachActive(func(c *ClientEntry) {
		s.registry.Remove(c)
	})

	s.wg.Wait()
	s.mixer.Stop()
	metrics.ActiveClients.Set(0)
}
