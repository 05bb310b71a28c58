// Package daemon relays change events between ticks processes over a unix socket.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thenoetrevino/ticks/internal/events"
)

const (
	defaultBroadcastBuffer = 100
	defaultClientBuffer    = 10
	defaultPingInterval    = 30 * time.Second
	defaultStaleAfter      = 90 * time.Second
)

// ErrBroadcastFull is returned when the relay queue cannot take another event
var ErrBroadcastFull = errors.New("broadcast queue full")

// peer is one connected process
type peer struct {
	conn      net.Conn
	send      chan events.Message
	closeOnce sync.Once

	mu           sync.Mutex
	subscription events.SubscribeMessage
	lastPong     time.Time
}

func (p *peer) matches(e events.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.subscription.Matches(e)
}

func (p *peer) close() {
	_ = p.conn.Close()
	p.closeOnce.Do(func() { close(p.send) })
}

// inbound is an event together with the peer that sent it
type inbound struct {
	event  events.Event
	origin *peer
}

// Server relays events to every subscribed peer except the sender
type Server struct {
	socketPath string
	listener   net.Listener
	logger     *slog.Logger
	metrics    *Metrics

	mu    sync.RWMutex
	peers map[*peer]struct{}

	broadcast    chan inbound
	clientBuffer int
	pingInterval time.Duration
	staleAfter   time.Duration
	sequence     atomic.Int64

	done         chan struct{}
	shutdownOnce sync.Once
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the daemon logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHealthCheck sets how often peers are pinged and when a silent peer is dropped
func WithHealthCheck(ping, staleAfter time.Duration) Option {
	return func(s *Server) {
		if ping > 0 {
			s.pingInterval = ping
		}
		if staleAfter > 0 {
			s.staleAfter = staleAfter
		}
	}
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

// NewServer listens on socketPath, replacing a stale socket file.
// TICKS_DAEMON_BROADCAST_BUFFER and TICKS_DAEMON_CLIENT_BUFFER size the queues.
func NewServer(socketPath string, opts ...Option) (*Server, error) {
	if dir := filepath.Dir(socketPath); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create socket directory: %w", err)
		}
	}
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove stale socket: %w", err)
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", socketPath, err)
	}

	s := &Server{
		socketPath:   socketPath,
		listener:     listener,
		logger:       slog.Default(),
		metrics:      NewMetrics(),
		peers:        make(map[*peer]struct{}),
		broadcast:    make(chan inbound, envInt("TICKS_DAEMON_BROADCAST_BUFFER", defaultBroadcastBuffer)),
		clientBuffer: envInt("TICKS_DAEMON_CLIENT_BUFFER", defaultClientBuffer),
		pingInterval: defaultPingInterval,
		staleAfter:   defaultStaleAfter,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Metrics returns the live counters
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start serves until ctx is cancelled or Shutdown is called
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("daemon listening", "socket", s.socketPath)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	go s.relayLoop(ctx)
	go s.healthLoop(ctx)

	acceptErr := make(chan error, 1)
	go func() { acceptErr <- s.acceptLoop() }()

	var err error
	select {
	case <-ctx.Done():
	case err = <-acceptErr:
	}
	if shutdownErr := s.Shutdown(); err == nil {
		err = shutdownErr
	}
	return err
}

// acceptLoop runs until the listener is closed
func (s *Server) acceptLoop() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		p := &peer{
			conn:     conn,
			send:     make(chan events.Message, s.clientBuffer),
			lastPong: time.Now(),
		}
		s.mu.Lock()
		s.peers[p] = struct{}{}
		n := len(s.peers)
		s.mu.Unlock()
		s.metrics.setClients(n)
		s.logger.Debug("peer connected", "peers", n)

		go s.readLoop(p)
		go s.writeLoop(p)
	}
}

func (s *Server) relayLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case in := <-s.broadcast:
			event := in.event
			event.SequenceID = s.sequence.Add(1)
			msg := events.Message{Version: events.ProtocolVersion, Type: "event", Event: &event}

			for _, p := range s.snapshotPeers() {
				if p == in.origin || !p.matches(event) {
					continue
				}
				if s.trySend(p, msg) {
					s.metrics.relayed()
				} else {
					s.metrics.dropped()
					s.logger.Warn("peer queue full, event dropped", "type", event.Type)
				}
			}
		}
	}
}

func (s *Server) readLoop(p *peer) {
	defer s.remove(p)

	decoder := json.NewDecoder(p.conn)
	for {
		var msg events.Message
		if err := decoder.Decode(&msg); err != nil {
			return
		}
		if msg.Version != 0 && msg.Version != events.ProtocolVersion {
			s.logger.Warn("protocol version mismatch", "got", msg.Version, "want", events.ProtocolVersion)
		}

		switch msg.Type {
		case "event":
			if msg.Event == nil {
				continue
			}
			s.metrics.received()
			if err := s.enqueue(inbound{event: *msg.Event, origin: p}); err != nil {
				s.metrics.dropped()
				s.logger.Warn("event dropped", "error", err)
			}
		case "subscribe":
			if msg.Subscribe != nil {
				p.mu.Lock()
				p.subscription = *msg.Subscribe
				p.mu.Unlock()
				s.logger.Debug("peer subscribed", "workspace", msg.Subscribe.WorkspaceSlug)
			}
		case "pong":
			p.mu.Lock()
			p.lastPong = time.Now()
			p.mu.Unlock()
		}
	}
}

func (s *Server) writeLoop(p *peer) {
	encoder := json.NewEncoder(p.conn)
	for msg := range p.send {
		if err := encoder.Encode(msg); err != nil {
			return
		}
	}
}

// healthLoop pings peers and drops those that stopped answering
func (s *Server) healthLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	ping := events.Message{Version: events.ProtocolVersion, Type: "ping", Event: &events.Event{Type: events.EventPing}}
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, p := range s.snapshotPeers() {
				p.mu.Lock()
				silent := now.Sub(p.lastPong)
				p.mu.Unlock()

				if silent > s.staleAfter {
					s.logger.Info("removing stale peer", "silent_for", silent.Round(time.Second))
					s.metrics.staleRemoved()
					s.remove(p)
					continue
				}
				s.trySend(p, ping)
			}
		}
	}
}

// Broadcast relays an event to every subscribed peer
func (s *Server) Broadcast(event events.Event) error {
	return s.enqueue(inbound{event: event})
}

func (s *Server) enqueue(in inbound) error {
	select {
	case <-s.done:
		return errors.New("daemon is shut down")
	default:
	}
	select {
	case s.broadcast <- in:
		return nil
	default:
		return ErrBroadcastFull
	}
}

// Shutdown closes the listener and every peer and removes the socket file
func (s *Server) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.done)
		if closeErr := s.listener.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
			err = closeErr
		}

		s.mu.Lock()
		for p := range s.peers {
			p.close()
		}
		s.peers = make(map[*peer]struct{})
		s.mu.Unlock()
		s.metrics.setClients(0)

		if rmErr := os.Remove(s.socketPath); rmErr != nil && !os.IsNotExist(rmErr) {
			s.logger.Warn("failed to remove socket file", "error", rmErr)
		}
		s.logger.Info("daemon stopped")
	})
	return err
}

func (s *Server) snapshotPeers() []*peer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	peers := make([]*peer, 0, len(s.peers))
	for p := range s.peers {
		peers = append(peers, p)
	}
	return peers
}

func (s *Server) remove(p *peer) {
	s.mu.Lock()
	_, ok := s.peers[p]
	delete(s.peers, p)
	n := len(s.peers)
	s.mu.Unlock()

	p.close()
	if ok {
		s.metrics.setClients(n)
		s.logger.Debug("peer disconnected", "peers", n)
	}
}

// trySend queues msg without blocking; a send on a closed peer counts as failure
func (s *Server) trySend(p *peer, msg events.Message) (sent bool) {
	defer func() {
		if recover() != nil {
			sent = false
		}
	}()
	select {
	case p.send <- msg:
		return true
	default:
		return false
	}
}
