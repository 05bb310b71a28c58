package daemon

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thenoetrevino/ticks/internal/events"
	"github.com/thenoetrevino/ticks/internal/models"
)

// ============================================================================
// Test Helpers
// ============================================================================

func testSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "ticks.sock")
}

func startTestDaemon(t *testing.T, opts ...Option) (*Server, string) {
	t.Helper()
	socketPath := testSocketPath(t)

	server, err := NewServer(socketPath, opts...)
	if err != nil {
		t.Fatalf("Failed to create daemon: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = server.Shutdown()
	})
	go func() { _ = server.Start(ctx) }()

	return server, socketPath
}

type rawPeer struct {
	conn    net.Conn
	encoder *json.Encoder
	decoder *json.Decoder
}

func connectPeer(t *testing.T, server *Server, socketPath string) *rawPeer {
	t.Helper()
	before := server.Metrics().ConnectedClients.Load()

	conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	waitUntil(t, "peer registration", func() bool {
		return server.Metrics().ConnectedClients.Load() > before
	})
	return &rawPeer{conn: conn, encoder: json.NewEncoder(conn), decoder: json.NewDecoder(conn)}
}

func (p *rawPeer) send(t *testing.T, msg events.Message) {
	t.Helper()
	msg.Version = events.ProtocolVersion
	if err := p.encoder.Encode(msg); err != nil {
		t.Fatalf("Failed to send %s: %v", msg.Type, err)
	}
}

func (p *rawPeer) subscribe(t *testing.T, workspace string) {
	t.Helper()
	p.send(t, events.Message{Type: "subscribe", Subscribe: &events.SubscribeMessage{WorkspaceSlug: workspace}})
	// Subscriptions are applied asynchronously by the peer's read loop.
	time.Sleep(50 * time.Millisecond)
}

// nextEvent returns the next relayed event, skipping pings; ok is false on timeout
func (p *rawPeer) nextEvent(t *testing.T, timeout time.Duration) (events.Event, bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if err := p.conn.SetReadDeadline(deadline); err != nil {
			t.Fatalf("Failed to set deadline: %v", err)
		}
		var msg events.Message
		if err := p.decoder.Decode(&msg); err != nil {
			return events.Event{}, false
		}
		if msg.Type == "event" && msg.Event != nil {
			return *msg.Event, true
		}
	}
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// ============================================================================
// Setup
// ============================================================================

func TestNewServer_CreatesDirectoryAndReplacesStaleSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "nested", "dir", "ticks.sock")
	if err := os.MkdirAll(filepath.Dir(socketPath), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(socketPath, []byte("stale"), 0600); err != nil {
		t.Fatal(err)
	}

	server, err := NewServer(socketPath)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Shutdown()

	info, err := os.Stat(socketPath)
	if err != nil {
		t.Fatalf("Expected socket file: %v", err)
	}
	if info.Mode()&os.ModeSocket == 0 {
		t.Errorf("Expected a socket, got mode %v", info.Mode())
	}
}

func TestNewServer_EnvBufferSizes(t *testing.T) {
	t.Setenv("TICKS_DAEMON_BROADCAST_BUFFER", "7")
	t.Setenv("TICKS_DAEMON_CLIENT_BUFFER", "not-a-number")

	server, err := NewServer(testSocketPath(t))
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Shutdown()

	if cap(server.broadcast) != 7 {
		t.Errorf("Expected broadcast buffer 7, got %d", cap(server.broadcast))
	}
	if server.clientBuffer != defaultClientBuffer {
		t.Errorf("Expected default client buffer, got %d", server.clientBuffer)
	}
}

// ============================================================================
// Relay
// ============================================================================

func TestRelay_SkipsSenderAndNumbersEvents(t *testing.T) {
	server, socketPath := startTestDaemon(t)
	sender := connectPeer(t, server, socketPath)
	receiver := connectPeer(t, server, socketPath)

	for range 2 {
		e := events.IssueChanged("acme", "p1", "i1")
		sender.send(t, events.Message{Type: "event", Event: &e})
	}

	first, ok := receiver.nextEvent(t, 2*time.Second)
	if !ok {
		t.Fatal("Expected first event")
	}
	second, ok := receiver.nextEvent(t, 2*time.Second)
	if !ok {
		t.Fatal("Expected second event")
	}
	if first.IssueID != "i1" || second.SequenceID <= first.SequenceID {
		t.Errorf("Expected increasing sequence ids, got %d then %d", first.SequenceID, second.SequenceID)
	}

	if e, ok := sender.nextEvent(t, 100*time.Millisecond); ok {
		t.Errorf("Sender should not receive its own event, got %+v", e)
	}
	if got := server.Metrics().EventsReceived.Load(); got != 2 {
		t.Errorf("Expected 2 received events, got %d", got)
	}
}

func TestRelay_WorkspaceSubscriptionFilters(t *testing.T) {
	server, socketPath := startTestDaemon(t)
	acme := connectPeer(t, server, socketPath)
	acme.subscribe(t, "acme")
	everyone := connectPeer(t, server, socketPath)

	if err := server.Broadcast(events.IssueChanged("globex", "p1", "i1")); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}
	if err := server.Broadcast(events.IssueChanged("acme", "p1", "i2")); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	e, ok := acme.nextEvent(t, 2*time.Second)
	if !ok || e.WorkspaceSlug != "acme" {
		t.Errorf("Expected only the acme event, got %+v (ok=%v)", e, ok)
	}

	for _, want := range []string{"globex", "acme"} {
		e, ok := everyone.nextEvent(t, 2*time.Second)
		if !ok || e.WorkspaceSlug != want {
			t.Errorf("Expected %s event, got %+v (ok=%v)", want, e, ok)
		}
	}
}

func TestRelay_EventClientsEndToEnd(t *testing.T) {
	_, socketPath := startTestDaemon(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	newClient := func() *events.Client {
		c, err := events.NewClient(socketPath)
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		t.Cleanup(func() { _ = c.Close() })
		if err := c.Connect(ctx); err != nil {
			t.Fatalf("Connect failed: %v", err)
		}
		return c
	}

	writer := newClient()
	reader := newClient()
	if err := reader.Subscribe("acme"); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	stream, err := reader.Listen(ctx)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	changed := events.ChecklistChanged(models.ChecklistKey{WorkspaceSlug: "acme", ProjectID: "p1", IssueID: "i1"})
	if err := writer.SendEvent(changed); err != nil {
		t.Fatalf("SendEvent failed: %v", err)
	}

	select {
	case e := <-stream:
		if e.Type != events.EventChecklistChanged || e.IssueID != "i1" {
			t.Errorf("Unexpected event %+v", e)
		}
	case <-ctx.Done():
		t.Fatal("Timed out waiting for relayed event")
	}
}

// ============================================================================
// Health
// ============================================================================

func TestHealth_SilentPeerIsDropped(t *testing.T) {
	server, socketPath := startTestDaemon(t, WithHealthCheck(10*time.Millisecond, 40*time.Millisecond))
	connectPeer(t, server, socketPath)

	waitUntil(t, "stale peer removal", func() bool {
		return server.Metrics().ConnectedClients.Load() == 0
	})
	if server.Metrics().StaleClients.Load() == 0 {
		t.Error("Expected a stale client to be counted")
	}
}

// ============================================================================
// Shutdown
// ============================================================================

func TestShutdown_RemovesSocketAndIsIdempotent(t *testing.T) {
	server, socketPath := startTestDaemon(t)
	peer := connectPeer(t, server, socketPath)

	if err := server.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := server.Shutdown(); err != nil {
		t.Errorf("Second shutdown failed: %v", err)
	}

	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Errorf("Expected socket removed, got %v", err)
	}
	if _, ok := peer.nextEvent(t, 200*time.Millisecond); ok {
		t.Error("Expected peer connection to be closed")
	}
	if err := server.Broadcast(events.IssueChanged("acme", "p1", "i1")); err == nil {
		t.Error("Expected broadcast after shutdown to fail")
	}
}
