package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"sync"
	"time"
)

// Client is a connection to the ticks relay daemon.
// It sends change events in debounced batches, receives events for its
// subscription and reconnects with exponential backoff when the socket drops.
type Client struct {
	socketPath string
	conn       net.Conn
	encoder    *json.Encoder
	decoder    *json.Decoder
	mu         sync.Mutex

	// Batching
	eventQueue chan Event
	debounce   time.Duration
	closed     bool

	// Reconnection
	maxRetries int
	baseDelay  time.Duration

	subscription SubscribeMessage
	lastSequence int64
	notify       NotifyFunc
	logger       *slog.Logger

	ctx         context.Context
	cancel      context.CancelFunc
	batcherDone chan struct{}
}

// NewClient creates a new event client but does not connect.
// TICKS_EVENT_DEBOUNCE_MS overrides the 100ms batching window.
func NewClient(socketPath string) (*Client, error) {
	if socketPath == "" {
		return nil, fmt.Errorf("socket path is required")
	}

	debounceMs := 100
	if envVal := os.Getenv("TICKS_EVENT_DEBOUNCE_MS"); envVal != "" {
		if parsed, err := strconv.Atoi(envVal); err == nil && parsed > 0 {
			debounceMs = parsed
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		socketPath:  socketPath,
		eventQueue:  make(chan Event, 100),
		debounce:    time.Duration(debounceMs) * time.Millisecond,
		maxRetries:  5,
		baseDelay:   1 * time.Second,
		logger:      slog.Default(),
		ctx:         ctx,
		cancel:      cancel,
		batcherDone: make(chan struct{}),
	}
	go c.startBatcher()
	return c, nil
}

// SetLogger replaces the client's logger
func (c *Client) SetLogger(logger *slog.Logger) {
	if c == nil || logger == nil {
		return
	}
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
}

// SetNotifyFunc registers a callback for connection status notices.
func (c *Client) SetNotifyFunc(fn NotifyFunc) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.notify = fn
	c.mu.Unlock()
}

func (c *Client) notifyUser(level, message string) {
	c.mu.Lock()
	fn := c.notify
	c.mu.Unlock()
	if fn != nil {
		fn(level, message)
	}
}

// Connect dials the daemon socket and re-sends the current subscription.
func (c *Client) Connect(ctx context.Context) error {
	if c == nil {
		return ErrNotConnected
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("client is closed")
	}

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to dial daemon socket: %w", ClassifyDaemonError(err))
	}

	c.conn = conn
	c.encoder = json.NewEncoder(conn)
	c.decoder = json.NewDecoder(conn)

	sub := c.subscription
	msg := Message{Version: ProtocolVersion, Type: "subscribe", Subscribe: &sub}
	if err := c.encoder.Encode(msg); err != nil {
		_ = conn.Close()
		c.conn = nil
		return fmt.Errorf("failed to send subscription: %w", err)
	}
	return nil
}

// SendEvent queues an event for the next batch.
// Returns ErrQueueFull instead of blocking.
func (c *Client) SendEvent(event Event) error {
	if c == nil {
		return ErrNotConnected
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("client is closed")
	}

	select {
	case c.eventQueue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// startBatcher collects queued events and sends them once per debounce window.
// Events with the same type and scope collapse into one.
func (c *Client) startBatcher() {
	defer close(c.batcherDone)

	ticker := time.NewTicker(c.debounce)
	defer ticker.Stop()

	var order []string
	pending := make(map[string]Event)

	add := func(e Event) {
		k := e.batchKey()
		if _, seen := pending[k]; !seen {
			order = append(order, k)
		}
		pending[k] = e
	}

	flush := func() {
		for _, k := range order {
			e := pending[k]
			if err := c.sendToSocket(e); err != nil && !isConnectionError(err) {
				c.logger.Warn("failed to send batched event", "event_type", e.Type, "error", err)
			}
		}
		order = order[:0]
		clear(pending)
	}

	for {
		select {
		case <-c.ctx.Done():
			flush()
			return

		case event, ok := <-c.eventQueue:
			if !ok {
				flush()
				return
			}
			add(event)

		case <-ticker.C:
			flush()
		}
	}
}

func (c *Client) sendToSocket(event Event) error {
	return c.writeMessage(Message{Version: ProtocolVersion, Type: "event", Event: &event})
}

func (c *Client) writeMessage(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	return c.encoder.Encode(msg)
}

// Listen starts receiving events from the daemon.
// The channel is closed when ctx is done or reconnection gives up.
func (c *Client) Listen(ctx context.Context) (<-chan Event, error) {
	eventChan := make(chan Event, 10)
	if c == nil {
		close(eventChan)
		return eventChan, ErrNotConnected
	}
	go c.listenLoop(ctx, eventChan)
	return eventChan, nil
}

func (c *Client) listenLoop(ctx context.Context, eventChan chan Event) {
	defer close(eventChan)

	for {
		err := c.readEvents(ctx, eventChan)
		if ctx.Err() != nil || c.ctx.Err() != nil {
			return
		}

		c.logger.Info("daemon connection lost, reconnecting", "error", err)
		c.notifyUser("warning", "Live updates disconnected, reconnecting...")

		if !c.reconnect(ctx) {
			c.logger.Warn("giving up on daemon connection", "attempts", c.maxRetries)
			c.notifyUser("error", "Live updates unavailable")
			return
		}

		c.notifyUser("info", "Live updates reconnected")
		select {
		case eventChan <- Event{Type: EventReconnected, Timestamp: time.Now()}:
		case <-ctx.Done():
			return
		}
	}
}

// readEvents decodes messages until the connection fails.
func (c *Client) readEvents(ctx context.Context, eventChan chan Event) error {
	for {
		c.mu.Lock()
		if c.conn == nil {
			c.mu.Unlock()
			return ErrNotConnected
		}
		if err := c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("failed to set read deadline: %w", err)
		}
		decoder := c.decoder
		c.mu.Unlock()

		var msg Message
		if err := decoder.Decode(&msg); err != nil {
			return fmt.Errorf("failed to decode message: %w", err)
		}

		switch msg.Type {
		case "event":
			if msg.Event == nil || msg.Event.SequenceID <= c.lastSequence {
				continue
			}
			c.lastSequence = msg.Event.SequenceID
			select {
			case eventChan <- *msg.Event:
			case <-ctx.Done():
				return ctx.Err()
			}

		case "ping":
			err := c.writeMessage(Message{Version: ProtocolVersion, Type: "pong"})
			if err != nil && !isConnectionError(err) {
				c.logger.Debug("failed to send pong", "error", err)
			}
		}
	}
}

// reconnect retries Connect with exponential backoff (1s, 2s, 4s, ...).
func (c *Client) reconnect(ctx context.Context) bool {
	delay := c.baseDelay

	for i := 0; i < c.maxRetries; i++ {
		select {
		case <-ctx.Done():
			return false
		case <-c.ctx.Done():
			return false
		case <-time.After(delay):
		}

		c.mu.Lock()
		if c.conn != nil {
			_ = c.conn.Close()
			c.conn = nil
		}
		c.mu.Unlock()

		err := c.Connect(ctx)
		if err == nil {
			// A restarted daemon numbers its events from one again.
			c.lastSequence = 0
			c.logger.Info("reconnected to daemon", "attempt", i+1)
			return true
		}

		c.logger.Debug("reconnection attempt failed",
			"attempt", i+1, "max_retries", c.maxRetries, "retry_delay", delay, "error", err)
		delay *= 2
	}
	return false
}

// Subscribe scopes received events to one workspace; "" subscribes to all.
// The subscription is remembered and re-sent on reconnect.
func (c *Client) Subscribe(workspaceSlug string) error {
	if c == nil {
		return ErrNotConnected
	}
	c.mu.Lock()
	c.subscription = SubscribeMessage{WorkspaceSlug: workspaceSlug}
	c.mu.Unlock()

	return c.writeMessage(Message{
		Version:   ProtocolVersion,
		Type:      "subscribe",
		Subscribe: &SubscribeMessage{WorkspaceSlug: workspaceSlug},
	})
}

// Close flushes pending events, closes the connection and stops all goroutines.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.eventQueue)
	c.mu.Unlock()

	<-c.batcherDone
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
