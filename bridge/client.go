// Package bridge implements the realtime audio-bridge client: a duplex
// websocket that sends raw text frames to request synthesis and receives
// binary audio frames to play back sequentially.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultEndpoint is the fixed local endpoint the bridge server listens on.
const DefaultEndpoint = "ws://localhost:8765"

type Option func(*Client)

func WithMaxReconnectAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts >= 0 {
			c.maxReconnects = attempts
		}
	}
}

// WithReconnectBaseDelay sets the unit of the linear backoff between
// reconnect attempts (delay = base delay times the attempt number).
func WithReconnectBaseDelay(delay time.Duration) Option {
	return func(c *Client) { c.reconnectDelay = delay }
}

// WithAudioCallback receives binary audio frames pushed by the server, in
// arrival order.
func WithAudioCallback(callback func(audio []byte)) Option {
	return func(c *Client) { c.onAudio = callback }
}

// WithTranscriptionCallback receives the transcription echo the server sends
// alongside synthesized audio.
func WithTranscriptionCallback(callback func(transcript string)) Option {
	return func(c *Client) { c.onTranscription = callback }
}

// WithDisconnectedCallback fires once the connection is gone for good: after
// an explicit Disconnect (nil error) or once the reconnect budget is
// exhausted.
func WithDisconnectedCallback(callback func(err error)) Option {
	return func(c *Client) { c.onDisconnected = callback }
}

// Client is an explicitly constructed, owned bridge connection with a
// connect/disconnect lifecycle. It auto-reconnects with capped attempts and
// linear backoff when the socket drops.
type Client struct {
	endpoint string
	dialer   *websocket.Dialer

	maxReconnects  int
	reconnectDelay time.Duration

	onAudio         func(audio []byte)
	onTranscription func(transcript string)
	onDisconnected  func(err error)

	writeMu sync.Mutex

	mu            sync.Mutex
	conn          *websocket.Conn
	disconnecting bool
}

func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	client := &Client{
		endpoint:        endpoint,
		dialer:          websocket.DefaultDialer,
		maxReconnects:   5,
		reconnectDelay:  time.Second,
		onAudio:         func([]byte) {},
		onTranscription: func(string) {},
		onDisconnected:  func(error) {},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Connect dials the bridge and starts the read loop.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return nil
	}
	c.disconnecting = false
	c.mu.Unlock()

	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to audio bridge: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop(ctx, conn)
	return nil
}

// Disconnect closes the connection without triggering reconnection.
// Idempotent.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	alreadyDisconnecting := c.disconnecting
	c.disconnecting = true
	c.mu.Unlock()

	if conn == nil || alreadyDisconnecting {
		return nil
	}

	c.writeMu.Lock()
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	return conn.Close()
}

// RequestSpeech sends a raw text frame asking the server to synthesize it.
func (c *Client) RequestSpeech(text string) error {
	return c.writeText([]byte(text))
}

// Stop sends the control frame that makes the server drop any synthesis
// still in progress.
func (c *Client) Stop() error {
	frame, err := json.Marshal(struct {
		Type string `json:"type"`
	}{Type: "stop"})
	if err != nil {
		return fmt.Errorf("failed to encode stop frame: %w", err)
	}
	return c.writeText(frame)
}

func (c *Client) writeText(payload []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("audio bridge is not connected")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("failed to write to audio bridge: %w", err)
	}
	return nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			conn.Close()

			c.mu.Lock()
			disconnecting := c.disconnecting || ctx.Err() != nil
			c.conn = nil
			c.mu.Unlock()

			if disconnecting || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				c.onDisconnected(nil)
				return
			}

			c.reconnect(ctx, err)
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			c.onAudio(msg)
		case websocket.TextMessage:
			c.handleTextFrame(msg)
		}
	}
}

func (c *Client) handleTextFrame(msg []byte) {
	var frame struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(msg, &frame); err != nil {
		logger.Warn("Failed to unmarshal bridge frame", "error", err)
		return
	}

	if frame.Type == "transcription" {
		c.onTranscription(frame.Text)
	}
}

func (c *Client) reconnect(ctx context.Context, cause error) {
	for attempt := 1; attempt <= c.maxReconnects; attempt++ {
		logger.Warn("Audio bridge connection lost, reconnecting",
			"attempt", attempt, "error", cause)

		select {
		case <-ctx.Done():
			c.onDisconnected(ctx.Err())
			return
		case <-time.After(c.reconnectDelay * time.Duration(attempt)):
		}

		conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
		if err != nil {
			cause = err
			continue
		}

		c.mu.Lock()
		if c.disconnecting {
			c.mu.Unlock()
			conn.Close()
			c.onDisconnected(nil)
			return
		}
		c.conn = conn
		c.mu.Unlock()

		c.readLoop(ctx, conn)
		return
	}

	c.onDisconnected(fmt.Errorf("audio bridge reconnection failed after %d attempts: %w",
		c.maxReconnects, cause))
}
