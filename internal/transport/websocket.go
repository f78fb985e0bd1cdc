package transport

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/danmuck/snesctl/internal/logging"
	"github.com/danmuck/snesctl/internal/protocol/frame"
	"github.com/gorilla/websocket"
)

// WSChannel is a Channel over a gorilla WebSocket connection.
type WSChannel struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	cfg    Config
	closed bool
}

var _ Channel = (*WSChannel)(nil)

// NewWSChannel wraps an established connection.
func NewWSChannel(conn *websocket.Conn, cfg Config) *WSChannel {
	return &WSChannel{conn: conn, cfg: cfg}
}

// Dial opens one WebSocket connection to ep.
func Dial(ctx context.Context, ep Endpoint, cfg Config) (*WSChannel, error) {
	if err := ep.Validate(); err != nil {
		return nil, err
	}
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: cfg.ConnectTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, ep.URL(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", ErrTransport, ep.URL(), err)
	}
	return NewWSChannel(conn, cfg), nil
}

// DialRetry dials up to cfg.ConnectAttempts times, sleeping with backoff
// between attempts.
func DialRetry(ctx context.Context, ep Endpoint, cfg Config) (*WSChannel, error) {
	logger := logging.Component("transport")
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 1; ; attempt++ {
		ch, err := Dial(ctx, ep, cfg)
		if err == nil {
			return ch, nil
		}
		lastErr = err
		if errors.Is(err, ErrInvalidEndpoint) {
			break
		}
		delay, ok := cfg.RetryDelay(attempt, rng)
		if !ok {
			break
		}
		logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Str("endpoint", ep.URL()).
			Msg("connect failed")
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}

func (c *WSChannel) SendText(payload []byte) error {
	return c.write(websocket.TextMessage, payload)
}

func (c *WSChannel) SendBinary(payload []byte) error {
	return c.write(websocket.BinaryMessage, payload)
}

func (c *WSChannel) write(messageType int, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	deadline := time.Time{}
	if c.cfg.WriteTimeout > 0 {
		deadline = time.Now().Add(c.cfg.WriteTimeout)
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("%w: set write deadline: %w", ErrTransport, err)
	}
	if err := c.conn.WriteMessage(messageType, payload); err != nil {
		return fmt.Errorf("%w: write: %w", ErrTransport, err)
	}
	return nil
}

func (c *WSChannel) ReadFrame() (frame.Frame, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return frame.Frame{}, ErrClosed
	}
	conn := c.conn
	c.mu.Unlock()

	deadline := time.Time{}
	if c.cfg.ReadTimeout > 0 {
		deadline = time.Now().Add(c.cfg.ReadTimeout)
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return frame.Frame{}, fmt.Errorf("%w: set read deadline: %w", ErrTransport, err)
	}
	messageType, data, err := conn.ReadMessage()
	if err != nil {
		return frame.Frame{}, fmt.Errorf("%w: read: %w", ErrTransport, err)
	}
	switch messageType {
	case websocket.TextMessage:
		return frame.Frame{Kind: frame.KindText, Data: data}, nil
	case websocket.BinaryMessage:
		return frame.Frame{Kind: frame.KindBinary, Data: data}, nil
	default:
		return frame.Frame{Kind: frame.KindOther, Data: data}, nil
	}
}

// closeWait bounds how long Close waits for the server to echo the close
// frame.
const closeWait = time.Second

// Close sends a normal close frame, waits for the server's echo and releases
// the connection. The server echoes only after it has consumed every frame
// sent before the close, so fire-and-forget commands have been applied when
// Close returns.
func (c *WSChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait)); err == nil {
		_ = c.conn.SetReadDeadline(time.Now().Add(closeWait))
		for {
			if _, _, err := c.conn.ReadMessage(); err != nil {
				break
			}
		}
	}
	return c.conn.Close()
}
