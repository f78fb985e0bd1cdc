package client

import (
	"fmt"
	"sync"
	"time"

	"github.com/danmuck/snesctl/internal/logging"
	"github.com/danmuck/snesctl/internal/observability"
	"github.com/danmuck/snesctl/internal/protocol"
	"github.com/danmuck/snesctl/internal/protocol/frame"
	"github.com/danmuck/snesctl/internal/transport"
	"github.com/rs/zerolog"
)

// Client issues USB2SNES commands over one channel.
type Client struct {
	mu     sync.Mutex
	ch     transport.Channel
	debug  bool
	logger zerolog.Logger
	limits frame.Limits
}

type Option func(*Client)

// WithDebug traces every request and reply on the client logger.
func WithDebug(on bool) Option {
	return func(c *Client) { c.debug = on }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithLimits bounds the size of binary payloads the client will reassemble.
// Clients are unbounded by default.
func WithLimits(limits frame.Limits) Option {
	return func(c *Client) { c.limits = limits }
}

// New wraps an open channel. The client takes ownership of ch.
func New(ch transport.Channel, opts ...Option) *Client {
	c := &Client{
		ch:     ch,
		logger: logging.Component("client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.debug {
		c.logger = c.logger.Level(zerolog.DebugLevel)
	}
	return c
}

// Close releases the channel. Further operations fail with ErrNotConnected.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ch == nil {
		return nil
	}
	err := c.ch.Close()
	c.ch = nil
	return err
}

// do runs one operation while holding the channel and records its outcome.
func (c *Client) do(cmd protocol.Command, op func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ch == nil {
		return fmt.Errorf("%s: %w", cmd, ErrNotConnected)
	}

	start := time.Now()
	err := op()
	observability.RecordCommand(cmd.String(), time.Since(start), err == nil)
	if err != nil {
		if c.debug {
			c.logger.Debug().Err(err).Str("opcode", cmd.String()).Msg("command failed")
		}
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return nil
}

func (c *Client) send(cmd protocol.Command, operands ...string) error {
	return c.sendWithSpace(cmd, protocol.DefaultSpace(cmd), operands...)
}

func (c *Client) sendWithSpace(cmd protocol.Command, space protocol.Space, operands ...string) error {
	payload, err := protocol.EncodeRequest(cmd, space, operands)
	if err != nil {
		return err
	}
	if c.debug {
		c.logger.Debug().
			Str("opcode", cmd.String()).
			RawJSON("request", payload).
			Msg("send command")
	}
	return c.ch.SendText(payload)
}

// readReply consumes exactly one frame and decodes it as a JSON reply.
func (c *Client) readReply(cmd protocol.Command) (protocol.Reply, error) {
	f, err := c.ch.ReadFrame()
	if err != nil {
		return protocol.Reply{}, err
	}
	if f.Kind != frame.KindText {
		observability.RecordSkippedFrame(cmd.String(), f.Kind.String())
		c.logger.Warn().
			Str("opcode", cmd.String()).
			Stringer("kind", f.Kind).
			Int("bytes", len(f.Data)).
			Msg("expected text reply")
		return protocol.Reply{}, fmt.Errorf("%w: %w: got %s frame", protocol.ErrMalformedReply, protocol.ErrUnexpectedFrame, f.Kind)
	}
	if c.debug {
		c.logger.Debug().
			Str("opcode", cmd.String()).
			Str("reply", string(f.Data)).
			Msg("reply")
	}
	return protocol.DecodeReply(f.Data)
}

// readBinary reassembles exactly n bytes of binary payload.
func (c *Client) readBinary(cmd protocol.Command, n int) ([]byte, error) {
	data, err := frame.Reassemble(c.ch, n, frame.ReassembleOptions{
		Limits: c.limits,
		OnSkip: func(f frame.Frame) {
			observability.RecordSkippedFrame(cmd.String(), f.Kind.String())
			c.logger.Warn().
				Str("opcode", cmd.String()).
				Stringer("kind", f.Kind).
				Int("bytes", len(f.Data)).
				Msg("skipping non-binary frame")
		},
	})
	if err != nil {
		return nil, err
	}
	observability.RecordPayload(cmd.String(), "rx", len(data))
	return data, nil
}

// refuseBinary drains a declared payload that exceeds the client limits so the
// next reply is read from a clean stream, then reports the limit error.
func (c *Client) refuseBinary(cmd protocol.Command, n int, limitErr error) error {
	c.logger.Warn().
		Str("opcode", cmd.String()).
		Int("bytes", n).
		Int("max_bytes", c.limits.MaxPayloadBytes).
		Msg("discarding payload over limit")
	if err := frame.Discard(c.ch, n, func(f frame.Frame) {
		observability.RecordSkippedFrame(cmd.String(), f.Kind.String())
	}); err != nil {
		return fmt.Errorf("%w (discard: %w)", limitErr, err)
	}
	return limitErr
}
