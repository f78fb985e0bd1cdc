package transport

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/danmuck/snesctl/internal/protocol/frame"
)

const (
	DefaultHost        = "127.0.0.1"
	DefaultPort uint16 = 23074
)

// Channel is a half-duplex message stream to one USB2SNES server.
type Channel interface {
	SendText(payload []byte) error
	SendBinary(payload []byte) error
	// ReadFrame blocks until the next frame arrives or the channel fails.
	ReadFrame() (frame.Frame, error)
	Close() error
}

// Endpoint identifies the server a Channel connects to.
type Endpoint struct {
	Host string
	Port uint16
}

func DefaultEndpoint() Endpoint {
	return Endpoint{Host: DefaultHost, Port: DefaultPort}
}

func (e Endpoint) Validate() error {
	if strings.TrimSpace(e.Host) == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidEndpoint)
	}
	if e.Port == 0 {
		return fmt.Errorf("%w: missing port", ErrInvalidEndpoint)
	}
	return nil
}

// Addr returns host:port.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(strings.TrimSpace(e.Host), strconv.Itoa(int(e.Port)))
}

// URL returns the WebSocket URL for the endpoint.
func (e Endpoint) URL() string {
	return "ws://" + e.Addr()
}

func (e Endpoint) String() string {
	return e.URL()
}
