// Package wstest runs scripted USB2SNES servers over real WebSocket
// connections for tests.
package wstest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/danmuck/snesctl/internal/protocol"
	"github.com/danmuck/snesctl/internal/protocol/frame"
	"github.com/danmuck/snesctl/internal/transport"
	"github.com/gorilla/websocket"
)

// Handler reacts to frames received from the client.
type Handler interface {
	HandleRequest(c *Conn, req protocol.Request)
	HandleBinary(c *Conn, data []byte)
}

// HandlerFunc handles text requests and ignores binary frames.
type HandlerFunc func(c *Conn, req protocol.Request)

func (f HandlerFunc) HandleRequest(c *Conn, req protocol.Request) { f(c, req) }
func (f HandlerFunc) HandleBinary(*Conn, []byte)                  {}

// Conn is the server side of one client connection.
type Conn struct {
	t  *testing.T
	ws *websocket.Conn
}

func (c *Conn) Reply(results ...string) {
	c.t.Helper()
	payload, err := protocol.EncodeReply(protocol.Reply{Results: results})
	if err != nil {
		c.t.Errorf("wstest: encode reply: %v", err)
		return
	}
	c.Text(string(payload))
}

func (c *Conn) Text(s string) {
	c.t.Helper()
	if err := c.ws.WriteMessage(websocket.TextMessage, []byte(s)); err != nil {
		c.t.Logf("wstest: write text: %v", err)
	}
}

func (c *Conn) Binary(data []byte) {
	c.t.Helper()
	if err := c.ws.WriteMessage(websocket.BinaryMessage, data); err != nil {
		c.t.Logf("wstest: write binary: %v", err)
	}
}

// Chunked sends data as binary frames of at most size bytes.
func (c *Conn) Chunked(data []byte, size int) {
	c.t.Helper()
	for _, chunk := range frame.Chunk(data, size) {
		c.Binary(chunk)
	}
}

// Server is a running fake USB2SNES endpoint.
type Server struct {
	*httptest.Server

	t       *testing.T
	handler Handler

	mu     sync.Mutex
	cond   *sync.Cond
	frames []frame.Frame
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t *testing.T, handler Handler) *Server {
	t.Helper()
	s := &Server{t: t, handler: handler}
	s.cond = sync.NewCond(&s.mu)
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("wstest: upgrade: %v", err)
			return
		}
		defer ws.Close()
		s.serve(&Conn{t: t, ws: ws})
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) serve(c *Conn) {
	for {
		messageType, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		kind := frame.KindBinary
		if messageType == websocket.TextMessage {
			kind = frame.KindText
		}
		s.record(frame.Frame{Kind: kind, Data: data})

		if kind == frame.KindBinary {
			s.handler.HandleBinary(c, data)
			continue
		}
		req, err := protocol.DecodeRequest(data)
		if err != nil {
			s.t.Errorf("wstest: decode request %q: %v", data, err)
			continue
		}
		s.handler.HandleRequest(c, req)
	}
}

func (s *Server) record(f frame.Frame) {
	s.mu.Lock()
	s.frames = append(s.frames, f)
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Endpoint returns the transport endpoint for the server.
func (s *Server) Endpoint() transport.Endpoint {
	u, err := url.Parse(s.URL)
	if err != nil {
		s.t.Fatalf("wstest: parse url: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		s.t.Fatalf("wstest: parse port: %v", err)
	}
	return transport.Endpoint{Host: u.Hostname(), Port: uint16(port)}
}

// WaitFrames blocks until at least n client frames were received and returns
// a copy of all of them.
func (s *Server) WaitFrames(n int, timeout time.Duration) []frame.Frame {
	s.t.Helper()
	deadline := time.Now().Add(timeout)
	timer := time.AfterFunc(timeout, s.cond.Broadcast)
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.frames) < n {
		if time.Now().After(deadline) {
			s.t.Fatalf("wstest: timed out waiting for %d frames, have %d", n, len(s.frames))
		}
		s.cond.Wait()
	}
	out := make([]frame.Frame, len(s.frames))
	copy(out, s.frames)
	return out
}
