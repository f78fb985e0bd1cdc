package client

import (
	"fmt"
	"testing"

	"github.com/danmuck/snesctl/internal/protocol"
	"github.com/danmuck/snesctl/internal/protocol/frame"
	"github.com/danmuck/snesctl/internal/transport"
)

// fakeChannel records sent frames and replays scripted incoming ones.
type fakeChannel struct {
	sent     []frame.Frame
	incoming []frame.Frame
	reads    int
	sendErr  error
	closed   bool
}

func (f *fakeChannel) SendText(payload []byte) error {
	return f.record(frame.KindText, payload)
}

func (f *fakeChannel) SendBinary(payload []byte) error {
	return f.record(frame.KindBinary, payload)
}

func (f *fakeChannel) record(kind frame.Kind, payload []byte) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	data := make([]byte, len(payload))
	copy(data, payload)
	f.sent = append(f.sent, frame.Frame{Kind: kind, Data: data})
	return nil
}

func (f *fakeChannel) ReadFrame() (frame.Frame, error) {
	if f.reads >= len(f.incoming) {
		return frame.Frame{}, fmt.Errorf("%w: no scripted frames left", transport.ErrTransport)
	}
	next := f.incoming[f.reads]
	f.reads++
	return next, nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func replyFrame(t *testing.T, results ...string) frame.Frame {
	t.Helper()
	payload, err := protocol.EncodeReply(protocol.Reply{Results: results})
	if err != nil {
		t.Fatalf("encode reply: %v", err)
	}
	return frame.Frame{Kind: frame.KindText, Data: payload}
}

func sentRequest(t *testing.T, ch *fakeChannel, i int) protocol.Request {
	t.Helper()
	if i >= len(ch.sent) {
		t.Fatalf("expected at least %d sent frames, have %d", i+1, len(ch.sent))
	}
	if ch.sent[i].Kind != frame.KindText {
		t.Fatalf("frame %d: expected text, got %s", i, ch.sent[i].Kind)
	}
	req, err := protocol.DecodeRequest(ch.sent[i].Data)
	if err != nil {
		t.Fatalf("decode request: %v", err)
	}
	return req
}
