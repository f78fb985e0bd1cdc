package frame

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

type scriptedReader struct {
	frames []Frame
	reads  int
}

func (r *scriptedReader) ReadFrame() (Frame, error) {
	if r.reads >= len(r.frames) {
		return Frame{}, io.EOF
	}
	f := r.frames[r.reads]
	r.reads++
	return f, nil
}

func TestReassembleSingleFrame(t *testing.T) {
	r := &scriptedReader{frames: []Frame{Binary([]byte{0x55})}}
	out, err := Reassemble(r, 1, ReassembleOptions{})
	if err != nil {
		t.Fatalf("reassemble: %v", err)
	}
	if !bytes.Equal(out, []byte{0x55}) {
		t.Fatalf("unexpected payload: %v", out)
	}
}

func TestReassembleStopsAtTarget(t *testing.T) {
	r := &scriptedReader{frames: []Frame{Binary([]byte{0x55}), Binary(nil)}}
	out, err := Reassemble(r, 1, ReassembleOptions{})
	if err != nil {
		t.Fatalf("reassemble: %v", err)
	}
	if !bytes.Equal(out, []byte{0x55}) {
		t.Fatalf("unexpected payload: %v", out)
	}
	if r.reads != 1 {
		t.Fatalf("expected 1 read, got %d", r.reads)
	}
}

func TestReassembleAcrossFrameBoundaries(t *testing.T) {
	r := &scriptedReader{frames: []Frame{
		Binary(nil),
		Binary([]byte{1, 2}),
		Binary([]byte{3}),
		Binary([]byte{4, 5, 6}),
	}}
	out, err := Reassemble(r, 6, ReassembleOptions{})
	if err != nil {
		t.Fatalf("reassemble: %v", err)
	}
	if !bytes.Equal(out, []byte{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("unexpected payload: %v", out)
	}
}

func TestReassembleSkipsTextFrames(t *testing.T) {
	r := &scriptedReader{frames: []Frame{
		Text(`{"Results":[]}`),
		Binary([]byte{0xaa, 0xbb}),
	}}
	var skipped []Frame
	out, err := Reassemble(r, 2, ReassembleOptions{OnSkip: func(f Frame) { skipped = append(skipped, f) }})
	if err != nil {
		t.Fatalf("reassemble: %v", err)
	}
	if !bytes.Equal(out, []byte{0xaa, 0xbb}) {
		t.Fatalf("unexpected payload: %v", out)
	}
	if len(skipped) != 1 || skipped[0].Kind != KindText {
		t.Fatalf("expected one skipped text frame, got %+v", skipped)
	}
}

func TestReassembleOverrun(t *testing.T) {
	r := &scriptedReader{frames: []Frame{Binary([]byte{1, 2, 3})}}
	_, err := Reassemble(r, 2, ReassembleOptions{})
	if !errors.Is(err, ErrOverrun) {
		t.Fatalf("expected ErrOverrun, got %v", err)
	}
}

func TestReassembleZeroReadsNothing(t *testing.T) {
	r := &scriptedReader{}
	out, err := Reassemble(r, 0, ReassembleOptions{})
	if err != nil {
		t.Fatalf("reassemble: %v", err)
	}
	if len(out) != 0 || r.reads != 0 {
		t.Fatalf("expected empty payload without reads, got %v after %d reads", out, r.reads)
	}
}

func TestReassemblePropagatesReadError(t *testing.T) {
	r := &scriptedReader{frames: []Frame{Binary([]byte{1})}}
	_, err := Reassemble(r, 4, ReassembleOptions{})
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestReassembleLimits(t *testing.T) {
	r := &scriptedReader{}
	_, err := Reassemble(r, 2048, ReassembleOptions{Limits: Limits{MaxPayloadBytes: 1024}})
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if _, err := Reassemble(r, -1, ReassembleOptions{}); !errors.Is(err, ErrNegativeSize) {
		t.Fatalf("expected ErrNegativeSize, got %v", err)
	}
	if err := (Limits{}).Check(1 << 30); err != nil {
		t.Fatalf("expected zero limits to be unbounded, got %v", err)
	}
	if err := (Limits{MaxPayloadBytes: 1024}).Check(1024); err != nil {
		t.Fatalf("expected payload at the limit to fit, got %v", err)
	}
}

func TestDiscardConsumesExactPayload(t *testing.T) {
	r := &scriptedReader{frames: []Frame{
		Binary([]byte{1, 2}),
		Text("noise"),
		Binary([]byte{3}),
		Text("next"),
	}}
	skipped := 0
	if err := Discard(r, 3, func(Frame) { skipped++ }); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if r.reads != 3 || skipped != 1 {
		t.Fatalf("expected 3 reads and 1 skip, got %d reads and %d skips", r.reads, skipped)
	}
	if err := Discard(r, 1, nil); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF once the text frame is skipped, got %v", err)
	}
}

func TestSplitRegions(t *testing.T) {
	parts, err := Split([]byte{0x55, 0x00, 0x55}, []int{1, 2})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if !bytes.Equal(parts[0], []byte{0x55}) || !bytes.Equal(parts[1], []byte{0x00, 0x55}) {
		t.Fatalf("unexpected parts: %v", parts)
	}
}

func TestSplitSizeMismatch(t *testing.T) {
	if _, err := Split([]byte{1, 2, 3}, []int{1, 1}); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
	if _, err := Split([]byte{1}, []int{2, -1}); !errors.Is(err, ErrNegativeSize) {
		t.Fatalf("expected ErrNegativeSize, got %v", err)
	}
}

func TestChunkSizes(t *testing.T) {
	data := make([]byte, 2500)
	chunks := Chunk(data, MaxChunkSize)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	want := []int{1024, 1024, 452}
	for i, c := range chunks {
		if len(c) != want[i] {
			t.Fatalf("chunk %d: got %d bytes, want %d", i, len(c), want[i])
		}
	}
}

func TestChunkSmallAndEmpty(t *testing.T) {
	if chunks := Chunk(nil, MaxChunkSize); len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
	chunks := Chunk([]byte{1, 2, 3}, MaxChunkSize)
	if len(chunks) != 1 || len(chunks[0]) != 3 {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
	if chunks := Chunk(make([]byte, 2048), MaxChunkSize); len(chunks) != 2 {
		t.Fatalf("expected 2 exact chunks, got %d", len(chunks))
	}
}
