package frame

import (
	"errors"
	"fmt"
)

// MaxChunkSize is the largest binary frame the client sends during an upload.
const MaxChunkSize = 1024

var (
	ErrOverrun         = errors.New("frame: payload exceeded expected length")
	ErrPayloadTooLarge = errors.New("frame: payload too large")
	ErrSizeMismatch    = errors.New("frame: region sizes do not match payload")
	ErrNegativeSize    = errors.New("frame: negative size")
)

// Kind is the WebSocket message type of one frame.
type Kind int

const (
	KindText Kind = iota + 1
	KindBinary
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	default:
		return "other"
	}
}

// Frame is one complete message received from or sent to the device.
type Frame struct {
	Kind Kind
	Data []byte
}

func Text(s string) Frame {
	return Frame{Kind: KindText, Data: []byte(s)}
}

func Binary(b []byte) Frame {
	return Frame{Kind: KindBinary, Data: b}
}

// Reader yields the next frame, blocking until one arrives.
type Reader interface {
	ReadFrame() (Frame, error)
}

// Limits constrains reassembly memory use. A zero MaxPayloadBytes leaves
// payloads unbounded.
type Limits struct {
	MaxPayloadBytes int
}

// Check reports whether a payload of n bytes fits within the limits.
func (l Limits) Check(n int) error {
	if l.MaxPayloadBytes > 0 && n > l.MaxPayloadBytes {
		return fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, n, l.MaxPayloadBytes)
	}
	return nil
}

// ReassembleOptions tunes one Reassemble call.
type ReassembleOptions struct {
	Limits Limits
	// OnSkip is called for every non-binary frame read while reassembling.
	OnSkip func(Frame)
}

// Reassemble reads frames from r until exactly n payload bytes have been
// accumulated. Non-binary frames are reported to OnSkip and discarded, so a
// device that never sends binary data stalls the read.
func Reassemble(r Reader, n int, opts ReassembleOptions) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeSize, n)
	}
	if err := opts.Limits.Check(n); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, n)
	err := consume(r, n, opts.OnSkip, func(data []byte) {
		buf = append(buf, data...)
	})
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Discard reads and drops exactly n bytes of binary payload from r. It keeps
// the stream aligned when a declared payload is refused.
func Discard(r Reader, n int, onSkip func(Frame)) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeSize, n)
	}
	return consume(r, n, onSkip, func([]byte) {})
}

func consume(r Reader, n int, onSkip func(Frame), keep func([]byte)) error {
	got := 0
	for got < n {
		f, err := r.ReadFrame()
		if err != nil {
			return err
		}
		if f.Kind != KindBinary {
			if onSkip != nil {
				onSkip(f)
			}
			continue
		}
		got += len(f.Data)
		if got > n {
			return fmt.Errorf("%w: got %d, want %d", ErrOverrun, got, n)
		}
		keep(f.Data)
	}
	return nil
}

// Split slices buf into consecutive sub-buffers of the given sizes, in order.
func Split(buf []byte, sizes []int) ([][]byte, error) {
	total := 0
	for _, size := range sizes {
		if size < 0 {
			return nil, fmt.Errorf("%w: %d", ErrNegativeSize, size)
		}
		total += size
	}
	if total != len(buf) {
		return nil, fmt.Errorf("%w: sizes sum to %d, payload is %d", ErrSizeMismatch, total, len(buf))
	}

	out := make([][]byte, 0, len(sizes))
	offset := 0
	for _, size := range sizes {
		part := make([]byte, size)
		copy(part, buf[offset:offset+size])
		out = append(out, part)
		offset += size
	}
	return out, nil
}

// Chunk splits data into consecutive slices of at most size bytes. The last
// chunk may be shorter. Empty data yields no chunks.
func Chunk(data []byte, size int) [][]byte {
	if size <= 0 {
		size = MaxChunkSize
	}
	chunks := make([][]byte, 0, (len(data)+size-1)/size)
	for start := 0; start < len(data); start += size {
		end := start + size
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, data[start:end])
	}
	return chunks
}
