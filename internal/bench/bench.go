// Package bench times repeated memory reads and renders latency histograms.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrNoSamples = errors.New("bench: no samples")

// FrameTime is one NTSC video frame. Adjacent samples further apart than this
// are treated as one read that waited on the next frame.
const FrameTime = 16_667_000 * time.Nanosecond

// Reader performs one timed memory read. *client.Client satisfies it.
type Reader interface {
	GetAddress(address uint32, size int) ([]byte, error)
}

type Options struct {
	Address    uint32
	Size       int
	Iterations int
	// Threshold splits outliers from the main distribution. Zero uses FrameTime.
	Threshold time.Duration
}

func DefaultOptions() Options {
	return Options{
		Address:    0xF50010,
		Size:       2,
		Iterations: 100,
		Threshold:  FrameTime,
	}
}

// Run issues opts.Iterations reads and returns their latencies in
// nanoseconds, in issue order.
func Run(ctx context.Context, r Reader, opts Options) ([]float64, error) {
	if opts.Iterations <= 0 {
		return nil, fmt.Errorf("%w: iterations must be positive", ErrNoSamples)
	}
	samples := make([]float64, 0, opts.Iterations)
	for i := 0; i < opts.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return samples, err
		}
		start := time.Now()
		data, err := r.GetAddress(opts.Address, opts.Size)
		elapsed := time.Since(start)
		if err != nil {
			return samples, fmt.Errorf("bench: read %d: %w", i, err)
		}
		if len(data) != opts.Size {
			return samples, fmt.Errorf("bench: read %d returned %d bytes, want %d", i, len(data), opts.Size)
		}
		samples = append(samples, float64(elapsed.Nanoseconds()))
	}
	return samples, nil
}

// Split compares samples pairwise and moves the slower of any pair that
// differs by at least threshold into outliers. A trailing unpaired sample is
// kept.
func Split(samples []float64, threshold time.Duration) (cleaned, outliers []float64) {
	limit := float64(threshold.Nanoseconds())
	cleaned = make([]float64, 0, len(samples))
	for i := 1; i < len(samples); i += 2 {
		a, b := samples[i-1], samples[i]
		if math.Abs(b-a) < limit {
			cleaned = append(cleaned, a, b)
			continue
		}
		cleaned = append(cleaned, math.Min(a, b))
		outliers = append(outliers, math.Max(a, b))
	}
	if len(samples)%2 == 1 {
		cleaned = append(cleaned, samples[len(samples)-1])
	}
	return cleaned, outliers
}

type Stats struct {
	Count int
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P95   time.Duration
}

func Summarize(samples []float64) (Stats, error) {
	if len(samples) == 0 {
		return Stats{}, ErrNoSamples
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	return Stats{
		Count: len(sorted),
		Min:   time.Duration(sorted[0]),
		Max:   time.Duration(sorted[len(sorted)-1]),
		Mean:  time.Duration(sum / float64(len(sorted))),
		P50:   time.Duration(percentile(sorted, 0.50)),
		P95:   time.Duration(percentile(sorted, 0.95)),
	}, nil
}

// percentile uses nearest rank on sorted input.
func percentile(sorted []float64, p float64) float64 {
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	return sorted[rank]
}

// Report writes a summary line and histograms of the cleaned samples and of
// the outliers, when there are any.
func Report(w io.Writer, samples []float64, threshold time.Duration) error {
	if threshold <= 0 {
		threshold = FrameTime
	}
	stats, err := Summarize(samples)
	if err != nil {
		return err
	}
	p := message.NewPrinter(language.AmericanEnglish)
	cleaned, outliers := Split(samples, threshold)

	p.Fprintf(w, "samples=%d min=%dns p50=%dns p95=%dns max=%dns mean=%dns\n",
		stats.Count,
		stats.Min.Nanoseconds(),
		stats.P50.Nanoseconds(),
		stats.P95.Nanoseconds(),
		stats.Max.Nanoseconds(),
		stats.Mean.Nanoseconds(),
	)
	if err := plot(w, p, "latency", cleaned); err != nil {
		return err
	}
	if len(outliers) == 0 {
		return nil
	}
	return plot(w, p, "outliers", outliers)
}

func plot(w io.Writer, p *message.Printer, title string, values []float64) error {
	if len(values) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\n%s (%d)\n", title, len(values))
	hist := histogram.Hist(10, values)
	return histogram.Fprintf(w, hist, histogram.Linear(40), func(v float64) string {
		return p.Sprintf("% 11dns", time.Duration(v).Nanoseconds())
	})
}
