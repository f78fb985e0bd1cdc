package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snesctl",
			Subsystem: "client",
			Name:      "commands_total",
			Help:      "USB2SNES commands issued by the client.",
		},
		[]string{"opcode", "success"},
	)
	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "snesctl",
			Subsystem: "client",
			Name:      "command_duration_seconds",
			Help:      "USB2SNES command round-trip duration in seconds.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"opcode", "success"},
	)
	payloadBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snesctl",
			Subsystem: "client",
			Name:      "payload_bytes_total",
			Help:      "Binary payload bytes moved, by opcode and direction.",
		},
		[]string{"opcode", "direction"},
	)
	skippedFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snesctl",
			Subsystem: "client",
			Name:      "skipped_frames_total",
			Help:      "Frames of an unexpected kind discarded while reading a reply.",
		},
		[]string{"opcode", "kind"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snesctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "snesctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(commandsTotal, commandDuration, payloadBytes, skippedFrames, httpRequests, httpDuration)
	})
}

func RecordCommand(opcode string, duration time.Duration, success bool) {
	RegisterMetrics()
	successLabel := strconv.FormatBool(success)
	commandsTotal.WithLabelValues(opcode, successLabel).Inc()
	commandDuration.WithLabelValues(opcode, successLabel).Observe(duration.Seconds())
}

func RecordPayload(opcode, direction string, n int) {
	if n <= 0 {
		return
	}
	RegisterMetrics()
	payloadBytes.WithLabelValues(opcode, direction).Add(float64(n))
}

func RecordSkippedFrame(opcode, kind string) {
	RegisterMetrics()
	skippedFrames.WithLabelValues(opcode, kind).Inc()
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
