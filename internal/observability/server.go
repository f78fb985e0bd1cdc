package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// StatusFunc reports a liveness snapshot for /healthz.
type StatusFunc func() map[string]any

// MetricsServer exposes /metrics and /healthz while a long-running command
// polls the device.
type MetricsServer struct {
	srv      *http.Server
	listener net.Listener
	logger   zerolog.Logger
}

// NewRouter builds the HTTP routes served by MetricsServer.
func NewRouter(logger zerolog.Logger, status StatusFunc) http.Handler {
	RegisterMetrics()
	r := chi.NewRouter()
	r.Use(RequestLogger(logger))
	r.Use(RequestMetrics)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		body := map[string]any{"status": "ok"}
		if status != nil {
			for k, v := range status() {
				body[k] = v
			}
		}
		writeJSON(w, http.StatusOK, body)
	})
	return r
}

// StartMetricsServer listens on addr and serves in the background.
func StartMetricsServer(addr string, logger zerolog.Logger, status StatusFunc) (*MetricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	m := &MetricsServer{
		srv: &http.Server{
			Handler:           NewRouter(logger, status),
			ReadHeaderTimeout: 5 * time.Second,
		},
		listener: ln,
		logger:   logger,
	}
	go func() {
		if err := m.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	logger.Info().Str("addr", ln.Addr().String()).Msg("metrics server listening")
	return m, nil
}

func (m *MetricsServer) Addr() string {
	return m.listener.Addr().String()
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
