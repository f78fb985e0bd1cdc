package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/danmuck/snesctl/internal/client"
	"github.com/danmuck/snesctl/internal/config"
	"github.com/danmuck/snesctl/internal/logging"
	"github.com/danmuck/snesctl/internal/observability"
	"github.com/danmuck/snesctl/internal/protocol"
	"github.com/spf13/cobra"
)

func readCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read <addr> <size> [<addr> <size>...]",
		Short: "Read SNES memory",
		Long: `Read one or more memory regions in a single request. Addresses are hex
in the USB2SNES address space (WRAM starts at f50000), sizes are decimal or
0x-prefixed hex.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			regions, err := parseRegions(args)
			if err != nil {
				return err
			}
			return a.withClient(cmd, true, func(_ context.Context, c *client.Client, _ config.Config) error {
				parts, err := c.GetMultiAddressRegions(regions)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for i, r := range regions {
					fmt.Fprintf(out, "%06x (%d bytes)\n", r.Address, r.Size)
					io.WriteString(out, hex.Dump(parts[i]))
				}
				return nil
			})
		},
	}
}

// watchState is the latest poll, shared with /healthz.
type watchState struct {
	mu      sync.Mutex
	polls   int
	changes int
	last    []byte
	at      time.Time
}

func (s *watchState) update(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	s.at = time.Now()
	if s.last != nil && bytes.Equal(s.last, data) {
		return false
	}
	s.changes++
	s.last = append(s.last[:0], data...)
	return true
}

func (s *watchState) status() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]any{
		"polls":   s.polls,
		"changes": s.changes,
		"value":   hex.EncodeToString(s.last),
		"at":      s.at.UTC().Format(time.RFC3339Nano),
	}
}

func watchCmd(a *app) *cobra.Command {
	var (
		interval    time.Duration
		count       int
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "watch <addr> <size> [<addr> <size>...]",
		Short: "Poll memory and print every change",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			regions, err := parseRegions(args)
			if err != nil {
				return err
			}
			return a.withClient(cmd, true, func(ctx context.Context, c *client.Client, cfg config.Config) error {
				if cmd.Flags().Changed("interval") {
					cfg.Watch.Interval = interval
				}
				if cmd.Flags().Changed("metrics-addr") {
					cfg.Watch.MetricsAddr = metricsAddr
				}
				if cfg.Watch.Interval <= 0 {
					return fmt.Errorf("watch: interval must be positive")
				}
				return watch(ctx, cmd.OutOrStdout(), c, regions, cfg.Watch, count)
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default from config, 500ms)")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "stop after this many polls (0 runs until interrupted)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics and /healthz on this address")
	return cmd
}

func watch(ctx context.Context, out io.Writer, c *client.Client, regions []protocol.Region, cfg config.WatchConfig, count int) error {
	state := &watchState{}
	logger := logging.Component("watch")

	if strings.TrimSpace(cfg.MetricsAddr) != "" {
		srv, err := observability.StartMetricsServer(cfg.MetricsAddr, logger, state.status)
		if err != nil {
			return fmt.Errorf("watch: metrics server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for polls := 0; ; polls++ {
		data, err := c.GetMultiAddress(regions)
		if err != nil {
			return err
		}
		if state.update(data) {
			fmt.Fprintf(out, "%s %s\n", time.Now().Format("15:04:05.000"), formatRegions(regions, data))
		}
		if count > 0 && polls+1 >= count {
			break
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

// formatRegions renders concatenated region bytes as addr=hex fields.
func formatRegions(regions []protocol.Region, data []byte) string {
	fields := make([]string, 0, len(regions))
	offset := 0
	for _, r := range regions {
		fields = append(fields, fmt.Sprintf("%06x=%s", r.Address, hex.EncodeToString(data[offset:offset+r.Size])))
		offset += r.Size
	}
	return strings.Join(fields, " ")
}
