package backup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/snesctl/internal/config"
	"github.com/danmuck/snesctl/internal/logging"
)

// Fetcher downloads one device file. *client.Client satisfies it.
type Fetcher interface {
	GetFile(path string) ([]byte, error)
}

type Result struct {
	Remote   string
	Location string
	Size     int
	Digest   string
}

// Runner copies device files into a sink.
type Runner struct {
	Sink   Sink
	Prefix string
	Now    func() time.Time
}

// NewRunner picks the sink the configuration names. A bucket wins over a
// directory.
func NewRunner(cfg config.BackupConfig) (*Runner, error) {
	r := &Runner{Now: time.Now}
	switch {
	case strings.TrimSpace(cfg.S3Bucket) != "":
		client := NewS3Client(S3Config{Bucket: cfg.S3Bucket, Region: cfg.S3Region, Endpoint: cfg.S3Endpoint})
		r.Sink = NewS3Sink(client, cfg.S3Bucket)
		r.Prefix = cfg.S3Prefix
	case strings.TrimSpace(cfg.Dir) != "":
		r.Sink = NewDirSink(cfg.Dir)
	default:
		return nil, ErrNoSink
	}
	return r, nil
}

// Run downloads each remote path in order and stores it. It stops at the
// first failure and returns the results gathered so far.
func (r *Runner) Run(ctx context.Context, src Fetcher, remotes []string) ([]Result, error) {
	if r.Sink == nil {
		return nil, ErrNoSink
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}
	logger := logging.Component("backup")

	results := make([]Result, 0, len(remotes))
	for _, remote := range remotes {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		data, err := src.GetFile(remote)
		if err != nil {
			return results, fmt.Errorf("backup: fetch %s: %w", remote, err)
		}
		obj, err := NewObject(r.Prefix, remote, data, now())
		if err != nil {
			return results, err
		}
		location, err := r.Sink.Put(ctx, obj)
		if err != nil {
			return results, err
		}
		logger.Info().
			Str("remote", remote).
			Str("location", location).
			Int("bytes", len(data)).
			Str("digest", obj.Digest).
			Msg("backed up")
		results = append(results, Result{Remote: remote, Location: location, Size: len(data), Digest: obj.Digest})
	}
	return results, nil
}
