// Package backup stores files downloaded from a device in a local directory
// or an S3 bucket.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/danmuck/snesctl/internal/romfile"
)

var (
	ErrInvalidKey  = errors.New("backup: invalid key")
	ErrNoSink      = errors.New("backup: no sink configured")
	ErrStoreFailed = errors.New("backup: store failed")
)

// Object is one payload on its way to a sink.
type Object struct {
	Key    string
	Remote string
	Data   []byte
	Digest string
}

// Sink persists backup objects and returns where each one landed.
type Sink interface {
	Put(ctx context.Context, obj Object) (string, error)
}

// Key builds the storage key for a remote file:
// <prefix><remote path>.<utc timestamp>.<digest>
func Key(prefix, remote string, digest string, at time.Time) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(remote))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", fmt.Errorf("%w: empty remote path %q", ErrInvalidKey, remote)
	}
	stamp := at.UTC().Format("20060102T150405Z")
	return prefix + clean + "." + stamp + "." + digest, nil
}

// NewObject fingerprints data and derives its key.
func NewObject(prefix, remote string, data []byte, at time.Time) (Object, error) {
	digest := romfile.DigestHex(data)
	key, err := Key(prefix, remote, digest, at)
	if err != nil {
		return Object{}, err
	}
	return Object{Key: key, Remote: remote, Data: data, Digest: digest}, nil
}

// DirSink writes objects below a local directory.
type DirSink struct {
	Root string
}

func NewDirSink(root string) *DirSink {
	return &DirSink{Root: root}
}

func (s *DirSink) Put(ctx context.Context, obj Object) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel := filepath.FromSlash(obj.Key)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q escapes backup dir", ErrInvalidKey, obj.Key)
	}
	dst := filepath.Join(s.Root, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".backup-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(obj.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	return dst, nil
}
