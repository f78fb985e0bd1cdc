package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/snesctl/internal/client"
	"github.com/danmuck/snesctl/internal/transport"
)

var ErrInvalidConfig = errors.New("config: invalid")

const DefaultClientName = "snesctl"

// Config is the resolved CLI configuration.
type Config struct {
	ClientName string
	// Device selects the device to attach. Empty attaches the first one listed.
	Device    string
	Debug     bool
	Endpoint  transport.Endpoint
	Transport transport.Config
	Watch     WatchConfig
	Backup    BackupConfig
}

type WatchConfig struct {
	Interval    time.Duration
	MetricsAddr string
}

// BackupConfig selects where downloaded files are stored. A non-empty
// S3Bucket takes precedence over Dir.
type BackupConfig struct {
	Dir        string
	S3Bucket   string
	S3Region   string
	S3Endpoint string
	S3Prefix   string
}

func Default() Config {
	return Config{
		ClientName: DefaultClientName,
		Endpoint:   transport.DefaultEndpoint(),
		Transport:  transport.DefaultConfig(),
		Watch: WatchConfig{
			Interval: 500 * time.Millisecond,
		},
		Backup: BackupConfig{
			Dir:      "backups",
			S3Region: "us-east-1",
			S3Prefix: "snesctl/",
		},
	}
}

func (c Config) Validate() error {
	if err := c.Endpoint.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Transport.ConnectAttempts < 1 {
		return fmt.Errorf("%w: connect_attempts must be >= 1, got %d", ErrInvalidConfig, c.Transport.ConnectAttempts)
	}
	durations := []struct {
		name string
		d    time.Duration
	}{
		{"connect_timeout", c.Transport.ConnectTimeout},
		{"read_timeout", c.Transport.ReadTimeout},
		{"write_timeout", c.Transport.WriteTimeout},
	}
	for _, entry := range durations {
		if entry.d < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, entry.name)
		}
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("%w: watch interval must be positive", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Backup.S3Bucket) == "" && strings.TrimSpace(c.Backup.Dir) == "" {
		return fmt.Errorf("%w: backup needs a dir or an s3_bucket", ErrInvalidConfig)
	}
	return nil
}

// OpenConfig converts the configuration into client bootstrap settings.
func (c Config) OpenConfig() client.OpenConfig {
	return client.OpenConfig{
		Endpoint:  c.Endpoint,
		Transport: c.Transport,
		Name:      c.ClientName,
		Attach:    true,
		Device:    c.Device,
		Debug:     c.Debug,
	}
}
