package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type fileConfig struct {
	ClientName string           `toml:"client_name"`
	Device     string           `toml:"device"`
	Debug      bool             `toml:"debug"`
	Endpoint   endpointSection  `toml:"endpoint"`
	Transport  transportSection `toml:"transport"`
	Watch      watchSection     `toml:"watch"`
	Backup     backupSection    `toml:"backup"`
}

type endpointSection struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type transportSection struct {
	ConnectTimeout  string `toml:"connect_timeout"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	ConnectAttempts int    `toml:"connect_attempts"`
}

type watchSection struct {
	Interval    string `toml:"interval"`
	MetricsAddr string `toml:"metrics_addr"`
}

type backupSection struct {
	Dir        string `toml:"dir"`
	S3Bucket   string `toml:"s3_bucket"`
	S3Region   string `toml:"s3_region"`
	S3Endpoint string `toml:"s3_endpoint"`
	S3Prefix   string `toml:"s3_prefix"`
}

// Load reads path and applies every key it defines on top of Default.
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	cfg, err := apply(Default(), raw, meta)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode is Load for in-memory TOML.
func Decode(data string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg, err := apply(Default(), raw, meta)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func apply(cfg Config, raw fileConfig, meta toml.MetaData) (Config, error) {
	if meta.IsDefined("client_name") {
		cfg.ClientName = strings.TrimSpace(raw.ClientName)
	}
	if meta.IsDefined("device") {
		cfg.Device = strings.TrimSpace(raw.Device)
	}
	if meta.IsDefined("debug") {
		cfg.Debug = raw.Debug
	}

	if meta.IsDefined("endpoint", "host") {
		cfg.Endpoint.Host = strings.TrimSpace(raw.Endpoint.Host)
	}
	if meta.IsDefined("endpoint", "port") {
		if raw.Endpoint.Port <= 0 || raw.Endpoint.Port > 65535 {
			return Config{}, fmt.Errorf("%w: endpoint port %d out of range", ErrInvalidConfig, raw.Endpoint.Port)
		}
		cfg.Endpoint.Port = uint16(raw.Endpoint.Port)
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"connect_timeout", raw.Transport.ConnectTimeout, &cfg.Transport.ConnectTimeout},
		{"read_timeout", raw.Transport.ReadTimeout, &cfg.Transport.ReadTimeout},
		{"write_timeout", raw.Transport.WriteTimeout, &cfg.Transport.WriteTimeout},
	}
	for _, entry := range durations {
		if !meta.IsDefined("transport", entry.key) {
			continue
		}
		d, err := parseDuration(entry.raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse transport.%s: %w", entry.key, err)
		}
		*entry.dst = d
	}
	if meta.IsDefined("transport", "connect_attempts") {
		cfg.Transport.ConnectAttempts = raw.Transport.ConnectAttempts
	}

	if meta.IsDefined("watch", "interval") {
		d, err := parseDuration(raw.Watch.Interval)
		if err != nil {
			return Config{}, fmt.Errorf("parse watch.interval: %w", err)
		}
		cfg.Watch.Interval = d
	}
	if meta.IsDefined("watch", "metrics_addr") {
		cfg.Watch.MetricsAddr = strings.TrimSpace(raw.Watch.MetricsAddr)
	}

	if meta.IsDefined("backup", "dir") {
		cfg.Backup.Dir = strings.TrimSpace(raw.Backup.Dir)
	}
	if meta.IsDefined("backup", "s3_bucket") {
		cfg.Backup.S3Bucket = strings.TrimSpace(raw.Backup.S3Bucket)
	}
	if meta.IsDefined("backup", "s3_region") {
		cfg.Backup.S3Region = strings.TrimSpace(raw.Backup.S3Region)
	}
	if meta.IsDefined("backup", "s3_endpoint") {
		cfg.Backup.S3Endpoint = strings.TrimSpace(raw.Backup.S3Endpoint)
	}
	if meta.IsDefined("backup", "s3_prefix") {
		cfg.Backup.S3Prefix = raw.Backup.S3Prefix
	}
	return cfg, nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return d, nil
}
