package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/danmuck/snesctl/internal/testutil/testlog"
	"github.com/danmuck/snesctl/internal/transport"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snesctl.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	testlog.Start(t)
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Endpoint != transport.DefaultEndpoint() {
		t.Fatalf("unexpected endpoint: %+v", cfg.Endpoint)
	}
	if cfg.Transport.ReadTimeout != 0 {
		t.Fatalf("expected no read timeout by default, got %v", cfg.Transport.ReadTimeout)
	}
}

func TestTemplateMatchesDefault(t *testing.T) {
	testlog.Start(t)
	cfg, err := Decode(Template)
	if err != nil {
		t.Fatalf("decode template: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("template drifted from defaults:\n got %+v\nwant %+v", cfg, Default())
	}
}

func TestLoadOverrides(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
client_name = " tracker "
device = "SD2SNES COM4"
debug = true

[endpoint]
host = "10.0.0.5"
port = 8080

[transport]
read_timeout = "2s"
connect_attempts = 3

[watch]
interval = "1s"
metrics_addr = "127.0.0.1:9102"

[backup]
s3_bucket = "saves"
s3_prefix = "ci/"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ClientName != "tracker" || cfg.Device != "SD2SNES COM4" || !cfg.Debug {
		t.Fatalf("unexpected top-level values: %+v", cfg)
	}
	if cfg.Endpoint.Host != "10.0.0.5" || cfg.Endpoint.Port != 8080 {
		t.Fatalf("unexpected endpoint: %+v", cfg.Endpoint)
	}
	if cfg.Transport.ReadTimeout != 2*time.Second || cfg.Transport.ConnectAttempts != 3 {
		t.Fatalf("unexpected transport: %+v", cfg.Transport)
	}
	if cfg.Transport.WriteTimeout != 10*time.Second {
		t.Fatalf("undefined keys must keep defaults, got write timeout %v", cfg.Transport.WriteTimeout)
	}
	if cfg.Watch.Interval != time.Second || cfg.Watch.MetricsAddr != "127.0.0.1:9102" {
		t.Fatalf("unexpected watch: %+v", cfg.Watch)
	}
	if cfg.Backup.S3Bucket != "saves" || cfg.Backup.S3Prefix != "ci/" || cfg.Backup.Dir != "backups" {
		t.Fatalf("unexpected backup: %+v", cfg.Backup)
	}

	open := cfg.OpenConfig()
	if open.Name != "tracker" || open.Device != "SD2SNES COM4" || !open.Attach || !open.Debug {
		t.Fatalf("unexpected open config: %+v", open)
	}
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"bad duration":     "[transport]\nread_timeout = \"soon\"\n",
		"negative timeout": "[transport]\nwrite_timeout = \"-1s\"\n",
		"zero attempts":    "[transport]\nconnect_attempts = 0\n",
		"empty host":       "[endpoint]\nhost = \"\"\n",
		"port range":       "[endpoint]\nport = 70000\n",
		"zero interval":    "[watch]\ninterval = \"0s\"\n",
		"no backup target": "[backup]\ndir = \"\"\n",
	}
	for name, body := range cases {
		_, err := Load(writeConfig(t, body))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	testlog.Start(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadSyntaxError(t *testing.T) {
	testlog.Start(t)
	if _, err := Load(writeConfig(t, "client_name = \n")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestWriteTemplate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "snesctl.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite template: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("load template: %v", err)
	}
}
