package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/snesctl/internal/romfile"
	"github.com/danmuck/snesctl/internal/testutil/testlog"
	"github.com/danmuck/snesctl/internal/testutil/wstest"
)

// run executes the CLI against srv and returns stdout.
func run(t *testing.T, srv *wstest.Server, args ...string) (string, error) {
	t.Helper()
	t.Setenv(EnvConfigPath, "")
	ep := srv.Endpoint()
	full := append([]string{"--host", ep.Host, "--port", strconv.Itoa(int(ep.Port))}, args...)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(full)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func mustRun(t *testing.T, srv *wstest.Server, args ...string) string {
	t.Helper()
	out, err := run(t, srv, args...)
	if err != nil {
		t.Fatalf("snesctl %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestDevicesAndInfo(t *testing.T) {
	testlog.Start(t)
	dev := wstest.NewDevice()
	dev.Devices = []string{"SD2SNES COM3", "EMU SNES9X"}
	srv := wstest.NewServer(t, dev)

	out := mustRun(t, srv, "devices")
	if out != "SD2SNES COM3\nEMU SNES9X\n" {
		t.Fatalf("unexpected devices output: %q", out)
	}

	out = mustRun(t, srv, "info", "--device", "EMU SNES9X")
	if !strings.Contains(out, "firmware: 1.11.0") || !strings.Contains(out, "game:     /sd2snes/m3nu.bin") {
		t.Fatalf("unexpected info output: %q", out)
	}
	if _, attached, _ := dev.Snapshot(); attached != "EMU SNES9X" {
		t.Fatalf("expected selected device attached, got %q", attached)
	}

	out = mustRun(t, srv, "version")
	if !strings.Contains(out, "server  QUsb2Snes-0.7.26") {
		t.Fatalf("unexpected version output: %q", out)
	}
}

func TestUnknownDeviceFails(t *testing.T) {
	testlog.Start(t)
	srv := wstest.NewServer(t, wstest.NewDevice())
	if _, err := run(t, srv, "info", "--device", "nope"); err == nil {
		t.Fatalf("expected error for unknown device")
	}
}

func TestPutVerifyListGetRemove(t *testing.T) {
	testlog.Start(t)
	dev := wstest.NewDevice()
	dev.ChunkSize = 512
	srv := wstest.NewServer(t, dev)
	dir := t.TempDir()

	rom := bytes.Repeat([]byte{0x12, 0x34, 0x56}, 1100)
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	zw.Write(rom)
	zw.Close()
	local := filepath.Join(dir, "game.sfc.gz")
	if err := os.WriteFile(local, gz.Bytes(), 0o600); err != nil {
		t.Fatalf("write rom: %v", err)
	}

	out := mustRun(t, srv, "put", local, "/roms/", "--verify")
	if !strings.Contains(out, "/roms/game.sfc: 3300 bytes xxhash64="+romfile.DigestHex(rom)) {
		t.Fatalf("unexpected put output: %q", out)
	}
	stored, ok := dev.File("/roms/game.sfc")
	if !ok || !bytes.Equal(stored, rom) {
		t.Fatalf("device did not receive the unpacked rom")
	}

	out = mustRun(t, srv, "ls", "/roms")
	if out != "file game.sfc\n" {
		t.Fatalf("unexpected ls output: %q", out)
	}

	downloaded := filepath.Join(dir, "copy.sfc")
	mustRun(t, srv, "get", "/roms/game.sfc", downloaded)
	got, err := os.ReadFile(downloaded)
	if err != nil {
		t.Fatalf("read download: %v", err)
	}
	if !bytes.Equal(got, rom) {
		t.Fatalf("downloaded data differs")
	}

	mustRun(t, srv, "mv", "/roms/game.sfc", "/roms/old.sfc")
	out = mustRun(t, srv, "ls", "/roms")
	if out != "file old.sfc\n" {
		t.Fatalf("unexpected ls after mv: %q", out)
	}
	mustRun(t, srv, "rm", "/roms/old.sfc")
	if out := mustRun(t, srv, "ls", "/"); out != "" {
		t.Fatalf("expected empty root, got %q", out)
	}
}

func TestControlCommands(t *testing.T) {
	testlog.Start(t)
	dev := wstest.NewDevice()
	srv := wstest.NewServer(t, dev)

	mustRun(t, srv, "boot", "/roms/game.sfc")
	mustRun(t, srv, "reset")
	mustRun(t, srv, "menu")
	// a reply-bearing command orders after the fire-and-forget ones
	mustRun(t, srv, "info")

	_, _, events := dev.Snapshot()
	want := "Boot:/roms/game.sfc Reset Menu"
	if strings.Join(events, " ") != want {
		t.Fatalf("expected events %q, got %v", want, events)
	}
}

func TestReadRegions(t *testing.T) {
	testlog.Start(t)
	dev := wstest.NewDevice()
	dev.Memory[0xF5000A] = 0x55
	dev.Memory[0xF5000D] = 0x55
	srv := wstest.NewServer(t, dev)

	out := mustRun(t, srv, "read", "f5000a", "1", "f5000c", "2")
	if !strings.Contains(out, "f5000a (1 bytes)\n00000000  55 ") {
		t.Fatalf("missing first region: %q", out)
	}
	if !strings.Contains(out, "f5000c (2 bytes)\n00000000  00 55 ") {
		t.Fatalf("missing second region: %q", out)
	}

	if _, err := run(t, srv, "read", "f5000a"); err == nil {
		t.Fatalf("expected error for unpaired region")
	}
}

func TestWatchPrintsFirstValue(t *testing.T) {
	testlog.Start(t)
	dev := wstest.NewDevice()
	dev.Memory[0xF50010] = 0xAB
	srv := wstest.NewServer(t, dev)

	out := mustRun(t, srv, "watch", "f50010", "2", "--count", "3", "--interval", "5ms")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line for unchanged memory, got %q", out)
	}
	if !strings.HasSuffix(lines[0], "f50010=ab00") {
		t.Fatalf("unexpected watch line: %q", lines[0])
	}
}

func TestBench(t *testing.T) {
	testlog.Start(t)
	srv := wstest.NewServer(t, wstest.NewDevice())
	out := mustRun(t, srv, "bench", "f50010", "2", "-n", "8")
	if !strings.Contains(out, "samples=8") {
		t.Fatalf("unexpected bench output: %q", out)
	}
}

func TestBackupToDir(t *testing.T) {
	testlog.Start(t)
	dev := wstest.NewDevice()
	dev.Files["/saves/a.srm"] = []byte("battery")
	srv := wstest.NewServer(t, dev)
	dir := t.TempDir()

	out := mustRun(t, srv, "backup", "/saves/a.srm", "--dir", dir)
	if !strings.Contains(out, "/saves/a.srm -> "+filepath.Join(dir, "saves")) {
		t.Fatalf("unexpected backup output: %q", out)
	}
	matches, err := filepath.Glob(filepath.Join(dir, "saves", "a.srm.*."+romfile.DigestHex([]byte("battery"))))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one backup file, got %v (%v)", matches, err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	testlog.Start(t)
	srv := wstest.NewServer(t, wstest.NewDevice())
	path := filepath.Join(t.TempDir(), "snesctl.toml")

	mustRun(t, srv, "config", "init", path)
	if _, err := run(t, srv, "config", "init", path); err == nil {
		t.Fatalf("expected init to refuse overwriting")
	}
	out := mustRun(t, srv, "--config", path, "config", "validate")
	if !strings.Contains(out, "name:      snesctl") || !strings.Contains(out, "backup:    backups") {
		t.Fatalf("unexpected validate output: %q", out)
	}
}
