package client

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/danmuck/snesctl/internal/protocol"
	"github.com/danmuck/snesctl/internal/testutil/testlog"
	"github.com/danmuck/snesctl/internal/testutil/wstest"
)

func openDevice(t *testing.T, dev *wstest.Device, name string) *Client {
	t.Helper()
	srv := wstest.NewServer(t, dev)
	cfg := DefaultOpenConfig()
	cfg.Endpoint = srv.Endpoint()
	cfg.Transport.ReadTimeout = 5 * time.Second
	cfg.Name = name

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// roundTrip forces a round trip so fire-and-forget commands have been applied.
func roundTrip(t *testing.T, c *Client) {
	t.Helper()
	if _, err := c.AppVersion(); err != nil {
		t.Fatalf("sync: %v", err)
	}
}

func TestOpenNamesAndAttachesFirstDevice(t *testing.T) {
	testlog.Start(t)
	dev := wstest.NewDevice()
	dev.Devices = []string{"SD2SNES COM3", "SD2SNES COM4"}
	c := openDevice(t, dev, "snesctl-test")
	roundTrip(t, c)

	name, attached, _ := dev.Snapshot()
	if name != "snesctl-test" {
		t.Fatalf("expected name announced, got %q", name)
	}
	if attached != "SD2SNES COM3" {
		t.Fatalf("expected first device attached, got %q", attached)
	}
}

func TestOpenNoDevices(t *testing.T) {
	testlog.Start(t)
	dev := wstest.NewDevice()
	dev.Devices = nil
	srv := wstest.NewServer(t, dev)
	cfg := DefaultOpenConfig()
	cfg.Endpoint = srv.Endpoint()
	cfg.Transport.ReadTimeout = 5 * time.Second

	_, err := Open(context.Background(), cfg)
	if !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}
}

func TestEndToEndInfoAndControl(t *testing.T) {
	testlog.Start(t)
	dev := wstest.NewDevice()
	c := openDevice(t, dev, "")

	info, err := c.Info()
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Version != "1.11.0" || info.DeviceType != "FXPAK PRO STM32" || info.Game != "/sd2snes/m3nu.bin" {
		t.Fatalf("unexpected info: %+v", info)
	}

	if err := c.Boot("/roms/game.sfc"); err != nil {
		t.Fatalf("boot: %v", err)
	}
	if err := c.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := c.Menu(); err != nil {
		t.Fatalf("menu: %v", err)
	}
	roundTrip(t, c)

	_, _, events := dev.Snapshot()
	want := []string{"Boot:/roms/game.sfc", "Reset", "Menu"}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("expected events %v, got %v", want, events)
	}
}

func TestEndToEndFileLifecycle(t *testing.T) {
	testlog.Start(t)
	dev := wstest.NewDevice()
	dev.ChunkSize = 700
	c := openDevice(t, dev, "")

	data := bytes.Repeat([]byte{0xA5, 0x5A, 0x01}, 1000)
	if err := c.PutFile("/roms/game.sfc", data); err != nil {
		t.Fatalf("put file: %v", err)
	}
	entries, err := c.List("/roms")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "game.sfc" || entries[0].Kind != protocol.EntryFile {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	got, err := c.GetFile("/roms/game.sfc")
	if err != nil {
		t.Fatalf("get file: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("downloaded %d bytes differ from uploaded %d", len(got), len(data))
	}

	if err := c.Rename("/roms/game.sfc", "/roms/renamed.sfc"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := c.Remove("/roms/renamed.sfc"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	entries, err = c.List("/roms")
	if err != nil {
		t.Fatalf("list after remove: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty directory, got %+v", entries)
	}
}

func TestEndToEndEmptyFile(t *testing.T) {
	testlog.Start(t)
	dev := wstest.NewDevice()
	c := openDevice(t, dev, "")

	if err := c.PutFile("/empty.bin", nil); err != nil {
		t.Fatalf("put file: %v", err)
	}
	got, err := c.GetFile("/empty.bin")
	if err != nil {
		t.Fatalf("get file: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty file, got %d bytes", len(got))
	}
}

func TestEndToEndMemoryReads(t *testing.T) {
	testlog.Start(t)
	dev := wstest.NewDevice()
	dev.ChunkSize = 1
	dev.Memory[0xF5000A] = 0x55
	dev.Memory[0xF5000D] = 0x55
	c := openDevice(t, dev, "")

	single, err := c.GetAddress(0xF5000A, 1)
	if err != nil {
		t.Fatalf("get address: %v", err)
	}
	if !bytes.Equal(single, []byte{0x55}) {
		t.Fatalf("unexpected single read: %v", single)
	}

	parts, err := c.GetMultiAddressRegions([]protocol.Region{
		{Address: 0xF5000A, Size: 1},
		{Address: 0xF5000C, Size: 2},
	})
	if err != nil {
		t.Fatalf("get multi address: %v", err)
	}
	if !reflect.DeepEqual(parts, [][]byte{{0x55}, {0x00, 0x55}}) {
		t.Fatalf("unexpected regions: %v", parts)
	}

	empty, err := c.GetAddress(0xF50000, 0)
	if err != nil {
		t.Fatalf("zero-length read: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no bytes, got %v", empty)
	}
	roundTrip(t, c)
}
