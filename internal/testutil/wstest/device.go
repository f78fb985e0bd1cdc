package wstest

import (
	"sort"
	"strings"
	"sync"

	"github.com/danmuck/snesctl/internal/protocol"
)

// Device is an in-memory USB2SNES device: a flat filesystem, a sparse
// memory map and a log of control commands.
type Device struct {
	mu sync.Mutex

	Version    string
	DeviceType string
	Game       string
	Flags      []string
	AppVersion string
	Devices    []string
	// ChunkSize bounds the binary frames the device sends. Zero sends one frame.
	ChunkSize int

	Name     string
	Attached string
	Files    map[string][]byte
	Memory   map[uint32]byte
	Events   []string

	upload *pendingUpload
}

type pendingUpload struct {
	path string
	size int
	buf  []byte
}

func NewDevice() *Device {
	return &Device{
		Version:    "1.11.0",
		DeviceType: "FXPAK PRO STM32",
		Game:       "/sd2snes/m3nu.bin",
		AppVersion: "QUsb2Snes-0.7.26",
		Devices:    []string{"SD2SNES COM3"},
		Files:      map[string][]byte{},
		Memory:     map[uint32]byte{},
	}
}

func (d *Device) HandleRequest(c *Conn, req protocol.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()

	op := req.Operands
	switch protocol.Command(req.Opcode) {
	case protocol.CmdAppVersion:
		c.Reply(d.AppVersion)
	case protocol.CmdName:
		if len(op) > 0 {
			d.Name = op[0]
		}
	case protocol.CmdDeviceList:
		c.Reply(d.Devices...)
	case protocol.CmdAttach:
		if len(op) > 0 {
			d.Attached = op[0]
		}
	case protocol.CmdInfo:
		c.Reply(append([]string{d.Version, d.DeviceType, d.Game}, d.Flags...)...)
	case protocol.CmdBoot:
		if len(op) > 0 {
			d.Game = op[0]
			d.Events = append(d.Events, "Boot:"+op[0])
		}
	case protocol.CmdReset, protocol.CmdMenu:
		d.Events = append(d.Events, req.Opcode)
	case protocol.CmdList:
		c.Reply(d.list(firstOr(op, "/"))...)
	case protocol.CmdPutFile:
		if len(op) < 2 {
			return
		}
		size, err := protocol.ParseHex(op[1])
		if err != nil {
			c.t.Errorf("wstest: bad PutFile size %q", op[1])
			return
		}
		d.upload = &pendingUpload{path: op[0], size: int(size)}
		if size == 0 {
			d.Files[op[0]] = []byte{}
			d.upload = nil
		}
	case protocol.CmdGetFile:
		data := d.Files[firstOr(op, "")]
		c.Reply(protocol.FormatHex(uint64(len(data))))
		d.send(c, data)
	case protocol.CmdRename:
		if len(op) < 2 {
			return
		}
		if data, ok := d.Files[op[0]]; ok {
			delete(d.Files, op[0])
			d.Files[op[1]] = data
		}
	case protocol.CmdRemove:
		delete(d.Files, firstOr(op, ""))
	case protocol.CmdGetAddress:
		var out []byte
		for i := 0; i+1 < len(op); i += 2 {
			addr, err1 := protocol.ParseHex(op[i])
			size, err2 := protocol.ParseHex(op[i+1])
			if err1 != nil || err2 != nil {
				c.t.Errorf("wstest: bad GetAddress operands %v", op)
				return
			}
			for n := uint64(0); n < size; n++ {
				out = append(out, d.Memory[uint32(addr+n)])
			}
		}
		d.send(c, out)
	default:
		c.t.Errorf("wstest: unexpected opcode %q", req.Opcode)
	}
}

func (d *Device) HandleBinary(c *Conn, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.upload == nil {
		c.t.Errorf("wstest: binary frame without pending upload")
		return
	}
	d.upload.buf = append(d.upload.buf, data...)
	if len(d.upload.buf) >= d.upload.size {
		d.Files[d.upload.path] = d.upload.buf
		d.upload = nil
	}
}

// File returns a copy of a stored file.
func (d *Device) File(path string) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.Files[path]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true
}

// Snapshot returns the name, attached device and events recorded so far.
func (d *Device) Snapshot() (name, attached string, events []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Name, d.Attached, append([]string(nil), d.Events...)
}

func (d *Device) send(c *Conn, data []byte) {
	if len(data) == 0 {
		return
	}
	if d.ChunkSize <= 0 {
		c.Binary(data)
		return
	}
	c.Chunked(data, d.ChunkSize)
}

func (d *Device) list(dir string) []string {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	dirs := map[string]bool{}
	files := map[string]bool{}
	for path := range d.Files {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(path, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			dirs[rest[:i]] = true
			continue
		}
		files[rest] = true
	}
	out := []string{}
	for _, name := range sortedKeys(dirs) {
		out = append(out, "0", name)
	}
	for _, name := range sortedKeys(files) {
		out = append(out, "1", name)
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstOr(ops []string, fallback string) string {
	if len(ops) == 0 {
		return fallback
	}
	return ops[0]
}
