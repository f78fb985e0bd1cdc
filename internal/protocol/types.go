package protocol

// Command is a USB2SNES opcode. Its value is the tag sent on the wire.
type Command string

const (
	CmdAppVersion Command = "AppVersion"
	CmdName       Command = "Name"
	CmdDeviceList Command = "DeviceList"
	CmdAttach     Command = "Attach"
	CmdInfo       Command = "Info"
	CmdBoot       Command = "Boot"
	CmdReset      Command = "Reset"
	CmdMenu       Command = "Menu"

	CmdList    Command = "List"
	CmdPutFile Command = "PutFile"
	CmdGetFile Command = "GetFile"
	CmdRename  Command = "Rename"
	CmdRemove  Command = "Remove"

	CmdGetAddress Command = "GetAddress"
)

func (c Command) String() string {
	return string(c)
}

// Space qualifies the memory or file domain a command applies to.
// SpaceNone is omitted from the encoded request.
type Space string

const (
	SpaceNone Space = ""
	SpaceSNES Space = "SNES"
	SpaceCMD  Space = "CMD"
)

func (s Space) String() string {
	if s == SpaceNone {
		return "None"
	}
	return string(s)
}

// DefaultSpace returns the space the typed client operations send for cmd.
func DefaultSpace(cmd Command) Space {
	switch cmd {
	case CmdGetAddress, CmdList, CmdPutFile, CmdGetFile, CmdRename, CmdRemove, CmdBoot:
		return SpaceSNES
	default:
		return SpaceNone
	}
}

// Request is the JSON command envelope. Field order is the wire key order.
type Request struct {
	Opcode   string   `json:"Opcode"`
	Space    string   `json:"Space,omitempty"`
	Flags    []string `json:"Flags"`
	Operands []string `json:"Operands"`
}

// Reply is the JSON reply envelope.
type Reply struct {
	Results []string `json:"Results"`
}

// EntryKind distinguishes files from directories in a List reply.
type EntryKind int

const (
	EntryDirectory EntryKind = iota
	EntryFile
)

func (k EntryKind) String() string {
	if k == EntryFile {
		return "file"
	}
	return "dir"
}

// DirEntry is one element of a List reply.
type DirEntry struct {
	Name string
	Kind EntryKind
}

// DeviceInfo is the decoded Info reply.
type DeviceInfo struct {
	Version    string
	DeviceType string
	Game       string
	Flags      []string
}

// Region is one address range of a multi-region read.
type Region struct {
	Address uint32
	Size    int
}
