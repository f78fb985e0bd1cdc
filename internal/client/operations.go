package client

import (
	"fmt"

	"github.com/danmuck/snesctl/internal/observability"
	"github.com/danmuck/snesctl/internal/protocol"
	"github.com/danmuck/snesctl/internal/protocol/frame"
)

// AppVersion returns the version string of the USB2SNES server application.
func (c *Client) AppVersion() (string, error) {
	var version string
	err := c.do(protocol.CmdAppVersion, func() error {
		if err := c.send(protocol.CmdAppVersion); err != nil {
			return err
		}
		reply, err := c.readReply(protocol.CmdAppVersion)
		if err != nil {
			return err
		}
		version, err = reply.Result(0)
		return err
	})
	return version, err
}

// SetName announces the client name to the server. No reply is sent.
func (c *Client) SetName(name string) error {
	return c.do(protocol.CmdName, func() error {
		return c.send(protocol.CmdName, name)
	})
}

// ListDevices returns every device identifier the server reports.
func (c *Client) ListDevices() ([]string, error) {
	var devices []string
	err := c.do(protocol.CmdDeviceList, func() error {
		if err := c.send(protocol.CmdDeviceList); err != nil {
			return err
		}
		reply, err := c.readReply(protocol.CmdDeviceList)
		if err != nil {
			return err
		}
		devices = reply.Results
		return nil
	})
	return devices, err
}

// Attach binds the connection to one device. No reply is sent.
func (c *Client) Attach(device string) error {
	return c.do(protocol.CmdAttach, func() error {
		return c.send(protocol.CmdAttach, device)
	})
}

func (c *Client) Info() (protocol.DeviceInfo, error) {
	var info protocol.DeviceInfo
	err := c.do(protocol.CmdInfo, func() error {
		if err := c.send(protocol.CmdInfo); err != nil {
			return err
		}
		reply, err := c.readReply(protocol.CmdInfo)
		if err != nil {
			return err
		}
		info, err = protocol.DecodeInfo(reply)
		return err
	})
	return info, err
}

func (c *Client) Reset() error {
	return c.do(protocol.CmdReset, func() error {
		return c.send(protocol.CmdReset)
	})
}

// Menu returns the device to its menu.
func (c *Client) Menu() error {
	return c.do(protocol.CmdMenu, func() error {
		return c.send(protocol.CmdMenu)
	})
}

// Boot starts the ROM at path on the device.
func (c *Client) Boot(path string) error {
	return c.do(protocol.CmdBoot, func() error {
		return c.send(protocol.CmdBoot, path)
	})
}

// List returns the entries of a device directory in reply order.
func (c *Client) List(path string) ([]protocol.DirEntry, error) {
	var entries []protocol.DirEntry
	err := c.do(protocol.CmdList, func() error {
		if err := c.send(protocol.CmdList, path); err != nil {
			return err
		}
		reply, err := c.readReply(protocol.CmdList)
		if err != nil {
			return err
		}
		entries, err = protocol.DecodeEntries(reply)
		return err
	})
	return entries, err
}

// PutFile uploads data to path. The payload follows the command as binary
// frames of at most frame.MaxChunkSize bytes; the device sends no
// acknowledgement.
func (c *Client) PutFile(path string, data []byte) error {
	return c.do(protocol.CmdPutFile, func() error {
		if err := c.send(protocol.CmdPutFile, path, protocol.FormatHex(uint64(len(data)))); err != nil {
			return err
		}
		sent := 0
		for _, chunk := range frame.Chunk(data, frame.MaxChunkSize) {
			if err := c.ch.SendBinary(chunk); err != nil {
				return fmt.Errorf("chunk at offset %d: %w", sent, err)
			}
			sent += len(chunk)
		}
		observability.RecordPayload(protocol.CmdPutFile.String(), "tx", sent)
		return nil
	})
}

// GetFile downloads the file at path. The device first declares the size in
// hex, then streams exactly that many bytes.
func (c *Client) GetFile(path string) ([]byte, error) {
	var data []byte
	err := c.do(protocol.CmdGetFile, func() error {
		if err := c.send(protocol.CmdGetFile, path); err != nil {
			return err
		}
		reply, err := c.readReply(protocol.CmdGetFile)
		if err != nil {
			return err
		}
		size, err := protocol.DecodeSize(reply)
		if err != nil {
			return err
		}
		if err := c.limits.Check(size); err != nil {
			return c.refuseBinary(protocol.CmdGetFile, size, err)
		}
		data, err = c.readBinary(protocol.CmdGetFile, size)
		return err
	})
	return data, err
}

func (c *Client) Rename(from, to string) error {
	return c.do(protocol.CmdRename, func() error {
		return c.send(protocol.CmdRename, from, to)
	})
}

// Remove deletes a file or empty directory on the device.
func (c *Client) Remove(path string) error {
	return c.do(protocol.CmdRemove, func() error {
		return c.send(protocol.CmdRemove, path)
	})
}

// GetAddress reads size bytes of SNES memory starting at address.
func (c *Client) GetAddress(address uint32, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%s: %w: negative size %d", protocol.CmdGetAddress, ErrInvalidRegion, size)
	}
	var data []byte
	err := c.do(protocol.CmdGetAddress, func() error {
		if err := c.limits.Check(size); err != nil {
			return err
		}
		if err := c.send(protocol.CmdGetAddress, protocol.FormatHex(uint64(address)), protocol.FormatHex(uint64(size))); err != nil {
			return err
		}
		var err error
		data, err = c.readBinary(protocol.CmdGetAddress, size)
		return err
	})
	return data, err
}

// GetMultiAddress reads several regions in one request and returns their
// bytes concatenated in request order.
func (c *Client) GetMultiAddress(regions []protocol.Region) ([]byte, error) {
	if err := validateRegions(regions); err != nil {
		return nil, fmt.Errorf("%s: %w", protocol.CmdGetAddress, err)
	}
	operands, total := protocol.RegionOperands(regions)
	var data []byte
	err := c.do(protocol.CmdGetAddress, func() error {
		if err := c.limits.Check(total); err != nil {
			return err
		}
		if err := c.send(protocol.CmdGetAddress, operands...); err != nil {
			return err
		}
		var err error
		data, err = c.readBinary(protocol.CmdGetAddress, total)
		return err
	})
	return data, err
}

// GetMultiAddressRegions reads several regions in one request and returns one
// buffer per region, in request order.
func (c *Client) GetMultiAddressRegions(regions []protocol.Region) ([][]byte, error) {
	data, err := c.GetMultiAddress(regions)
	if err != nil {
		return nil, err
	}
	sizes := make([]int, len(regions))
	for i, r := range regions {
		sizes[i] = r.Size
	}
	parts, err := frame.Split(data, sizes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", protocol.CmdGetAddress, err)
	}
	return parts, nil
}

func validateRegions(regions []protocol.Region) error {
	if len(regions) == 0 {
		return fmt.Errorf("%w: no regions", ErrInvalidRegion)
	}
	for i, r := range regions {
		if r.Size < 0 {
			return fmt.Errorf("%w: region %d has negative size %d", ErrInvalidRegion, i, r.Size)
		}
	}
	return nil
}
