package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/danmuck/snesctl/internal/transport"
)

// OpenConfig describes how to reach and claim a device.
type OpenConfig struct {
	Endpoint  transport.Endpoint
	Transport transport.Config
	// Name is announced with the Name command when non-empty.
	Name string
	// Attach runs DeviceList and attaches Device, or the first device when
	// Device is empty.
	Attach bool
	Device string
	Debug  bool
}

func DefaultOpenConfig() OpenConfig {
	return OpenConfig{
		Endpoint:  transport.DefaultEndpoint(),
		Transport: transport.DefaultConfig(),
		Attach:    true,
	}
}

// Open dials the server and runs the name/attach bootstrap.
func Open(ctx context.Context, cfg OpenConfig, opts ...Option) (*Client, error) {
	ch, err := transport.DialRetry(ctx, cfg.Endpoint, cfg.Transport)
	if err != nil {
		return nil, err
	}
	c := New(ch, append([]Option{WithDebug(cfg.Debug)}, opts...)...)

	if name := strings.TrimSpace(cfg.Name); name != "" {
		if err := c.SetName(name); err != nil {
			c.Close()
			return nil, err
		}
	}
	if cfg.Attach {
		device, err := c.AttachDevice(cfg.Device)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.logger.Info().Str("device", device).Str("endpoint", cfg.Endpoint.URL()).Msg("attached")
	}
	return c, nil
}

// AttachDevice lists devices and attaches the one named selector, or the
// first one when selector is empty. It returns the attached device name.
func (c *Client) AttachDevice(selector string) (string, error) {
	devices, err := c.ListDevices()
	if err != nil {
		return "", err
	}
	device, err := selectDevice(devices, selector)
	if err != nil {
		return "", err
	}
	if err := c.Attach(device); err != nil {
		return "", err
	}
	return device, nil
}

func selectDevice(devices []string, selector string) (string, error) {
	if len(devices) == 0 {
		return "", fmt.Errorf("%w: device list is empty", ErrNoDevice)
	}
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return devices[0], nil
	}
	for _, d := range devices {
		if d == selector {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q not in %v", ErrNoDevice, selector, devices)
}
