package main

import (
	"context"

	"github.com/danmuck/snesctl/internal/client"
	"github.com/danmuck/snesctl/internal/config"
	"github.com/spf13/cobra"
)

type app struct {
	flags globalFlags
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "snesctl",
		Short: "Control a SNES cartridge device through a USB2SNES server",
		Long: `snesctl talks to a USB2SNES compatible server (QUsb2Snes, SNI) over
WebSocket. It manages files on the cartridge SD card, boots ROMs and reads
console memory.

Examples:
  snesctl devices
  snesctl put game.sfc.7z /roms/ --verify
  snesctl read f50010 2 7e0000 16
  snesctl watch f5f340 4 --metrics-addr 127.0.0.1:9102`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	a.flags.bind(root)

	root.AddCommand(
		versionCmd(a),
		devicesCmd(a),
		infoCmd(a),
		lsCmd(a),
		putCmd(a),
		getCmd(a),
		mvCmd(a),
		rmCmd(a),
		bootCmd(a),
		resetCmd(a),
		menuCmd(a),
		readCmd(a),
		watchCmd(a),
		benchCmd(a),
		backupCmd(a),
		configCmd(a),
	)
	return root
}

func (a *app) config(cmd *cobra.Command) (config.Config, error) {
	return resolveConfig(a.flags, cmd.Flags().Changed)
}

// withClient opens a session, runs fn and closes the session. attach selects
// whether the bootstrap claims a device.
func (a *app) withClient(cmd *cobra.Command, attach bool, fn func(ctx context.Context, c *client.Client, cfg config.Config) error) error {
	cfg, err := a.config(cmd)
	if err != nil {
		return err
	}
	open := cfg.OpenConfig()
	open.Attach = attach

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := client.Open(ctx, open)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c, cfg)
}
