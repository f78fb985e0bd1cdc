package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/danmuck/snesctl/internal/client"
	"github.com/danmuck/snesctl/internal/config"
	"github.com/spf13/cobra"
)

func versionCmd(a *app) *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print snesctl and server versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "snesctl %s (%s)\n", version, commit)
			if local {
				return nil
			}
			return a.withClient(cmd, false, func(_ context.Context, c *client.Client, _ config.Config) error {
				v, err := c.AppVersion()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "server  %s\n", v)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "skip the server query")
	return cmd
}

func devicesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List devices known to the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, false, func(_ context.Context, c *client.Client, _ config.Config) error {
				devices, err := c.ListDevices()
				if err != nil {
					return err
				}
				for _, d := range devices {
					fmt.Fprintln(cmd.OutOrStdout(), d)
				}
				return nil
			})
		},
	}
}

func infoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show firmware, device type and running ROM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, true, func(_ context.Context, c *client.Client, _ config.Config) error {
				info, err := c.Info()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "firmware: %s\n", info.Version)
				fmt.Fprintf(out, "device:   %s\n", info.DeviceType)
				fmt.Fprintf(out, "game:     %s\n", info.Game)
				if len(info.Flags) > 0 {
					fmt.Fprintf(out, "flags:    %s\n", strings.Join(info.Flags, ", "))
				}
				return nil
			})
		},
	}
}

func bootCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "boot <path>",
		Short: "Boot a ROM stored on the device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, true, func(_ context.Context, c *client.Client, _ config.Config) error {
				return c.Boot(args[0])
			})
		},
	}
}

func resetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, true, func(_ context.Context, c *client.Client, _ config.Config) error {
				return c.Reset()
			})
		},
	}
}

func menuCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Return the device to its menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, true, func(_ context.Context, c *client.Client, _ config.Config) error {
				return c.Menu()
			})
		},
	}
}
