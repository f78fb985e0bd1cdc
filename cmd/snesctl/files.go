package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/danmuck/snesctl/internal/client"
	"github.com/danmuck/snesctl/internal/config"
	"github.com/danmuck/snesctl/internal/protocol"
	"github.com/danmuck/snesctl/internal/romfile"
	"github.com/spf13/cobra"
)

func lsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "List a directory on the device",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "/"
			if len(args) == 1 {
				dir = args[0]
			}
			return a.withClient(cmd, true, func(_ context.Context, c *client.Client, _ config.Config) error {
				entries, err := c.List(dir)
				if err != nil {
					return err
				}
				for _, e := range entries {
					name := e.Name
					if e.Kind == protocol.EntryDirectory {
						name += "/"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%-4s %s\n", e.Kind, name)
				}
				return nil
			})
		},
	}
}

func putCmd(a *app) *cobra.Command {
	var (
		verify      bool
		stripHeader bool
	)
	cmd := &cobra.Command{
		Use:   "put <local> <remote>",
		Short: "Upload a file, unpacking .gz, .zip and .7z archives",
		Long: `Upload a local file to the device. Archives are unpacked and the first
ROM inside is sent. A remote path ending in / receives the file under its
own name.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := romfile.Load(args[0])
			if err != nil {
				return err
			}
			data := img.Data
			if stripHeader {
				data = romfile.StripCopierHeader(data)
			}
			remote := args[1]
			if strings.HasSuffix(remote, "/") {
				remote += img.Name
			}
			return a.withClient(cmd, true, func(_ context.Context, c *client.Client, _ config.Config) error {
				if err := c.PutFile(remote, data); err != nil {
					return err
				}
				digest := romfile.DigestHex(data)
				if verify {
					back, err := c.GetFile(remote)
					if err != nil {
						return fmt.Errorf("verify %s: %w", remote, err)
					}
					if got := romfile.DigestHex(back); got != digest {
						return fmt.Errorf("verify %s: digest %s, want %s", remote, got, digest)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bytes xxhash64=%s\n", remote, len(data), digest)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "download the file again and compare digests")
	cmd.Flags().BoolVar(&stripHeader, "strip-header", false, "drop a 512 byte copier header")
	return cmd
}

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <remote> [local]",
		Short: "Download a file from the device",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			remote := args[0]
			local := path.Base(remote)
			if len(args) == 2 {
				local = args[1]
			}
			return a.withClient(cmd, true, func(_ context.Context, c *client.Client, _ config.Config) error {
				data, err := c.GetFile(remote)
				if err != nil {
					return err
				}
				if info, err := os.Stat(local); err == nil && info.IsDir() {
					local = filepath.Join(local, path.Base(remote))
				}
				if err := os.WriteFile(local, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bytes xxhash64=%s\n", local, len(data), romfile.DigestHex(data))
				return nil
			})
		},
	}
}

func mvCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <from> <to>",
		Short: "Rename a file on the device",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, true, func(_ context.Context, c *client.Client, _ config.Config) error {
				return c.Rename(args[0], args[1])
			})
		},
	}
}

func rmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>",
		Short: "Remove a file or empty directory on the device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, true, func(_ context.Context, c *client.Client, _ config.Config) error {
				return c.Remove(args[0])
			})
		},
	}
}
