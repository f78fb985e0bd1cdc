package main

import (
	"fmt"

	"github.com/danmuck/snesctl/internal/config"
	"github.com/spf13/cobra"
)

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check a config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "snesctl.toml"
			if len(args) == 1 {
				target = args[0]
			}
			if err := config.WriteTemplate(target, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", target)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the config with flag overrides and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "endpoint:  %s\n", cfg.Endpoint.URL())
			fmt.Fprintf(out, "name:      %s\n", cfg.ClientName)
			device := cfg.Device
			if device == "" {
				device = "(first listed)"
			}
			fmt.Fprintf(out, "device:    %s\n", device)
			fmt.Fprintf(out, "transport: connect=%s read=%s write=%s attempts=%d\n",
				cfg.Transport.ConnectTimeout, cfg.Transport.ReadTimeout, cfg.Transport.WriteTimeout, cfg.Transport.ConnectAttempts)
			fmt.Fprintf(out, "watch:     interval=%s metrics=%q\n", cfg.Watch.Interval, cfg.Watch.MetricsAddr)
			if cfg.Backup.S3Bucket != "" {
				fmt.Fprintf(out, "backup:    s3://%s/%s (%s)\n", cfg.Backup.S3Bucket, cfg.Backup.S3Prefix, cfg.Backup.S3Region)
			} else {
				fmt.Fprintf(out, "backup:    %s\n", cfg.Backup.Dir)
			}
			return nil
		},
	}

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
