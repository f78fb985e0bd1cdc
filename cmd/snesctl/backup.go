package main

import (
	"context"
	"fmt"

	"github.com/danmuck/snesctl/internal/backup"
	"github.com/danmuck/snesctl/internal/client"
	"github.com/danmuck/snesctl/internal/config"
	"github.com/spf13/cobra"
)

func backupCmd(a *app) *cobra.Command {
	var (
		dir    string
		bucket string
	)
	cmd := &cobra.Command{
		Use:   "backup <remote>...",
		Short: "Copy device files into the backup directory or S3 bucket",
		Long: `Download each remote file and store it under a key built from its path,
the current UTC time and its xxhash64 digest. With an S3 bucket configured,
credentials are read from AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, true, func(ctx context.Context, c *client.Client, cfg config.Config) error {
				if cmd.Flags().Changed("dir") {
					cfg.Backup.Dir = dir
				}
				if cmd.Flags().Changed("s3-bucket") {
					cfg.Backup.S3Bucket = bucket
				}
				runner, err := backup.NewRunner(cfg.Backup)
				if err != nil {
					return err
				}
				results, err := runner.Run(ctx, c, args)
				for _, r := range results {
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d bytes)\n", r.Remote, r.Location, r.Size)
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "backup directory (default from config)")
	cmd.Flags().StringVar(&bucket, "s3-bucket", "", "upload to this S3 bucket instead of a directory")
	return cmd
}
