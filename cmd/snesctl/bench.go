package main

import (
	"context"

	"github.com/danmuck/snesctl/internal/bench"
	"github.com/danmuck/snesctl/internal/client"
	"github.com/danmuck/snesctl/internal/config"
	"github.com/spf13/cobra"
)

func benchCmd(a *app) *cobra.Command {
	var (
		iterations int
		threshold  = bench.FrameTime
	)
	cmd := &cobra.Command{
		Use:   "bench [<addr> <size>]",
		Short: "Time repeated memory reads and plot the latency",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return cobra.ExactArgs(2)(cmd, args)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := bench.DefaultOptions()
			opts.Iterations = iterations
			opts.Threshold = threshold
			if len(args) == 2 {
				regions, err := parseRegions(args)
				if err != nil {
					return err
				}
				opts.Address = regions[0].Address
				opts.Size = regions[0].Size
			}
			return a.withClient(cmd, true, func(ctx context.Context, c *client.Client, _ config.Config) error {
				samples, err := bench.Run(ctx, c, opts)
				if err != nil {
					return err
				}
				return bench.Report(cmd.OutOrStdout(), samples, opts.Threshold)
			})
		},
	}
	cmd.Flags().IntVarP(&iterations, "iterations", "n", bench.DefaultOptions().Iterations, "number of reads")
	cmd.Flags().DurationVar(&threshold, "outlier", threshold, "pairwise gap that marks a sample as an outlier")
	return cmd
}
