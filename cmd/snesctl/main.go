package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/snesctl/internal/logging"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	logging.ConfigureRuntime()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "snesctl: %v\n", err)
		stop()
		os.Exit(1)
	}
}
