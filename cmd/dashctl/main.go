package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/client/cli"
	"go.uber.org/zap"
)

func main() {
	cfg, err := cli.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := zap.NewNop()
	if os.Getenv("DASHCTL_DEBUG") != "" {
		logger, _ = zap.NewDevelopment()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Run(ctx, cfg, os.Args[1:], os.Stdin, os.Stdout, logger); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
