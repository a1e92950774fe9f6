package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnitVectorY-Labs/readmeportfolio/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli.New(os.Stderr, cli.LogInfo)
	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			c.Logger.Warn("Interrupted")
			os.Exit(130)
		}
		c.Logger.Error("Portfolio generation failed", "err", err)
		os.Exit(1)
	}
}
