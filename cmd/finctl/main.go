package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finfinance/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.LoadEnvFile()
	if err := newRootCmd(nil, os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
