// Package main provides the entry point for the rangeq CLI tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Sumatoshi-tech/rangeq/cmd/rangeq/commands"
	"github.com/Sumatoshi-tech/rangeq/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := commands.NewRootCommand().ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
