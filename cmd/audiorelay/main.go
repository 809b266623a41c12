// Package main is the entrypoint for the audio relay service and CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/edgard/audiorelay/cmd/audiorelay/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := commands.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
