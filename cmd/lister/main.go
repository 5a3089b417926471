// File: cmd/lister/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/draftbay/lister-cli/cmd"
	"github.com/draftbay/lister-cli/internal/observability"
)

func main() {
	// Ctrl+C is the operator abort signal: it cancels the run context, which
	// unblocks a pending challenge wait and tears the session down.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
