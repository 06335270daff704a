// Command serve starts the gallery web server directly, for container images
// that run a single binary without a subcommand.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"photo-gallery/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cmd.NewRootCmd()
	root.SetArgs(append([]string{"serve"}, os.Args[1:]...))
	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("Server error", "err", err)
		os.Exit(1)
	}
}
