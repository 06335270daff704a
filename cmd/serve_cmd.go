package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"photo-gallery/pkg/handlers"
	"photo-gallery/pkg/services"
)

// newServeCmd creates a new command for serving the web application
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `Start the web server to serve the gallery page, its JSON API and static assets.`,
		Example: `  # Serve a manifest on the default port
  photo-gallery serve --manifest https://example.com/album/data.json

  # Serve from a bucket on a custom port
  photo-gallery serve --manifest gs://my-album/data.json --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			return serveWebsite(cmd.Context(), svc)
		},
	}
}

// serveWebsite runs the web server until ctx is cancelled
func serveWebsite(ctx context.Context, svc *services.Service) error {
	cfg := svc.Config()
	svc.ResolveCapabilities(ctx)

	handler := handlers.New(svc)
	server := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           handler.Router(cfg.PublicDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		cfg.PrintServerStartMessage()
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "err", err)
			return err
		}
		slog.Info("Server stopped")
		return nil
	case err := <-serverErr:
		return err
	}
}
