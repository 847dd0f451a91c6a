package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/primegrid/primegrid/internal/service"
)

func fileserverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fileserver",
		Short: "Serve dataset segments over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			fs, err := service.NewFileServer(cfg.FileServer.DataDir)
			if err != nil {
				return fmt.Errorf("create fileserver: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := &http.Server{Addr: cfg.FileServer.Listen, Handler: fs.Handler()}
			errCh := make(chan error, 1)
			go func() {
				slog.Info("Starting fileserver", "address", cfg.FileServer.Listen, "data_dir", cfg.FileServer.DataDir)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("fileserver failed: %w", err)
			case <-ctx.Done():
				slog.Info("Received shutdown signal")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}
