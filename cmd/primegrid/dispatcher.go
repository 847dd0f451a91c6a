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

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/primegrid/primegrid/internal/service"
)

func dispatcherCmd() *cobra.Command {
	var (
		dataPath    string
		segmentSize int64
	)
	cmd := &cobra.Command{
		Use:   "dispatcher",
		Short: "Hand out dataset segments as jobs and consolidate the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if dataPath == "" {
				return fmt.Errorf("--data is required")
			}
			if segmentSize == 0 {
				segmentSize = cfg.Crunch.SegmentSize
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			nc, err := nats.Connect(cfg.NATS.URL)
			if err != nil {
				return fmt.Errorf("connect to NATS at %s: %w", cfg.NATS.URL, err)
			}
			defer nc.Close()

			dispatcher, err := service.NewDispatcher(dataPath, segmentSize)
			if err != nil {
				return fmt.Errorf("create dispatcher: %w", err)
			}
			if err := dispatcher.Bind(ctx, nc); err != nil {
				return err
			}
			defer dispatcher.Unbind()

			consolidator := service.NewConsolidator(prometheus.DefaultRegisterer)
			if err := consolidator.Bind(ctx, nc); err != nil {
				return err
			}
			defer consolidator.Unbind()

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, "ok")
			})
			metricsServer := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux}
			go func() {
				slog.Info("Starting metrics server", "address", cfg.Metrics.Listen)
				if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					slog.Error("Metrics server failed", "error", err)
				}
			}()

			slog.Info("Dispatcher running", "data", dataPath, "segment_size", segmentSize)

			done := make(chan struct{})
			go func() {
				dispatcher.Wait()
				consolidator.Wait()
				close(done)
			}()

			select {
			case <-done:
				slog.Info("All results consolidated")
			case <-ctx.Done():
				slog.Info("Received shutdown signal")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("Metrics server shutdown failed", "error", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Total primes: %d\n", consolidator.GetTotal())
			return nil
		},
	}
	cmd.Flags().StringVar(&dataPath, "data", "", "Path to the data file")
	cmd.Flags().Int64Var(&segmentSize, "segment-size", 0, "Per-job segment size in bytes (overrides config)")
	return cmd
}
