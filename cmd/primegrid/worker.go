package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/primegrid/primegrid/internal/prime"
	"github.com/primegrid/primegrid/internal/service"
)

func workerCmd() *cobra.Command {
	var (
		threads   int
		chunkSize int64
	)
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Pull jobs, count primes in their segments, and submit results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if threads == 0 {
				threads = cfg.Crunch.Workers
			}
			if threads <= 0 {
				return fmt.Errorf("number of worker threads must be positive")
			}
			if chunkSize == 0 {
				chunkSize = cfg.Crunch.ChunkSize
			}
			if chunkSize <= 0 || chunkSize%8 != 0 {
				return fmt.Errorf("chunk size must be positive and divisible by 8")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			nc, err := nats.Connect(cfg.NATS.URL)
			if err != nil {
				return fmt.Errorf("connect to NATS at %s: %w", cfg.NATS.URL, err)
			}
			defer nc.Close()

			jobs := service.NewNATSJobSource(nc)
			results := service.NewNATSResultSink(nc)
			fetcher := service.NewHTTPSegmentFetcher(cfg.FileServer.BaseURL, nil)

			var wg sync.WaitGroup
			slog.Info("Starting worker process", "num_threads", threads, "chunk_size", chunkSize, "cache_size", cfg.Crunch.CacheSize)
			for i := 0; i < threads; i++ {
				check := prime.IsPrimeUint64
				if cfg.Crunch.CacheSize > 0 {
					memo, err := prime.NewMemoizer(cfg.Crunch.CacheSize)
					if err != nil {
						return fmt.Errorf("create memoizer: %w", err)
					}
					check = memo.IsPrime
				}
				worker := service.NewWorker(jobs, results, fetcher, check, chunkSize)

				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := results.RegisterWorker(ctx); err != nil {
						slog.Error("Failed to register worker", "worker_id", worker.ID(), "error", err)
						return
					}
					slog.Info("Worker registered", "worker_id", worker.ID())

					if err := worker.Run(ctx); err != nil {
						slog.Error("Worker failed", "worker_id", worker.ID(), "error", err)
					}

					if err := results.DeregisterWorker(ctx); err != nil {
						slog.Error("Failed to deregister worker", "worker_id", worker.ID(), "error", err)
					} else {
						slog.Info("Worker deregistered", "worker_id", worker.ID())
					}
				}()
			}

			wg.Wait()
			slog.Info("All worker threads completed")
			return nil
		},
	}
	cmd.Flags().IntVar(&threads, "threads", 0, "Number of worker goroutines (overrides config)")
	cmd.Flags().Int64Var(&chunkSize, "chunk-size", 0, "Per-read chunk size in bytes (overrides config)")
	return cmd
}
