package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/primegrid/primegrid/internal/prime"
	"github.com/primegrid/primegrid/internal/wire"
)

// JobSource supplies jobs to a worker.
type JobSource interface {
	NextJob(ctx context.Context) (*wire.Job, error)
}

// ResultSink receives completed job results.
type ResultSink interface {
	SubmitResult(ctx context.Context, res *wire.Result) error
}

// SegmentFetcher retrieves a byte range of a data file.
type SegmentFetcher interface {
	FetchSegment(ctx context.Context, path string, start, length int64) (io.ReadCloser, error)
}

// Worker processes jobs from the dispatcher.
type Worker struct {
	id        string
	jobs      JobSource
	results   ResultSink
	fetcher   SegmentFetcher
	check     func(uint64) bool
	chunkSize int64
	// startJitter staggers startup so workers do not stampede the
	// dispatcher.
	startJitter time.Duration
}

// NewWorker creates a new worker. check defaults to the plain primality
// checker when nil.
func NewWorker(jobs JobSource, results ResultSink, fetcher SegmentFetcher, check func(uint64) bool, chunkSize int64) *Worker {
	if check == nil {
		check = prime.IsPrimeUint64
	}
	return &Worker{
		id:          uuid.NewString(),
		jobs:        jobs,
		results:     results,
		fetcher:     fetcher,
		check:       check,
		chunkSize:   chunkSize,
		startJitter: time.Duration(400+rand.Intn(200)) * time.Millisecond,
	}
}

// ID returns the worker's identity, carried on every result.
func (w *Worker) ID() string {
	return w.id
}

// Run pulls and processes jobs until the dispatcher reports Done or the
// context is canceled. Fetch and submit failures skip to the next job.
func (w *Worker) Run(ctx context.Context) error {
	select {
	case <-time.After(w.startJitter):
	case <-ctx.Done():
		return ctx.Err()
	}

	for {
		job, err := w.jobs.NextJob(ctx)
		if err != nil {
			return err
		}
		if job.Done {
			return nil
		}

		count, err := w.processJob(ctx, job)
		if err != nil {
			slog.Error("Failed to process job", "worker_id", w.id, "job_id", job.ID, "error", err)
			continue
		}

		res := &wire.Result{
			JobID:      job.ID,
			WorkerID:   w.id,
			Path:       job.Path,
			Start:      job.Start,
			Length:     job.Length,
			PrimeCount: count,
		}
		if err := w.results.SubmitResult(ctx, res); err != nil {
			slog.Error("Failed to submit result", "worker_id", w.id, "job_id", job.ID, "error", err)
			continue
		}
		slog.Info("Processed job", "worker_id", w.id, "job_id", job.ID, "start", job.Start, "length", job.Length, "primes", count)
	}
}

// processJob fetches the job's segment in chunkSize reads and counts the
// primes in it.
func (w *Worker) processJob(ctx context.Context, job *wire.Job) (int64, error) {
	rc, err := w.fetcher.FetchSegment(ctx, job.Path, job.Start, job.Length)
	if err != nil {
		return 0, fmt.Errorf("fetch segment: %w", err)
	}
	defer rc.Close()

	var total int64
	buf := make([]byte, w.chunkSize)
	for {
		n, err := io.ReadFull(rc, buf)
		if n > 0 {
			count, cerr := prime.Count(buf[:n], w.check)
			if cerr != nil {
				return 0, cerr
			}
			total += count
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return total, nil
		}
		if err != nil {
			return 0, fmt.Errorf("read segment: %w", err)
		}
	}
}
