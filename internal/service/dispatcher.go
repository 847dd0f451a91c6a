package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/primegrid/primegrid/internal/wire"
)

// Dispatcher hands out file segments as jobs.
type Dispatcher struct {
	path        string
	fileSize    int64
	segmentSize int64
	jobs        chan *wire.Job
	wg          sync.WaitGroup
	sub         *nats.Subscription
}

// NewDispatcher stats the data file and starts queueing jobs. The file size
// and segment size must be multiples of 8 so every job holds whole uint64
// words.
func NewDispatcher(path string, segmentSize int64) (*Dispatcher, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat data file: %w", err)
	}
	if segmentSize <= 0 || segmentSize%8 != 0 {
		return nil, fmt.Errorf("segment size %d must be positive and divisible by 8", segmentSize)
	}
	fileSize := info.Size()
	if fileSize%8 != 0 {
		return nil, fmt.Errorf("data file size %d is not a multiple of 8", fileSize)
	}

	numJobs := (fileSize + segmentSize - 1) / segmentSize
	d := &Dispatcher{
		path:        path,
		fileSize:    fileSize,
		segmentSize: segmentSize,
		jobs:        make(chan *wire.Job, numJobs),
	}
	d.wg.Add(1)
	go d.generateJobs()
	return d, nil
}

// generateJobs creates and queues jobs, truncating the last segment to the
// file size.
func (d *Dispatcher) generateJobs() {
	defer d.wg.Done()
	for start := int64(0); start < d.fileSize; start += d.segmentSize {
		length := d.segmentSize
		if start+length > d.fileSize {
			length = d.fileSize - start
		}
		d.jobs <- &wire.Job{
			ID:     uuid.NewString(),
			Path:   d.path,
			Start:  start,
			Length: length,
		}
	}
	close(d.jobs)
}

// Next returns the next job, or a Done sentinel once the queue drains.
func (d *Dispatcher) Next(ctx context.Context) (*wire.Job, error) {
	select {
	case job, ok := <-d.jobs:
		if !ok {
			return &wire.Job{Done: true}, nil
		}
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Bind answers job requests on the NATS job subject until Unbind or
// connection close.
func (d *Dispatcher) Bind(ctx context.Context, nc *nats.Conn) error {
	sub, err := nc.Subscribe(wire.SubjectNextJob, func(msg *nats.Msg) {
		job, err := d.Next(ctx)
		if err != nil {
			return
		}
		data, err := json.Marshal(job)
		if err != nil {
			slog.Error("Failed to encode job", "job_id", job.ID, "error", err)
			return
		}
		if err := msg.Respond(data); err != nil {
			slog.Error("Failed to respond with job", "job_id", job.ID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", wire.SubjectNextJob, err)
	}
	d.sub = sub
	return nil
}

// Unbind stops answering job requests.
func (d *Dispatcher) Unbind() error {
	if d.sub == nil {
		return nil
	}
	return d.sub.Unsubscribe()
}

// Wait waits for job generation to finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
