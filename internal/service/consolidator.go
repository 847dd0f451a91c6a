package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/primegrid/primegrid/internal/wire"
)

// Consolidator aggregates prime counts submitted by workers. Results are
// deduplicated by job ID, so an at-least-once transport cannot inflate the
// total. The aggregate loop drains and stops once the last registered
// worker deregisters.
type Consolidator struct {
	total      atomic.Int64
	workers    atomic.Int32
	results    chan *wire.Result
	closed     chan struct{}
	workerDone chan struct{}
	wg         sync.WaitGroup
	subs       []*nats.Subscription

	resultsReceived  prometheus.Counter
	duplicateResults prometheus.Counter
	primesTotal      prometheus.Counter
	activeWorkers    prometheus.Gauge
}

// NewConsolidator creates a consolidator and registers its collectors with
// reg.
func NewConsolidator(reg prometheus.Registerer) *Consolidator {
	c := &Consolidator{
		results:    make(chan *wire.Result, 100),
		closed:     make(chan struct{}),
		workerDone: make(chan struct{}),
		resultsReceived: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "primegrid_results_received_total",
			Help: "Number of job results received from workers.",
		}),
		duplicateResults: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "primegrid_duplicate_results_total",
			Help: "Number of job results discarded as duplicates.",
		}),
		primesTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "primegrid_primes_total",
			Help: "Number of primes counted across all jobs.",
		}),
		activeWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "primegrid_active_workers",
			Help: "Number of currently registered workers.",
		}),
	}
	c.wg.Add(1)
	go c.aggregate()
	return c
}

// SubmitResult queues a worker's result for aggregation. Results arriving
// after shutdown are refused.
func (c *Consolidator) SubmitResult(ctx context.Context, res *wire.Result) error {
	select {
	case <-c.closed:
		return context.Canceled
	default:
	}
	select {
	case c.results <- res:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.closed:
		return context.Canceled
	}
}

// RegisterWorker increments the worker count.
func (c *Consolidator) RegisterWorker() {
	c.workers.Add(1)
	c.activeWorkers.Inc()
}

// DeregisterWorker decrements the worker count. When the last worker
// leaves, aggregation shuts down.
func (c *Consolidator) DeregisterWorker() {
	c.activeWorkers.Dec()
	if c.workers.Add(-1) == 0 {
		close(c.workerDone)
	}
}

// aggregate processes results. Once the last worker deregisters it drains
// whatever is still queued, then shuts down. The seen map is touched only
// here, so no lock is needed.
func (c *Consolidator) aggregate() {
	defer c.wg.Done()
	seen := make(map[string]struct{})
	for {
		select {
		case res := <-c.results:
			c.consume(seen, res)
		case <-c.workerDone:
			for {
				select {
				case res := <-c.results:
					c.consume(seen, res)
				default:
					close(c.closed)
					return
				}
			}
		}
	}
}

func (c *Consolidator) consume(seen map[string]struct{}, res *wire.Result) {
	c.resultsReceived.Inc()
	if _, dup := seen[res.JobID]; dup {
		c.duplicateResults.Inc()
		slog.Warn("Discarding duplicate result", "job_id", res.JobID, "worker_id", res.WorkerID)
		return
	}
	seen[res.JobID] = struct{}{}
	c.total.Add(res.PrimeCount)
	c.primesTotal.Add(float64(res.PrimeCount))
	slog.Info("Received result", "job_id", res.JobID, "path", res.Path, "start", res.Start, "length", res.Length, "primes", res.PrimeCount)
}

// Bind serves the result and worker-registration subjects over NATS.
func (c *Consolidator) Bind(ctx context.Context, nc *nats.Conn) error {
	resultSub, err := nc.Subscribe(wire.SubjectSubmitResult, func(msg *nats.Msg) {
		var res wire.Result
		if err := json.Unmarshal(msg.Data, &res); err != nil {
			slog.Error("Failed to decode result", "error", err)
			return
		}
		if err := c.SubmitResult(ctx, &res); err != nil {
			slog.Error("Failed to queue result", "job_id", res.JobID, "error", err)
			return
		}
		if err := msg.Respond([]byte("ok")); err != nil {
			slog.Error("Failed to ack result", "job_id", res.JobID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", wire.SubjectSubmitResult, err)
	}
	c.subs = append(c.subs, resultSub)

	registerSub, err := nc.Subscribe(wire.SubjectRegisterWorker, func(msg *nats.Msg) {
		c.RegisterWorker()
		if err := msg.Respond([]byte("ok")); err != nil {
			slog.Error("Failed to ack worker registration", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", wire.SubjectRegisterWorker, err)
	}
	c.subs = append(c.subs, registerSub)

	deregisterSub, err := nc.Subscribe(wire.SubjectDeregisterWorker, func(msg *nats.Msg) {
		c.DeregisterWorker()
		if err := msg.Respond([]byte("ok")); err != nil {
			slog.Error("Failed to ack worker deregistration", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", wire.SubjectDeregisterWorker, err)
	}
	c.subs = append(c.subs, deregisterSub)
	return nil
}

// Unbind stops serving the NATS subjects.
func (c *Consolidator) Unbind() error {
	var firstErr error
	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.subs = nil
	return firstErr
}

// GetTotal returns the total prime count so far.
func (c *Consolidator) GetTotal() int64 {
	return c.total.Load()
}

// Wait blocks until the aggregate loop has shut down.
func (c *Consolidator) Wait() {
	c.wg.Wait()
}
