package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/primegrid/primegrid/internal/wire"
)

// NATSJobSource requests jobs from the dispatcher over NATS.
type NATSJobSource struct {
	nc *nats.Conn
}

// NewNATSJobSource creates a job source backed by nc.
func NewNATSJobSource(nc *nats.Conn) *NATSJobSource {
	return &NATSJobSource{nc: nc}
}

// NextJob requests the next job from the dispatcher.
func (s *NATSJobSource) NextJob(ctx context.Context) (*wire.Job, error) {
	msg, err := s.nc.RequestWithContext(ctx, wire.SubjectNextJob, nil)
	if err != nil {
		return nil, fmt.Errorf("request job: %w", err)
	}
	var job wire.Job
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &job, nil
}

// NATSResultSink submits results and worker lifecycle events to the
// consolidator over NATS.
type NATSResultSink struct {
	nc *nats.Conn
}

// NewNATSResultSink creates a result sink backed by nc.
func NewNATSResultSink(nc *nats.Conn) *NATSResultSink {
	return &NATSResultSink{nc: nc}
}

// SubmitResult sends a result and waits for the consolidator's ack.
func (s *NATSResultSink) SubmitResult(ctx context.Context, res *wire.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if _, err := s.nc.RequestWithContext(ctx, wire.SubjectSubmitResult, data); err != nil {
		return fmt.Errorf("submit result: %w", err)
	}
	return nil
}

// RegisterWorker announces a worker to the consolidator.
func (s *NATSResultSink) RegisterWorker(ctx context.Context) error {
	if _, err := s.nc.RequestWithContext(ctx, wire.SubjectRegisterWorker, nil); err != nil {
		return fmt.Errorf("register worker: %w", err)
	}
	return nil
}

// DeregisterWorker withdraws a worker from the consolidator.
func (s *NATSResultSink) DeregisterWorker(ctx context.Context) error {
	if _, err := s.nc.RequestWithContext(ctx, wire.SubjectDeregisterWorker, nil); err != nil {
		return fmt.Errorf("deregister worker: %w", err)
	}
	return nil
}

// HTTPSegmentFetcher fetches segments from the fileserver.
type HTTPSegmentFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSegmentFetcher creates a fetcher for the fileserver at baseURL.
func NewHTTPSegmentFetcher(baseURL string, client *http.Client) *HTTPSegmentFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSegmentFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// FetchSegment streams length bytes of path starting at start. The caller
// must close the returned body.
func (f *HTTPSegmentFetcher) FetchSegment(ctx context.Context, path string, start, length int64) (io.ReadCloser, error) {
	q := url.Values{}
	q.Set("path", path)
	q.Set("start", strconv.FormatInt(start, 10))
	q.Set("length", strconv.FormatInt(length, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/segment?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build segment request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch segment: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		resp.Body.Close()
		return nil, fmt.Errorf("fileserver returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}
