package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primegrid/primegrid/internal/wire"
)

func writeDataFile(t *testing.T, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nums.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	return path
}

func drainJobs(t *testing.T, d *Dispatcher) []*wire.Job {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var jobs []*wire.Job
	for {
		job, err := d.Next(ctx)
		require.NoError(t, err)
		if job.Done {
			return jobs
		}
		jobs = append(jobs, job)
	}
}

func TestDispatcher_SplitsFileEvenly(t *testing.T) {
	path := writeDataFile(t, 1024)
	d, err := NewDispatcher(path, 256)
	require.NoError(t, err)
	d.Wait()

	jobs := drainJobs(t, d)
	require.Len(t, jobs, 4)
	for i, job := range jobs {
		assert.Equal(t, path, job.Path)
		assert.Equal(t, int64(i)*256, job.Start)
		assert.Equal(t, int64(256), job.Length)
		assert.NotEmpty(t, job.ID)
		assert.False(t, job.Done)
	}
}

func TestDispatcher_TruncatesLastSegment(t *testing.T) {
	path := writeDataFile(t, 1040)
	d, err := NewDispatcher(path, 256)
	require.NoError(t, err)
	d.Wait()

	jobs := drainJobs(t, d)
	require.Len(t, jobs, 5)
	assert.Equal(t, int64(1024), jobs[4].Start)
	assert.Equal(t, int64(16), jobs[4].Length)
}

func TestDispatcher_UniqueJobIDs(t *testing.T) {
	path := writeDataFile(t, 8*64)
	d, err := NewDispatcher(path, 8)
	require.NoError(t, err)

	jobs := drainJobs(t, d)
	seen := make(map[string]struct{}, len(jobs))
	for _, job := range jobs {
		_, dup := seen[job.ID]
		assert.False(t, dup, "duplicate job ID %s", job.ID)
		seen[job.ID] = struct{}{}
	}
}

func TestDispatcher_DoneAfterDrain(t *testing.T) {
	path := writeDataFile(t, 256)
	d, err := NewDispatcher(path, 256)
	require.NoError(t, err)

	ctx := context.Background()
	job, err := d.Next(ctx)
	require.NoError(t, err)
	assert.False(t, job.Done)

	// Every request after exhaustion keeps reporting Done.
	for i := 0; i < 3; i++ {
		job, err = d.Next(ctx)
		require.NoError(t, err)
		assert.True(t, job.Done)
	}
}

func TestDispatcher_NextHonorsContext(t *testing.T) {
	path := writeDataFile(t, 256)
	d, err := NewDispatcher(path, 256)
	require.NoError(t, err)

	// Drain the single job so Next would block without the sentinel...
	_, err = d.Next(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// ...but the closed channel yields Done and canceled contexts still
	// surface their error when selected.
	job, err := d.Next(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	} else {
		assert.True(t, job.Done)
	}
}

func TestNewDispatcher_Validation(t *testing.T) {
	path := writeDataFile(t, 1024)

	_, err := NewDispatcher(path, 100)
	assert.ErrorContains(t, err, "divisible by 8")

	_, err = NewDispatcher(path, 0)
	assert.Error(t, err)

	_, err = NewDispatcher(filepath.Join(t.TempDir(), "missing.bin"), 256)
	assert.Error(t, err)

	odd := filepath.Join(t.TempDir(), "odd.bin")
	require.NoError(t, os.WriteFile(odd, make([]byte, 13), 0644))
	_, err = NewDispatcher(odd, 256)
	assert.ErrorContains(t, err, "multiple of 8")
}
