package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/dailybrief/internal/feeds"
)

type fakeIngester struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (f *fakeIngester) IngestTopic(ctx context.Context, topicID, date string) (*feeds.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, date+"/"+topicID)
	if f.fail[topicID] {
		return nil, errors.New("all feeds failed")
	}
	return &feeds.Report{Topic: topicID, Fetched: 2, Stored: 3}, nil
}

func (f *fakeIngester) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// TestIngestQueue tests job submission and status without workers
func TestIngestQueue(t *testing.T) {
	queue := NewIngestQueue(&fakeIngester{}, 1)

	job, err := queue.SubmitJob("2024-04-12", "sports")
	require.NoError(t, err)
	require.NotNil(t, job)

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "2024-04-12", job.Date)
	assert.Equal(t, "sports", job.Topic)
	assert.Equal(t, StatusPending, job.Status)

	retrieved, err := queue.GetJobStatus(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, retrieved.Status)
	assert.Nil(t, retrieved.CompletedAt)
}

func TestSubmitValidation(t *testing.T) {
	queue := NewIngestQueue(&fakeIngester{}, 1)

	_, err := queue.SubmitJob("yesterday", "sports")
	assert.Error(t, err)
	_, err = queue.SubmitJob("2024-04-12", "knitting")
	assert.Error(t, err)
}

func TestWorkersProcessJobs(t *testing.T) {
	ingester := &fakeIngester{fail: map[string]bool{"gaming": true}}
	queue := NewIngestQueue(ingester, 2)
	queue.Start()
	defer queue.Stop()

	ok, err := queue.SubmitJob("2024-04-12", "science")
	require.NoError(t, err)
	require.NoError(t, queue.WaitForJobCompletion(ok.ID, 2*time.Second))

	done, err := queue.GetJobStatus(ok.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, done.Status)
	assert.Equal(t, 3, done.Result.Stored)
	assert.NotNil(t, done.CompletedAt)

	bad, err := queue.SubmitJob("2024-04-12", "gaming")
	require.NoError(t, err)
	require.NoError(t, queue.WaitForJobCompletion(bad.ID, 2*time.Second))

	failed, err := queue.GetJobStatus(bad.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, failed.Status)
	require.NotNil(t, failed.ErrorMessage)
	assert.Contains(t, *failed.ErrorMessage, "all feeds failed")
}

// TestQueueOverflow tests queue capacity limits
func TestQueueOverflow(t *testing.T) {
	queue := &IngestQueue{
		jobs:         make(chan *IngestJob, 2),
		results:      make(map[string]*IngestJob),
		workers:      1,
		jobCompleted: make(chan string, 10),
	}

	_, err := queue.SubmitJob("2024-04-12", "sports")
	assert.NoError(t, err)
	_, err = queue.SubmitJob("2024-04-12", "science")
	assert.NoError(t, err)

	_, err = queue.SubmitJob("2024-04-12", "health")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "queue is full")
	assert.Len(t, queue.results, 2)
}

func TestRunDailySubmitsYesterday(t *testing.T) {
	ingester := &fakeIngester{}
	queue := NewIngestQueue(ingester, 2)
	queue.Start()
	defer queue.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	now := func() time.Time { return time.Date(2024, 4, 13, 6, 0, 0, 0, time.UTC) }
	go queue.RunDaily(ctx, time.Hour, now)

	assert.Eventually(t, func() bool { return len(ingester.Calls()) == 8 }, 2*time.Second, 10*time.Millisecond)
	for _, call := range ingester.Calls() {
		assert.Contains(t, call, "2024-04-12/")
	}
}

// TestInvalidJobID tests error handling for non-existent jobs
func TestInvalidJobID(t *testing.T) {
	queue := NewIngestQueue(&fakeIngester{}, 1)

	_, err := queue.GetJobStatus("non-existent-job-id")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "job not found")
}

func TestFinishedJobsExpire(t *testing.T) {
	queue := NewIngestQueue(&fakeIngester{}, 1)
	queue.SetRetention(10 * time.Millisecond)
	queue.Start()
	defer queue.Stop()

	old, err := queue.SubmitJob("2024-04-12", "science")
	require.NoError(t, err)
	require.NoError(t, queue.WaitForJobCompletion(old.ID, 2*time.Second))

	// Still queryable inside the retention period
	_, err = queue.GetJobStatus(old.ID)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	fresh, err := queue.SubmitJob("2024-04-12", "sports")
	require.NoError(t, err)

	_, err = queue.GetJobStatus(old.ID)
	assert.Error(t, err, "finished job past retention should be evicted")
	_, err = queue.GetJobStatus(fresh.ID)
	assert.NoError(t, err)
}

func TestPendingJobsAreNotEvicted(t *testing.T) {
	queue := NewIngestQueue(&fakeIngester{}, 1)
	queue.SetRetention(time.Millisecond)

	pending, err := queue.SubmitJob("2024-04-12", "science")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = queue.SubmitJob("2024-04-12", "sports")
	require.NoError(t, err)

	got, err := queue.GetJobStatus(pending.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}
