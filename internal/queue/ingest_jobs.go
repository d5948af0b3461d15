package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zfogg/dailybrief/internal/feeds"
	"github.com/zfogg/dailybrief/internal/logger"
	"github.com/zfogg/dailybrief/internal/models"
	"github.com/zfogg/dailybrief/internal/topics"
	"go.uber.org/zap"
)

// Job statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusFailed     = "failed"
)

// DefaultRetention is how long finished jobs stay queryable
const DefaultRetention = 24 * time.Hour

// TopicIngester ingests one topic's feeds for a date
type TopicIngester interface {
	IngestTopic(ctx context.Context, topicID, date string) (*feeds.Report, error)
}

// IngestJob represents one (date, topic) ingestion
type IngestJob struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	Topic        string        `json:"topic"`
	Status       string        `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	ErrorMessage *string       `json:"error_message,omitempty"`
	Result       *feeds.Report `json:"result,omitempty"`
}

// IngestQueue runs feed ingestion jobs on a small worker pool
type IngestQueue struct {
	jobs       chan *IngestJob
	results    map[string]*IngestJob
	resultsMux sync.RWMutex
	workers    int
	retention  time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	stopOnce   sync.Once

	ingester TopicIngester

	// For testing: channels to signal job completion
	jobCompleted chan string
}

// NewIngestQueue creates a queue with the given number of workers
func NewIngestQueue(ingester TopicIngester, workers int) *IngestQueue {
	ctx, cancel := context.WithCancel(context.Background())
	if workers < 1 {
		workers = 2
	}

	return &IngestQueue{
		jobs:         make(chan *IngestJob, 64),
		results:      make(map[string]*IngestJob),
		workers:      workers,
		retention:    DefaultRetention,
		ctx:          ctx,
		cancel:       cancel,
		ingester:     ingester,
		jobCompleted: make(chan string, 64),
	}
}

// SetRetention changes how long finished jobs are kept. Call before Start.
func (q *IngestQueue) SetRetention(d time.Duration) {
	q.resultsMux.Lock()
	defer q.resultsMux.Unlock()
	if d > 0 {
		q.retention = d
	}
}

// Start launches the workers
func (q *IngestQueue) Start() {
	logger.Log.Info("Starting ingest queue", zap.Int("workers", q.workers))

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop cancels running jobs and waits for the workers to exit
func (q *IngestQueue) Stop() {
	q.stopOnce.Do(func() {
		q.cancel()
		q.wg.Wait()
	})
}

// SubmitJob enqueues ingestion of one global topic for date
func (q *IngestQueue) SubmitJob(date, topic string) (*IngestJob, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date %q", date)
	}
	if !topics.IsGlobal(topic) {
		return nil, fmt.Errorf("unknown topic %q", topic)
	}

	job := &IngestJob{
		ID:        uuid.New().String(),
		Date:      date,
		Topic:     topic,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}

	snapshot := *job

	q.resultsMux.Lock()
	q.pruneLocked(job.CreatedAt)
	q.results[job.ID] = job
	q.resultsMux.Unlock()

	select {
	case q.jobs <- job:
		return &snapshot, nil
	default:
		q.resultsMux.Lock()
		delete(q.results, job.ID)
		q.resultsMux.Unlock()
		return nil, fmt.Errorf("ingest queue is full")
	}
}

// SubmitDay enqueues every global topic for date
func (q *IngestQueue) SubmitDay(date string) ([]*IngestJob, error) {
	var jobs []*IngestJob
	for _, t := range topics.Global() {
		job, err := q.SubmitJob(date, t.ID)
		if err != nil {
			return jobs, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// GetJobStatus returns a snapshot of a job
func (q *IngestQueue) GetJobStatus(jobID string) (*IngestJob, error) {
	q.resultsMux.RLock()
	defer q.resultsMux.RUnlock()

	job, exists := q.results[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found")
	}

	snapshot := *job
	return &snapshot, nil
}

// pruneLocked drops finished jobs older than the retention period.
// Pending and running jobs are never dropped.
func (q *IngestQueue) pruneLocked(now time.Time) {
	cutoff := now.Add(-q.retention)
	for id, job := range q.results {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(q.results, id)
		}
	}
}

// WaitForJobCompletion waits for a specific job to finish (for testing)
func (q *IngestQueue) WaitForJobCompletion(jobID string, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case completedJobID := <-q.jobCompleted:
			if completedJobID == jobID {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("timeout waiting for job %s", jobID)
		case <-q.ctx.Done():
			return fmt.Errorf("queue stopped")
		}
	}
}

// RunDaily submits yesterday's ingestion immediately and then every interval
// until ctx is done
func (q *IngestQueue) RunDaily(ctx context.Context, interval time.Duration, now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	submit := func() {
		date := now().UTC().AddDate(0, 0, -1).Format(models.DateLayout)
		if _, err := q.SubmitDay(date); err != nil {
			logger.Log.Warn("Failed to schedule ingestion", logger.WithDate(date), zap.Error(err))
			return
		}
		logger.Log.Info("Scheduled feed ingestion", logger.WithDate(date))
	}

	submit()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			submit()
		}
	}
}

func (q *IngestQueue) worker(workerID int) {
	defer q.wg.Done()
	logger.Log.Debug("Ingest worker started", zap.Int("worker_id", workerID))

	for {
		select {
		case job := <-q.jobs:
			q.processJob(workerID, job)
		case <-q.ctx.Done():
			logger.Log.Debug("Ingest worker shutting down", zap.Int("worker_id", workerID))
			return
		}
	}
}

func (q *IngestQueue) processJob(workerID int, job *IngestJob) {
	q.updateJobStatus(job.ID, StatusProcessing, nil, nil)

	report, err := q.ingester.IngestTopic(q.ctx, job.Topic, job.Date)
	if err != nil {
		msg := err.Error()
		logger.Log.Warn("Ingest job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID),
			logger.WithTopic(job.Topic),
			logger.WithDate(job.Date),
			zap.Error(err),
		)
		q.updateJobStatus(job.ID, StatusFailed, report, &msg)
	} else {
		q.updateJobStatus(job.ID, StatusComplete, report, nil)
	}
	q.signalCompletion(job.ID)
}

func (q *IngestQueue) updateJobStatus(jobID, status string, result *feeds.Report, errorMessage *string) {
	q.resultsMux.Lock()
	defer q.resultsMux.Unlock()

	job, exists := q.results[jobID]
	if !exists {
		return
	}

	job.Status = status
	job.Result = result
	job.ErrorMessage = errorMessage

	if status == StatusComplete || status == StatusFailed {
		now := time.Now()
		job.CompletedAt = &now
	}
}

// signalCompletion signals that a job has completed (for testing)
func (q *IngestQueue) signalCompletion(jobID string) {
	select {
	case q.jobCompleted <- jobID:
	default:
		// Channel full, don't block
	}
}
