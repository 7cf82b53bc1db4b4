package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/jobs"
	"github.com/google/uuid"
)

// Options tune a Queue. Zero values fall back to the defaults below.
type Options struct {
	// BufferSize is how many jobs can wait before PublishGenerate blocks.
	BufferSize int
	// Workers is the number of concurrent consumers.
	Workers int
	// RetryBackoff is multiplied by the retry count before a failed job is re-enqueued.
	RetryBackoff time.Duration
}

const (
	defaultBufferSize   = 16
	defaultWorkers      = 1
	defaultRetryBackoff = time.Second
)

// Queue is an in-memory implementation of job publisher and consumer.
// It uses Go channels for job distribution and is safe for concurrent use.
// Jobs are lost on restart, so it only suits single-instance deployments.
type Queue struct {
	jobChan   chan *jobs.GenerateDatasetJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     jobs.JobStore
	closed    bool

	workers int
	backoff time.Duration
}

// NewQueue creates a new in-memory job queue. store may be nil.
func NewQueue(opts Options, store jobs.JobStore) *Queue {
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufferSize
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}
	return &Queue{
		jobChan:   make(chan *jobs.GenerateDatasetJob, opts.BufferSize),
		closeChan: make(chan struct{}),
		store:     store,
		workers:   opts.Workers,
		backoff:   opts.RetryBackoff,
	}
}

// PublishGenerate implements the Publisher interface.
// It fills in the ID, status and timestamps, records the job and enqueues it.
func (q *Queue) PublishGenerate(ctx context.Context, job *jobs.GenerateDatasetJob) error {
	if q.isClosed() {
		return jobs.ErrQueueClosed
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = jobs.DefaultMaxRetries
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
	}

	return q.enqueue(ctx, job)
}

func (q *Queue) enqueue(ctx context.Context, job *jobs.GenerateDatasetJob) error {
	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return jobs.ErrQueueClosed
	}
}

func (q *Queue) isClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Start implements the Consumer interface.
// It launches the configured number of workers, each calling handler for one job at a time.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	if q.isClosed() {
		return jobs.ErrQueueClosed
	}

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	return nil
}

// worker processes jobs from the queue.
func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}
			q.processJob(ctx, job, handler)
		}
	}
}

// processJob executes a single job and schedules a retry when it fails.
func (q *Queue) processJob(ctx context.Context, job *jobs.GenerateDatasetJob, handler jobs.JobHandler) {
	job.Status = jobs.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now
	job.CompletedAt = nil
	q.save(ctx, job)

	err := handler(ctx, job)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	switch {
	case err == nil:
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
	case job.RetryCount < job.MaxRetries:
		job.Error = err.Error()
		job.RetryCount++
		job.Status = jobs.JobStatusRetrying
	default:
		job.Error = err.Error()
		job.Status = jobs.JobStatusFailed
	}
	q.save(ctx, job)

	if job.Status != jobs.JobStatusRetrying {
		return
	}

	// The retry runs on its own copy so the stored state stays monotonic.
	retry := *job
	retry.Status = jobs.JobStatusPending
	retry.StartedAt = nil
	retry.CompletedAt = nil
	time.AfterFunc(time.Duration(job.RetryCount)*q.backoff, func() {
		if q.isClosed() {
			q.markFailed(ctx, retry.JobID, errStoppedBeforeRetry)
			return
		}
		q.save(ctx, &retry)
		_ = q.enqueue(ctx, &retry)
	})
}

func (q *Queue) save(ctx context.Context, job *jobs.GenerateDatasetJob) {
	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}
}

// Stop implements the Consumer interface.
// It stops the queue and waits for all in-flight jobs to complete.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.failPending(ctx)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

const (
	errStoppedBeforeRun   = "queue stopped before the job ran"
	errStoppedBeforeRetry = "queue stopped before the job was retried"
)

// failPending marks jobs left in the buffer as failed; no worker will pick them up.
func (q *Queue) failPending(ctx context.Context) {
	for {
		select {
		case job := <-q.jobChan:
			if job != nil {
				q.markFailed(ctx, job.JobID, errStoppedBeforeRun)
			}
		default:
			return
		}
	}
}

func (q *Queue) markFailed(ctx context.Context, jobID, msg string) {
	if q.store != nil {
		_ = q.store.UpdateJobStatus(ctx, jobID, jobs.JobStatusFailed, msg)
	}
}

// Close implements the Publisher interface.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

// Ensure Queue implements both Publisher and Consumer interfaces.
var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
