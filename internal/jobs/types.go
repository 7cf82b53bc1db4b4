package jobs

import (
	"context"
	"errors"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeGenerateDataset regenerates the dataset and overwrites the store.
	JobTypeGenerateDataset JobType = "generate_dataset"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// DefaultMaxRetries applies when a published job leaves MaxRetries unset.
const DefaultMaxRetries = 3

// ErrJobNotFound is returned by JobStore lookups for unknown IDs.
var ErrJobNotFound = errors.New("job not found")

// ErrQueueClosed is returned when publishing to or starting a stopped queue.
var ErrQueueClosed = errors.New("queue is closed")

// GenerateDatasetJob asks a worker to regenerate the dataset for a date range and seed.
type GenerateDatasetJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Seed seeds the generator's random source.
	Seed uint64 `json:"seed"`

	// StartDate and EndDate bound the generated range (YYYY-MM-DD, inclusive).
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// RunID and RowCount describe the generated dataset once the job completes.
	RunID    string `json:"run_id,omitempty"`
	RowCount int    `json:"row_count,omitempty"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *GenerateDatasetJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *GenerateDatasetJob) GetType() JobType {
	return JobTypeGenerateDataset
}

// GetStatus implements the Job interface.
func (j *GenerateDatasetJob) GetStatus() JobStatus {
	return j.Status
}

// Done reports whether the job reached a terminal status.
func (j *GenerateDatasetJob) Done() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishGenerate publishes a dataset generation job.
	PublishGenerate(ctx context.Context, job *GenerateDatasetJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// It should return an error if the job failed and should be retried.
// Handlers may record results (RowCount, RunID) on the job before returning.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *GenerateDatasetJob) error

	// GetJob retrieves a job by ID. Unknown IDs yield ErrJobNotFound.
	GetJob(ctx context.Context, jobID string) (*GenerateDatasetJob, error)

	// ListJobs retrieves jobs with optional filtering, newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*GenerateDatasetJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
