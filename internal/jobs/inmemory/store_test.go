package inmemory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndGetReturnCopies(t *testing.T) {
	ctx := context.Background()
	st := NewStore()

	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	jobStarted := started
	job := &jobs.GenerateDatasetJob{JobID: "a", Status: jobs.JobStatusRunning, StartedAt: &jobStarted}
	require.NoError(t, st.SaveJob(ctx, job))

	job.Status = jobs.JobStatusFailed
	*job.StartedAt = started.Add(time.Hour)
	require.Equal(t, started.Add(time.Hour), jobStarted)

	got, err := st.GetJob(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, jobs.JobStatusRunning, got.Status)
	assert.Equal(t, started, *got.StartedAt)
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	st := NewStore()

	assert.Error(t, st.SaveJob(ctx, &jobs.GenerateDatasetJob{}))

	_, err := st.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)

	err = st.UpdateJobStatus(ctx, "missing", jobs.JobStatusFailed, "boom")
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)
}

func TestStore_UpdateJobStatus(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	require.NoError(t, st.SaveJob(ctx, &jobs.GenerateDatasetJob{JobID: "a", Status: jobs.JobStatusRunning}))

	require.NoError(t, st.UpdateJobStatus(ctx, "a", jobs.JobStatusFailed, "disk full"))

	got, err := st.GetJob(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, jobs.JobStatusFailed, got.Status)
	assert.Equal(t, "disk full", got.Error)
}

func TestStore_ListJobs(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		status := jobs.JobStatusCompleted
		if i%2 == 1 {
			status = jobs.JobStatusFailed
		}
		require.NoError(t, st.SaveJob(ctx, &jobs.GenerateDatasetJob{
			JobID:     fmt.Sprintf("job-%d", i),
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	tests := []struct {
		name   string
		filter jobs.JobFilter
		want   []string
	}{
		{name: "all newest first", filter: jobs.JobFilter{}, want: []string{"job-4", "job-3", "job-2", "job-1", "job-0"}},
		{name: "by status", filter: jobs.JobFilter{Status: jobs.JobStatusFailed}, want: []string{"job-3", "job-1"}},
		{name: "limit", filter: jobs.JobFilter{Limit: 2}, want: []string{"job-4", "job-3"}},
		{name: "offset and limit", filter: jobs.JobFilter{Offset: 1, Limit: 2}, want: []string{"job-3", "job-2"}},
		{name: "offset past end", filter: jobs.JobFilter{Offset: 10}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := st.ListJobs(ctx, tt.filter)
			require.NoError(t, err)

			ids := make([]string, 0, len(got))
			for _, j := range got {
				ids = append(ids, j.JobID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}
