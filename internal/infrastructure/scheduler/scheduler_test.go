package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	name string
	runs int
	err  error
}

func (j *fakeJob) Name() string        { return j.name }
func (j *fakeJob) Description() string { return "test job" }
func (j *fakeJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func TestScheduler_RegisterRejectsDuplicates(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	job := &fakeJob{name: "sweep"}

	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Minute)))
	assert.Error(t, s.Register(job, NewIntervalSchedule(time.Minute)))
}

func TestScheduler_RunNow(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	job := &fakeJob{name: "sweep"}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "sweep")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, job.runs)
	assert.Equal(t, result, s.LastResult("sweep"))
}

func TestScheduler_RunNowPropagatesJobError(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	job := &fakeJob{name: "sweep", err: errors.New("db down")}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "sweep")
	require.Error(t, err)
	assert.False(t, result.Success)

	info := s.ListJobs()
	require.Len(t, info, 1)
	assert.Equal(t, int64(1), info[0].FailCount)
}

func TestScheduler_RunNowUnknownJob(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	_, err := s.RunNow(context.Background(), "missing")
	assert.Error(t, err)
}
