package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iwvelando/loan-tracker/pkg/datetime"
	"github.com/iwvelando/loan-tracker/pkg/loans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

type staticLoader struct {
	portfolio []loans.Loan
	err       error
}

func (l staticLoader) Load(context.Context) ([]loans.Loan, error) {
	return l.portfolio, l.err
}

func TestAddJobRejectsInvalidSchedule(t *testing.T) {
	s := New(zap.NewNop())
	err := s.AddJob("not a schedule", &countingJob{})
	assert.Error(t, err)
}

func TestScheduledJobRuns(t *testing.T) {
	s := New(zap.NewNop())
	job := &countingJob{}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 5*time.Second, 50*time.Millisecond)
}

func TestExecuteLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := New(zap.New(core))

	s.execute(&countingJob{err: errors.New("boom")})

	failures := logs.FilterMessage("job failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "counting", failures[0].ContextMap()["job"])
}

func TestRunNow(t *testing.T) {
	s := New(nil)
	job := &countingJob{}
	require.NoError(t, s.RunNow(job))
	assert.Equal(t, int32(1), job.runs.Load())
}

func TestReminderJob(t *testing.T) {
	now := datetime.MustParseTime(datetime.DateLayout, "2025-03-20")
	dueSoon := loans.Loan{ID: "soon", Name: "Federal", Principal: 1000, MinimumPayment: 50, DueDay: 22}
	dueLater := loans.Loan{ID: "later", Name: "Private", Principal: 1000, MinimumPayment: 75, DueDay: 10}

	core, logs := observer.New(zapcore.InfoLevel)
	job := NewReminderJob(staticLoader{portfolio: []loans.Loan{dueSoon, dueLater}}, datetime.FixedClock{Time: now}, 7, zap.New(core))

	assert.Equal(t, "payment-reminders", job.Name())
	require.NoError(t, job.Run(context.Background()))

	due := job.LastDue()
	require.Len(t, due, 1)
	assert.Equal(t, "soon", due[0].LoanID)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "payment of $50.00 for Federal due March 22, 2025", entries[0].Message)
	assert.Equal(t, "scheduler.ReminderJob", entries[0].ContextMap()["op"])
}

func TestReminderJobLoadError(t *testing.T) {
	job := NewReminderJob(staticLoader{err: errors.New("store down")}, nil, 0, nil)
	err := job.Run(context.Background())
	assert.ErrorContains(t, err, "store down")
	assert.Empty(t, job.LastDue())
}
