package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readingcenter/internal/config"
	"github.com/mrlokans/readingcenter/internal/tasks"
)

type fakeQueue struct {
	tasks []backlite.Task
	err   error
}

func (f *fakeQueue) Enqueue(tasks ...backlite.Task) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, tasks...)
	return []string{"id"}, nil
}

func enabledConfig() config.Scheduler {
	return config.Scheduler{
		Enabled:              true,
		ReminderSchedule:     "0 18 * * *",
		AuditCleanupSchedule: "30 3 * * *",
		AuditRetentionDays:   30,
	}
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 18 * * *"))
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.Error(t, ValidateSchedule("every day"))
	assert.Error(t, ValidateSchedule("0 0 18 * * *"))
}

func TestNextRunTime(t *testing.T) {
	from := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

	next, err := NextRunTime("0 18 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC), *next)

	_, err = NextRunTime("nope", from)
	assert.Error(t, err)
}

func TestRunReminders(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	q := &fakeQueue{}
	s := New(q, enabledConfig(), loc)
	// 22:30 UTC is already the next day in UTC+3
	s.now = func() time.Time { return time.Date(2025, 3, 5, 22, 30, 0, 0, time.UTC) }

	date, err := s.RunReminders()
	require.NoError(t, err)
	assert.Equal(t, "2025-03-07", date)
	require.Len(t, q.tasks, 1)
	assert.Equal(t, tasks.SendVisitRemindersTask{Date: "2025-03-07"}, q.tasks[0])

	q.err = errors.New("queue closed")
	_, err = s.RunReminders()
	assert.Error(t, err)
}

func TestRunActivityCleanup(t *testing.T) {
	q := &fakeQueue{}
	s := New(q, enabledConfig(), time.UTC)

	require.NoError(t, s.RunActivityCleanup())
	require.Len(t, q.tasks, 1)
	assert.Equal(t, tasks.CleanupActivityLogTask{RetentionDays: 30}, q.tasks[0])
}

func TestStartStop(t *testing.T) {
	s := New(&fakeQueue{}, enabledConfig(), time.UTC)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.NextRuns()
	assert.Len(t, next, 2)
	assert.Contains(t, next, JobVisitReminders)
	assert.Contains(t, next, JobActivityCleanup)
	assert.Equal(t, 18, next[JobVisitReminders].Hour())

	// second start is a no-op
	require.NoError(t, s.Start(context.Background()))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Empty(t, s.NextRuns())
}

func TestStart_Disabled(t *testing.T) {
	cfg := enabledConfig()
	cfg.Enabled = false
	s := New(&fakeQueue{}, cfg, time.UTC)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestStart_SkipsEmptySchedule(t *testing.T) {
	cfg := enabledConfig()
	cfg.AuditCleanupSchedule = ""
	s := New(&fakeQueue{}, cfg, time.UTC)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	next := s.NextRuns()
	assert.Len(t, next, 1)
	assert.Contains(t, next, JobVisitReminders)
}

func TestStart_InvalidSchedule(t *testing.T) {
	cfg := enabledConfig()
	cfg.ReminderSchedule = "at six"
	s := New(&fakeQueue{}, cfg, time.UTC)

	err := s.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, s.IsRunning())
}

func TestStop_OnContextCancel(t *testing.T) {
	s := New(&fakeQueue{}, enabledConfig(), time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}
