// Package scheduler runs the periodic jobs of the reading center on cron
// schedules: visit reminders for the next day and activity log cleanup.
//
// Jobs do no work themselves. Each run enqueues a task so that retries,
// timeouts and history are handled by the task queue.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/readingcenter/internal/config"
	"github.com/mrlokans/readingcenter/internal/entities"
	"github.com/mrlokans/readingcenter/internal/tasks"
)

// Job names.
const (
	JobVisitReminders  = "visit_reminders"
	JobActivityCleanup = "activity_cleanup"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scheduler manages the cron entries.
type Scheduler struct {
	queue tasks.TaskEnqueuer
	cfg   config.Scheduler
	loc   *time.Location
	now   func() time.Time

	cron       *cron.Cron
	entries    map[string]cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// New creates a scheduler that evaluates schedules in loc.
func New(queue tasks.TaskEnqueuer, cfg config.Scheduler, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		queue:   queue,
		cfg:     cfg,
		loc:     loc,
		now:     time.Now,
		entries: make(map[string]cron.EntryID),
	}
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRunTime calculates when a schedule fires next after from.
func NextRunTime(schedule string, from time.Time) (*time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(from)
	return &next, nil
}

// Start registers the configured jobs and starts the cron loop. A job with an
// empty schedule is not registered.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.cfg.Enabled {
		log.Printf("[SCHEDULER] disabled")
		return nil
	}

	c := cron.New(cron.WithParser(parser), cron.WithLocation(s.loc))
	entries := make(map[string]cron.EntryID)

	jobs := []struct {
		name     string
		schedule string
		run      func() error
	}{
		{JobVisitReminders, s.cfg.ReminderSchedule, func() error { _, err := s.RunReminders(); return err }},
		{JobActivityCleanup, s.cfg.AuditCleanupSchedule, s.RunActivityCleanup},
	}
	for _, job := range jobs {
		if job.schedule == "" {
			continue
		}
		if err := ValidateSchedule(job.schedule); err != nil {
			return fmt.Errorf("invalid cron schedule '%s' for %s: %w", job.schedule, job.name, err)
		}
		name, run := job.name, job.run
		id, err := c.AddFunc(job.schedule, func() {
			if err := run(); err != nil {
				log.Printf("[SCHEDULER] %s: %v", name, err)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.name, err)
		}
		entries[job.name] = id
	}

	s.cron = c
	s.entries = entries

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	for name, id := range entries {
		log.Printf("[SCHEDULER] %s scheduled. Next run: %v", name, s.cron.Entry(id).Next)
	}

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for running jobs and stops the cron loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("[SCHEDULER] stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRuns returns the next fire time of every registered job.
func (s *Scheduler) NextRuns() map[string]time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	next := make(map[string]time.Time, len(s.entries))
	if !s.isRunning {
		return next
	}
	for name, id := range s.entries {
		next[name] = s.cron.Entry(id).Next
	}
	return next
}

// RunReminders enqueues reminders for the visits of the next calendar day in
// the center's timezone and returns that date.
func (s *Scheduler) RunReminders() (string, error) {
	date := s.now().In(s.loc).AddDate(0, 0, 1).Format(entities.DateLayout)
	if _, err := s.queue.Enqueue(tasks.SendVisitRemindersTask{Date: date}); err != nil {
		return date, fmt.Errorf("enqueue visit reminders for %s: %w", date, err)
	}
	log.Printf("[SCHEDULER] queued visit reminders for %s", date)
	return date, nil
}

// RunActivityCleanup enqueues removal of activity entries past retention.
func (s *Scheduler) RunActivityCleanup() error {
	task := tasks.CleanupActivityLogTask{RetentionDays: s.cfg.AuditRetentionDays}
	if _, err := s.queue.Enqueue(task); err != nil {
		return fmt.Errorf("enqueue activity cleanup: %w", err)
	}
	log.Printf("[SCHEDULER] queued activity cleanup")
	return nil
}
