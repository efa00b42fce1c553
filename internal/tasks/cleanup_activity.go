package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// ActivityCleaner provides the ability to delete old activity log entries.
type ActivityCleaner interface {
	DeleteOlderThan(olderThan time.Time) (int64, error)
}

// CleanupActivityLogTask removes activity entries older than the retention period.
type CleanupActivityLogTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for activity cleanup tasks.
func (t CleanupActivityLogTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueCleanupActivityLog,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupActivityLogProcessor creates a processor function for CleanupActivityLogTask.
func CleanupActivityLogProcessor(cleaner ActivityCleaner) backlite.QueueProcessor[CleanupActivityLogTask] {
	return func(ctx context.Context, task CleanupActivityLogTask) error {
		if cleaner == nil {
			return fmt.Errorf("activity cleaner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = 90
		}
		cutoff := time.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour)

		deleted, err := cleaner.DeleteOlderThan(cutoff)
		if err != nil {
			return fmt.Errorf("cleanup activity log: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d activity entries older than %d days", deleted, retentionDays)
		return nil
	}
}

// NewCleanupActivityLogQueue creates a backlite queue for activity cleanup tasks.
func NewCleanupActivityLogQueue(cleaner ActivityCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupActivityLogProcessor(cleaner))
}
