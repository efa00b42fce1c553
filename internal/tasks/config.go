package tasks

import (
	"path/filepath"
	"time"

	"github.com/mrlokans/readingcenter/internal/config"
)

// Queue names
const (
	QueueSendNotification   = "send_notification"
	QueueSendContactAck     = "send_contact_ack"
	QueueVisitReminders     = "visit_reminders"
	QueueCleanupActivityLog = "cleanup_activity_log"
)

// Config holds configuration for the task queue system.
type Config struct {
	// DatabasePath overrides the queue database location. When empty the
	// queue lives next to the main database with a "-tasks" suffix.
	DatabasePath string

	// Workers is the number of concurrent task workers. Default: 2
	Workers int

	// ReleaseAfter is when stuck tasks are released back to queue. Default: 15m
	ReleaseAfter time.Duration

	// CleanupInterval is how often to clean up completed tasks. Default: 1h
	CleanupInterval time.Duration

	// RetentionDuration is how long to keep completed tasks. Default: 24h
	RetentionDuration time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:           2,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   1 * time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}

// FromAppConfig maps application settings onto a Config, keeping defaults
// for unset values.
func FromAppConfig(cfg config.Tasks) Config {
	c := DefaultConfig()
	c.DatabasePath = cfg.DatabasePath
	if cfg.Workers > 0 {
		c.Workers = cfg.Workers
	}
	if cfg.ReleaseAfter > 0 {
		c.ReleaseAfter = cfg.ReleaseAfter
	}
	if cfg.CleanupInterval > 0 {
		c.CleanupInterval = cfg.CleanupInterval
	}
	if cfg.RetentionDuration > 0 {
		c.RetentionDuration = cfg.RetentionDuration
	}
	return c
}

// databasePath resolves where the queue database lives.
func (c Config) databasePath(mainDBPath string) string {
	if c.DatabasePath != "" {
		return c.DatabasePath
	}
	dir := filepath.Dir(mainDBPath)
	base := filepath.Base(mainDBPath)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	return filepath.Join(dir, name+"-tasks"+ext)
}
