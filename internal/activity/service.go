// Package activity records the administrative activity trail: reservation
// decisions, catalog and content edits, settings changes and logins.
//
// Recording is best-effort. Entries are written in the background and a
// failed write is logged, never returned to the caller.
package activity

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/readingcenter/internal/database/activity"
	"github.com/mrlokans/readingcenter/internal/entities"
)

// Service provides high-level activity logging functionality.
type Service struct {
	repo *activity.Repository
	wg   sync.WaitGroup
}

// NewService creates a new activity service.
func NewService(repo *activity.Repository) *Service {
	return &Service{repo: repo}
}

// Entry describes one recorded action.
type Entry struct {
	UserID      *uint
	Type        entities.ActivityType
	Action      string
	Description string
	EntityType  string
	EntityID    *uint
	Metadata    map[string]any
	IPAddress   string
	Err         error
}

// Log records an entry synchronously.
func (s *Service) Log(entry *entities.ActivityLog) error {
	return s.repo.Log(entry)
}

// LogAsync records an entry in the background (non-blocking).
func (s *Service) LogAsync(entry *entities.ActivityLog) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.Log(entry); err != nil {
			log.Printf("Failed to log activity %s: %v", entry.Action, err)
		}
	}()
}

// Wait blocks until all background writes have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Record converts an Entry and logs it in the background.
func (s *Service) Record(e Entry) {
	if s == nil {
		return
	}
	entry := &entities.ActivityLog{
		UserID:      e.UserID,
		Type:        e.Type,
		Action:      e.Action,
		Description: truncate(e.Description, 500),
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		IPAddress:   e.IPAddress,
		Status:      entities.ActivityStatusSuccess,
	}

	if len(e.Metadata) > 0 {
		if mdBytes, err := json.Marshal(e.Metadata); err == nil {
			entry.Metadata = string(mdBytes)
		}
	}

	if e.Err != nil {
		entry.Status = entities.ActivityStatusFailed
		entry.ErrorMsg = truncate(e.Err.Error(), 500)
	}

	s.LogAsync(entry)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID *uint, action, ipAddr string, success bool) {
	if s == nil {
		return
	}
	entry := &entities.ActivityLog{
		UserID:    userID,
		Type:      entities.ActivityAuth,
		Action:    action,
		IPAddress: ipAddr,
		Status:    entities.ActivityStatusSuccess,
	}
	if !success {
		entry.Status = entities.ActivityStatusFailed
	}
	s.LogAsync(entry)
}

// LogSettings records a change of system parameters.
func (s *Service) LogSettings(userID *uint, keys []string) {
	s.Record(Entry{
		UserID:      userID,
		Type:        entities.ActivitySettings,
		Action:      "settings_update",
		Description: "Updated system parameters",
		Metadata:    map[string]any{"keys": keys},
	})
}

// List retrieves a page of entries.
func (s *Service) List(filter activity.Filter) ([]entities.ActivityLog, int64, error) {
	return s.repo.List(filter)
}

// DeleteOldEntries removes entries older than the retention period.
func (s *Service) DeleteOldEntries(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOlderThan(cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
