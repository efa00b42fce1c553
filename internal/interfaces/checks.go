package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/readingcenter/internal/activity"
	"github.com/mrlokans/readingcenter/internal/auth"
	dbactivity "github.com/mrlokans/readingcenter/internal/database/activity"
	"github.com/mrlokans/readingcenter/internal/database/books"
	"github.com/mrlokans/readingcenter/internal/database/content"
	dbreservations "github.com/mrlokans/readingcenter/internal/database/reservations"
	"github.com/mrlokans/readingcenter/internal/database/settings"
	"github.com/mrlokans/readingcenter/internal/database/users"
	"github.com/mrlokans/readingcenter/internal/http"
	"github.com/mrlokans/readingcenter/internal/notify"
	"github.com/mrlokans/readingcenter/internal/reservations"
	"github.com/mrlokans/readingcenter/internal/scheduler"
	"github.com/mrlokans/readingcenter/internal/tasks"
)

// =============================================================================
// Reservation Core
// =============================================================================

var _ http.ReservationAdmitter = (*reservations.Engine)(nil)
var _ http.ReservationUpdater = (*reservations.Manager)(nil)
var _ http.ReservationLister = (*dbreservations.Repository)(nil)

// Notifier implementations
var _ reservations.Notifier = reservations.NopNotifier{}
var _ reservations.Notifier = (*reservations.RecordingNotifier)(nil)
var _ reservations.Notifier = (*notify.AsyncNotifier)(nil)
var _ reservations.Notifier = (*tasks.QueueNotifier)(nil)
var _ http.ContactNotifier = (*notify.AsyncNotifier)(nil)
var _ http.ContactNotifier = (*tasks.QueueNotifier)(nil)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.BookStore = (*books.Repository)(nil)
var _ http.AuthorStore = (*books.Repository)(nil)
var _ http.CategoryStore = (*books.Repository)(nil)

var _ http.GroupStore = (*content.Repository)(nil)
var _ http.EventStore = (*content.Repository)(nil)
var _ http.NewsStore = (*content.Repository)(nil)
var _ http.ContactStore = (*content.Repository)(nil)
var _ http.NewsletterStore = (*content.Repository)(nil)

var _ http.SettingsStore = (*settings.Repository)(nil)
var _ http.UserStore = (*users.Repository)(nil)
var _ auth.UserRepository = (*users.Repository)(nil)

// =============================================================================
// Activity Log
// =============================================================================

var _ http.ActivityRecorder = (*activity.Service)(nil)
var _ http.ActivityReader = (*activity.Service)(nil)
var _ http.SettingsRecorder = (*activity.Service)(nil)
var _ auth.ActivityRecorder = (*activity.Service)(nil)
var _ tasks.ActivityCleaner = (*dbactivity.Repository)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.TaskEnqueuer = (*tasks.Client)(nil)
var _ tasks.NotificationDeliverer = (*notify.Dispatcher)(nil)
var _ tasks.ReminderSource = (*dbreservations.Repository)(nil)
var _ http.TaskStatusReader = (*tasks.Client)(nil)
var _ http.JobRunner = (*scheduler.Scheduler)(nil)
var _ http.AccountService = (*auth.Service)(nil)

// Mailer implementations
var _ notify.Mailer = (*notify.LogMailer)(nil)
var _ notify.Mailer = (*notify.SMTPMailer)(nil)
