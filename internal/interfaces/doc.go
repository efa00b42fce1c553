// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Reservation Interfaces
//
//   - ReservationAdmitter: Admission and availability (internal/http/stores.go)
//   - ReservationUpdater: Status transitions (internal/http/stores.go)
//   - Notifier: Reservation events leaving the core (internal/reservations/notifier.go)
//
// ## Data Access Interfaces
//
//   - BookStore, AuthorStore, CategoryStore: Catalog (internal/http/stores.go)
//   - GroupStore, EventStore, NewsStore: Center content (internal/http/stores.go)
//   - ContactStore, NewsletterStore: Public forms (internal/http/stores.go)
//   - SettingsStore: System parameters (internal/http/settings.go)
//   - UserRepository: Accounts behind authentication (internal/auth/service.go)
//
// ## Background Work Interfaces
//
//   - TaskEnqueuer: Saves tasks to the queue (internal/tasks/send_notification.go)
//   - NotificationDeliverer: Renders and sends messages (internal/tasks/send_notification.go)
//   - Mailer: Outgoing transport (internal/notify/mailer.go)
//   - JobRunner: Manual runs of scheduled jobs (internal/http/tasks.go)
//
// # Adding a New Notification Transport
//
//  1. Implement Mailer in internal/notify/
//
//     type WebhookMailer struct {
//         url string
//     }
//
//     func (m *WebhookMailer) Send(ctx context.Context, msg Message) error
//
//     var _ Mailer = (*WebhookMailer)(nil)
//
//  2. Select it in NewMailer from config.Notifications
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/loans/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Declare the consumer interface next to its controller in internal/http/
//
//  4. Add compile-time check to checks.go:
//
//     var _ http.LoanStore = (*loans.Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
