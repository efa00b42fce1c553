package http

import (
	"github.com/mrlokans/readingcenter/internal/activity"
	"github.com/mrlokans/readingcenter/internal/auth"
	"github.com/mrlokans/readingcenter/internal/config"
	"github.com/mrlokans/readingcenter/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. Optional stores left nil disable their routes.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Activity *activity.Service

	// Reservation core
	Admitter     ReservationAdmitter
	Lifecycle    ReservationUpdater
	Reservations ReservationLister

	// Catalog
	Books      BookStore
	Authors    AuthorStore
	Categories CategoryStore

	// Center content
	Groups     GroupStore
	Events     EventStore
	News       NewsStore
	Contacts   ContactStore
	Newsletter NewsletterStore

	// Contact acknowledgements (optional)
	ContactNotifier ContactNotifier

	Settings SettingsStore
	Users    UserStore

	// Authentication
	AuthConfig     config.Auth
	AuthService    *auth.Service
	AuthController *auth.AuthController
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	CSRFSecret     []byte
	SecureCookies  bool

	// Throttle for anonymous form submissions (optional)
	PublicRateLimiter *PublicRateLimiter

	// Task queue client and scheduler (optional)
	TaskClient TaskStatusReader
	Jobs       JobRunner

	// Application info
	Version    string
	CenterName string
}
