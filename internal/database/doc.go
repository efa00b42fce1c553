// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, parameter seeding
//	├── errors.go        # Driver-independent constraint error classification
//	├── books/           # Books, authors and categories
//	├── reservations/    # Reservation listing and lookup
//	├── settings/        # System parameters
//	├── users/           # Administrator accounts
//	├── activity/        # Activity log
//	└── content/         # Reading groups, events, news, contacts, newsletter
//
// # Using Sub-packages
//
// The Database handle is created once by the application root and its *gorm.DB
// is passed to every repository:
//
//	db, err := database.Open(cfg.Database)
//
//	booksRepo := books.NewRepository(db.DB)
//	settingsRepo := settings.NewRepository(db.DB)
//
//	book, err := booksRepo.GetBook(123)
//
// Reservation admission and status changes are not repository operations; they
// run inside transactions owned by the reservations package.
//
// # Constraint Errors
//
// Repositories return driver errors unchanged. Callers use ClassifyError,
// IsDuplicateEntry or IsForeignKeyViolation to turn them into stable codes for
// both SQLite and PostgreSQL.
package database
