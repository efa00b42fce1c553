package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./readingcenter.db"

	// DriverSQLite and DriverPostgres are the supported database drivers
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Mailer kinds
const (
	MailerLog  = "log"  // Render messages and write them to the log
	MailerSMTP = "smtp" // Deliver through an SMTP relay
)
