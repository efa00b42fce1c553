package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/readingcenter/internal/config"
	"github.com/mrlokans/readingcenter/internal/entities"
)

// activeSlotIndex backs the one-active-reservation-per-(book, date, slot) rule at
// the storage layer, so concurrent admissions cannot both commit.
const activeSlotIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_active_slot
	ON reservations (book_id, desired_date, slot)
	WHERE status IN ('pending', 'validated')`

var defaultParameters = []entities.SystemParameter{
	{Key: entities.ParamOpenSunday, Value: "false", Type: entities.ParameterTypeBoolean, Description: "Open on Sundays"},
	{Key: entities.ParamOpenMonday, Value: "true", Type: entities.ParameterTypeBoolean, Description: "Open on Mondays"},
	{Key: entities.ParamOpenTuesday, Value: "true", Type: entities.ParameterTypeBoolean, Description: "Open on Tuesdays"},
	{Key: entities.ParamOpenWednesday, Value: "true", Type: entities.ParameterTypeBoolean, Description: "Open on Wednesdays"},
	{Key: entities.ParamOpenThursday, Value: "true", Type: entities.ParameterTypeBoolean, Description: "Open on Thursdays"},
	{Key: entities.ParamOpenFriday, Value: "true", Type: entities.ParameterTypeBoolean, Description: "Open on Fridays"},
	{Key: entities.ParamOpenSaturday, Value: "true", Type: entities.ParameterTypeBoolean, Description: "Open on Saturdays"},
	{Key: entities.ParamMaxReservationsPerDay, Value: "50", Type: entities.ParameterTypeNumber, Description: "Maximum reservations per day, all books"},
	{Key: entities.ParamMaxReservationsPerSlot, Value: "10", Type: entities.ParameterTypeNumber, Description: "Maximum reservations per time slot"},
	{Key: entities.ParamAdminNotificationEmail, Value: "", Type: entities.ParameterTypeString, Description: "Recipient of new reservation alerts"},
	{Key: entities.ParamCenterName, Value: "Reading Center", Type: entities.ParameterTypeString, Description: "Name used in outgoing messages"},
}

// Database owns the single store handle. It is created once by the
// application root and passed to every component that needs it.
type Database struct {
	DB     *gorm.DB
	Driver string
}

// NewDatabase opens a SQLite database at dbPath.
func NewDatabase(dbPath string) (*Database, error) {
	return Open(config.Database{Driver: config.DriverSQLite, Path: dbPath})
}

// Open connects using the configured driver, migrates the schema and seeds
// default system parameters.
func Open(cfg config.Database) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", config.DriverSQLite:
		cfg.Driver = config.DriverSQLite
		dialector = sqlite.Open(sqliteDSN(cfg.Path))
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("database DSN is required for driver %q", cfg.Driver)
		}
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	logLevel := logger.Warn
	if cfg.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{DB: db, Driver: cfg.Driver}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := database.seedParameters(); err != nil {
		return nil, fmt.Errorf("failed to seed system parameters: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		log.Printf("Database initialized successfully at %s", cfg.Path)
	} else {
		log.Printf("Database initialized successfully (%s)", cfg.Driver)
	}

	return database, nil
}

// sqliteDSN enables WAL journaling, foreign keys and immediate write locks so
// that transactions which read-then-write are serialized by SQLite itself.
func sqliteDSN(path string) string {
	params := []string{"_busy_timeout=5000", "_foreign_keys=1", "_txlock=immediate"}
	if path != ":memory:" && !strings.HasPrefix(path, "file::memory:") {
		params = append(params, "_journal_mode=WAL")
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

func (d *Database) migrate() error {
	err := d.DB.AutoMigrate(
		&entities.User{},
		&entities.Author{},
		&entities.Category{},
		&entities.Book{},
		&entities.Reservation{},
		&entities.SystemParameter{},
		&entities.ReadingGroup{},
		&entities.Event{},
		&entities.News{},
		&entities.ContactMessage{},
		&entities.NewsletterSubscriber{},
		&entities.ActivityLog{},
	)
	if err != nil {
		return err
	}
	return d.DB.Exec(activeSlotIndex).Error
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies the connection is alive.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) seedParameters() error {
	for _, param := range defaultParameters {
		var existing entities.SystemParameter
		result := d.DB.Where("key = ?", param.Key).Limit(1).Find(&existing)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			p := param
			if err := d.DB.Create(&p).Error; err != nil {
				return fmt.Errorf("failed to create parameter %s: %w", param.Key, err)
			}
			log.Printf("Created system parameter: %s=%s", param.Key, param.Value)
		}
	}
	return nil
}
