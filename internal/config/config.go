package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // Every caller is treated as an administrator (local development)
	AuthModeLocal AuthMode = "local" // Local user database with JWT and sessions (default)
)

type (
	Config struct {
		HTTP
		Global
		Database
		Tasks
		Auth
		Notifications
		Scheduler
		Center
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver string // "sqlite" or "postgres"
		Path   string // SQLite file path
		DSN    string // PostgreSQL connection string
		Debug  bool   // Log every SQL statement
	}
	Tasks struct {
		Enabled           bool
		DatabasePath      string // Dedicated SQLite file for the queue; derived from Database.Path if empty
		Workers           int
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Auth struct {
		Mode            AuthMode
		JWTSecret       string
		TokenTTL        time.Duration
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Notifications struct {
		Mailer       string // "log" or "smtp"
		FromAddress  string
		AdminEmail   string // Fallback when the admin_notification_email parameter is unset
		SMTPHost     string
		SMTPPort     int
		SMTPUsername string
		SMTPPassword string
	}
	Scheduler struct {
		Enabled              bool
		ReminderSchedule     string // Cron format: "0 18 * * *" = every day at 18:00
		AuditCleanupSchedule string // Cron format: "30 3 * * *" = every day at 03:30
		AuditRetentionDays   int
	}
	Center struct {
		Name            string
		Timezone        string
		PublicRateLimit float64 // Requests per second per IP on public form endpoints
		PublicRateBurst int
	}
)

// Location resolves the configured timezone, falling back to local time.
func (c Center) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("WARNING: unknown timezone %q, using local time: %v", c.Timezone, err)
		return time.Local
	}
	return loc
}

func NewConfig() *Config {
	// A missing .env file is not an error; the environment may be set directly.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	// Database defaults
	v.SetDefault("database_driver", DriverSQLite)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_debug", false)

	// Auth defaults
	v.SetDefault("auth_mode", "local")
	v.SetDefault("auth_jwt_secret", "")           // Auto-generated if empty
	v.SetDefault("auth_token_ttl", "12h")         // JWT lifetime
	v.SetDefault("auth_session_lifetime", "24h")  // 24 hours
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)     // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_database_path", "")
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Notification defaults
	v.SetDefault("mailer", MailerLog)
	v.SetDefault("mail_from", "no-reply@reading-center.local")
	v.SetDefault("admin_email", "")
	v.SetDefault("smtp_host", "localhost")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_username", "")
	v.SetDefault("smtp_password", "")

	// Scheduler defaults
	v.SetDefault("scheduler_enabled", true)
	v.SetDefault("reminder_schedule", "0 18 * * *")
	v.SetDefault("audit_cleanup_schedule", "30 3 * * *")
	v.SetDefault("audit_retention_days", 90)

	// Center defaults
	v.SetDefault("center_name", "Reading Center")
	v.SetDefault("center_timezone", "")
	v.SetDefault("public_rate_limit", 1.0)
	v.SetDefault("public_rate_burst", 5)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver: v.GetString("DATABASE_DRIVER"),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
			Debug:  v.GetBool("DATABASE_DEBUG"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			DatabasePath:      v.GetString("TASKS_DATABASE_PATH"),
			Workers:           v.GetInt("TASK_WORKERS"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			JWTSecret:        v.GetString("AUTH_JWT_SECRET"),
			TokenTTL:         v.GetDuration("AUTH_TOKEN_TTL"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Notifications: Notifications{
			Mailer:       v.GetString("MAILER"),
			FromAddress:  v.GetString("MAIL_FROM"),
			AdminEmail:   v.GetString("ADMIN_EMAIL"),
			SMTPHost:     v.GetString("SMTP_HOST"),
			SMTPPort:     v.GetInt("SMTP_PORT"),
			SMTPUsername: v.GetString("SMTP_USERNAME"),
			SMTPPassword: v.GetString("SMTP_PASSWORD"),
		},
		Scheduler: Scheduler{
			Enabled:              v.GetBool("SCHEDULER_ENABLED"),
			ReminderSchedule:     v.GetString("REMINDER_SCHEDULE"),
			AuditCleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
			AuditRetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Center: Center{
			Name:            v.GetString("CENTER_NAME"),
			Timezone:        v.GetString("CENTER_TIMEZONE"),
			PublicRateLimit: v.GetFloat64("PUBLIC_RATE_LIMIT"),
			PublicRateBurst: v.GetInt("PUBLIC_RATE_BURST"),
		},
	}
}
