package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // Every request acts as the default user (default)
	AuthModeToken AuthMode = "token" // Bearer token looked up in the users table
)

type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
)

type (
	Config struct {
		HTTP
		Global
		Log
		Database
		Lookup
		Catalog
		Tasks
		Events
		Audit
		Covers
		Auth
	}

	HTTP struct {
		Port int32
		Host string
		// Upper bound for a single request, provider calls included.
		RequestTimeout time.Duration
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		// Read-only API for a published demo shelf
		DemoMode bool
	}
	Log struct {
		Level  string // debug, info, warn, error
		Format string // text or json
	}
	Database struct {
		Driver DatabaseDriver
		Path   string // sqlite file
		DSN    string // postgres connection string
	}
	Lookup struct {
		BaseURL           string
		CoversBaseURL     string
		UserAgent         string
		Timeout           time.Duration
		RequestsPerSecond int
		MaxRetries        int
	}
	Catalog struct {
		DefaultEditionName string
		DefaultLanguage    string
		UnknownSeriesTitle string
	}
	Tasks struct {
		Enabled           bool
		DatabasePath      string // Defaults to "<database>-tasks.db" next to the main database
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Events struct {
		RedisAddr     string // Empty disables the stream sink
		RedisPassword string
		RedisDB       int
		Stream        string
		MaxLen        int64
	}
	Audit struct {
		Dir             string
		RetentionDays   int    // Days to keep audit events (default: 30)
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Covers struct {
		Dir string
	}
	Auth struct {
		Mode          AuthMode
		DefaultUserID uint
	}
)

// NewConfig reads configuration from the environment, after loading an optional .env file.
func NewConfig() *Config {
	// Optional; variables already set in the environment win.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("http_request_timeout", "30s")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("demo_mode", false)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")

	v.SetDefault("lookup_base_url", DefaultLookupBaseURL)
	v.SetDefault("lookup_covers_base_url", DefaultCoversBaseURL)
	v.SetDefault("lookup_user_agent", "mangashelf/1.0")
	v.SetDefault("lookup_timeout", "10s")
	v.SetDefault("lookup_requests_per_second", 3)
	v.SetDefault("lookup_max_retries", 3)

	v.SetDefault("catalog_default_edition_name", "Standard")
	v.SetDefault("catalog_default_language", "fr")
	v.SetDefault("catalog_unknown_series_title", "Unknown Series")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_database_path", "")
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("events_redis_addr", "")
	v.SetDefault("events_redis_password", "")
	v.SetDefault("events_redis_db", 0)
	v.SetDefault("events_stream", "mangashelf:collection")
	v.SetDefault("events_stream_maxlen", 10000)

	v.SetDefault("audit_dir", "./audit")
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *")

	v.SetDefault("covers_dir", "./covers")

	v.SetDefault("auth_mode", string(AuthModeNone))
	v.SetDefault("auth_default_user_id", DefaultUserID)

	return &Config{
		HTTP: HTTP{
			Port:           v.GetInt32("PORT"),
			Host:           v.GetString("HOST"),
			RequestTimeout: v.GetDuration("HTTP_REQUEST_TIMEOUT"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			DemoMode:                 v.GetBool("DEMO_MODE"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Database: Database{
			Driver: DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Lookup: Lookup{
			BaseURL:           v.GetString("LOOKUP_BASE_URL"),
			CoversBaseURL:     v.GetString("LOOKUP_COVERS_BASE_URL"),
			UserAgent:         v.GetString("LOOKUP_USER_AGENT"),
			Timeout:           v.GetDuration("LOOKUP_TIMEOUT"),
			RequestsPerSecond: v.GetInt("LOOKUP_REQUESTS_PER_SECOND"),
			MaxRetries:        v.GetInt("LOOKUP_MAX_RETRIES"),
		},
		Catalog: Catalog{
			DefaultEditionName: v.GetString("CATALOG_DEFAULT_EDITION_NAME"),
			DefaultLanguage:    v.GetString("CATALOG_DEFAULT_LANGUAGE"),
			UnknownSeriesTitle: v.GetString("CATALOG_UNKNOWN_SERIES_TITLE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			DatabasePath:      v.GetString("TASKS_DATABASE_PATH"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Events: Events{
			RedisAddr:     v.GetString("EVENTS_REDIS_ADDR"),
			RedisPassword: v.GetString("EVENTS_REDIS_PASSWORD"),
			RedisDB:       v.GetInt("EVENTS_REDIS_DB"),
			Stream:        v.GetString("EVENTS_STREAM"),
			MaxLen:        v.GetInt64("EVENTS_STREAM_MAXLEN"),
		},
		Audit: Audit{
			Dir:             v.GetString("AUDIT_DIR"),
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Covers: Covers{
			Dir: v.GetString("COVERS_DIR"),
		},
		Auth: Auth{
			Mode:          AuthMode(v.GetString("AUTH_MODE")),
			DefaultUserID: v.GetUint("AUTH_DEFAULT_USER_ID"),
		},
	}
}
