package database

import (
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/mangashelf/internal/config"
	"github.com/mrlokans/mangashelf/internal/database/volumes"
	"github.com/mrlokans/mangashelf/internal/entities"
)

// activeLoanIndex enforces at most one open loan per (user, volume).
const activeLoanIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_loans_active_volume
	ON loans (user_id, volume_id) WHERE returned_at IS NULL`

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens (and migrates) a SQLite database at dbPath.
func NewDatabase(dbPath string) (*Database, error) {
	return Open(config.Database{Driver: config.DriverSQLite, Path: dbPath}, logger.Warn)
}

// Open connects to the configured driver and migrates the schema.
func Open(cfg config.Database, level logger.LogLevel) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres driver requires DATABASE_DSN")
		}
		dialector = postgres.Open(cfg.DSN)
	case config.DriverSQLite, "":
		dialector = sqlite.Open(sqliteDSN(cfg.Path))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{DB: db}
	if err := database.migrate(); err != nil {
		_ = database.Close()
		return nil, err
	}

	slog.Info("database initialized", "driver", string(cfg.Driver), "path", cfg.Path)

	return database, nil
}

func (d *Database) migrate() error {
	err := d.DB.AutoMigrate(
		&entities.User{},
		&entities.Series{},
		&entities.Edition{},
		&entities.Volume{},
		&entities.VolumeISBN{},
		&entities.CollectionEntry{},
		&entities.WishlistEntry{},
		&entities.Loan{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := d.DB.Exec(activeLoanIndex).Error; err != nil {
		return fmt.Errorf("failed to create active loan index: %w", err)
	}
	if err := d.DB.Exec(volumes.LocalNumberIndex).Error; err != nil {
		return fmt.Errorf("failed to create local volume index: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the connection.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// sqliteDSN adds WAL, a busy timeout and immediate write locks to file databases
// so concurrent transactions queue instead of failing.
func sqliteDSN(path string) string {
	if path == "" {
		path = config.DefaultDatabasePath
	}
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"
}
