package storage

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// MemoryDSN keeps the database in process memory; it does not survive a restart.
const MemoryDSN = ":memory:"

// SQLiteAdapter implements the session repository using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// NewSQLiteAdapter opens the database at path (in memory when empty) and
// migrates the schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	if path == "" {
		path = MemoryDSN
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// A single connection keeps ":memory:" pointing at one database and
	// serializes writers for file databases.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("register tracing plugin: %w", err)
	}

	if err := db.AutoMigrate(&SessionEventModel{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	db.Exec("CREATE INDEX IF NOT EXISTS idx_session_events_subscriber ON session_event_models(subscriber_id)")

	return &SQLiteAdapter{db: db}, nil
}

func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
