// File: internal/storage/sqlite.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/psyche-voyage/launchpad/internal/metrics"
	"github.com/psyche-voyage/launchpad/internal/models"
	"github.com/psyche-voyage/launchpad/pkg/utils"
)

// SQLiteStorage implements Storage interface using SQLite
type SQLiteStorage struct {
	db         *sql.DB
	config     *StorageConfig
	logger     *logrus.Logger
	migrations []*Migration

	metricsManager *metrics.Manager
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(config *StorageConfig) *SQLiteStorage {
	return &SQLiteStorage{
		config:     config,
		logger:     utils.GetLogger(),
		migrations: GetSQLiteMigrations(),
	}
}

// SetMetricsManager attaches a metrics manager for operation timing
func (s *SQLiteStorage) SetMetricsManager(m *metrics.Manager) {
	s.metricsManager = m
}

// Connect establishes database connection
func (s *SQLiteStorage) Connect() error {
	// Ensure directory exists
	dir := filepath.Dir(s.config.ConnectionString)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return utils.NewAppError(utils.ErrCodeDatabase, "Failed to create database directory", err.Error())
		}
	}

	db, err := sql.Open("sqlite", s.config.ConnectionString)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to open SQLite database", err.Error())
	}

	// Configure connection pool
	db.SetMaxOpenConns(s.config.MaxConnections)
	db.SetMaxIdleConns(s.config.MaxConnections / 2)
	db.SetConnMaxLifetime(s.config.MaxIdleTime)

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to enable WAL mode", err.Error())
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to enable foreign keys", err.Error())
	}

	s.db = db
	s.logger.WithField("path", s.config.ConnectionString).Info("SQLite database connected")

	return nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		s.logger.Info("SQLite database connection closed")
		return err
	}
	return nil
}

// Ping checks database connectivity
func (s *SQLiteStorage) Ping() error {
	if s.db == nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Database not connected", "")
	}
	return s.db.Ping()
}

// Migrate runs database migrations
func (s *SQLiteStorage) Migrate() error {
	if s.db == nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Database not connected", "")
	}

	s.logger.Info("Starting database migrations")

	for _, migration := range s.migrations {
		s.logger.WithFields(logrus.Fields{
			"version":     migration.Version,
			"description": migration.Description,
		}).Info("Applying migration")

		if _, err := s.db.Exec(migration.SQL); err != nil {
			return utils.NewAppError(utils.ErrCodeDatabase,
				fmt.Sprintf("Migration %s failed", migration.Version),
				err.Error())
		}
	}

	s.logger.Info("Database migrations completed")
	return nil
}

// SaveEvent saves a single event
func (s *SQLiteStorage) SaveEvent(ctx context.Context, event *models.Event) error {
	start := time.Now()

	dataJSON, err := json.Marshal(event.Data)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to marshal event data", err.Error())
	}

	var contextJSON interface{}
	if event.TaskContext != nil {
		raw, err := json.Marshal(event.TaskContext)
		if err != nil {
			return utils.NewAppError(utils.ErrCodeDatabase, "Failed to marshal task context", err.Error())
		}
		contextJSON = string(raw)
	}

	query := `
		INSERT OR REPLACE INTO events
		(id, data, task_context, processed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		event.ID, string(dataJSON), contextJSON, event.Processed,
		event.CreatedAt, event.UpdatedAt)

	s.recordOperation("insert", "events", err, start)

	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to save event", err.Error())
	}
	return nil
}

// GetEvent retrieves a single event by ID
func (s *SQLiteStorage) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	query := `
		SELECT id, data, task_context, processed, created_at, updated_at
		FROM events WHERE id = ?
	`

	event, err := scanEvent(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to get event", err.Error())
	}
	return event, nil
}

// GetEvents retrieves events matching the filter, newest first
func (s *SQLiteStorage) GetEvents(ctx context.Context, filter models.EventFilter) ([]*models.Event, error) {
	query := `
		SELECT id, data, task_context, processed, created_at, updated_at
		FROM events
	`
	where, args := buildEventFilter(filter, sqliteDialect)
	query += where + " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to query events", err.Error())
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetEventCount returns the number of events matching the filter
func (s *SQLiteStorage) GetEventCount(ctx context.Context, filter models.EventFilter) (int64, error) {
	query := "SELECT COUNT(*) FROM events"
	where, args := buildEventFilter(filter, sqliteDialect)
	query += where

	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, utils.NewAppError(utils.ErrCodeDatabase, "Failed to count events", err.Error())
	}
	return count, nil
}

// SetTaskContext stores the accumulated pipeline state for an event
func (s *SQLiteStorage) SetTaskContext(ctx context.Context, id string, taskContext map[string]interface{}) error {
	start := time.Now()

	contextJSON, err := json.Marshal(taskContext)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to marshal task context", err.Error())
	}

	query := `UPDATE events SET task_context = ?, updated_at = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, string(contextJSON), time.Now().UTC(), id)

	s.recordOperation("update", "events", err, start)

	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to set task context", err.Error())
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return utils.NewAppError(utils.ErrCodeNotFound, "Event not found", id)
	}
	return nil
}

// MarkProcessed flags an event as processed
func (s *SQLiteStorage) MarkProcessed(ctx context.Context, id string) error {
	query := `UPDATE events SET processed = TRUE, updated_at = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to mark event processed", err.Error())
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return utils.NewAppError(utils.ErrCodeNotFound, "Event not found", id)
	}
	return nil
}

// DeleteEvent removes an event by ID
func (s *SQLiteStorage) DeleteEvent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to delete event", err.Error())
	}
	return nil
}

// GetChannelHistory returns the most recent events for a channel in
// chronological order, oldest first
func (s *SQLiteStorage) GetChannelHistory(ctx context.Context, channelID int64, limit int) ([]*models.Event, error) {
	query := `
		SELECT id, data, task_context, processed, created_at, updated_at
		FROM events
		WHERE json_extract(data, '$.channel_id') = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, channelID, limit)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to query channel history", err.Error())
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	reverseEvents(events)
	return events, nil
}

// SaveWellnessContent stores a generated content record and fills in its ID
func (s *SQLiteStorage) SaveWellnessContent(ctx context.Context, content *models.WellnessContent) error {
	start := time.Now()

	query := `
		INSERT INTO wellness_content
		(content, content_type, channel_id, posted, posted_at, reasoning, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		content.Content, string(content.ContentType), content.ChannelID,
		content.Posted, content.PostedAt, content.Reasoning, content.Confidence,
		content.CreatedAt)

	s.recordOperation("insert", "wellness_content", err, start)

	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to save wellness content", err.Error())
	}

	if id, err := result.LastInsertId(); err == nil {
		content.ID = id
	}
	return nil
}

// GetPostedContent returns the most recently posted content for a channel
func (s *SQLiteStorage) GetPostedContent(ctx context.Context, channelID int64, limit int) ([]*models.WellnessContent, error) {
	query := `
		SELECT id, content, content_type, channel_id, posted, posted_at, reasoning, confidence, created_at
		FROM wellness_content
		WHERE channel_id = ? AND posted = TRUE
		ORDER BY posted_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, channelID, limit)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to query posted content", err.Error())
	}
	defer rows.Close()

	return scanWellnessContent(rows)
}

// GetLastContent returns the most recently created content for a channel
func (s *SQLiteStorage) GetLastContent(ctx context.Context, channelID int64) (*models.WellnessContent, error) {
	query := `
		SELECT id, content, content_type, channel_id, posted, posted_at, reasoning, confidence, created_at
		FROM wellness_content
		WHERE channel_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`

	rows, err := s.db.QueryContext(ctx, query, channelID)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to query last content", err.Error())
	}
	defer rows.Close()

	contents, err := scanWellnessContent(rows)
	if err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return nil, nil
	}
	return contents[0], nil
}

// MarkContentPosted flags a content record as posted
func (s *SQLiteStorage) MarkContentPosted(ctx context.Context, id int64) error {
	query := `UPDATE wellness_content SET posted = TRUE, posted_at = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to mark content posted", err.Error())
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return utils.NewAppError(utils.ErrCodeNotFound, "Wellness content not found", fmt.Sprintf("%d", id))
	}
	return nil
}

// GetStorageStats returns storage statistics
func (s *SQLiteStorage) GetStorageStats(ctx context.Context) (*StorageStats, error) {
	stats := &StorageStats{}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&stats.TotalEvents); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to count events", err.Error())
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events WHERE processed = TRUE").Scan(&stats.ProcessedEvents); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to count processed events", err.Error())
	}
	stats.PendingEvents = stats.TotalEvents - stats.ProcessedEvents

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM wellness_content").Scan(&stats.TotalContent); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to count wellness content", err.Error())
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM wellness_content WHERE posted = TRUE").Scan(&stats.PostedContent); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to count posted content", err.Error())
	}

	var oldest, latest sql.NullTime
	if err := s.db.QueryRowContext(ctx, "SELECT MIN(created_at), MAX(created_at) FROM events").Scan(&oldest, &latest); err == nil {
		if oldest.Valid {
			stats.OldestEvent = &oldest.Time
		}
		if latest.Valid {
			stats.LatestEvent = &latest.Time
		}
	}

	return stats, nil
}

func (s *SQLiteStorage) recordOperation(op, table string, err error, start time.Time) {
	if s.metricsManager == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metricsManager.GetPrometheusMetrics().RecordDatabaseOperation(op, table, status, time.Since(start))
}
