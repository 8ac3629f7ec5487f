// File: internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/psyche-voyage/launchpad/internal/metrics"
	"github.com/psyche-voyage/launchpad/internal/models"
	"github.com/psyche-voyage/launchpad/pkg/utils"
)

// PostgresStorage implements Storage interface using PostgreSQL
type PostgresStorage struct {
	db         *sql.DB
	config     *StorageConfig
	logger     *logrus.Logger
	migrations []*Migration

	metricsManager *metrics.Manager
}

// NewPostgresStorage creates a new PostgreSQL storage instance
func NewPostgresStorage(config *StorageConfig) *PostgresStorage {
	return &PostgresStorage{
		config:     config,
		logger:     utils.GetLogger(),
		migrations: GetPostgresMigrations(),
	}
}

// SetMetricsManager attaches a metrics manager for operation timing
func (s *PostgresStorage) SetMetricsManager(m *metrics.Manager) {
	s.metricsManager = m
}

// Connect establishes database connection
func (s *PostgresStorage) Connect() error {
	db, err := sql.Open("postgres", s.config.ConnectionString)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to open PostgreSQL database", err.Error())
	}

	// Configure connection pool
	db.SetMaxOpenConns(s.config.MaxConnections)
	db.SetMaxIdleConns(s.config.MaxConnections / 2)
	db.SetConnMaxLifetime(s.config.MaxIdleTime)

	if err := db.Ping(); err != nil {
		return utils.NewAppError(utils.ErrCodeConnection, "Failed to connect to PostgreSQL", err.Error())
	}

	s.db = db
	s.logger.Info("PostgreSQL database connected")

	return nil
}

// Close closes the database connection
func (s *PostgresStorage) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		s.logger.Info("PostgreSQL database connection closed")
		return err
	}
	return nil
}

// Ping checks database connectivity
func (s *PostgresStorage) Ping() error {
	if s.db == nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Database not connected", "")
	}
	return s.db.Ping()
}

// Migrate runs database migrations
func (s *PostgresStorage) Migrate() error {
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
func (s *PostgresStorage) SaveEvent(ctx context.Context, event *models.Event) error {
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
		INSERT INTO events (id, data, task_context, processed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			task_context = EXCLUDED.task_context,
			processed = EXCLUDED.processed,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		event.ID, string(dataJSON), contextJSON, event.Processed,
		event.CreatedAt, event.UpdatedAt)

	s.recordOperation("upsert", "events", err, start)

	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to save event", err.Error())
	}
	return nil
}

// GetEvent retrieves a single event by ID
func (s *PostgresStorage) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	query := `
		SELECT id, data, task_context, processed, created_at, updated_at
		FROM events WHERE id = $1
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
func (s *PostgresStorage) GetEvents(ctx context.Context, filter models.EventFilter) ([]*models.Event, error) {
	query := `
		SELECT id, data, task_context, processed, created_at, updated_at
		FROM events
	`
	where, args := buildEventFilter(filter, postgresDialect)
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
func (s *PostgresStorage) GetEventCount(ctx context.Context, filter models.EventFilter) (int64, error) {
	query := "SELECT COUNT(*) FROM events"
	where, args := buildEventFilter(filter, postgresDialect)
	query += where

	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, utils.NewAppError(utils.ErrCodeDatabase, "Failed to count events", err.Error())
	}
	return count, nil
}

// SetTaskContext stores the accumulated pipeline state for an event
func (s *PostgresStorage) SetTaskContext(ctx context.Context, id string, taskContext map[string]interface{}) error {
	start := time.Now()

	contextJSON, err := json.Marshal(taskContext)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to marshal task context", err.Error())
	}

	query := `UPDATE events SET task_context = $1, updated_at = $2 WHERE id = $3`
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
func (s *PostgresStorage) MarkProcessed(ctx context.Context, id string) error {
	query := `UPDATE events SET processed = TRUE, updated_at = $1 WHERE id = $2`
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
func (s *PostgresStorage) DeleteEvent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to delete event", err.Error())
	}
	return nil
}

// GetChannelHistory returns the most recent events for a channel in
// chronological order, oldest first
func (s *PostgresStorage) GetChannelHistory(ctx context.Context, channelID int64, limit int) ([]*models.Event, error) {
	query := `
		SELECT id, data, task_context, processed, created_at, updated_at
		FROM events
		WHERE data->>'channel_id' = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, fmt.Sprintf("%d", channelID), limit)
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
func (s *PostgresStorage) SaveWellnessContent(ctx context.Context, content *models.WellnessContent) error {
	start := time.Now()

	query := `
		INSERT INTO wellness_content
		(content, content_type, channel_id, posted, posted_at, reasoning, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		content.Content, string(content.ContentType), content.ChannelID,
		content.Posted, content.PostedAt, content.Reasoning, content.Confidence,
		content.CreatedAt).Scan(&content.ID)

	s.recordOperation("insert", "wellness_content", err, start)

	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to save wellness content", err.Error())
	}
	return nil
}

// GetPostedContent returns the most recently posted content for a channel
func (s *PostgresStorage) GetPostedContent(ctx context.Context, channelID int64, limit int) ([]*models.WellnessContent, error) {
	query := `
		SELECT id, content, content_type, channel_id, posted, posted_at, reasoning, confidence, created_at
		FROM wellness_content
		WHERE channel_id = $1 AND posted = TRUE
		ORDER BY posted_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, channelID, limit)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to query posted content", err.Error())
	}
	defer rows.Close()

	return scanWellnessContent(rows)
}

// GetLastContent returns the most recently created content for a channel
func (s *PostgresStorage) GetLastContent(ctx context.Context, channelID int64) (*models.WellnessContent, error) {
	query := `
		SELECT id, content, content_type, channel_id, posted, posted_at, reasoning, confidence, created_at
		FROM wellness_content
		WHERE channel_id = $1
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
func (s *PostgresStorage) MarkContentPosted(ctx context.Context, id int64) error {
	query := `UPDATE wellness_content SET posted = TRUE, posted_at = $1 WHERE id = $2`
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
func (s *PostgresStorage) GetStorageStats(ctx context.Context) (*StorageStats, error) {
	stats := &StorageStats{}

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE processed),
			MIN(created_at),
			MAX(created_at)
		FROM events
	`
	var oldest, latest sql.NullTime
	if err := s.db.QueryRowContext(ctx, query).Scan(&stats.TotalEvents, &stats.ProcessedEvents, &oldest, &latest); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to query event stats", err.Error())
	}
	stats.PendingEvents = stats.TotalEvents - stats.ProcessedEvents
	if oldest.Valid {
		stats.OldestEvent = &oldest.Time
	}
	if latest.Valid {
		stats.LatestEvent = &latest.Time
	}

	contentQuery := `SELECT COUNT(*), COUNT(*) FILTER (WHERE posted) FROM wellness_content`
	if err := s.db.QueryRowContext(ctx, contentQuery).Scan(&stats.TotalContent, &stats.PostedContent); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to query content stats", err.Error())
	}

	return stats, nil
}

func (s *PostgresStorage) recordOperation(op, table string, err error, start time.Time) {
	if s.metricsManager == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metricsManager.GetPrometheusMetrics().RecordDatabaseOperation(op, table, status, time.Since(start))
}
