// File: internal/storage/storage.go
package storage

import (
	"context"
	"time"

	"github.com/psyche-voyage/launchpad/internal/models"
)

// Storage defines the interface for event and content storage operations
type Storage interface {
	// Connection management
	Connect() error
	Close() error
	Ping() error
	Migrate() error

	// Event operations
	SaveEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	GetEvents(ctx context.Context, filter models.EventFilter) ([]*models.Event, error)
	GetEventCount(ctx context.Context, filter models.EventFilter) (int64, error)
	SetTaskContext(ctx context.Context, id string, taskContext map[string]interface{}) error
	MarkProcessed(ctx context.Context, id string) error
	DeleteEvent(ctx context.Context, id string) error

	// Channel history for pipeline context, oldest first
	GetChannelHistory(ctx context.Context, channelID int64, limit int) ([]*models.Event, error)

	// Wellness content operations
	SaveWellnessContent(ctx context.Context, content *models.WellnessContent) error
	GetPostedContent(ctx context.Context, channelID int64, limit int) ([]*models.WellnessContent, error)
	GetLastContent(ctx context.Context, channelID int64) (*models.WellnessContent, error)
	MarkContentPosted(ctx context.Context, id int64) error

	// Statistics
	GetStorageStats(ctx context.Context) (*StorageStats, error)
}

// StorageStats provides storage statistics
type StorageStats struct {
	TotalEvents     int64      `json:"total_events"`
	ProcessedEvents int64      `json:"processed_events"`
	PendingEvents   int64      `json:"pending_events"`
	TotalContent    int64      `json:"total_wellness_content"`
	PostedContent   int64      `json:"posted_wellness_content"`
	OldestEvent     *time.Time `json:"oldest_event,omitempty"`
	LatestEvent     *time.Time `json:"latest_event,omitempty"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Type             string        `json:"type"`
	ConnectionString string        `json:"connection_string"`
	MaxConnections   int           `json:"max_connections"`
	MaxIdleTime      time.Duration `json:"max_idle_time"`
}
