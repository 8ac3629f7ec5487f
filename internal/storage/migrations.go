package storage

import (
	"time"
)

// Migration represents a database migration
type Migration struct {
	ID          int       `db:"id"`
	Version     string    `db:"version"`
	Description string    `db:"description"`
	SQL         string    `db:"sql"`
	AppliedAt   time.Time `db:"applied_at"`
}

// GetSQLiteMigrations returns SQLite migration scripts
func GetSQLiteMigrations() []*Migration {
	return []*Migration{
		{
			Version:     "001",
			Description: "Create events table",
			SQL: `
				CREATE TABLE IF NOT EXISTS events (
					id TEXT PRIMARY KEY,
					data TEXT NOT NULL, -- JSON
					task_context TEXT, -- JSON
					processed BOOLEAN DEFAULT FALSE,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				);

				CREATE INDEX IF NOT EXISTS idx_events_processed ON events(processed);
				CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at);
				CREATE INDEX IF NOT EXISTS idx_events_channel ON events(json_extract(data, '$.channel_id'));
			`,
		},
		{
			Version:     "002",
			Description: "Create wellness_content table",
			SQL: `
				CREATE TABLE IF NOT EXISTS wellness_content (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					content TEXT NOT NULL,
					content_type TEXT NOT NULL,
					channel_id INTEGER NOT NULL,
					posted BOOLEAN DEFAULT FALSE,
					posted_at DATETIME,
					reasoning TEXT,
					confidence REAL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				);

				CREATE INDEX IF NOT EXISTS idx_wellness_posted ON wellness_content(posted);
				CREATE INDEX IF NOT EXISTS idx_wellness_channel ON wellness_content(channel_id);
				CREATE INDEX IF NOT EXISTS idx_wellness_created_at ON wellness_content(created_at);
			`,
		},
		{
			Version:     "003",
			Description: "Create migrations table",
			SQL: `
				CREATE TABLE IF NOT EXISTS migrations (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					version TEXT NOT NULL UNIQUE,
					description TEXT NOT NULL,
					applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
				);
			`,
		},
	}
}

// GetPostgresMigrations returns PostgreSQL migration scripts
func GetPostgresMigrations() []*Migration {
	return []*Migration{
		{
			Version:     "001",
			Description: "Create events table",
			SQL: `
				CREATE TABLE IF NOT EXISTS events (
					id TEXT PRIMARY KEY,
					data JSONB NOT NULL,
					task_context JSONB,
					processed BOOLEAN DEFAULT FALSE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_events_processed ON events(processed);
				CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at);
				CREATE INDEX IF NOT EXISTS idx_events_channel ON events((data->>'channel_id'));
				CREATE INDEX IF NOT EXISTS idx_events_data_gin ON events USING GIN(data);
			`,
		},
		{
			Version:     "002",
			Description: "Create wellness_content table",
			SQL: `
				CREATE TABLE IF NOT EXISTS wellness_content (
					id BIGSERIAL PRIMARY KEY,
					content TEXT NOT NULL,
					content_type TEXT NOT NULL,
					channel_id BIGINT NOT NULL,
					posted BOOLEAN DEFAULT FALSE,
					posted_at TIMESTAMP WITH TIME ZONE,
					reasoning TEXT,
					confidence DOUBLE PRECISION DEFAULT 0,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_wellness_posted ON wellness_content(posted);
				CREATE INDEX IF NOT EXISTS idx_wellness_channel ON wellness_content(channel_id);
				CREATE INDEX IF NOT EXISTS idx_wellness_created_at ON wellness_content(created_at);
			`,
		},
		{
			Version:     "003",
			Description: "Create migrations table",
			SQL: `
				CREATE TABLE IF NOT EXISTS migrations (
					id SERIAL PRIMARY KEY,
					version TEXT NOT NULL UNIQUE,
					description TEXT NOT NULL,
					applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);
			`,
		},
	}
}
