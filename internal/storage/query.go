// File: internal/storage/query.go
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/psyche-voyage/launchpad/internal/models"
	"github.com/psyche-voyage/launchpad/pkg/utils"
)

type dialect int

const (
	sqliteDialect dialect = iota
	postgresDialect
)

// placeholder returns the parameter marker for the dialect at position n
func (d dialect) placeholder(n int) string {
	if d == postgresDialect {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// channelExpr returns the expression extracting channel_id from the payload
func (d dialect) channelExpr() string {
	if d == postgresDialect {
		return "data->>'channel_id'"
	}
	return "json_extract(data, '$.channel_id')"
}

// buildEventFilter builds a WHERE clause and arguments for an event filter
func buildEventFilter(filter models.EventFilter, d dialect) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	next := func() string { return d.placeholder(len(args)) }

	if filter.Processed != nil {
		args = append(args, *filter.Processed)
		conditions = append(conditions, "processed = "+next())
	}
	if filter.ChannelID != nil {
		if d == postgresDialect {
			// JSONB text extraction compares as text
			args = append(args, fmt.Sprintf("%d", *filter.ChannelID))
		} else {
			args = append(args, *filter.ChannelID)
		}
		conditions = append(conditions, d.channelExpr()+" = "+next())
	}
	if filter.FromTime != nil {
		args = append(args, *filter.FromTime)
		conditions = append(conditions, "created_at >= "+next())
	}
	if filter.ToTime != nil {
		args = append(args, *filter.ToTime)
		conditions = append(conditions, "created_at <= "+next())
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanEvent scans a single event row
func scanEvent(row rowScanner) (*models.Event, error) {
	var event models.Event
	var dataJSON string
	var contextJSON sql.NullString

	err := row.Scan(&event.ID, &dataJSON, &contextJSON, &event.Processed,
		&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return nil, err
	}

	// UseNumber keeps snowflake IDs intact; they overflow float64
	dec := json.NewDecoder(strings.NewReader(dataJSON))
	dec.UseNumber()
	if err := dec.Decode(&event.Data); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to unmarshal event data", err.Error())
	}
	if contextJSON.Valid && contextJSON.String != "" {
		if err := json.Unmarshal([]byte(contextJSON.String), &event.TaskContext); err != nil {
			return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to unmarshal task context", err.Error())
		}
	}
	return &event, nil
}

// scanEvents scans all event rows
func scanEvents(rows *sql.Rows) ([]*models.Event, error) {
	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to scan event", err.Error())
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to iterate events", err.Error())
	}
	return events, nil
}

// scanWellnessContent scans all wellness content rows
func scanWellnessContent(rows *sql.Rows) ([]*models.WellnessContent, error) {
	var contents []*models.WellnessContent
	for rows.Next() {
		var c models.WellnessContent
		var contentType string
		var postedAt sql.NullTime
		var reasoning sql.NullString

		err := rows.Scan(&c.ID, &c.Content, &contentType, &c.ChannelID,
			&c.Posted, &postedAt, &reasoning, &c.Confidence, &c.CreatedAt)
		if err != nil {
			return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to scan wellness content", err.Error())
		}

		c.ContentType = models.ContentType(contentType)
		if postedAt.Valid {
			c.PostedAt = &postedAt.Time
		}
		if reasoning.Valid {
			c.Reasoning = reasoning.String
		}
		contents = append(contents, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to iterate wellness content", err.Error())
	}
	return contents, nil
}

// reverseEvents reverses the slice in place
func reverseEvents(events []*models.Event) {
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
}
