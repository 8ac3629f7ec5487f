// File: internal/models/event.go
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event represents an ingested event with its raw payload and the
// accumulated processing state
type Event struct {
	ID          string                 `json:"id" db:"id"`
	Data        map[string]interface{} `json:"data" db:"data"`
	TaskContext map[string]interface{} `json:"task_context,omitempty" db:"task_context"`
	Processed   bool                   `json:"processed" db:"processed"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at" db:"updated_at"`
}

// NewEvent creates an event wrapping the given payload
func NewEvent(id string, data map[string]interface{}) *Event {
	now := time.Now().UTC()
	return &Event{
		ID:        id,
		Data:      data,
		Processed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DataString extracts a string field from the event payload
func (e *Event) DataString(key string) string {
	if v, ok := e.Data[key].(string); ok {
		return v
	}
	return ""
}

// DataInt64 extracts an integer field from the event payload. JSON
// round-tripping turns integers into float64, so both forms are handled.
func (e *Event) DataInt64(key string) (int64, bool) {
	switch v := e.Data[key].(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case string:
		var n int64
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n, true
		}
	}
	return 0, false
}

// ValidateMessagePayload checks that an ingested payload carries the
// fields the pipeline needs to process a message
func ValidateMessagePayload(data map[string]interface{}) error {
	e := Event{Data: data}
	if e.DataString("content") == "" {
		return fmt.Errorf("content is required")
	}
	if _, ok := e.DataInt64("channel_id"); !ok {
		return fmt.Errorf("channel_id is required")
	}
	return nil
}

// Validate validates the event structure
func (e *Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event ID is required")
	}
	if len(e.Data) == 0 {
		return fmt.Errorf("event data is required")
	}
	return nil
}

// EventFilter defines criteria for querying stored events
type EventFilter struct {
	Processed *bool      `json:"processed,omitempty"`
	ChannelID *int64     `json:"channel_id,omitempty"`
	FromTime  *time.Time `json:"from_time,omitempty"`
	ToTime    *time.Time `json:"to_time,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
}

// TaskContext carries the shared state threaded through pipeline nodes.
// Each node records its result under Nodes keyed by node name.
type TaskContext struct {
	Event    *Event                 `json:"event"`
	Nodes    map[string]NodeResult  `json:"nodes"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NodeResult is the stored output of a single pipeline node
type NodeResult struct {
	ResponseModel interface{} `json:"response_model,omitempty"`
	Usage         *TokenUsage `json:"usage,omitempty"`
	Error         string      `json:"error,omitempty"`
}

// TokenUsage records model token consumption for a node
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NewTaskContext creates a task context for the given event
func NewTaskContext(event *Event) *TaskContext {
	return &TaskContext{
		Event:    event,
		Nodes:    make(map[string]NodeResult),
		Metadata: make(map[string]interface{}),
	}
}

// SetResult records a node result under the node's name
func (tc *TaskContext) SetResult(node string, result NodeResult) {
	tc.Nodes[node] = result
}

// Result returns the stored result for a node name
func (tc *TaskContext) Result(node string) (NodeResult, bool) {
	r, ok := tc.Nodes[node]
	return r, ok
}

// ToMap flattens the task context into a JSON-serializable map for storage
func (tc *TaskContext) ToMap() (map[string]interface{}, error) {
	raw, err := json.Marshal(tc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize task context: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to deserialize task context: %w", err)
	}
	return m, nil
}
