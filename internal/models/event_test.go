package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	event := NewEvent("evt-1", map[string]interface{}{"content": "hello"})

	assert.Equal(t, "evt-1", event.ID)
	assert.False(t, event.Processed)
	assert.False(t, event.CreatedAt.IsZero())
	require.NoError(t, event.Validate())
}

func TestEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   *Event
		wantErr bool
	}{
		{
			name:    "valid event",
			event:   NewEvent("evt-1", map[string]interface{}{"content": "hi"}),
			wantErr: false,
		},
		{
			name:    "missing ID",
			event:   &Event{Data: map[string]interface{}{"content": "hi"}},
			wantErr: true,
		},
		{
			name:    "missing data",
			event:   &Event{ID: "evt-1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMessagePayload(t *testing.T) {
	valid := map[string]interface{}{
		"content":    "hello",
		"channel_id": json.Number("1290148492847243429"),
	}
	assert.NoError(t, ValidateMessagePayload(valid))

	assert.Error(t, ValidateMessagePayload(map[string]interface{}{"foo": "bar"}))
	assert.Error(t, ValidateMessagePayload(map[string]interface{}{"content": "hello"}))
	assert.Error(t, ValidateMessagePayload(map[string]interface{}{"channel_id": int64(100)}))
	assert.Error(t, ValidateMessagePayload(map[string]interface{}{
		"content":    "",
		"channel_id": int64(100),
	}))
}

func TestEventDataAccessors(t *testing.T) {
	event := NewEvent("evt-1", map[string]interface{}{
		"content":    "hello",
		"channel_id": float64(1290148492847243429), // as decoded from JSON
		"exact_id":   int64(42),
		"string_id":  "99",
	})

	assert.Equal(t, "hello", event.DataString("content"))
	assert.Equal(t, "", event.DataString("missing"))

	id, ok := event.DataInt64("channel_id")
	require.True(t, ok)
	assert.Equal(t, int64(1290148492847243429), id)

	id, ok = event.DataInt64("exact_id")
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	id, ok = event.DataInt64("string_id")
	require.True(t, ok)
	assert.Equal(t, int64(99), id)

	_, ok = event.DataInt64("content")
	assert.False(t, ok)
	_, ok = event.DataInt64("missing")
	assert.False(t, ok)
}

func TestTaskContextResults(t *testing.T) {
	event := NewEvent("evt-1", map[string]interface{}{"content": "hi"})
	tc := NewTaskContext(event)

	_, ok := tc.Result("AnalyzeMessage")
	assert.False(t, ok)

	tc.SetResult("AnalyzeMessage", NodeResult{
		ResponseModel: &Analysis{Intent: IntentMindfulness, Confidence: 0.9},
		Usage:         &TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	})

	result, ok := tc.Result("AnalyzeMessage")
	require.True(t, ok)
	analysis, ok := result.ResponseModel.(*Analysis)
	require.True(t, ok)
	assert.Equal(t, IntentMindfulness, analysis.Intent)
	assert.Equal(t, 15, result.Usage.TotalTokens)
}

func TestTaskContextToMap(t *testing.T) {
	event := NewEvent("evt-1", map[string]interface{}{"content": "hi"})
	tc := NewTaskContext(event)
	tc.SetResult("AnalyzeMessage", NodeResult{
		ResponseModel: &Analysis{Intent: IntentIgnore, Reasoning: "greeting", Confidence: 1.0},
	})

	m, err := tc.ToMap()
	require.NoError(t, err)

	nodes, ok := m["nodes"].(map[string]interface{})
	require.True(t, ok)
	analyze, ok := nodes["AnalyzeMessage"].(map[string]interface{})
	require.True(t, ok)
	model, ok := analyze["response_model"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ignore", model["intent"])
}

func TestIntentValid(t *testing.T) {
	for _, intent := range Intents {
		assert.True(t, intent.Valid())
	}
	assert.False(t, Intent("nonsense").Valid())
	assert.False(t, Intent("").Valid())
}
