package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psyche-voyage/launchpad/internal/config"
	"github.com/psyche-voyage/launchpad/internal/models"
	"github.com/psyche-voyage/launchpad/internal/pipeline"
	"github.com/psyche-voyage/launchpad/internal/storage"
)

type testServer struct {
	server  *HTTPServer
	storage storage.Storage
}

// newTestServer wires a server around SQLite storage and a dispatcher
// running an empty pipeline, which just persists and marks events done.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := storage.NewSQLiteStorage(&storage.StorageConfig{
		Type:             "sqlite",
		ConnectionString: filepath.Join(t.TempDir(), "server.db"),
		MaxConnections:   4,
		MaxIdleTime:      time.Minute,
	})
	require.NoError(t, store.Connect())
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { store.Close() })

	dispatcher := pipeline.NewDispatcher(pipeline.New(store), 1, 16, 5*time.Second)
	require.NoError(t, dispatcher.Start(context.Background()))
	t.Cleanup(dispatcher.Stop)

	srv := NewHTTPServer(&config.ServerConfig{
		Port:          8080,
		Host:          "127.0.0.1",
		ReadTimeout:   10 * time.Second,
		WriteTimeout:  30 * time.Second,
		EnableMetrics: true,
		EnableHealth:  true,
	}, store, dispatcher, nil, nil, nil, "test")

	return &testServer{server: srv, storage: store}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestIngestEvent(t *testing.T) {
	ts := newTestServer(t)

	recorder := ts.do(t, http.MethodPost, "/api/v1/events", map[string]interface{}{
		"channel_id": 100,
		"content":    "hello",
		"author":     map[string]interface{}{"username": "alice", "bot": false},
	})
	require.Equal(t, http.StatusAccepted, recorder.Code)

	body := decodeBody(t, recorder)
	eventID, ok := body["event_id"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, eventID)

	event, err := ts.storage.GetEvent(context.Background(), eventID)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "hello", event.Data["content"])
}

func TestIngestEventKeepsSnowflakePrecision(t *testing.T) {
	ts := newTestServer(t)

	// Raw body with a channel_id above 2^53, as the gateway sends it
	raw := []byte(`{"channel_id": 1290148492847243429, "content": "hi",` +
		` "author": {"username": "alice", "bot": false}}`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(recorder, req)
	require.Equal(t, http.StatusAccepted, recorder.Code)

	body := decodeBody(t, recorder)
	eventID := body["event_id"].(string)

	event, err := ts.storage.GetEvent(context.Background(), eventID)
	require.NoError(t, err)
	require.NotNil(t, event)

	channelID, ok := event.DataInt64("channel_id")
	require.True(t, ok)
	assert.Equal(t, int64(1290148492847243429), channelID)
}

func TestIngestEventMissingFields(t *testing.T) {
	ts := newTestServer(t)

	for _, payload := range []map[string]interface{}{
		{"foo": "bar"},
		{"content": "hello"},
		{"channel_id": 100},
	} {
		recorder := ts.do(t, http.MethodPost, "/api/v1/events", payload)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	}

	events, err := ts.storage.GetEvents(context.Background(), models.EventFilter{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestIngestEventInvalidBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader([]byte("not json")))
	recorder := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestIngestEventEmptyBody(t *testing.T) {
	ts := newTestServer(t)

	recorder := ts.do(t, http.MethodPost, "/api/v1/events", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestListEvents(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	for _, id := range []string{"evt-1", "evt-2", "evt-3"} {
		event := models.NewEvent(id, map[string]interface{}{"content": id})
		require.NoError(t, ts.storage.SaveEvent(ctx, event))
	}
	require.NoError(t, ts.storage.MarkProcessed(ctx, "evt-1"))

	recorder := ts.do(t, http.MethodGet, "/api/v1/events", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, float64(3), body["total"])

	recorder = ts.do(t, http.MethodGet, "/api/v1/events?processed=true", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body = decodeBody(t, recorder)
	assert.Equal(t, float64(1), body["total"])

	// A page limit caps the returned events but not the matched total
	recorder = ts.do(t, http.MethodGet, "/api/v1/events?limit=2", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body = decodeBody(t, recorder)
	assert.Equal(t, float64(3), body["total"])
	assert.Len(t, body["events"], 2)
}

func TestGetEvent(t *testing.T) {
	ts := newTestServer(t)

	event := models.NewEvent("evt-1", map[string]interface{}{"content": "hi"})
	require.NoError(t, ts.storage.SaveEvent(context.Background(), event))

	recorder := ts.do(t, http.MethodGet, "/api/v1/events/evt-1", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "evt-1", body["id"])

	recorder = ts.do(t, http.MethodGet, "/api/v1/events/missing", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestDeleteEvent(t *testing.T) {
	ts := newTestServer(t)

	event := models.NewEvent("evt-1", map[string]interface{}{"content": "hi"})
	require.NoError(t, ts.storage.SaveEvent(context.Background(), event))

	recorder := ts.do(t, http.MethodDelete, "/api/v1/events/evt-1", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	gone, err := ts.storage.GetEvent(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	recorder = ts.do(t, http.MethodDelete, "/api/v1/events/evt-1", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestListWellness(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	content := &models.WellnessContent{
		Content:     "Take three slow breaths.",
		ContentType: models.ContentBreathworkTechnique,
		ChannelID:   777,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, ts.storage.SaveWellnessContent(ctx, content))
	require.NoError(t, ts.storage.MarkContentPosted(ctx, content.ID))

	recorder := ts.do(t, http.MethodGet, "/api/v1/wellness?channel_id=777", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, float64(1), body["total"])
}

func TestPostWellnessUnavailable(t *testing.T) {
	ts := newTestServer(t)

	recorder := ts.do(t, http.MethodPost, "/api/v1/wellness/post", nil)
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	recorder := ts.do(t, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestDetailedHealth(t *testing.T) {
	ts := newTestServer(t)

	recorder := ts.do(t, http.MethodGet, "/api/v1/health/detailed", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "healthy", body["status"])

	components := body["components"].(map[string]interface{})
	assert.Equal(t, true, components["storage"])
	pipelineStats := components["pipeline"].(map[string]interface{})
	assert.Equal(t, float64(0), pipelineStats["queue_depth"])
}

func TestStats(t *testing.T) {
	ts := newTestServer(t)

	require.NoError(t, ts.storage.SaveEvent(context.Background(), models.NewEvent("evt-1", map[string]interface{}{"content": "hi"})))

	recorder := ts.do(t, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	storageStats := body["storage"].(map[string]interface{})
	assert.Equal(t, float64(1), storageStats["total_events"])
}
