// File: internal/server/handlers.go
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/psyche-voyage/launchpad/internal/models"
	"github.com/psyche-voyage/launchpad/internal/pipeline"
	"github.com/psyche-voyage/launchpad/pkg/utils"
)

// ingestEventHandler accepts an event payload, persists it and queues it
// for processing. The response is returned before processing happens.
func (s *HTTPServer) ingestEventHandler(w http.ResponseWriter, r *http.Request) {
	// UseNumber keeps snowflake IDs intact; they overflow float64
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	var data map[string]interface{}
	if err := decoder.Decode(&data); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(data) == 0 {
		s.writeError(w, http.StatusBadRequest, "Event data is required", nil)
		return
	}
	if err := models.ValidateMessagePayload(data); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid event payload", err)
		return
	}

	id, err := utils.GenerateID()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to generate event ID", err)
		return
	}

	event := models.NewEvent(id, data)
	if err := s.storage.SaveEvent(r.Context(), event); err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to save event", err)
		return
	}

	if err := s.dispatcher.Enqueue(event); err != nil {
		if err == pipeline.ErrQueueFull {
			s.writeError(w, http.StatusServiceUnavailable, "Event queue is full", nil)
			return
		}
		s.writeError(w, http.StatusInternalServerError, "Failed to queue event", err)
		return
	}

	if s.metricsManager != nil {
		s.metricsManager.GetPrometheusMetrics().RecordEventIngested("api")
	}

	s.writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"event_id": event.ID,
	})
}

// listEventsHandler lists stored events, newest first
func (s *HTTPServer) listEventsHandler(w http.ResponseWriter, r *http.Request) {
	filter := models.EventFilter{Limit: 50}

	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset > 0 {
			filter.Offset = offset
		}
	}
	if v := r.URL.Query().Get("processed"); v != "" {
		processed := v == "true"
		filter.Processed = &processed
	}
	if v := r.URL.Query().Get("channel_id"); v != "" {
		if channelID, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.ChannelID = &channelID
		}
	}

	events, err := s.storage.GetEvents(r.Context(), filter)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to retrieve events", err)
		return
	}

	total, err := s.storage.GetEventCount(r.Context(), filter)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to count events", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"limit":  filter.Limit,
		"offset": filter.Offset,
		"total":  total,
	})
}

// getEventHandler gets a specific event by ID
func (s *HTTPServer) getEventHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	event, err := s.storage.GetEvent(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to retrieve event", err)
		return
	}
	if event == nil {
		s.writeError(w, http.StatusNotFound, "Event not found", nil)
		return
	}

	s.writeJSON(w, http.StatusOK, event)
}

// deleteEventHandler removes an event by ID
func (s *HTTPServer) deleteEventHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	event, err := s.storage.GetEvent(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to retrieve event", err)
		return
	}
	if event == nil {
		s.writeError(w, http.StatusNotFound, "Event not found", nil)
		return
	}

	if err := s.storage.DeleteEvent(r.Context(), id); err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to delete event", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"deleted": id,
	})
}

// listWellnessHandler lists recently posted wellness content
func (s *HTTPServer) listWellnessHandler(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			limit = l
		}
	}

	channelID := int64(0)
	if v := r.URL.Query().Get("channel_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			channelID = id
		}
	}

	contents, err := s.storage.GetPostedContent(r.Context(), channelID, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to retrieve wellness content", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"content": contents,
		"total":   len(contents),
	})
}

// postWellnessHandler triggers an immediate wellness post outside the
// regular schedule
func (s *HTTPServer) postWellnessHandler(w http.ResponseWriter, r *http.Request) {
	if s.wellness == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Wellness posting is not enabled", nil)
		return
	}

	content, err := s.wellness.GenerateAndPost(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to post wellness content", err)
		return
	}

	s.writeJSON(w, http.StatusCreated, content)
}

// healthHandler returns basic health status
func (s *HTTPServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"version":   s.version,
	})
}

// detailedHealthHandler returns per-component health status
func (s *HTTPServer) detailedHealthHandler(w http.ResponseWriter, r *http.Request) {
	storageHealthy := s.storage.Ping() == nil
	status := "healthy"
	if !storageHealthy {
		status = "degraded"
	}

	components := map[string]interface{}{
		"storage": storageHealthy,
	}
	if s.knowledge != nil {
		components["knowledge_base"] = map[string]interface{}{
			"documents": s.knowledge.Count(),
		}
	}
	if s.dispatcher != nil {
		components["pipeline"] = map[string]interface{}{
			"queue_depth": s.dispatcher.QueueDepth(),
		}
	}

	if s.metricsManager != nil {
		s.metricsManager.GetPrometheusMetrics().UpdateComponentHealth("storage", storageHealthy)
	}

	code := http.StatusOK
	if !storageHealthy {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, map[string]interface{}{
		"status":     status,
		"timestamp":  time.Now().UTC(),
		"version":    s.version,
		"components": components,
	})
}

// statsHandler returns application statistics
func (s *HTTPServer) statsHandler(w http.ResponseWriter, r *http.Request) {
	storageStats, err := s.storage.GetStorageStats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to retrieve storage stats", err)
		return
	}

	stats := map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"storage":   storageStats,
	}
	if s.knowledge != nil {
		stats["knowledge_base"] = map[string]interface{}{
			"documents": s.knowledge.Count(),
		}
	}
	if s.dispatcher != nil {
		stats["pipeline"] = map[string]interface{}{
			"queue_depth": s.dispatcher.QueueDepth(),
		}
	}

	s.writeJSON(w, http.StatusOK, stats)
}
