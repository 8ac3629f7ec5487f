// File: internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/psyche-voyage/launchpad/internal/config"
	"github.com/psyche-voyage/launchpad/internal/metrics"
	"github.com/psyche-voyage/launchpad/internal/pipeline"
	"github.com/psyche-voyage/launchpad/internal/storage"
	"github.com/psyche-voyage/launchpad/internal/vectorstore"
	"github.com/psyche-voyage/launchpad/internal/wellness"
	"github.com/psyche-voyage/launchpad/pkg/utils"
)

// HTTPServer exposes the event ingestion and read APIs
type HTTPServer struct {
	config         *config.ServerConfig
	server         *http.Server
	router         *mux.Router
	storage        storage.Storage
	dispatcher     *pipeline.Dispatcher
	wellness       *wellness.Manager
	knowledge      *vectorstore.Store
	metricsManager *metrics.Manager
	logger         *logrus.Logger
	version        string
}

// NewHTTPServer creates a new HTTP server
func NewHTTPServer(
	cfg *config.ServerConfig,
	store storage.Storage,
	dispatcher *pipeline.Dispatcher,
	wellnessManager *wellness.Manager,
	knowledge *vectorstore.Store,
	metricsManager *metrics.Manager,
	version string,
) *HTTPServer {
	server := &HTTPServer{
		config:         cfg,
		storage:        store,
		dispatcher:     dispatcher,
		wellness:       wellnessManager,
		knowledge:      knowledge,
		metricsManager: metricsManager,
		logger:         utils.GetLogger(),
		version:        version,
	}

	server.setupRouter()

	server.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server
}

// Router returns the configured router, mainly for tests
func (s *HTTPServer) Router() http.Handler {
	return s.router
}

// setupRouter sets up the HTTP routes
func (s *HTTPServer) setupRouter() {
	s.router = mux.NewRouter()

	// Middleware
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.corsMiddleware)
	if s.metricsManager != nil {
		s.router.Use(s.metricsMiddleware)
	}

	// API routes
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/events", s.ingestEventHandler).Methods("POST")
	api.HandleFunc("/events", s.listEventsHandler).Methods("GET")
	api.HandleFunc("/events/{id}", s.getEventHandler).Methods("GET")
	api.HandleFunc("/events/{id}", s.deleteEventHandler).Methods("DELETE")

	api.HandleFunc("/wellness", s.listWellnessHandler).Methods("GET")
	api.HandleFunc("/wellness/post", s.postWellnessHandler).Methods("POST")

	if s.config.EnableHealth {
		api.HandleFunc("/health", s.healthHandler).Methods("GET")
		api.HandleFunc("/health/detailed", s.detailedHealthHandler).Methods("GET")
	}

	if s.config.EnableMetrics {
		s.router.Handle("/metrics", promhttp.Handler())
		api.HandleFunc("/stats", s.statsHandler).Methods("GET")
	}
}

// Start starts the HTTP server
func (s *HTTPServer) Start() error {
	s.logger.WithFields(logrus.Fields{
		"address":         s.server.Addr,
		"metrics_enabled": s.config.EnableMetrics,
	}).Info("Starting HTTP server")

	errChan := make(chan error, 1)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithField("error", err.Error()).Error("HTTP server error")
			errChan <- err
		}
	}()

	// Surface immediate binding errors
	select {
	case err := <-errChan:
		return fmt.Errorf("failed to start HTTP server: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Stop stops the HTTP server
func (s *HTTPServer) Stop() error {
	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		s.logger.WithFields(logrus.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"duration":  time.Since(start).String(),
			"remote_ip": r.RemoteAddr,
		}).Info("HTTP request")
	})
}

// corsMiddleware handles CORS
func (s *HTTPServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response
func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithField("error", err.Error()).Error("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string, err error) {
	errorResponse := map[string]interface{}{
		"error":     message,
		"status":    status,
		"timestamp": time.Now().UTC(),
	}

	if err != nil {
		errorResponse["details"] = err.Error()
		s.logger.WithFields(logrus.Fields{
			"status":  status,
			"message": message,
			"error":   err.Error(),
		}).Error("HTTP error")
	}

	s.writeJSON(w, status, errorResponse)
}
