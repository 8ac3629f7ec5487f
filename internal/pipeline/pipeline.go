// File: internal/pipeline/pipeline.go
// Package pipeline processes ingested events through an ordered chain of
// nodes, accumulating results in a shared task context.
package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/psyche-voyage/launchpad/internal/metrics"
	"github.com/psyche-voyage/launchpad/internal/models"
	"github.com/psyche-voyage/launchpad/internal/storage"
	"github.com/psyche-voyage/launchpad/pkg/utils"
)

// Node is a single step of the processing pipeline
type Node interface {
	Name() string
	Process(ctx context.Context, tc *models.TaskContext) error
}

// Completer produces structured LLM completions
type Completer interface {
	CreateStructuredCompletion(ctx context.Context, system, user string, result interface{}) (*models.TokenUsage, error)
}

// Searcher queries the knowledge base
type Searcher interface {
	Search(ctx context.Context, query, category string, limit int) ([]models.KBDocument, error)
}

// Pipeline runs events through its nodes in order
type Pipeline struct {
	nodes   []Node
	storage storage.Storage
	logger  *logrus.Logger

	metricsManager *metrics.Manager
}

// New creates a pipeline with the given node chain
func New(store storage.Storage, nodes ...Node) *Pipeline {
	return &Pipeline{
		nodes:   nodes,
		storage: store,
		logger:  utils.GetLogger(),
	}
}

// SetMetricsManager attaches a metrics manager for node timing
func (p *Pipeline) SetMetricsManager(m *metrics.Manager) {
	p.metricsManager = m
}

// Run processes one event through the node chain. Node results and any
// failure are persisted in the event's task context, and the event is
// marked processed regardless of outcome so it is never retried.
func (p *Pipeline) Run(ctx context.Context, event *models.Event) error {
	tc := models.NewTaskContext(event)

	var runErr error
	for _, node := range p.nodes {
		start := time.Now()
		err := node.Process(ctx, tc)
		elapsed := time.Since(start)

		if p.metricsManager != nil {
			p.metricsManager.GetPrometheusMetrics().RecordNodeDuration(node.Name(), elapsed)
		}

		if err != nil {
			p.logger.WithFields(logrus.Fields{
				"event_id": event.ID,
				"node":     node.Name(),
				"error":    err.Error(),
			}).Error("Pipeline node failed")

			result, _ := tc.Result(node.Name())
			result.Error = err.Error()
			tc.SetResult(node.Name(), result)
			runErr = err
			break
		}

		p.logger.WithFields(logrus.Fields{
			"event_id": event.ID,
			"node":     node.Name(),
			"duration": elapsed.String(),
		}).Debug("Pipeline node completed")
	}

	if p.metricsManager != nil {
		status := "success"
		if runErr != nil {
			status = "error"
		}
		p.metricsManager.GetPrometheusMetrics().RecordEventProcessed(string(intentOf(tc)), status)
	}

	if err := p.persist(ctx, event.ID, tc); err != nil {
		return err
	}
	return runErr
}

// persist stores the accumulated task context and marks the event done
func (p *Pipeline) persist(ctx context.Context, eventID string, tc *models.TaskContext) error {
	contextMap, err := tc.ToMap()
	if err != nil {
		return utils.NewAppError(utils.ErrCodeProcessing, "Failed to serialize task context", err.Error())
	}
	// The event reference is already stored on the row itself
	delete(contextMap, "event")

	if err := p.storage.SetTaskContext(ctx, eventID, contextMap); err != nil {
		return err
	}
	return p.storage.MarkProcessed(ctx, eventID)
}

// intentOf extracts the classified intent from the task context, if any
func intentOf(tc *models.TaskContext) models.Intent {
	result, ok := tc.Result(NodeAnalyze)
	if !ok {
		return ""
	}
	analysis, ok := result.ResponseModel.(*models.Analysis)
	if !ok {
		return ""
	}
	return analysis.Intent
}
