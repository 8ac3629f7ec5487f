// File: internal/pipeline/dispatcher.go
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/psyche-voyage/launchpad/internal/metrics"
	"github.com/psyche-voyage/launchpad/internal/models"
	"github.com/psyche-voyage/launchpad/pkg/utils"
)

// ErrQueueFull is returned when the dispatch queue cannot accept more events
var ErrQueueFull = utils.NewAppError(utils.ErrCodeProcessing, "Pipeline queue is full")

// Dispatcher fans events out to a pool of pipeline workers
type Dispatcher struct {
	pipeline *Pipeline
	queue    chan *models.Event
	workers  int
	timeout  time.Duration
	logger   *logrus.Logger

	metricsManager *metrics.Manager

	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
}

// NewDispatcher creates a dispatcher with the given worker pool size and
// queue capacity
func NewDispatcher(p *Pipeline, workers, queueSize int, timeout time.Duration) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Dispatcher{
		pipeline: p,
		queue:    make(chan *models.Event, queueSize),
		workers:  workers,
		timeout:  timeout,
		logger:   utils.GetLogger(),
	}
}

// SetMetricsManager attaches a metrics manager for queue depth tracking
func (d *Dispatcher) SetMetricsManager(m *metrics.Manager) {
	d.metricsManager = m
}

// Start launches the worker pool
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return utils.NewAppError(utils.ErrCodeInternal, "Dispatcher already started")
	}

	workerCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.started = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(workerCtx, i)
	}

	d.logger.WithField("workers", d.workers).Info("Pipeline dispatcher started")
	return nil
}

// Stop drains outstanding work and shuts down the workers
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return
	}
	d.started = false
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	if d.cancel != nil {
		d.cancel()
	}
	d.logger.Info("Pipeline dispatcher stopped")
}

// Enqueue submits an event for processing without blocking. The lock is
// held across the send so Stop cannot close the queue mid-send.
func (d *Dispatcher) Enqueue(event *models.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return utils.NewAppError(utils.ErrCodeInternal, "Dispatcher not started")
	}

	select {
	case d.queue <- event:
		if d.metricsManager != nil {
			d.metricsManager.GetPrometheusMetrics().UpdateQueueDepth(len(d.queue))
		}
		return nil
	default:
		return ErrQueueFull
	}
}

// QueueDepth returns the current number of queued events
func (d *Dispatcher) QueueDepth() int {
	return len(d.queue)
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()

	for event := range d.queue {
		if d.metricsManager != nil {
			d.metricsManager.GetPrometheusMetrics().UpdateQueueDepth(len(d.queue))
		}
		d.process(ctx, id, event)
	}
}

// process runs one event with a timeout and panic recovery so a bad
// event cannot take down the worker
func (d *Dispatcher) process(ctx context.Context, workerID int, event *models.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.WithFields(logrus.Fields{
				"worker":   workerID,
				"event_id": event.ID,
				"panic":    r,
			}).Error("Pipeline worker recovered from panic")
		}
	}()

	runCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := d.pipeline.Run(runCtx, event); err != nil {
		d.logger.WithFields(logrus.Fields{
			"worker":   workerID,
			"event_id": event.ID,
			"error":    err.Error(),
		}).Warn("Event processing finished with error")
	}
}
