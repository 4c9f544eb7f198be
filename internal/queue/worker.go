package queue

import (
	"context"
	"log/slog"
	"time"
)

// WorkerConfig holds worker loop configuration.
type WorkerConfig struct {
	PollInterval time.Duration
}

// DefaultWorkerConfig returns sensible defaults.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{PollInterval: 5 * time.Second}
}

// Worker is the periodic driver that promotes pending tasks to running
// when resources allow. It attempts at most one promotion per tick, which
// bounds the rate of fan-out events; the promotion latency of up to one
// interval is a deliberate trade against the complexity of a
// resource-change notification mechanism.
type Worker struct {
	queue  *TaskQueue
	config WorkerConfig
	logger *slog.Logger
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWorker creates a worker loop over the given queue.
func NewWorker(q *TaskQueue, cfg WorkerConfig, logger *slog.Logger) *Worker {
	return &Worker{
		queue:  q,
		config: cfg,
		logger: logger.With("component", "queue_worker"),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins the promotion loop. Blocks until ctx is cancelled or Stop
// is called.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("queue worker started", "poll_interval", w.config.PollInterval)
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("queue worker stopping (context cancelled)")
			close(w.doneCh)
			return ctx.Err()
		case <-w.stopCh:
			w.logger.Info("queue worker stopping (stop called)")
			close(w.doneCh)
			return nil
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Stop gracefully shuts down the worker and waits for the current tick to
// finish.
func (w *Worker) Stop() error {
	close(w.stopCh)
	<-w.doneCh
	return nil
}

// Tick runs a single promotion attempt. If the queue is non-empty but the
// head was not admitted, the head simply waits for the next tick.
func (w *Worker) Tick(ctx context.Context) {
	st := w.queue.Status("")
	if st.QueuedCount == 0 {
		return
	}

	if id, ok := w.queue.TryExecuteNext(ctx); ok {
		w.logger.Info("promoted task from queue", "task_id", id,
			"queued", st.QueuedCount-1, "running", st.RunningCount+1)
	} else {
		w.logger.Debug("tasks queued but resources insufficient",
			"queued", st.QueuedCount, "running", st.RunningCount)
	}
}
