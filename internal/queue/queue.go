package queue

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/me/quantsched/pkg/model"
)

// AdmissionChecker is what the queue needs from the resource monitor: the
// predictive admission answer and a summary to attach to events.
type AdmissionChecker interface {
	CanRun(ctx context.Context, kind model.JobKind) (bool, string)
	Summary(ctx context.Context) (model.Summary, error)
}

// subscriberBuffer is the per-subscriber event channel capacity. Fan-out
// never blocks: events beyond this are dropped for that subscriber only.
const subscriberBuffer = 64

// TaskQueue is the single source of truth for pending and running work.
//
// The pending collection is kept in descending priority order with FIFO
// among equal priorities. A task id lives in at most one of the pending
// collection and the running set at any instant. All structure mutations
// are serialized under one mutex, held only for the in-memory mutation,
// never across job execution or OS resource sampling.
//
// Once dispatched, a job runs to completion; there is no cancellation or
// preemption of running tasks.
type TaskQueue struct {
	monitor AdmissionChecker
	logger  *slog.Logger

	mu          sync.Mutex
	pending     []*task
	running     map[string]*task
	subscribers map[chan model.Event]struct{}
}

// New creates an empty TaskQueue backed by the given admission checker.
func New(monitor AdmissionChecker, logger *slog.Logger) *TaskQueue {
	return &TaskQueue{
		monitor:     monitor,
		logger:      logger.With("component", "task_queue"),
		running:     make(map[string]*task),
		subscribers: make(map[chan model.Event]struct{}),
	}
}

// Enqueue adds a task to the pending collection and emits task_queued with
// the resulting 1-indexed queue position. It never checks resources itself;
// admission is evaluated later, at promotion time.
func (q *TaskQueue) Enqueue(ctx context.Context, kind model.JobKind, runner Runner, opts ...Option) (string, error) {
	if runner == nil {
		return "", errors.New("enqueue: nil runner")
	}
	t, err := newTask(kind, runner, opts...)
	if err != nil {
		return "", err
	}

	q.mu.Lock()
	// Insert before the first task with strictly lower priority, keeping
	// descending order and FIFO among equal priorities.
	pos := len(q.pending)
	for i, existing := range q.pending {
		if t.priority > existing.priority {
			pos = i
			break
		}
	}
	q.pending = slices.Insert(q.pending, pos, t)
	q.mu.Unlock()

	q.logger.Info("task queued", "task_id", t.id, "task_type", t.kind, "priority", t.priority, "position", pos+1)

	q.publish(ctx, model.EventTaskQueued, model.TaskQueuedData{
		TaskID:            t.id,
		TaskType:          t.kind,
		EstimatedCPUCores: t.estimatedCPUCores,
		EstimatedRAMGB:    t.estimatedRAMGB,
		QueuePosition:     pos + 1,
		Description:       t.description,
	})

	return t.id, nil
}

// TryExecuteNext promotes the head of the pending collection if the
// admission check passes for its kind, starts its unit of work, and
// returns its id immediately without waiting for completion.
//
// If the head is not admitted it stays queued; there is no head-of-line
// skipping to a later, smaller task.
func (q *TaskQueue) TryExecuteNext(ctx context.Context) (string, bool) {
	q.mu.Lock()
	if len(q.pending) == 0 {
		q.mu.Unlock()
		return "", false
	}
	head := q.pending[0]
	q.mu.Unlock()

	// Admission samples the OS; keep the lock released while it runs.
	ok, reason := q.monitor.CanRun(ctx, head.kind)
	if !ok {
		q.logger.Debug("head of queue not admitted", "task_id", head.id, "task_type", head.kind, "reason", reason)
		return "", false
	}

	q.mu.Lock()
	// The queue may have changed while the lock was released. Promote only
	// the task the admission check was made for; otherwise wait for the
	// next attempt.
	if len(q.pending) == 0 || q.pending[0].id != head.id {
		q.mu.Unlock()
		return "", false
	}
	q.pending = q.pending[1:]
	q.running[head.id] = head
	q.mu.Unlock()

	q.logger.Info("task promoted", "task_id", head.id, "task_type", head.kind, "reason", reason)

	q.publish(ctx, model.EventTaskRunning, model.TaskRunningData{
		TaskID:            head.id,
		TaskType:          head.kind,
		EstimatedCPUCores: head.estimatedCPUCores,
		EstimatedRAMGB:    head.estimatedRAMGB,
	})

	go q.execute(head)
	return head.id, true
}

// RegisterRunning bypasses the pending collection: the caller has already
// confirmed admission, so the task goes straight into the running set and
// starts executing. This avoids a duplicate check and the extra poll
// interval the task would otherwise wait in the queue.
func (q *TaskQueue) RegisterRunning(ctx context.Context, kind model.JobKind, runner Runner, opts ...Option) (string, error) {
	if runner == nil {
		return "", errors.New("register running: nil runner")
	}
	t, err := newTask(kind, runner, opts...)
	if err != nil {
		return "", err
	}

	q.mu.Lock()
	q.running[t.id] = t
	total := len(q.running)
	q.mu.Unlock()

	q.logger.Info("registered running task", "task_id", t.id, "task_type", t.kind, "running", total)

	q.publish(ctx, model.EventTaskRunning, model.TaskRunningData{
		TaskID:            t.id,
		TaskType:          t.kind,
		EstimatedCPUCores: t.estimatedCPUCores,
		EstimatedRAMGB:    t.estimatedRAMGB,
	})

	go q.execute(t)
	return t.id, nil
}

// execute invokes the unit of work, then removes the task from the running
// set and emits exactly one task_completed event. Errors and panics from
// the runner are contained here: they are logged and reported only through
// the event's success flag.
func (q *TaskQueue) execute(t *task) {
	q.logger.Info("executing task", "task_id", t.id, "task_type", t.kind)

	success := q.runSafely(t)

	q.mu.Lock()
	delete(q.running, t.id)
	remaining := len(q.running)
	q.mu.Unlock()

	q.logger.Info("task finished", "task_id", t.id, "task_type", t.kind, "success", success, "running", remaining)

	q.publish(context.Background(), model.EventTaskCompleted, model.TaskCompletedData{
		TaskID:   t.id,
		TaskType: t.kind,
		Success:  success,
	})
}

// runSafely runs the task's Runner, converting errors and panics into a
// success flag so a failing job can never crash the queue.
func (q *TaskQueue) runSafely(t *task) (success bool) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("task panicked", "task_id", t.id, "task_type", t.kind, "panic", r)
			success = false
		}
	}()

	if err := t.runner.Run(context.Background()); err != nil {
		q.logger.Error("task failed", "task_id", t.id, "task_type", t.kind, "error", err)
		return false
	}
	return true
}

// Status returns a consistent snapshot of the queue taken under the same
// lock used for mutation. Queued entries carry their 1-indexed position.
// A non-empty owner restricts the snapshot to that owner's tasks.
func (q *TaskQueue) Status(owner string) model.QueueStatus {
	q.mu.Lock()
	defer q.mu.Unlock()

	queued := make([]model.TaskInfo, 0, len(q.pending))
	for i, t := range q.pending {
		if owner != "" && t.owner != owner {
			continue
		}
		queued = append(queued, t.info(i+1))
	}

	running := make([]model.TaskInfo, 0, len(q.running))
	for _, t := range q.running {
		if owner != "" && t.owner != owner {
			continue
		}
		running = append(running, t.info(0))
	}

	return model.QueueStatus{
		QueuedCount:  len(queued),
		RunningCount: len(running),
		QueuedTasks:  queued,
		RunningTasks: running,
	}
}

// UpdateDescription updates the progress description of a running task and
// emits task_description_update. An unknown id is a no-op, not an error:
// late updates race benignly with task completion.
func (q *TaskQueue) UpdateDescription(ctx context.Context, taskID, description string) {
	q.mu.Lock()
	t, ok := q.running[taskID]
	if !ok {
		q.mu.Unlock()
		q.logger.Debug("description update for unknown task", "task_id", taskID)
		return
	}
	t.description = description
	kind := t.kind
	q.mu.Unlock()

	q.publish(ctx, model.EventTaskDescriptionUpdate, model.TaskDescriptionUpdateData{
		TaskID:      taskID,
		TaskType:    kind,
		Description: description,
	})
}

// Subscribe registers a new event sink and returns its channel. The
// channel is buffered; when it is full, further events are dropped for
// this subscriber only.
func (q *TaskQueue) Subscribe() chan model.Event {
	ch := make(chan model.Event, subscriberBuffer)
	q.mu.Lock()
	q.subscribers[ch] = struct{}{}
	total := len(q.subscribers)
	q.mu.Unlock()
	q.logger.Debug("event subscriber added", "subscribers", total)
	return ch
}

// Unsubscribe removes an event sink. The channel is not closed; in-flight
// buffered events are simply abandoned.
func (q *TaskQueue) Unsubscribe(ch chan model.Event) {
	q.mu.Lock()
	delete(q.subscribers, ch)
	total := len(q.subscribers)
	q.mu.Unlock()
	q.logger.Debug("event subscriber removed", "subscribers", total)
}

// publish broadcasts one event, with a fresh resource summary, to all
// current subscribers. Sends are non-blocking; a full subscriber drops the
// event without affecting other subscribers or task execution.
func (q *TaskQueue) publish(ctx context.Context, typ model.EventType, data any) {
	summary, err := q.monitor.Summary(ctx)
	if err != nil {
		// Deliver the event anyway; the summary is best-effort.
		q.logger.Warn("resource summary unavailable for event", "type", typ, "error", err)
	}

	ev := model.Event{
		Type:      typ,
		Timestamp: time.Now().UTC(),
		Data:      data,
		Resources: summary,
	}

	q.mu.Lock()
	subs := make([]chan model.Event, 0, len(q.subscribers))
	for ch := range q.subscribers {
		subs = append(subs, ch)
	}
	q.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			q.logger.Warn("subscriber buffer full, dropping event", "type", typ)
		}
	}
}
