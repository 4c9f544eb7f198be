package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/me/quantsched/internal/resource"
	"github.com/me/quantsched/pkg/model"
)

// Runner is a unit of work submitted to the scheduler. Job adapters
// (backtest, training, prediction) implement it; the queue treats the
// work as opaque. Run is invoked exactly once, in its own goroutine.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func(ctx context.Context) error

// Run calls f(ctx).
func (f RunnerFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// task is one unit of pending or running work. It is owned exclusively by
// the TaskQueue for its entire lifetime and never escapes the queue's
// internal collections; callers only ever see TaskInfo copies.
type task struct {
	id                string
	kind              model.JobKind
	runner            Runner
	priority          int
	queuedAt          time.Time
	estimatedCPUCores float64
	estimatedRAMGB    float64
	description       string
	owner             string
}

// Option configures an enqueued or registered task.
type Option func(*task)

// WithPriority sets the task priority; higher runs sooner.
func WithPriority(p int) Option {
	return func(t *task) { t.priority = p }
}

// WithTaskID sets a caller-supplied task identifier instead of a
// generated one.
func WithTaskID(id string) Option {
	return func(t *task) { t.id = id }
}

// WithOwner tags the task with an owner for status filtering.
func WithOwner(owner string) Option {
	return func(t *task) { t.owner = owner }
}

// WithDescription sets the initial progress description.
func WithDescription(desc string) Option {
	return func(t *task) { t.description = desc }
}

// newTask builds a task, copying the kind's estimated footprint from the
// requirement table at construction time.
func newTask(kind model.JobKind, runner Runner, opts ...Option) (*task, error) {
	req, err := resource.RequirementFor(kind)
	if err != nil {
		return nil, err
	}

	t := &task{
		kind:              kind,
		runner:            runner,
		queuedAt:          time.Now().UTC(),
		estimatedCPUCores: req.CPUCores,
		estimatedRAMGB:    req.RAMGB,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.id == "" {
		t.id = "task_" + uuid.New().String()
	}
	return t, nil
}

// info returns the external copy of the task. position is the 1-indexed
// queue position, or 0 for running tasks.
func (t *task) info(position int) model.TaskInfo {
	return model.TaskInfo{
		TaskID:            t.id,
		TaskType:          t.kind,
		Priority:          t.priority,
		QueuedAt:          t.queuedAt,
		EstimatedCPUCores: t.estimatedCPUCores,
		EstimatedRAMGB:    t.estimatedRAMGB,
		QueuePosition:     position,
		Description:       t.description,
		Owner:             t.owner,
	}
}
