package queue

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/me/quantsched/pkg/model"
)

func testWorker(t *testing.T, q *TaskQueue, interval time.Duration) *Worker {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWorker(q, WorkerConfig{PollInterval: interval}, logger)
}

func TestTick_PromotesHead(t *testing.T) {
	q, _ := testQueue(t, true)
	w := testWorker(t, q, time.Second)
	ctx := context.Background()

	runner := newBlockingRunner()
	id, err := q.Enqueue(ctx, model.JobBacktest, runner)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	w.Tick(ctx)

	st := q.Status("")
	if st.QueuedCount != 0 || st.RunningCount != 1 {
		t.Fatalf("after tick: %d queued / %d running, want 0 / 1", st.QueuedCount, st.RunningCount)
	}
	if st.RunningTasks[0].TaskID != id {
		t.Errorf("running task = %s, want %s", st.RunningTasks[0].TaskID, id)
	}
	close(runner.release)
}

// TestTick_AtMostOnePromotion: the worker never drains more than one task
// per tick, even with several admissible tasks pending.
func TestTick_AtMostOnePromotion(t *testing.T) {
	q, _ := testQueue(t, true)
	w := testWorker(t, q, time.Second)
	ctx := context.Background()

	first := newBlockingRunner()
	second := newBlockingRunner()
	if _, err := q.Enqueue(ctx, model.JobPrediction, first); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := q.Enqueue(ctx, model.JobPrediction, second); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	w.Tick(ctx)

	st := q.Status("")
	if st.QueuedCount != 1 || st.RunningCount != 1 {
		t.Fatalf("after tick: %d queued / %d running, want 1 / 1", st.QueuedCount, st.RunningCount)
	}
	close(first.release)
	close(second.release)
}

func TestTick_RejectedHeadStaysQueued(t *testing.T) {
	q, adm := testQueue(t, false)
	w := testWorker(t, q, time.Second)
	ctx := context.Background()

	runner := newBlockingRunner()
	if _, err := q.Enqueue(ctx, model.JobModelTraining, runner, WithTaskID("task_waiting")); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	w.Tick(ctx)
	if st := q.Status(""); st.QueuedCount != 1 || st.RunningCount != 0 {
		t.Fatalf("after rejected tick: %d queued / %d running, want 1 / 0", st.QueuedCount, st.RunningCount)
	}

	// Resources free up; the next tick promotes the same head.
	adm.set(true, "headroom recovered")
	w.Tick(ctx)
	if st := q.Status(""); st.QueuedCount != 0 || st.RunningCount != 1 {
		t.Fatalf("after admitted tick: %d queued / %d running, want 0 / 1", st.QueuedCount, st.RunningCount)
	}
	close(runner.release)
}

func TestStart_PromotesUntilStopped(t *testing.T) {
	q, _ := testQueue(t, true)
	w := testWorker(t, q, 10*time.Millisecond)
	ctx := context.Background()

	runner := newBlockingRunner()
	if _, err := q.Enqueue(ctx, model.JobBacktest, runner); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	select {
	case <-runner.started:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never promoted the queued task")
	}
	close(runner.release)

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned %v, want nil after Stop", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	q, _ := testQueue(t, true)
	w := testWorker(t, q, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Start returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after context cancellation")
	}
}
