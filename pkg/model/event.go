package model

import "time"

// EventType classifies a scheduler lifecycle event.
type EventType string

const (
	// Emitted by the task queue.
	EventTaskQueued            EventType = "task_queued"
	EventTaskRunning           EventType = "task_running"
	EventTaskCompleted         EventType = "task_completed"
	EventTaskDescriptionUpdate EventType = "task_description_update"

	// Emitted by the SSE transport.
	EventHeartbeat    EventType = "heartbeat"
	EventInitialState EventType = "initial_state"
)

// Event is an immutable broadcast message delivered to subscribers.
// Every event carries a fresh resource summary sampled at emit time.
// Events are fire-and-forget: the scheduler does not track consumption.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Resources Summary   `json:"resources"`
}

// TaskQueuedData is the payload of a task_queued event.
type TaskQueuedData struct {
	TaskID            string  `json:"task_id"`
	TaskType          JobKind `json:"task_type"`
	EstimatedCPUCores float64 `json:"estimated_cpu_cores"`
	EstimatedRAMGB    float64 `json:"estimated_ram_gb"`
	QueuePosition     int     `json:"queue_position"`
	Description       string  `json:"description"`
}

// TaskRunningData is the payload of a task_running event.
type TaskRunningData struct {
	TaskID            string  `json:"task_id"`
	TaskType          JobKind `json:"task_type"`
	EstimatedCPUCores float64 `json:"estimated_cpu_cores"`
	EstimatedRAMGB    float64 `json:"estimated_ram_gb"`
}

// TaskCompletedData is the payload of a task_completed event. Failure of
// the unit of work is reported only through Success; there is no separate
// failed terminal state.
type TaskCompletedData struct {
	TaskID   string  `json:"task_id"`
	TaskType JobKind `json:"task_type"`
	Success  bool    `json:"success"`
}

// TaskDescriptionUpdateData is the payload of a task_description_update event.
type TaskDescriptionUpdateData struct {
	TaskID      string  `json:"task_id"`
	TaskType    JobKind `json:"task_type"`
	Description string  `json:"description"`
}
