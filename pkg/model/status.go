package model

import "time"

// TaskInfo is the external view of one pending or running task. The queue
// owns the underlying task for its whole lifetime; TaskInfo is a copy.
type TaskInfo struct {
	TaskID            string    `json:"task_id"`
	TaskType          JobKind   `json:"task_type"`
	Priority          int       `json:"priority,omitempty"`
	QueuedAt          time.Time `json:"queued_at"`
	EstimatedCPUCores float64   `json:"estimated_cpu_cores"`
	EstimatedRAMGB    float64   `json:"estimated_ram_gb"`
	QueuePosition     int       `json:"queue_position,omitempty"`
	Description       string    `json:"description"`
	Owner             string    `json:"owner,omitempty"`
}

// QueueStatus is a consistent snapshot of the queue: pending tasks in
// promotion order (1-indexed positions) and the running set.
type QueueStatus struct {
	QueuedCount  int        `json:"queued_count"`
	RunningCount int        `json:"running_count"`
	QueuedTasks  []TaskInfo `json:"queued_tasks"`
	RunningTasks []TaskInfo `json:"running_tasks"`
}
