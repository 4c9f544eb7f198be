package model

import "time"

// Response is the standard API response envelope.
type Response struct {
	Status    string    `json:"status"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Error     *APIError `json:"error"`
}

// SystemStatus combines hardware availability with the queue snapshot,
// served by the combined system resources endpoint.
type SystemStatus struct {
	Resources Summary     `json:"resources"`
	Queue     QueueStatus `json:"queue"`
}
