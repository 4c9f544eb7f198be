package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/me/quantsched/pkg/model"
)

// handleSSEEvents streams scheduler lifecycle events via Server-Sent Events.
// GET /api/v1/sse/events
//
// On connect the client receives an initial_state event with the current
// queue snapshot, then every queue event as it happens. When the
// connection sits idle for the heartbeat interval, a heartbeat event with
// a fresh resource summary is pushed.
func (s *Server) handleSSEEvents(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	// Set headers for SSE.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	events := s.queue.Subscribe()
	defer s.queue.Unsubscribe(events)

	// Send initial state with queue status and resources.
	if err := sendSSEEvent(w, flusher, s.snapshotEvent(r, model.EventInitialState)); err != nil {
		s.logger.Debug("sse client disconnected", "request_id", reqID, "error", err)
		return
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastSent := time.Now()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			if err := sendSSEEvent(w, flusher, ev); err != nil {
				s.logger.Debug("sse client disconnected", "request_id", reqID)
				return
			}
			lastSent = time.Now()
		case <-ticker.C:
			if time.Since(lastSent) < s.heartbeatInterval {
				continue
			}
			if err := sendSSEEvent(w, flusher, s.heartbeatEvent(r)); err != nil {
				s.logger.Debug("sse client disconnected", "request_id", reqID)
				return
			}
			lastSent = time.Now()
		}
	}
}

// snapshotEvent builds an event carrying the full queue snapshot.
func (s *Server) snapshotEvent(r *http.Request, typ model.EventType) model.Event {
	summary, err := s.monitor.Summary(r.Context())
	if err != nil {
		s.logger.Warn("resource summary unavailable for sse", "error", err)
	}
	return model.Event{
		Type:      typ,
		Timestamp: time.Now().UTC(),
		Data:      s.queue.Status(""),
		Resources: summary,
	}
}

// heartbeatEvent builds a data-less heartbeat with fresh resources.
func (s *Server) heartbeatEvent(r *http.Request) model.Event {
	summary, err := s.monitor.Summary(r.Context())
	if err != nil {
		s.logger.Warn("resource summary unavailable for heartbeat", "error", err)
	}
	return model.Event{
		Type:      model.EventHeartbeat,
		Timestamp: time.Now().UTC(),
		Resources: summary,
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, ev model.Event) error {
	jsonData, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, jsonData)
	if err != nil {
		return err
	}

	flusher.Flush()
	return nil
}
