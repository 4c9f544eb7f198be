package server

import (
	"net/http"

	"github.com/me/quantsched/pkg/model"
)

// handleSystemResources serves the combined hardware + queue view.
// GET /api/v1/system/resources
func (s *Server) handleSystemResources(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	summary, err := s.monitor.Summary(r.Context())
	if err != nil {
		respondError(w, reqID, http.StatusServiceUnavailable, model.NewInternalError("resource sampling failed: "+err.Error()))
		return
	}

	respondOK(w, reqID, model.SystemStatus{
		Resources: summary,
		Queue:     s.queue.Status(r.URL.Query().Get("owner")),
	})
}

// handleHardware serves hardware availability only, without queue data.
// GET /api/v1/system/hardware
func (s *Server) handleHardware(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	summary, err := s.monitor.Summary(r.Context())
	if err != nil {
		respondError(w, reqID, http.StatusServiceUnavailable, model.NewInternalError("resource sampling failed: "+err.Error()))
		return
	}
	respondOK(w, reqID, summary)
}

// handleQueueStatus serves the queue snapshot, optionally filtered by owner.
// GET /api/v1/system/queue?owner=…
func (s *Server) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, s.queue.Status(r.URL.Query().Get("owner")))
}
