package server

import "net/http"

type endpointInfo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

type discoveryResponse struct {
	Name      string         `json:"name"`
	Version   string         `json:"version"`
	Endpoints []endpointInfo `json:"endpoints"`
}

// handleDiscovery lists the API surface.
// GET /api/v1/
func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:    "QuantSched API",
		Version: "0.1.0",
		Endpoints: []endpointInfo{
			{"GET", "/api/v1/health", "Server health"},
			{"GET", "/api/v1/system/resources", "Combined hardware availability and queue status"},
			{"GET", "/api/v1/system/hardware", "Hardware availability only"},
			{"GET", "/api/v1/system/queue", "Task queue status (optional ?owner= filter)"},
			{"GET", "/api/v1/sse/events", "Server-Sent Events stream of scheduler events"},
		},
	})
}
