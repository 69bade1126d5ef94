package server

import (
	"context"
	"net/http"

	"github.com/goliatone/go-formdispatch/internal/logger"
)

const healthTimestampLayout = "2006-01-02T15:04:05.000000"

type healthBody struct {
	Status    string `json:"status"`
	MongoDB   string `json:"mongodb"`
	Store     string `json:"store,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	body := healthBody{
		Status:    "healthy",
		MongoDB:   "connected",
		Store:     s.storeName,
		Timestamp: s.now().UTC().Format(healthTimestampLayout),
	}
	if err := s.store.Ping(ctx); err != nil {
		logger.Warn(r.Context(), "store ping failed", "error", err)
		body.Status = "unhealthy"
		body.MongoDB = "disconnected"
		body.Error = err.Error()
		writeJSON(w, http.StatusInternalServerError, body)
		return
	}
	writeJSON(w, http.StatusOK, body)
}
