package http

import (
	"fmt"
	"net/http"
	"time"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if err := s.checkDatabase(); err != nil {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, healthPayload{Status: status, Timestamp: time.Now()})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.checkDatabase(); err != nil {
		http.Error(w, fmt.Sprintf("database not ready: %v", err), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
