// Package http exposes the admin/ingest surface over HTTP via gorilla/mux:
// health, raw event ingestion, message lookup and retry/cancel, webhook
// config CRUD, and per-config health snapshots.
package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/jangulo01/webhookd/internal/ingest"
	"github.com/jangulo01/webhookd/internal/platform/cqrs"
	"github.com/jangulo01/webhookd/internal/platform/database"
	"github.com/jangulo01/webhookd/internal/platform/logger"
)

type Server struct {
	commands *cqrs.CommandBus
	queries  *cqrs.QueryBus
	ingest   *ingest.Ingest
	db       *gorm.DB
	log      *logger.Logger
}

func NewServer(commands *cqrs.CommandBus, queries *cqrs.QueryBus, ing *ingest.Ingest, db *gorm.DB) *Server {
	return &Server{commands: commands, queries: queries, ingest: ing, db: db, log: logger.New("http")}
}

func (s *Server) checkDatabase() error {
	return database.CheckHealth(s.db)
}

// Router builds the full mux.Router for the service's external surface.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/health/live", s.handleLive).Methods(http.MethodGet)

	r.HandleFunc("/v1/webhooks/{name}/events", s.handleIngest).Methods(http.MethodPost)

	r.HandleFunc("/v1/messages/{id}", s.handleGetMessage).Methods(http.MethodGet)
	r.HandleFunc("/v1/messages/{id}/attempts", s.handleListAttempts).Methods(http.MethodGet)
	r.HandleFunc("/v1/messages/{id}/cancel", s.handleCancel).Methods(http.MethodPost)
	r.HandleFunc("/v1/messages/{id}/retry", s.handleRetry).Methods(http.MethodPost)
	r.HandleFunc("/v1/messages/bulk-retry", s.handleBulkRetry).Methods(http.MethodPost)

	r.HandleFunc("/v1/configs", s.handleListConfigs).Methods(http.MethodGet)
	r.HandleFunc("/v1/configs", s.handleCreateConfig).Methods(http.MethodPost)
	r.HandleFunc("/v1/configs/{id}", s.handleUpdateConfig).Methods(http.MethodPatch)
	r.HandleFunc("/v1/configs/{id}/toggle", s.handleToggleConfig).Methods(http.MethodPost)
	r.HandleFunc("/v1/configs/{id}/regenerate-secret", s.handleRegenerateSecret).Methods(http.MethodPost)
	r.HandleFunc("/v1/configs/{id}/health", s.handleConfigHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/configs/{id}/test", s.handleSendTestEvent).Methods(http.MethodPost)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type healthPayload struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
