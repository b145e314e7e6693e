package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/jangulo01/webhookd/internal/command"
	"github.com/jangulo01/webhookd/internal/query"
)

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	result, err := s.queries.Dispatch(r.Context(), &query.ListWebhookConfigsQuery{Limit: limit, Offset: offset})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateWebhookConfigCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.commands.Dispatch(r.Context(), &cmd); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cmd command.UpdateWebhookConfigCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cmd.AggregateID = mux.Vars(r)["id"]
	if err := s.commands.Dispatch(r.Context(), &cmd); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleConfig(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cmd := &command.ToggleWebhookConfigCommand{Active: body.Active}
	cmd.AggregateID = mux.Vars(r)["id"]
	if err := s.commands.Dispatch(r.Context(), cmd); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegenerateSecret(w http.ResponseWriter, r *http.Request) {
	cmd := &command.RegenerateSecretCommand{}
	cmd.AggregateID = mux.Vars(r)["id"]
	if err := s.commands.Dispatch(r.Context(), cmd); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConfigHealth(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	result, err := s.queries.Dispatch(r.Context(), &query.HealthQuery{ConfigID: id})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSendTestEvent(w http.ResponseWriter, r *http.Request) {
	cmd := &command.SendTestEventCommand{}
	cmd.AggregateID = mux.Vars(r)["id"]
	if err := s.commands.Dispatch(r.Context(), cmd); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
