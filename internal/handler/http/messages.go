package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jangulo01/webhookd/internal/command"
	"github.com/jangulo01/webhookd/internal/query"
)

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	result, err := s.queries.Dispatch(r.Context(), &query.GetMessageQuery{ID: id})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	result, err := s.queries.Dispatch(r.Context(), &query.ListAttemptsQuery{MessageID: id})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	cmd := &command.CancelMessageCommand{}
	cmd.AggregateID = id
	if err := s.commands.Dispatch(r.Context(), cmd); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		TargetOverride string `json:"target_override"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	cmd := &command.RetryMessageCommand{TargetOverride: body.TargetOverride}
	cmd.AggregateID = id
	if err := s.commands.Dispatch(r.Context(), cmd); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBulkRetry(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Hours          int    `json:"hours"`
		Limit          int    `json:"limit"`
		TargetOverride string `json:"target_override"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cmd := &command.BulkRetryCommand{Hours: body.Hours, Limit: body.Limit, TargetOverride: body.TargetOverride}
	if err := s.commands.Dispatch(r.Context(), cmd); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
