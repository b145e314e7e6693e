package http

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jangulo01/webhookd/internal/ingest"
)

const maxIngestBodyBytes = 2 << 20 // leave headroom above the 1 MiB payload cap for JSON overhead

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxIngestBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	payload, err := ingest.DecodePayload(raw)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	client := ingest.ClientInfo{Headers: make(map[string]string)}
	if override := r.URL.Query().Get("target_url"); override != "" {
		client.TargetURL = &override
	}
	for k, v := range r.Header {
		if len(v) > 0 {
			client.Headers[k] = v[0]
		}
	}

	result, err := s.ingest.Receive(r.Context(), name, payload, client)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     result.ID,
		"status": string(result.Status),
	})
}
