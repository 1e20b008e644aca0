package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmconta/portal/internal/domain"
	"github.com/dmconta/portal/internal/httpserver/deps"
	"github.com/dmconta/portal/internal/portal"
)

type updateMessageRequest struct {
	Message string `json:"message"`
}

// UpdateMessage replaces the text of the message keyed by the code in the
// path. Text edits are the only message mutation.
func UpdateMessage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		var req updateMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		if err := d.Coordinator.Dispatch(portal.UpdateMessage{Code: code, Text: req.Message}); err != nil {
			if errors.Is(err, domain.ErrMessageNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to update message")
			return
		}

		for _, msg := range d.Coordinator.Snapshot().Messages {
			if msg.Code == code {
				writeJSON(w, http.StatusOK, msg)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}
