package handlers

import (
	"net/http"

	"github.com/dmconta/portal/internal/httpserver/deps"
)

// State returns the coordinator's current snapshot: the three collections,
// derived stats and config, plus the loading/error flags.
func State(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Coordinator.Snapshot())
	}
}
