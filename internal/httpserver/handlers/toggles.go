package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dmconta/portal/internal/httpserver/deps"
	"github.com/dmconta/portal/internal/logger"
	"github.com/dmconta/portal/internal/store"
	"github.com/dmconta/portal/internal/store/remote"
)

// GetToggles returns the current contents of the three collection files,
// each defaulting to an empty list when its backing file is absent.
func GetToggles(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := d.Files.Fetch(r.Context())
		if err != nil {
			d.Logger.Error("failed to read collection files",
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to read collections")
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// SaveToggles accepts a partial document and writes each present field to
// its own file. POST and PUT are registered with the same handler.
func SaveToggles(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc store.Payload
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		flags, err := d.Files.Save(r.Context(), doc)
		if err != nil {
			d.Logger.Error("failed to save collection files",
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save collections")
			return
		}

		writeJSON(w, http.StatusOK, remote.SaveResponse{
			Success: true,
			Message: "data saved",
			SavedAt: d.TimeNow(),
			Saved:   flags,
		})
	}
}
