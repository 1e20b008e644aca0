package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmconta/portal/internal/domain"
	"github.com/dmconta/portal/internal/httpserver/deps"
	"github.com/dmconta/portal/internal/logger"
	"github.com/dmconta/portal/internal/portal"
)

type createServiceRequest struct {
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Category     string        `json:"category"`
	Impact       domain.Impact `json:"impact"`
	Dependencies []string      `json:"dependencies"`
	Enabled      bool          `json:"enabled"`
}

// CreateService creates a feature flag. The id is a slug of the name,
// assigned here once and never changed.
func CreateService(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createServiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		svc := domain.Service{
			ID:           domain.Slugify(req.Name),
			Name:         req.Name,
			Description:  req.Description,
			Category:     req.Category,
			Impact:       req.Impact,
			Dependencies: req.Dependencies,
			Enabled:      req.Enabled,
			LastModified: d.TimeNow(),
		}

		if err := d.Coordinator.Dispatch(portal.AddService{Service: svc}); err != nil {
			if errors.Is(err, domain.ErrServiceExists) {
				writeError(w, http.StatusConflict, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to create service")
			return
		}

		d.Logger.Info("service created",
			logger.String("service_id", svc.ID))
		writeJSON(w, http.StatusCreated, svc)
	}
}

// ToggleService flips the enabled flag of the service in the path.
func ToggleService(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := d.Coordinator.Dispatch(portal.ToggleService{ID: id}); err != nil {
			if errors.Is(err, domain.ErrServiceNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to toggle service")
			return
		}

		for _, svc := range d.Coordinator.Snapshot().Services {
			if svc.ID == id {
				writeJSON(w, http.StatusOK, svc)
				return
			}
		}
		// Deleted between dispatch and snapshot; report the toggle anyway.
		w.WriteHeader(http.StatusOK)
	}
}

// DeleteService removes the service in the path.
func DeleteService(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := d.Coordinator.Dispatch(portal.DeleteService{ID: id}); err != nil {
			if errors.Is(err, domain.ErrServiceNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to delete service")
			return
		}

		d.Logger.Info("service deleted",
			logger.String("service_id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
