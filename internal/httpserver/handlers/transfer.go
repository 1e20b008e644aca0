package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmconta/portal/internal/domain"
	"github.com/dmconta/portal/internal/httpserver/deps"
	"github.com/dmconta/portal/internal/logger"
	"github.com/dmconta/portal/internal/portal"
	"github.com/dmconta/portal/internal/store"
)

// exportDocument is the combined download shape. Audit logs are filtered
// before export, so a download never carries expired history.
type exportDocument struct {
	Services   []domain.Service  `json:"services"`
	Messages   []domain.Message  `json:"messages"`
	AuditLogs  []domain.AuditLog `json:"auditLogs"`
	ExportedAt time.Time         `json:"exportedAt"`
}

// Export downloads all three collections from the durable tier as one
// pretty-printed document.
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		services, _ := d.Durable.LoadServices(ctx)
		messages, _ := d.Durable.LoadMessages(ctx)
		auditLogs, _ := d.Durable.LoadAuditLogs(ctx)

		doc := exportDocument{
			Services:   services,
			Messages:   messages,
			AuditLogs:  auditLogs,
			ExportedAt: d.TimeNow(),
		}

		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to export data")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="portal-export.json"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// Import replaces the durable tier's collections with the ones present in
// the uploaded document and refreshes the coordinator state. Audit logs are
// retention-filtered on the way in. A malformed document is rejected.
func Import(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var doc store.Payload
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			writeError(w, http.StatusBadRequest, "malformed import document")
			return
		}

		if doc.Services != nil {
			if err := d.Durable.SaveServices(ctx, *doc.Services); err != nil {
				d.Logger.Error("import failed to save services", logger.Error(err))
				writeError(w, http.StatusInternalServerError, "failed to import services")
				return
			}
			_ = d.Coordinator.Dispatch(portal.SetServices{Services: *doc.Services})
		}
		if doc.Messages != nil {
			if err := d.Durable.SaveMessages(ctx, *doc.Messages); err != nil {
				d.Logger.Error("import failed to save messages", logger.Error(err))
				writeError(w, http.StatusInternalServerError, "failed to import messages")
				return
			}
			_ = d.Coordinator.Dispatch(portal.SetMessages{Messages: *doc.Messages})
		}
		if doc.AuditLogs != nil {
			filtered := domain.FilterAuditLogs(*doc.AuditLogs, d.TimeNow())
			if err := d.Durable.SaveAuditLogs(ctx, filtered); err != nil {
				d.Logger.Error("import failed to save audit logs", logger.Error(err))
				writeError(w, http.StatusInternalServerError, "failed to import audit logs")
				return
			}
			_ = d.Coordinator.Dispatch(portal.SetAuditLogs{AuditLogs: filtered})
		}

		// SetAuditLogs does not recompute on its own; refresh stats from the
		// imported collections.
		state := d.Coordinator.Snapshot()
		stats := domain.ComputeStats(state.Services)
		stats.TotalMessages = len(state.Messages)
		stats.RecentChanges = len(state.AuditLogs)
		_ = d.Coordinator.Dispatch(portal.SetStats{Stats: stats})

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"importedAt": d.TimeNow(),
		})
	}
}

// Reset wipes the durable tier and returns the coordinator to an empty
// state with default config. The file tier is rewritten by the next
// cascade save.
func Reset(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Durable.Clear(r.Context()); err != nil {
			d.Logger.Error("failed to clear durable store", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to reset data")
			return
		}

		// Audit logs first so the stats recompute on the later dispatches
		// sees an empty trail.
		_ = d.Coordinator.Dispatch(portal.SetAuditLogs{AuditLogs: []domain.AuditLog{}})
		_ = d.Coordinator.Dispatch(portal.SetServices{Services: []domain.Service{}})
		_ = d.Coordinator.Dispatch(portal.SetMessages{Messages: []domain.Message{}})
		_ = d.Coordinator.Dispatch(portal.SetConfig{Config: domain.DefaultConfig()})

		d.Logger.Info("all portal data reset")
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"resetAt": d.TimeNow(),
		})
	}
}
