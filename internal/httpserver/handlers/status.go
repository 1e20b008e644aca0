package handlers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/dmconta/portal/internal/httpserver/deps"
)

type componentStatus struct {
	OK    bool   `json:"ok"`
	Mode  string `json:"mode,omitempty"`
	Error string `json:"error,omitempty"`
}

type statusResponse struct {
	SystemHealth string                     `json:"system_health"`
	SyncMode     string                     `json:"sync_mode"`
	Components   map[string]componentStatus `json:"components"`
}

// Status reports the health of the persistence tiers alongside the derived
// system health of the service collection.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := d.Coordinator.Snapshot()

		components := map[string]componentStatus{
			"durable_store": checkDurable(d),
			"file_store":    checkFiles(d),
		}

		writeJSON(w, http.StatusOK, statusResponse{
			SystemHealth: string(state.Stats.SystemHealth),
			SyncMode:     determineSyncMode(components),
			Components:   components,
		})
	}
}

// determineSyncMode classifies how well mutations are being persisted.
func determineSyncMode(components map[string]componentStatus) string {
	durable := components["durable_store"]
	files := components["file_store"]

	switch {
	case durable.OK && files.OK:
		return "dual-tier"
	case durable.OK || files.OK:
		return "degraded"
	default:
		return "memory-only"
	}
}

func checkDurable(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:   true,
			Mode: "in-memory",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:    false,
			Mode:  "redis",
			Error: "unreachable",
		}
	}
	return componentStatus{
		OK:   true,
		Mode: "redis",
	}
}

func checkFiles(d deps.Deps) componentStatus {
	info, err := os.Stat(d.DataDir)
	if err != nil {
		// The data directory is created on first write; absent is fine.
		if os.IsNotExist(err) {
			return componentStatus{OK: true, Mode: "unwritten"}
		}
		return componentStatus{OK: false, Error: err.Error()}
	}
	if !info.IsDir() {
		return componentStatus{OK: false, Error: "data path is not a directory"}
	}
	return componentStatus{OK: true, Mode: "ready"}
}
