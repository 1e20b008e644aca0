package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmconta/portal/internal/domain"
	"github.com/dmconta/portal/internal/httpserver/deps"
	"github.com/dmconta/portal/internal/httpserver/routes"
	"github.com/dmconta/portal/internal/logger"
	"github.com/dmconta/portal/internal/portal"
	"github.com/dmconta/portal/internal/scheduler"
	"github.com/dmconta/portal/internal/store/file"
	"github.com/dmconta/portal/internal/store/memory"
)

type stack struct {
	dataDir     string
	files       *file.Store
	durable     *memory.Store
	coordinator *portal.Coordinator
	bootstrap   *portal.Bootstrap
}

func newStack(t *testing.T, dataDir string) *stack {
	t.Helper()

	log := logger.New("error", false)
	files := file.NewStore(dataDir, log)
	durable := memory.NewStore(files, log)
	coordinator := portal.NewCoordinator(durable, log, "admin")
	bootstrap := portal.NewBootstrap(durable, files, nil, log)
	t.Cleanup(coordinator.Wait)

	return &stack{
		dataDir:     dataDir,
		files:       files,
		durable:     durable,
		coordinator: coordinator,
		bootstrap:   bootstrap,
	}
}

// TestMutationLifecycle walks one full write path: bootstrap an empty
// installation, create and toggle a service, and verify every tier agrees
// after the asynchronous persistence settles.
func TestMutationLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, t.TempDir())

	if err := s.bootstrap.Run(ctx, s.coordinator); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	svc := domain.Service{
		ID:      domain.Slugify("Payment Gateway"),
		Name:    "Payment Gateway",
		Impact:  domain.ImpactHigh,
		Enabled: true,
	}
	if err := s.coordinator.Dispatch(portal.AddService{Service: svc}); err != nil {
		t.Fatalf("add service failed: %v", err)
	}
	if err := s.coordinator.Dispatch(portal.ToggleService{ID: "payment-gateway"}); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	s.coordinator.Wait()

	// In-memory state.
	state := s.coordinator.Snapshot()
	if len(state.Services) != 1 || state.Services[0].Enabled {
		t.Errorf("snapshot services = %+v", state.Services)
	}
	if len(state.AuditLogs) != 2 {
		t.Fatalf("audit logs = %d, want 2", len(state.AuditLogs))
	}
	if state.AuditLogs[0].Action != domain.ActionServiceToggle {
		t.Errorf("newest audit entry = %q, want %q", state.AuditLogs[0].Action, domain.ActionServiceToggle)
	}
	if state.Stats.SystemHealth != domain.HealthWarning {
		t.Errorf("systemHealth = %q, want %q (every high-impact service disabled)",
			state.Stats.SystemHealth, domain.HealthWarning)
	}

	// Durable tier.
	services, err := s.durable.LoadServices(ctx)
	if err != nil {
		t.Fatalf("load services: %v", err)
	}
	if len(services) != 1 || services[0].Enabled {
		t.Errorf("durable services = %+v", services)
	}

	// File tier, written by the cascade.
	snap, err := s.files.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch files: %v", err)
	}
	if len(snap.Services) != 1 || snap.Services[0].Enabled {
		t.Errorf("file tier services = %+v", snap.Services)
	}
	if len(snap.AuditLogs) != 2 {
		t.Errorf("file tier audit logs = %d, want 2", len(snap.AuditLogs))
	}

	// Files are pretty-printed.
	raw, err := os.ReadFile(filepath.Join(s.dataDir, file.ServicesFile))
	if err != nil {
		t.Fatalf("read services file: %v", err)
	}
	if !strings.Contains(string(raw), "\n  ") {
		t.Errorf("services file is not indented:\n%s", raw)
	}
}

// TestRestartRecoversFromFileTier simulates a process restart with an empty
// key/value tier: the new instance must rebuild its state from the files
// left behind by the previous one.
func TestRestartRecoversFromFileTier(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()

	first := newStack(t, dataDir)
	if err := first.bootstrap.Run(ctx, first.coordinator); err != nil {
		t.Fatalf("first bootstrap failed: %v", err)
	}
	if err := first.coordinator.Dispatch(portal.AddService{Service: domain.Service{
		ID: "auth", Name: "Auth", Impact: domain.ImpactCritical, Enabled: true,
	}}); err != nil {
		t.Fatalf("add service failed: %v", err)
	}
	first.coordinator.Wait()

	// Fresh durable store, same data directory.
	second := newStack(t, dataDir)
	if err := second.bootstrap.Run(ctx, second.coordinator); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}

	state := second.coordinator.Snapshot()
	if len(state.Services) != 1 || state.Services[0].ID != "auth" {
		t.Fatalf("recovered services = %+v", state.Services)
	}
	if len(state.AuditLogs) != 1 {
		t.Errorf("recovered audit logs = %d, want 1", len(state.AuditLogs))
	}
	if state.Stats.TotalServices != 1 || state.Stats.ActiveServices != 1 {
		t.Errorf("recovered stats = %+v", state.Stats)
	}

	// The durable tier was re-seeded from the files.
	services, err := second.durable.LoadServices(ctx)
	if err != nil {
		t.Fatalf("load services: %v", err)
	}
	if len(services) != 1 {
		t.Errorf("durable tier not re-seeded, services = %d", len(services))
	}
}

// TestRetentionSweepAcrossTiers writes a stale audit entry to both tiers and
// verifies one sweep removes it everywhere.
func TestRetentionSweepAcrossTiers(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, t.TempDir())

	past := time.Now().Add(-40 * 24 * time.Hour)
	fresh := time.Now()
	logs := []domain.AuditLog{
		{ID: domain.NewAuditID(fresh), Timestamp: fresh, Action: domain.ActionServiceToggle, User: "admin"},
		{ID: domain.NewAuditID(past), Timestamp: past, Action: domain.ActionServiceToggle, User: "admin"},
	}

	// Write the unfiltered set to both tiers with a clock set in the past so
	// the stale entry survives the write-path filter.
	s.durable.SetClock(func() time.Time { return past })
	if err := s.durable.SaveAuditLogs(ctx, logs); err != nil {
		t.Fatalf("save audit logs: %v", err)
	}
	s.durable.SetClock(time.Now)

	// Write the file tier directly: Save filters on the way in, and the point
	// here is a stale file left behind by an older process.
	raw, err := json.MarshalIndent(logs, "", "  ")
	if err != nil {
		t.Fatalf("marshal audit logs: %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.dataDir, file.AuditLogsFile), raw, 0o644); err != nil {
		t.Fatalf("write audit logs file: %v", err)
	}

	log := logger.New("error", false)
	sweeper := scheduler.NewRetentionSweeper(s.durable, s.files, log, time.Hour)
	if err := sweeper.Sweep(ctx); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	kept, err := s.durable.LoadAuditLogs(ctx)
	if err != nil {
		t.Fatalf("load audit logs: %v", err)
	}
	if len(kept) != 1 || kept[0].Timestamp.Before(time.Now().Add(-domain.RetentionWindow)) {
		t.Errorf("durable tier after sweep = %+v", kept)
	}

	snap, err := s.files.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch files: %v", err)
	}
	if len(snap.AuditLogs) != 1 {
		t.Errorf("file tier after sweep = %d entries, want 1", len(snap.AuditLogs))
	}
}

// TestHTTPSurface drives the registered routes end to end over httptest.
func TestHTTPSurface(t *testing.T) {
	s := newStack(t, t.TempDir())
	if err := s.bootstrap.Run(context.Background(), s.coordinator); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	log := logger.New("error", false)
	d := deps.Deps{
		Logger:      log,
		StartTime:   time.Now(),
		TimeNow:     time.Now,
		Coordinator: s.coordinator,
		Files:       s.files,
		Durable:     s.durable,
		DataDir:     s.dataDir,
	}

	r := chi.NewRouter()
	routes.RegisterAll(r, d)
	srv := httptest.NewServer(r)
	defer srv.Close()

	post := func(path, body string) *http.Response {
		t.Helper()
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		return resp
	}

	resp := post("/api/services", `{"name": "Auth Service", "impact": "critical", "enabled": true}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create service status = %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = post("/api/services/auth-service/toggle", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle status = %d", resp.StatusCode)
	}
	_ = resp.Body.Close()
	s.coordinator.Wait()

	resp, err := http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status: %v", err)
	}
	var status struct {
		SystemHealth string `json:"system_health"`
		SyncMode     string `json:"sync_mode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	_ = resp.Body.Close()

	if status.SystemHealth != string(domain.HealthCritical) {
		t.Errorf("system_health = %q, want %q (critical service disabled)",
			status.SystemHealth, domain.HealthCritical)
	}
	if status.SyncMode != "dual-tier" {
		t.Errorf("sync_mode = %q, want dual-tier", status.SyncMode)
	}

	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
	_ = resp.Body.Close()
}
