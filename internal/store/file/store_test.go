package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmconta/portal/internal/domain"
	"github.com/dmconta/portal/internal/logger"
	"github.com/dmconta/portal/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), logger.New("error", false))
}

func TestFetchMissingFiles(t *testing.T) {
	s := newTestStore(t)

	snap, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if snap.Services == nil || len(snap.Services) != 0 {
		t.Errorf("Services = %v, want empty slice", snap.Services)
	}
	if snap.Messages == nil || len(snap.Messages) != 0 {
		t.Errorf("Messages = %v, want empty slice", snap.Messages)
	}
	if snap.AuditLogs == nil || len(snap.AuditLogs) != 0 {
		t.Errorf("AuditLogs = %v, want empty slice", snap.AuditLogs)
	}
}

func TestFetchCorruptFile(t *testing.T) {
	s := newTestStore(t)

	if err := os.WriteFile(filepath.Join(s.dir, ServicesFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	snap, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(snap.Services) != 0 {
		t.Errorf("corrupt services file should read as empty, got %d entries", len(snap.Services))
	}
}

func TestSaveRoundTrip(t *testing.T) {
	s := newTestStore(t)

	services := []domain.Service{
		{ID: "auth", Name: "Auth", Category: "core", Impact: domain.ImpactCritical, Enabled: true},
	}
	messages := []domain.Message{
		{Code: "ERR001", Message: "Something broke", Type: domain.MessageError, Platform: domain.PlatformBoth},
	}

	flags, err := s.Save(context.Background(), store.Payload{
		Services: &services,
		Messages: &messages,
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !flags.Services || !flags.Messages {
		t.Errorf("flags = %+v, want services and messages saved", flags)
	}
	if flags.AuditLogs {
		t.Error("auditLogs flag set without auditLogs in payload")
	}

	snap, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(snap.Services) != 1 || snap.Services[0].ID != "auth" {
		t.Errorf("Services = %v, want the saved auth service", snap.Services)
	}
	if len(snap.Messages) != 1 || snap.Messages[0].Code != "ERR001" {
		t.Errorf("Messages = %v, want the saved message", snap.Messages)
	}
}

func TestSaveFieldPresence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seeded := []domain.Service{{ID: "auth", Name: "Auth", Enabled: true}}
	if _, err := s.Save(ctx, store.Payload{Services: &seeded}); err != nil {
		t.Fatal(err)
	}

	// Absent field leaves the file untouched.
	if _, err := s.Save(ctx, store.Payload{}); err != nil {
		t.Fatal(err)
	}
	snap, _ := s.Fetch(ctx)
	if len(snap.Services) != 1 {
		t.Errorf("absent field overwrote services, got %d entries want 1", len(snap.Services))
	}

	// Explicit empty list replaces the file with an empty collection.
	empty := []domain.Service{}
	flags, err := s.Save(ctx, store.Payload{Services: &empty})
	if err != nil {
		t.Fatal(err)
	}
	if !flags.Services {
		t.Error("explicit empty list should report services as saved")
	}
	snap, _ = s.Fetch(ctx)
	if len(snap.Services) != 0 {
		t.Errorf("explicit empty list should clear services, got %d entries", len(snap.Services))
	}
}

func TestSaveFiltersAuditLogs(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	logs := []domain.AuditLog{
		{ID: "fresh", Timestamp: now.Add(-5 * 24 * time.Hour)},
		{ID: "stale", Timestamp: now.Add(-31 * 24 * time.Hour)},
	}
	if _, err := s.Save(context.Background(), store.Payload{AuditLogs: &logs}); err != nil {
		t.Fatal(err)
	}

	snap, _ := s.Fetch(context.Background())
	if len(snap.AuditLogs) != 1 || snap.AuditLogs[0].ID != "fresh" {
		t.Errorf("AuditLogs = %v, want only the fresh entry", snap.AuditLogs)
	}
}

func TestSaveWritesPrettyJSON(t *testing.T) {
	s := newTestStore(t)

	services := []domain.Service{{ID: "auth", Name: "Auth"}}
	if _, err := s.Save(context.Background(), store.Payload{Services: &services}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, ServicesFile))
	if err != nil {
		t.Fatal(err)
	}

	want, _ := json.MarshalIndent(services, "", "  ")
	if string(data) != string(want) {
		t.Errorf("file content is not two-space indented JSON:\n%s", data)
	}
}

func TestSaveCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := NewStore(dir, logger.New("error", false))

	services := []domain.Service{}
	if _, err := s.Save(context.Background(), store.Payload{Services: &services}); err != nil {
		t.Fatalf("Save() should create the data directory, got error %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ServicesFile)); err != nil {
		t.Errorf("services file missing after save: %v", err)
	}
}
