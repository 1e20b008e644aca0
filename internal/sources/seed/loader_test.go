package seed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmconta/portal/internal/domain"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}
	return path
}

func TestLoaderParsesSeedFile(t *testing.T) {
	path := writeSeedFile(t, `
services:
  - name: Payment Gateway
    category: payments
    impact: high
    dependencies: [auth-service]
    enabled: true
  - name: Auth Service
    category: core
    impact: critical
    enabled: true
messages:
  - code: MSG_001
    message: Scheduled maintenance tonight
    type: INFO
    platform: BOTH
    enabled: true
    category: maintenance
`)

	f, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(f.Services) != 2 {
		t.Errorf("services = %d, want 2", len(f.Services))
	}
	if len(f.Messages) != 1 {
		t.Errorf("messages = %d, want 1", len(f.Messages))
	}
	if f.Services[0].Name != "Payment Gateway" || f.Services[0].Impact != "high" {
		t.Errorf("first service = %+v", f.Services[0])
	}
}

func TestLoaderErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.yaml")
			},
		},
		{
			name: "malformed yaml",
			path: func(t *testing.T) string {
				return writeSeedFile(t, "services: [unclosed")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLoader(tt.path(t)).Load(); err == nil {
				t.Errorf("Load() should have failed")
			}
		})
	}
}

func TestMapServices(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	props := []ServiceProps{
		{Name: "Payment Gateway", Category: "payments", Impact: "high", Enabled: true},
		{Name: "payment   gateway"}, // same slug, skipped
		{Name: "   "},               // empty slug, skipped
		{Name: "Search", Impact: "low"},
	}

	services := MapServices(props, now)
	if len(services) != 2 {
		t.Fatalf("services = %d, want 2", len(services))
	}
	if services[0].ID != "payment-gateway" {
		t.Errorf("id = %q, want payment-gateway", services[0].ID)
	}
	if services[0].Dependencies == nil {
		t.Errorf("dependencies must default to an empty list")
	}
	if !services[0].LastModified.Equal(now) {
		t.Errorf("lastModified = %v, want %v", services[0].LastModified, now)
	}
	if services[1].ID != "search" {
		t.Errorf("second id = %q, want search", services[1].ID)
	}
}

func TestMapMessages(t *testing.T) {
	now := time.Now()

	props := []MessageProps{
		{Code: "MSG_001", Message: "hello", Type: "INFO", Platform: "WEB", Enabled: true},
		{Code: "MSG_001", Message: "duplicate"},
		{Code: "", Message: "no code"},
	}

	messages := MapMessages(props, now)
	if len(messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(messages))
	}
	if messages[0].Type != domain.MessageInfo || messages[0].Platform != domain.PlatformWeb {
		t.Errorf("message = %+v", messages[0])
	}
}
