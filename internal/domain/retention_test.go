package domain

import (
	"testing"
	"time"
)

func TestFilterAuditLogsBoundary(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		timestamp time.Time
		want      bool
	}{
		{
			name:      "recent entry kept",
			timestamp: now.Add(-5 * 24 * time.Hour),
			want:      true,
		},
		{
			name:      "exactly 30 days old kept",
			timestamp: now.Add(-RetentionWindow),
			want:      true,
		},
		{
			name:      "30 days and one second dropped",
			timestamp: now.Add(-RetentionWindow - time.Second),
			want:      false,
		},
		{
			name:      "entry from the future kept",
			timestamp: now.Add(time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := []AuditLog{{ID: "1", Timestamp: tt.timestamp}}
			got := FilterAuditLogs(entries, now)
			kept := len(got) == 1
			if kept != tt.want {
				t.Errorf("FilterAuditLogs() kept = %v, want %v", kept, tt.want)
			}
		})
	}
}

func TestFilterAuditLogsIdempotent(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	entries := []AuditLog{
		{ID: "a", Timestamp: now.Add(-40 * 24 * time.Hour)},
		{ID: "b", Timestamp: now.Add(-10 * 24 * time.Hour)},
		{ID: "c", Timestamp: now.Add(-29 * 24 * time.Hour)},
		{ID: "d", Timestamp: now.Add(-35 * 24 * time.Hour)},
	}

	once := FilterAuditLogs(entries, now)
	twice := FilterAuditLogs(once, now)

	if len(once) != 2 {
		t.Fatalf("FilterAuditLogs() kept %d entries, want 2", len(once))
	}
	if len(twice) != len(once) {
		t.Errorf("second filter changed the set: %d != %d", len(twice), len(once))
	}
	for i := range once {
		if twice[i].ID != once[i].ID {
			t.Errorf("second filter reordered entries at %d: %s != %s", i, twice[i].ID, once[i].ID)
		}
	}
}

func TestFilterAuditLogsPreservesOrder(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	entries := []AuditLog{
		{ID: "newest", Timestamp: now.Add(-1 * time.Hour)},
		{ID: "old", Timestamp: now.Add(-31 * 24 * time.Hour)},
		{ID: "middle", Timestamp: now.Add(-2 * 24 * time.Hour)},
		{ID: "oldest-kept", Timestamp: now.Add(-20 * 24 * time.Hour)},
	}

	got := FilterAuditLogs(entries, now)
	want := []string{"newest", "middle", "oldest-kept"}
	if len(got) != len(want) {
		t.Fatalf("FilterAuditLogs() kept %d entries, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("entry %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestFilterAuditLogsEmpty(t *testing.T) {
	got := FilterAuditLogs(nil, time.Now())
	if got == nil {
		t.Error("FilterAuditLogs(nil) should return an empty slice, not nil")
	}
	if len(got) != 0 {
		t.Errorf("FilterAuditLogs(nil) = %d entries, want 0", len(got))
	}
}
