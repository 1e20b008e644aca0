package domain

import "time"

// RetentionWindow is the horizon beyond which audit entries are purged.
const RetentionWindow = 30 * 24 * time.Hour

// FilterAuditLogs returns the entries whose timestamp falls within the
// retention window relative to now. The boundary is closed: an entry exactly
// RetentionWindow old is kept.
//
// Order-preserving and idempotent for a fixed now.
func FilterAuditLogs(entries []AuditLog, now time.Time) []AuditLog {
	cutoff := now.Add(-RetentionWindow)
	kept := make([]AuditLog, 0, len(entries))
	for _, e := range entries {
		if !e.Timestamp.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	return kept
}
