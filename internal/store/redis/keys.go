package redis

const (
	// KeyServices holds the services collection as a single JSON blob.
	KeyServices = "portal:services"
	// KeyMessages holds the messages collection.
	KeyMessages = "portal:messages"
	// KeyAuditLogs holds the retention-filtered audit log collection.
	KeyAuditLogs = "portal:audit-logs"
	// KeyConfig is the reserved system config entry.
	KeyConfig = "portal:config"
)

// AllKeys returns every key the store owns.
func AllKeys() []string {
	return []string{KeyServices, KeyMessages, KeyAuditLogs, KeyConfig}
}
