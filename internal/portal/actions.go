package portal

import "github.com/dmconta/portal/internal/domain"

// Action is the closed set of state mutations the coordinator accepts.
// Each concrete action carries its own payload.
type Action interface {
	actionName() string
}

// SetLoading flips the loading flag.
type SetLoading struct{ Loading bool }

// SetError sets the user-visible error message; empty clears it.
type SetError struct{ Message string }

// SetServices replaces the services collection.
type SetServices struct{ Services []domain.Service }

// SetMessages replaces the messages collection.
type SetMessages struct{ Messages []domain.Message }

// SetAuditLogs replaces the audit log collection.
type SetAuditLogs struct{ AuditLogs []domain.AuditLog }

// SetStats replaces the derived stats wholesale. Normally stats are
// recomputed as a side effect of other actions; this exists for bootstrap.
type SetStats struct{ Stats domain.DashboardStats }

// SetConfig replaces the system config and persists it under the reserved
// config key.
type SetConfig struct{ Config domain.SystemConfig }

// ToggleService flips the enabled flag of the service with the given id.
type ToggleService struct{ ID string }

// AddService appends a new service. The ID must already be slug-derived.
type AddService struct{ Service domain.Service }

// DeleteService removes the service with the given id.
type DeleteService struct{ ID string }

// UpdateMessage replaces the text of the message with the given code.
type UpdateMessage struct {
	Code string
	Text string
}

// AddAuditLog prepends an externally built audit entry (newest-first).
type AddAuditLog struct{ Entry domain.AuditLog }

func (SetLoading) actionName() string    { return "set_loading" }
func (SetError) actionName() string      { return "set_error" }
func (SetServices) actionName() string   { return "set_services" }
func (SetMessages) actionName() string   { return "set_messages" }
func (SetAuditLogs) actionName() string  { return "set_audit_logs" }
func (SetStats) actionName() string      { return "set_stats" }
func (SetConfig) actionName() string     { return "set_config" }
func (ToggleService) actionName() string { return "toggle_service" }
func (AddService) actionName() string    { return "add_service" }
func (DeleteService) actionName() string { return "delete_service" }
func (UpdateMessage) actionName() string { return "update_message" }
func (AddAuditLog) actionName() string   { return "add_audit_log" }
