package store

import (
	"context"

	"github.com/dmconta/portal/internal/domain"
)

// Snapshot is the full three-collection read result of the file tier.
// Collections default to empty, never nil, when their backing file is
// missing or unreadable.
type Snapshot struct {
	Services  []domain.Service  `json:"services"`
	Messages  []domain.Message  `json:"messages"`
	AuditLogs []domain.AuditLog `json:"auditLogs"`
}

// Payload is a partial write document for the file tier. Field presence is a
// pointer check: a nil field leaves that collection untouched, a pointer to
// an empty slice replaces it with an empty collection.
type Payload struct {
	Services  *[]domain.Service  `json:"services,omitempty"`
	Messages  *[]domain.Message  `json:"messages,omitempty"`
	AuditLogs *[]domain.AuditLog `json:"auditLogs,omitempty"`
}

// SaveFlags reports which collections a write actually touched.
type SaveFlags struct {
	Services  bool `json:"services"`
	Messages  bool `json:"messages"`
	AuditLogs bool `json:"auditLogs"`
}

// Durable is the key/value persistence tier holding the three collections
// plus the reserved config entry.
//
// Failure semantics: Load methods degrade to empty collections and only
// return an error on malformed stored data that could not be recovered
// (implementations log and swallow transient read failures); Save methods
// propagate failures to the caller.
type Durable interface {
	LoadServices(ctx context.Context) ([]domain.Service, error)
	SaveServices(ctx context.Context, services []domain.Service) error

	LoadMessages(ctx context.Context) ([]domain.Message, error)
	SaveMessages(ctx context.Context, messages []domain.Message) error

	// LoadAuditLogs applies the retention filter on read and rewrites the
	// stored set when filtering dropped entries (self-healing read).
	LoadAuditLogs(ctx context.Context) ([]domain.AuditLog, error)
	SaveAuditLogs(ctx context.Context, logs []domain.AuditLog) error

	// AddAuditLog prepends the entry, filters, then overwrites.
	AddAuditLog(ctx context.Context, entry domain.AuditLog) error

	// ToggleService, AddService and DeleteService are read-modify-write
	// operations that finish with a cascade save of all three collections
	// to the remote tier (cascade failures are logged, not returned).
	ToggleService(ctx context.Context, id string) (*domain.Service, error)
	AddService(ctx context.Context, svc domain.Service) error
	DeleteService(ctx context.Context, id string) error

	LoadConfig(ctx context.Context) (domain.SystemConfig, bool, error)
	SaveConfig(ctx context.Context, cfg domain.SystemConfig) error

	Clear(ctx context.Context) error
}

// Remote is the file-backed tier holding one JSON document per collection.
// Reached over HTTP in a split deployment, or in-process when the portal
// serves its own data directory.
type Remote interface {
	Fetch(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, doc Payload) (SaveFlags, error)
}
