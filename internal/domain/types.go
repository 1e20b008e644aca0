package domain

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Impact classifies how much of the platform depends on a service.
type Impact string

const (
	ImpactLow      Impact = "low"
	ImpactMedium   Impact = "medium"
	ImpactHigh     Impact = "high"
	ImpactCritical Impact = "critical"
)

// MessageType is the severity of a user-facing message.
type MessageType string

const (
	MessageError   MessageType = "ERROR"
	MessageWarning MessageType = "WARNING"
	MessageInfo    MessageType = "INFO"
	MessageSuccess MessageType = "SUCCESS"
)

// Platform tags which clients display a message.
type Platform string

const (
	PlatformWeb    Platform = "WEB"
	PlatformMobile Platform = "MOBILE"
	PlatformBoth   Platform = "BOTH"
)

// Health is the derived tri-state classification of the service collection.
type Health string

const (
	HealthHealthy  Health = "healthy"
	HealthWarning  Health = "warning"
	HealthCritical Health = "critical"
)

// Sentinel errors for mutation conflict/not-found outcomes.
var (
	ErrServiceExists   = errors.New("service id already exists")
	ErrServiceNotFound = errors.New("service not found")
	ErrMessageNotFound = errors.New("message not found")
)

// Service is a named feature flag with metadata.
//
// ID is assigned once at creation (lowercase-hyphenated slug of Name) and
// never changed. Dependencies are soft references: dangling ids are legal.
type Service struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category"`
	Impact       Impact    `json:"impact"`
	Dependencies []string  `json:"dependencies"`
	Enabled      bool      `json:"enabled"`
	LastModified time.Time `json:"lastModified"`
}

// Message is an editable, code-keyed user-facing text template.
// Code acts as the primary key and is stable across edits.
type Message struct {
	Code         string      `json:"code"`
	Message      string      `json:"message"`
	Type         MessageType `json:"type"`
	Platform     Platform    `json:"platform"`
	Enabled      bool        `json:"enabled"`
	Category     string      `json:"category"`
	LastModified time.Time   `json:"lastModified"`
}

// Audit action tags.
const (
	ActionServiceToggle = "service_toggle"
	ActionServiceCreate = "service_create"
	ActionServiceDelete = "service_delete"
	ActionMessageEdit   = "message_edit"
)

// AuditLog records one mutation event. Append-only from the caller's
// perspective; entries only leave through retention filtering.
type AuditLog struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Action      string    `json:"action"`
	User        string    `json:"user"`
	Details     string    `json:"details"`
	ServiceID   string    `json:"serviceId,omitempty"`
	MessageCode string    `json:"messageCode,omitempty"`
}

// DashboardStats is fully derived from the current collections and is never
// persisted.
type DashboardStats struct {
	TotalServices    int    `json:"totalServices"`
	ActiveServices   int    `json:"activeServices"`
	InactiveServices int    `json:"inactiveServices"`
	TotalMessages    int    `json:"totalMessages"`
	RecentChanges    int    `json:"recentChanges"`
	SystemHealth     Health `json:"systemHealth"`
}

// SystemConfig holds operator preferences persisted under the reserved
// config key.
type SystemConfig struct {
	Language        string        `json:"language"`
	Notifications   bool          `json:"notifications"`
	AutoRefresh     bool          `json:"autoRefresh"`
	RefreshInterval time.Duration `json:"refreshInterval"`
}

// DefaultConfig returns the config used when the reserved key is absent.
func DefaultConfig() SystemConfig {
	return SystemConfig{
		Language:        "en",
		Notifications:   true,
		AutoRefresh:     false,
		RefreshInterval: 30 * time.Second,
	}
}

var slugCollapse = regexp.MustCompile(`\s+`)

// Slugify derives a service ID from its display name: lowercased, runs of
// whitespace replaced with a single hyphen.
func Slugify(name string) string {
	return slugCollapse.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// NewAuditID generates an audit log ID from the creation timestamp
// (millisecond precision).
func NewAuditID(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
