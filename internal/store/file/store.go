// Package file implements the JSON file tier: one independently written
// document per collection under a common data directory.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmconta/portal/internal/domain"
	"github.com/dmconta/portal/internal/logger"
	"github.com/dmconta/portal/internal/store"
)

const (
	ServicesFile  = "services.json"
	MessagesFile  = "messages.json"
	AuditLogsFile = "audit-logs.json"
)

// Store persists the three collections as pretty-printed JSON files.
type Store struct {
	dir    string
	logger logger.Logger
	now    func() time.Time
}

// NewStore creates a file store rooted at dir. The directory is created
// lazily on first write.
func NewStore(dir string, log logger.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: log,
		now:    time.Now,
	}
}

// Fetch reads all three collections. A missing or corrupt file yields an
// empty collection for that file only; Fetch itself never fails.
func (s *Store) Fetch(_ context.Context) (store.Snapshot, error) {
	snap := store.Snapshot{
		Services:  []domain.Service{},
		Messages:  []domain.Message{},
		AuditLogs: []domain.AuditLog{},
	}

	if data := s.readFile(ServicesFile); data != nil {
		var v []domain.Service
		if s.decode(ServicesFile, data, &v) && v != nil {
			snap.Services = v
		}
	}
	if data := s.readFile(MessagesFile); data != nil {
		var v []domain.Message
		if s.decode(MessagesFile, data, &v) && v != nil {
			snap.Messages = v
		}
	}
	if data := s.readFile(AuditLogsFile); data != nil {
		var v []domain.AuditLog
		if s.decode(AuditLogsFile, data, &v) && v != nil {
			snap.AuditLogs = v
		}
	}

	return snap, nil
}

// Save writes each present field of doc to its own file. AuditLogs pass
// through the retention filter before persisting. Writes are independent:
// a failure on one file does not prevent the others, and the returned flags
// report which collections were actually written.
func (s *Store) Save(_ context.Context, doc store.Payload) (store.SaveFlags, error) {
	var flags store.SaveFlags

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return flags, fmt.Errorf("failed to create data directory: %w", err)
	}

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if doc.Services != nil {
		err := s.writeCollection(ServicesFile, *doc.Services)
		flags.Services = err == nil
		record(err)
	}
	if doc.Messages != nil {
		err := s.writeCollection(MessagesFile, *doc.Messages)
		flags.Messages = err == nil
		record(err)
	}
	if doc.AuditLogs != nil {
		filtered := domain.FilterAuditLogs(*doc.AuditLogs, s.now())
		err := s.writeCollection(AuditLogsFile, filtered)
		flags.AuditLogs = err == nil
		record(err)
	}

	return flags, firstErr
}

func (s *Store) readFile(name string) []byte {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read collection file",
				logger.String("file", name),
				logger.Error(err))
		}
		return nil
	}
	return data
}

// decode reports whether data parsed cleanly. Corrupt JSON is treated the
// same as a missing file.
func (s *Store) decode(name string, data []byte, out interface{}) bool {
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("collection file is corrupt, treating as empty",
			logger.String("file", name),
			logger.Error(err))
		return false
	}
	return true
}

func (s *Store) writeCollection(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
