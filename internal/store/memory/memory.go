// Package memory implements the durable tier in process memory. It backs
// the portal when no Redis address is configured and doubles as the fake
// store in tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmconta/portal/internal/domain"
	"github.com/dmconta/portal/internal/logger"
	"github.com/dmconta/portal/internal/store"
)

// Store is a mutex-guarded in-memory implementation of store.Durable.
type Store struct {
	mu        sync.RWMutex
	services  []domain.Service
	messages  []domain.Message
	auditLogs []domain.AuditLog
	config    *domain.SystemConfig

	remote store.Remote
	logger logger.Logger
	now    func() time.Time

	// WriteErr, when set, makes every write operation fail. Used by tests
	// to exercise write-failure propagation.
	WriteErr error
}

// NewStore creates an empty in-memory store. remote may be nil.
func NewStore(remote store.Remote, log logger.Logger) *Store {
	return &Store{
		remote: remote,
		logger: log,
		now:    time.Now,
	}
}

// SetClock overrides the store's notion of now. Test hook.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

func (s *Store) LoadServices(_ context.Context) ([]domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Service{}, s.services...), nil
}

func (s *Store) SaveServices(_ context.Context, services []domain.Service) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services = append([]domain.Service{}, services...)
	return nil
}

func (s *Store) LoadMessages(_ context.Context) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Message{}, s.messages...), nil
}

func (s *Store) SaveMessages(_ context.Context, messages []domain.Message) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append([]domain.Message{}, messages...)
	return nil
}

func (s *Store) LoadAuditLogs(_ context.Context) ([]domain.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	filtered := domain.FilterAuditLogs(s.auditLogs, s.now())
	if len(filtered) != len(s.auditLogs) {
		s.auditLogs = filtered
	}
	return append([]domain.AuditLog{}, filtered...), nil
}

func (s *Store) SaveAuditLogs(_ context.Context, logs []domain.AuditLog) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditLogs = domain.FilterAuditLogs(logs, s.now())
	return nil
}

func (s *Store) AddAuditLog(_ context.Context, entry domain.AuditLog) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	combined := append([]domain.AuditLog{entry}, s.auditLogs...)
	s.auditLogs = domain.FilterAuditLogs(combined, s.now())
	return nil
}

func (s *Store) ToggleService(ctx context.Context, id string) (*domain.Service, error) {
	if s.WriteErr != nil {
		return nil, s.WriteErr
	}

	s.mu.Lock()
	var toggled *domain.Service
	for i := range s.services {
		if s.services[i].ID == id {
			s.services[i].Enabled = !s.services[i].Enabled
			s.services[i].LastModified = s.now()
			copied := s.services[i]
			toggled = &copied
			break
		}
	}
	s.mu.Unlock()

	if toggled == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrServiceNotFound, id)
	}
	s.cascade(ctx)
	return toggled, nil
}

func (s *Store) AddService(ctx context.Context, svc domain.Service) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}

	s.mu.Lock()
	for _, existing := range s.services {
		if existing.ID == svc.ID {
			s.mu.Unlock()
			return fmt.Errorf("%w: %s", domain.ErrServiceExists, svc.ID)
		}
	}
	s.services = append(s.services, svc)
	s.mu.Unlock()

	s.cascade(ctx)
	return nil
}

func (s *Store) DeleteService(ctx context.Context, id string) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}

	s.mu.Lock()
	kept := make([]domain.Service, 0, len(s.services))
	for _, svc := range s.services {
		if svc.ID != id {
			kept = append(kept, svc)
		}
	}
	if len(kept) == len(s.services) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrServiceNotFound, id)
	}
	s.services = kept
	s.mu.Unlock()

	s.cascade(ctx)
	return nil
}

func (s *Store) LoadConfig(_ context.Context) (domain.SystemConfig, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return domain.DefaultConfig(), false, nil
	}
	return *s.config, true, nil
}

func (s *Store) SaveConfig(_ context.Context, cfg domain.SystemConfig) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = &cfg
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services = nil
	s.messages = nil
	s.auditLogs = nil
	s.config = nil
	return nil
}

func (s *Store) cascade(ctx context.Context) {
	if s.remote == nil {
		return
	}

	services, _ := s.LoadServices(ctx)
	messages, _ := s.LoadMessages(ctx)
	auditLogs, _ := s.LoadAuditLogs(ctx)

	_, err := s.remote.Save(ctx, store.Payload{
		Services:  &services,
		Messages:  &messages,
		AuditLogs: &auditLogs,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("cascade save to remote tier failed",
			logger.Error(err))
	}
}
