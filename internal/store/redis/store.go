// Package redis implements the durable key/value tier. Each collection is
// stored whole, as one JSON blob under a namespaced key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmconta/portal/internal/domain"
	"github.com/dmconta/portal/internal/logger"
	"github.com/dmconta/portal/internal/store"
)

// Store handles Redis persistence for the three collections plus the
// reserved config entry. Service mutations cascade a full save to the
// remote file tier.
type Store struct {
	client *goredis.Client
	remote store.Remote
	logger logger.Logger
	now    func() time.Time
}

// NewStore creates a Redis store. remote may be nil, in which case service
// mutations skip the cascade save.
func NewStore(client *goredis.Client, remote store.Remote, log logger.Logger) *Store {
	return &Store{
		client: client,
		remote: remote,
		logger: log,
		now:    time.Now,
	}
}

// LoadServices retrieves the services collection. Read failures degrade to
// an empty collection.
func (s *Store) LoadServices(ctx context.Context) ([]domain.Service, error) {
	var services []domain.Service
	if !s.load(ctx, KeyServices, &services) {
		return []domain.Service{}, nil
	}
	if services == nil {
		services = []domain.Service{}
	}
	return services, nil
}

// SaveServices overwrites the services collection. Write failures propagate.
func (s *Store) SaveServices(ctx context.Context, services []domain.Service) error {
	return s.save(ctx, KeyServices, services)
}

// LoadMessages retrieves the messages collection. Read failures degrade to
// an empty collection.
func (s *Store) LoadMessages(ctx context.Context) ([]domain.Message, error) {
	var messages []domain.Message
	if !s.load(ctx, KeyMessages, &messages) {
		return []domain.Message{}, nil
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// SaveMessages overwrites the messages collection.
func (s *Store) SaveMessages(ctx context.Context, messages []domain.Message) error {
	return s.save(ctx, KeyMessages, messages)
}

// LoadAuditLogs retrieves the audit log collection, applying the retention
// filter on read. When filtering dropped entries the reduced set is written
// back, so a stale store heals itself on the next read.
func (s *Store) LoadAuditLogs(ctx context.Context) ([]domain.AuditLog, error) {
	var logs []domain.AuditLog
	if !s.load(ctx, KeyAuditLogs, &logs) {
		return []domain.AuditLog{}, nil
	}

	filtered := domain.FilterAuditLogs(logs, s.now())
	if len(filtered) != len(logs) {
		if err := s.save(ctx, KeyAuditLogs, filtered); err != nil {
			s.logger.Warn("failed to write back filtered audit logs",
				logger.Error(err))
		}
	}
	return filtered, nil
}

// SaveAuditLogs overwrites the audit log collection after filtering.
func (s *Store) SaveAuditLogs(ctx context.Context, logs []domain.AuditLog) error {
	return s.save(ctx, KeyAuditLogs, domain.FilterAuditLogs(logs, s.now()))
}

// AddAuditLog prepends the entry (newest-first), filters, then overwrites.
func (s *Store) AddAuditLog(ctx context.Context, entry domain.AuditLog) error {
	logs, err := s.LoadAuditLogs(ctx)
	if err != nil {
		return err
	}
	combined := append([]domain.AuditLog{entry}, logs...)
	return s.save(ctx, KeyAuditLogs, domain.FilterAuditLogs(combined, s.now()))
}

// ToggleService flips the enabled flag of the service with the given id,
// stamps lastModified, persists, then cascades a full save to the remote
// tier. Returns the updated service.
func (s *Store) ToggleService(ctx context.Context, id string) (*domain.Service, error) {
	services, err := s.LoadServices(ctx)
	if err != nil {
		return nil, err
	}

	var toggled *domain.Service
	for i := range services {
		if services[i].ID == id {
			services[i].Enabled = !services[i].Enabled
			services[i].LastModified = s.now()
			toggled = &services[i]
			break
		}
	}
	if toggled == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrServiceNotFound, id)
	}

	if err := s.SaveServices(ctx, services); err != nil {
		return nil, err
	}
	s.cascade(ctx, services)

	updated := *toggled
	return &updated, nil
}

// AddService appends a new service. A colliding id is rejected.
func (s *Store) AddService(ctx context.Context, svc domain.Service) error {
	services, err := s.LoadServices(ctx)
	if err != nil {
		return err
	}
	for _, existing := range services {
		if existing.ID == svc.ID {
			return fmt.Errorf("%w: %s", domain.ErrServiceExists, svc.ID)
		}
	}

	services = append(services, svc)
	if err := s.SaveServices(ctx, services); err != nil {
		return err
	}
	s.cascade(ctx, services)
	return nil
}

// DeleteService removes the service with the given id.
func (s *Store) DeleteService(ctx context.Context, id string) error {
	services, err := s.LoadServices(ctx)
	if err != nil {
		return err
	}

	kept := make([]domain.Service, 0, len(services))
	for _, svc := range services {
		if svc.ID != id {
			kept = append(kept, svc)
		}
	}
	if len(kept) == len(services) {
		return fmt.Errorf("%w: %s", domain.ErrServiceNotFound, id)
	}

	if err := s.SaveServices(ctx, kept); err != nil {
		return err
	}
	s.cascade(ctx, kept)
	return nil
}

// LoadConfig retrieves the system config. The second return reports whether
// a stored config was found.
func (s *Store) LoadConfig(ctx context.Context) (domain.SystemConfig, bool, error) {
	data, err := s.client.Get(ctx, KeyConfig).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			s.logger.Warn("failed to load config, using defaults",
				logger.Error(err))
		}
		return domain.DefaultConfig(), false, nil
	}

	var cfg domain.SystemConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		s.logger.Warn("stored config is corrupt, using defaults",
			logger.Error(err))
		return domain.DefaultConfig(), false, nil
	}
	return cfg, true, nil
}

// SaveConfig overwrites the reserved config entry.
func (s *Store) SaveConfig(ctx context.Context, cfg domain.SystemConfig) error {
	return s.save(ctx, KeyConfig, cfg)
}

// Clear removes every key the store owns.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, AllKeys()...).Err(); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}

// cascade ships the full three-collection state to the remote file tier.
// Failures are logged and swallowed: the local write already succeeded and
// must not be undone by a remote outage.
func (s *Store) cascade(ctx context.Context, services []domain.Service) {
	if s.remote == nil {
		return
	}

	messages, _ := s.LoadMessages(ctx)
	auditLogs, _ := s.LoadAuditLogs(ctx)

	_, err := s.remote.Save(ctx, store.Payload{
		Services:  &services,
		Messages:  &messages,
		AuditLogs: &auditLogs,
	})
	if err != nil {
		s.logger.Warn("cascade save to remote tier failed",
			logger.Error(err))
	}
}

// load reports whether the key held a parseable value. Transient read
// failures and corrupt blobs degrade to "not found".
func (s *Store) load(ctx context.Context, key string, out interface{}) bool {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			s.logger.Warn("redis read failed, degrading to empty collection",
				logger.String("key", key),
				logger.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("stored collection is corrupt, degrading to empty",
			logger.String("key", key),
			logger.Error(err))
		return false
	}
	return true
}

func (s *Store) save(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
