package portal

import (
	"context"
	"fmt"
	"time"

	"github.com/dmconta/portal/internal/domain"
	"github.com/dmconta/portal/internal/logger"
	"github.com/dmconta/portal/internal/sources/seed"
	"github.com/dmconta/portal/internal/store"
)

// Bootstrap reconciles state across the tiers at process start: durable
// store first, remote file tier as fallback (seeding the durable tier on
// success), optional YAML seed when everything is empty, with retention
// drift written back to the remote tier.
type Bootstrap struct {
	durable store.Durable
	remote  store.Remote
	seed    *seed.Loader
	logger  logger.Logger
	now     func() time.Time
}

// NewBootstrap creates a bootstrap loader. remote and seedLoader may be nil.
func NewBootstrap(durable store.Durable, remote store.Remote, seedLoader *seed.Loader, log logger.Logger) *Bootstrap {
	return &Bootstrap{
		durable: durable,
		remote:  remote,
		seed:    seedLoader,
		logger:  log,
		now:     time.Now,
	}
}

// SetClock overrides the loader's notion of now. Test hook.
func (b *Bootstrap) SetClock(now func() time.Time) { b.now = now }

// Run seeds the coordinator. An unavailable tier degrades to empty
// collections; only a malformed seed file sets the coordinator error flag.
func (b *Bootstrap) Run(ctx context.Context, c *Coordinator) error {
	_ = c.Dispatch(SetLoading{Loading: true})
	defer func() { _ = c.Dispatch(SetLoading{Loading: false}) }()

	services, _ := b.durable.LoadServices(ctx)
	messages, _ := b.durable.LoadMessages(ctx)
	auditLogs, _ := b.durable.LoadAuditLogs(ctx)

	if len(services) == 0 && b.remote != nil {
		services, messages, auditLogs = b.fromRemote(ctx, services, messages, auditLogs)
	}

	if len(services) == 0 && b.seed != nil {
		var err error
		services, messages, err = b.fromSeed(ctx)
		if err != nil {
			_ = c.Dispatch(SetError{Message: "failed to load seed data"})
			return fmt.Errorf("bootstrap seed: %w", err)
		}
	}

	cfg, found, _ := b.durable.LoadConfig(ctx)
	if !found {
		b.logger.Debug("no stored config, using defaults")
	}

	_ = c.Dispatch(SetServices{Services: services})
	_ = c.Dispatch(SetMessages{Messages: messages})
	_ = c.Dispatch(SetAuditLogs{AuditLogs: auditLogs})
	_ = c.Dispatch(SetConfig{Config: cfg})

	stats := domain.ComputeStats(services)
	stats.TotalMessages = len(messages)
	stats.RecentChanges = len(auditLogs)
	_ = c.Dispatch(SetStats{Stats: stats})

	b.logger.Info("bootstrap complete",
		logger.Int("services", len(services)),
		logger.Int("messages", len(messages)),
		logger.Int("audit_logs", len(auditLogs)))

	return nil
}

// fromRemote falls back to the remote file tier and seeds the durable store
// with whatever it returns. Audit logs are retention-filtered; when entries
// were dropped, the reduced set is written back to the remote tier so the
// files do not accumulate stale history.
func (b *Bootstrap) fromRemote(ctx context.Context, services []domain.Service, messages []domain.Message, auditLogs []domain.AuditLog) ([]domain.Service, []domain.Message, []domain.AuditLog) {
	snap, err := b.remote.Fetch(ctx)
	if err != nil {
		b.logger.Warn("remote tier unavailable during bootstrap, starting empty",
			logger.Error(err))
		return services, messages, auditLogs
	}

	if len(snap.Services) > 0 {
		services = snap.Services
		if err := b.durable.SaveServices(ctx, services); err != nil {
			b.logger.Warn("failed to seed services into durable store",
				logger.Error(err))
		}
	}
	if len(snap.Messages) > 0 {
		messages = snap.Messages
		if err := b.durable.SaveMessages(ctx, messages); err != nil {
			b.logger.Warn("failed to seed messages into durable store",
				logger.Error(err))
		}
	}
	if len(snap.AuditLogs) > 0 {
		filtered := domain.FilterAuditLogs(snap.AuditLogs, b.now())
		if len(filtered) != len(snap.AuditLogs) {
			if _, err := b.remote.Save(ctx, store.Payload{AuditLogs: &filtered}); err != nil {
				b.logger.Warn("failed to write filtered audit logs back to remote tier",
					logger.Error(err))
			}
		}
		auditLogs = filtered
		if err := b.durable.SaveAuditLogs(ctx, auditLogs); err != nil {
			b.logger.Warn("failed to seed audit logs into durable store",
				logger.Error(err))
		}
	}

	return services, messages, auditLogs
}

// fromSeed primes an empty installation from the seed YAML file and pushes
// the result to both tiers.
func (b *Bootstrap) fromSeed(ctx context.Context) ([]domain.Service, []domain.Message, error) {
	f, err := b.seed.Load()
	if err != nil {
		return nil, nil, err
	}

	now := b.now()
	services := seed.MapServices(f.Services, now)
	messages := seed.MapMessages(f.Messages, now)
	if len(services) == 0 && len(messages) == 0 {
		return services, messages, nil
	}

	if err := b.durable.SaveServices(ctx, services); err != nil {
		b.logger.Warn("failed to save seeded services", logger.Error(err))
	}
	if err := b.durable.SaveMessages(ctx, messages); err != nil {
		b.logger.Warn("failed to save seeded messages", logger.Error(err))
	}
	if b.remote != nil {
		if _, err := b.remote.Save(ctx, store.Payload{Services: &services, Messages: &messages}); err != nil {
			b.logger.Warn("failed to push seed data to remote tier", logger.Error(err))
		}
	}

	b.logger.Info("primed empty installation from seed file",
		logger.Int("services", len(services)),
		logger.Int("messages", len(messages)))

	return services, messages, nil
}
