package scheduler

import (
	"context"
	"time"

	"github.com/dmconta/portal/internal/domain"
	"github.com/dmconta/portal/internal/logger"
	"github.com/dmconta/portal/internal/store"
)

// DefaultSweepInterval is how often the retention sweep runs.
const DefaultSweepInterval = 24 * time.Hour

// RetentionSweeper periodically re-applies the audit retention window to
// both persistence tiers. The read/write paths already filter on the way
// through; the sweeper heals the drift that accumulates while the portal
// sits idle.
type RetentionSweeper struct {
	durable  store.Durable
	remote   store.Remote
	logger   logger.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
}

// NewRetentionSweeper creates a retention sweeper. remote may be nil.
func NewRetentionSweeper(
	durable store.Durable,
	remote store.Remote,
	log logger.Logger,
	interval time.Duration,
) *RetentionSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &RetentionSweeper{
		durable:  durable,
		remote:   remote,
		logger:   log,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start runs an immediate sweep and then sweeps on every tick until Stop or
// context cancellation.
func (rs *RetentionSweeper) Start(ctx context.Context) error {
	if err := rs.Sweep(ctx); err != nil {
		rs.logger.Warn("initial retention sweep failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(rs.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := rs.Sweep(ctx); err != nil {
					rs.logger.Error("retention sweep failed",
						logger.Error(err))
				}
			case <-rs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sweeper.
func (rs *RetentionSweeper) Stop() {
	close(rs.stopCh)
}

// Sweep filters the audit logs in both tiers. Loading from the durable
// store is self-healing on its own; the remote tier needs an explicit
// write-back when entries fell out of the window.
func (rs *RetentionSweeper) Sweep(ctx context.Context) error {
	rs.logger.Debug("running audit retention sweep")

	// Self-healing read: drops and rewrites expired entries.
	logs, err := rs.durable.LoadAuditLogs(ctx)
	if err != nil {
		return err
	}

	if rs.remote == nil {
		return nil
	}

	snap, err := rs.remote.Fetch(ctx)
	if err != nil {
		rs.logger.Warn("remote tier unreachable during retention sweep",
			logger.Error(err))
		return nil
	}

	filtered := domain.FilterAuditLogs(snap.AuditLogs, rs.now())
	if len(filtered) == len(snap.AuditLogs) {
		rs.logger.Debug("no expired audit entries in remote tier",
			logger.Int("durable_entries", len(logs)),
			logger.Int("remote_entries", len(snap.AuditLogs)))
		return nil
	}

	if _, err := rs.remote.Save(ctx, store.Payload{AuditLogs: &filtered}); err != nil {
		rs.logger.Warn("failed to write swept audit logs to remote tier",
			logger.Error(err))
		return nil
	}

	rs.logger.Info("retention sweep removed expired audit entries",
		logger.Int("removed", len(snap.AuditLogs)-len(filtered)),
		logger.Int("remaining", len(filtered)))

	return nil
}
