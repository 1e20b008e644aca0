// Package portal owns the canonical in-memory state and the mutation
// pipeline: synchronous state transitions, derived stats, and asynchronous
// fan-out to the persistence tiers.
package portal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmconta/portal/internal/domain"
	"github.com/dmconta/portal/internal/logger"
	"github.com/dmconta/portal/internal/store"
)

// State is the coordinator's canonical snapshot, the source of truth for
// the current render. The stores are eventually consistent followers.
type State struct {
	Services  []domain.Service      `json:"services"`
	Messages  []domain.Message      `json:"messages"`
	AuditLogs []domain.AuditLog     `json:"auditLogs"`
	Stats     domain.DashboardStats `json:"stats"`
	Config    domain.SystemConfig   `json:"config"`
	Loading   bool                  `json:"loading"`
	Error     string                `json:"error,omitempty"`
}

// SyncEvent reports the outcome of one asynchronous persistence step so an
// observer can surface sync status. Err is nil on success.
type SyncEvent struct {
	Action string
	Err    error
}

// Coordinator applies the closed action set to in-memory state and fans the
// durable consequences out to the stores after the fact. The in-memory
// transition never waits on, and is never rolled back by, persistence.
type Coordinator struct {
	mu    sync.RWMutex
	state State

	durable store.Durable
	logger  logger.Logger
	actor   string
	now     func() time.Time

	events chan SyncEvent
	wg     sync.WaitGroup

	queueMu  sync.Mutex
	queue    []persistJob
	draining bool
}

// NewCoordinator builds a coordinator around the given durable store. actor
// is stamped on every audit entry the coordinator produces.
func NewCoordinator(durable store.Durable, log logger.Logger, actor string) *Coordinator {
	return &Coordinator{
		state: State{
			Services:  []domain.Service{},
			Messages:  []domain.Message{},
			AuditLogs: []domain.AuditLog{},
			Config:    domain.DefaultConfig(),
			Stats:     domain.DashboardStats{SystemHealth: domain.HealthHealthy},
		},
		durable: durable,
		logger:  log,
		actor:   actor,
		now:     time.Now,
		events:  make(chan SyncEvent, 64),
	}
}

// SetClock overrides the coordinator's notion of now. Test hook.
func (c *Coordinator) SetClock(now func() time.Time) { c.now = now }

// Events exposes persistence outcomes. The channel is buffered; events are
// dropped when no one is draining it.
func (c *Coordinator) Events() <-chan SyncEvent { return c.events }

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := c.state
	snap.Services = append([]domain.Service{}, c.state.Services...)
	snap.Messages = append([]domain.Message{}, c.state.Messages...)
	snap.AuditLogs = append([]domain.AuditLog{}, c.state.AuditLogs...)
	return snap
}

// Wait blocks until all in-flight persistence goroutines finish. Tests use
// this to make the asynchronous side effects observable.
func (c *Coordinator) Wait() { c.wg.Wait() }

// Dispatch applies the action to in-memory state synchronously, then
// enqueues any persistence the action implies. Validation failures (unknown
// id, duplicate id) are returned before any state changes.
func (c *Coordinator) Dispatch(action Action) error {
	c.mu.Lock()

	persist, err := c.applyLocked(action)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	// Enqueue before releasing the state lock so the queue order matches
	// the apply order.
	if persist != nil {
		c.enqueue(persistJob{action: action.actionName(), steps: persist})
	}
	c.mu.Unlock()

	return nil
}

// persistFunc is one deferred persistence step.
type persistFunc func(ctx context.Context) error

// persistJob is the deferred persistence of one dispatched action.
type persistJob struct {
	action string
	steps  []persistFunc
}

// enqueue appends the job and starts the drainer when idle. Persistence runs
// on a single worker: each store step is a read-modify-write against the
// durable tier, so steps from consecutive mutations must land in dispatch
// order or a later step can read state an earlier one has not written yet.
func (c *Coordinator) enqueue(j persistJob) {
	c.wg.Add(1)

	c.queueMu.Lock()
	c.queue = append(c.queue, j)
	start := !c.draining
	c.draining = true
	c.queueMu.Unlock()

	if start {
		go c.drainQueue()
	}
}

func (c *Coordinator) drainQueue() {
	for {
		c.queueMu.Lock()
		if len(c.queue) == 0 {
			c.draining = false
			c.queueMu.Unlock()
			return
		}
		j := c.queue[0]
		c.queue = c.queue[1:]
		c.queueMu.Unlock()

		// Persistence outlives the caller's request: detached context.
		c.runPersist(context.Background(), j.action, j.steps)
		c.wg.Done()
	}
}

// applyLocked performs the synchronous state transition and returns the
// persistence steps the action implies, if any.
func (c *Coordinator) applyLocked(action Action) ([]persistFunc, error) {
	switch a := action.(type) {
	case SetLoading:
		c.state.Loading = a.Loading
		return nil, nil

	case SetError:
		c.state.Error = a.Message
		return nil, nil

	case SetServices:
		c.state.Services = append([]domain.Service{}, a.Services...)
		c.recomputeLocked()
		return nil, nil

	case SetMessages:
		c.state.Messages = append([]domain.Message{}, a.Messages...)
		c.recomputeLocked()
		return nil, nil

	case SetAuditLogs:
		c.state.AuditLogs = append([]domain.AuditLog{}, a.AuditLogs...)
		return nil, nil

	case SetStats:
		c.state.Stats = a.Stats
		return nil, nil

	case SetConfig:
		c.state.Config = a.Config
		cfg := a.Config
		return []persistFunc{func(ctx context.Context) error {
			return c.durable.SaveConfig(ctx, cfg)
		}}, nil

	case ToggleService:
		return c.toggleLocked(a.ID)

	case AddService:
		return c.addServiceLocked(a.Service)

	case DeleteService:
		return c.deleteServiceLocked(a.ID)

	case UpdateMessage:
		return c.updateMessageLocked(a.Code, a.Text)

	case AddAuditLog:
		c.state.AuditLogs = append([]domain.AuditLog{a.Entry}, c.state.AuditLogs...)
		c.recomputeLocked()
		entry := a.Entry
		return []persistFunc{func(ctx context.Context) error {
			return c.durable.AddAuditLog(ctx, entry)
		}}, nil

	default:
		return nil, fmt.Errorf("unknown action %T", action)
	}
}

func (c *Coordinator) toggleLocked(id string) ([]persistFunc, error) {
	idx := -1
	for i := range c.state.Services {
		if c.state.Services[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrServiceNotFound, id)
	}

	now := c.now()
	svc := &c.state.Services[idx]
	svc.Enabled = !svc.Enabled
	svc.LastModified = now

	verb := "disabled"
	if svc.Enabled {
		verb = "enabled"
	}
	entry := c.auditLocked(now, domain.ActionServiceToggle,
		fmt.Sprintf("Service %q %s", svc.Name, verb))
	entry.ServiceID = id
	c.prependAuditLocked(entry)
	c.recomputeLocked()

	// Audit entry first: the mutation step ends with a cascade save of the
	// full triple, which must already include this entry.
	return []persistFunc{
		func(ctx context.Context) error {
			return c.durable.AddAuditLog(ctx, entry)
		},
		func(ctx context.Context) error {
			_, err := c.durable.ToggleService(ctx, id)
			return err
		},
	}, nil
}

func (c *Coordinator) addServiceLocked(svc domain.Service) ([]persistFunc, error) {
	for _, existing := range c.state.Services {
		if existing.ID == svc.ID {
			return nil, fmt.Errorf("%w: %s", domain.ErrServiceExists, svc.ID)
		}
	}

	now := c.now()
	if svc.LastModified.IsZero() {
		svc.LastModified = now
	}
	if svc.Dependencies == nil {
		svc.Dependencies = []string{}
	}
	c.state.Services = append(c.state.Services, svc)

	entry := c.auditLocked(now, domain.ActionServiceCreate,
		fmt.Sprintf("Service %q created", svc.Name))
	entry.ServiceID = svc.ID
	c.prependAuditLocked(entry)
	c.recomputeLocked()

	added := svc
	return []persistFunc{
		func(ctx context.Context) error {
			return c.durable.AddAuditLog(ctx, entry)
		},
		func(ctx context.Context) error {
			return c.durable.AddService(ctx, added)
		},
	}, nil
}

func (c *Coordinator) deleteServiceLocked(id string) ([]persistFunc, error) {
	idx := -1
	for i := range c.state.Services {
		if c.state.Services[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrServiceNotFound, id)
	}

	name := c.state.Services[idx].Name
	c.state.Services = append(c.state.Services[:idx], c.state.Services[idx+1:]...)

	entry := c.auditLocked(c.now(), domain.ActionServiceDelete,
		fmt.Sprintf("Service %q deleted", name))
	entry.ServiceID = id
	c.prependAuditLocked(entry)
	c.recomputeLocked()

	return []persistFunc{
		func(ctx context.Context) error {
			return c.durable.AddAuditLog(ctx, entry)
		},
		func(ctx context.Context) error {
			return c.durable.DeleteService(ctx, id)
		},
	}, nil
}

func (c *Coordinator) updateMessageLocked(code, text string) ([]persistFunc, error) {
	idx := -1
	for i := range c.state.Messages {
		if c.state.Messages[i].Code == code {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMessageNotFound, code)
	}

	now := c.now()
	c.state.Messages[idx].Message = text
	c.state.Messages[idx].LastModified = now

	entry := c.auditLocked(now, domain.ActionMessageEdit,
		fmt.Sprintf("Message %s edited", code))
	entry.MessageCode = code
	c.prependAuditLocked(entry)
	c.recomputeLocked()

	// The message collection itself is not persisted here; only the audit
	// trail is. Message edits reach the stores with the next cascade save.
	return []persistFunc{
		func(ctx context.Context) error {
			return c.durable.AddAuditLog(ctx, entry)
		},
	}, nil
}

func (c *Coordinator) auditLocked(now time.Time, action, details string) domain.AuditLog {
	return domain.AuditLog{
		ID:        domain.NewAuditID(now),
		Timestamp: now,
		Action:    action,
		User:      c.actor,
		Details:   details,
	}
}

func (c *Coordinator) prependAuditLocked(entry domain.AuditLog) {
	c.state.AuditLogs = append([]domain.AuditLog{entry}, c.state.AuditLogs...)
}

// recomputeLocked refreshes the derived stats from the current collections.
func (c *Coordinator) recomputeLocked() {
	stats := domain.ComputeStats(c.state.Services)
	stats.TotalMessages = len(c.state.Messages)
	stats.RecentChanges = len(c.state.AuditLogs)
	c.state.Stats = stats
}

// runPersist executes the deferred persistence steps in order, logging
// failures and publishing a SyncEvent per step. Failures are never retried
// and never roll back the in-memory state.
func (c *Coordinator) runPersist(ctx context.Context, action string, steps []persistFunc) {
	for _, step := range steps {
		err := step(ctx)
		if err != nil {
			c.logger.Error("persistence step failed",
				logger.String("action", action),
				logger.Error(err))
		}
		select {
		case c.events <- SyncEvent{Action: action, Err: err}:
		default:
			// Nobody draining; drop rather than block the pipeline.
		}
	}
}
