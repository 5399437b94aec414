package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pratik-mahalle/mediremind/internal/pkg/logger"
	"github.com/pratik-mahalle/mediremind/internal/pkg/metrics"
)

// TokenPurger removes revocation entries whose tokens have expired anyway
type TokenPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// UserCounter reports how many accounts exist
type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

// LimiterCleaner drops idle rate limiter buckets
type LimiterCleaner interface {
	Cleanup() int
}

// Job names
const (
	JobPurgeRevokedTokens = "purge_revoked_tokens"
	JobCountUsers         = "count_users"
	JobCleanupLimiter     = "cleanup_rate_limiter"
)

// Options selects which maintenance jobs run. Nil dependencies disable
// their job.
type Options struct {
	// PurgeSchedule is a standard cron spec or descriptor such as "@hourly"
	PurgeSchedule string
	Purger        TokenPurger
	Users         UserCounter
	Limiter       LimiterCleaner
}

// Maintenance runs the server's periodic housekeeping on a cron scheduler
type Maintenance struct {
	opts      Options
	logger    *logger.Logger
	scheduler *cron.Cron
	jobs      map[string]func(context.Context) error

	mu      sync.Mutex
	running bool
}

// NewMaintenance validates the schedule and registers the enabled jobs
func NewMaintenance(opts Options, log *logger.Logger) (*Maintenance, error) {
	if opts.PurgeSchedule == "" {
		opts.PurgeSchedule = "@hourly"
	}

	m := &Maintenance{
		opts:      opts,
		logger:    log,
		scheduler: cron.New(),
		jobs:      make(map[string]func(context.Context) error),
	}

	if opts.Purger != nil {
		if err := m.add(JobPurgeRevokedTokens, opts.PurgeSchedule, m.purgeRevokedTokens); err != nil {
			return nil, err
		}
	}
	if opts.Users != nil {
		if err := m.add(JobCountUsers, "@every 1m", m.countUsers); err != nil {
			return nil, err
		}
	}
	if opts.Limiter != nil {
		if err := m.add(JobCleanupLimiter, "@every 5m", m.cleanupLimiter); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Maintenance) add(name, spec string, fn func(context.Context) error) error {
	if _, err := m.scheduler.AddFunc(spec, func() {
		_ = m.RunJob(context.Background(), name)
	}); err != nil {
		return fmt.Errorf("invalid cron schedule %q for %s: %w", spec, name, err)
	}
	m.jobs[name] = fn
	return nil
}

// Jobs returns the names of the registered jobs
func (m *Maintenance) Jobs() []string {
	names := make([]string, 0, len(m.jobs))
	for name := range m.jobs {
		names = append(names, name)
	}
	return names
}

// RunJob runs a registered job once, recording its duration
func (m *Maintenance) RunJob(ctx context.Context, name string) error {
	fn, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job: %s", name)
	}

	start := time.Now()
	err := fn(ctx)
	status := "success"
	if err != nil {
		status = "failed"
		m.logger.With("job", name).ErrorWithErr(err, "Maintenance job failed")
	}
	metrics.RecordJob(name, status, time.Since(start))
	return err
}

// Start runs every job once, then on its schedule until ctx is done. It
// blocks and returns after running jobs have finished.
func (m *Maintenance) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("maintenance worker is already running")
	}
	m.running = true
	m.mu.Unlock()

	for name := range m.jobs {
		_ = m.RunJob(ctx, name)
	}

	m.scheduler.Start()
	m.logger.With("jobs", len(m.jobs)).Info("Maintenance worker started")

	<-ctx.Done()

	<-m.scheduler.Stop().Done()

	m.mu.Lock()
	m.running = false
	m.mu.Unlock()

	m.logger.Info("Maintenance worker stopped")
	return nil
}

func (m *Maintenance) purgeRevokedTokens(ctx context.Context) error {
	n, err := m.opts.Purger.PurgeExpired(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to purge revoked tokens: %w", err)
	}
	metrics.RecordRevokedTokensPurged(n)
	if n > 0 {
		m.logger.With("purged", n).Info("Purged expired revoked tokens")
	}
	return nil
}

func (m *Maintenance) countUsers(ctx context.Context) error {
	n, err := m.opts.Users.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	metrics.SetRegisteredUsers(float64(n))
	return nil
}

func (m *Maintenance) cleanupLimiter(ctx context.Context) error {
	left := m.opts.Limiter.Cleanup()
	m.logger.With("buckets", left).Debug("Rate limiter cleaned up")
	return nil
}
