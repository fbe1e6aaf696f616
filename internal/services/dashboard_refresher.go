package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"estoque/internal/core"
	"estoque/internal/log"
)

// Trigger reasons, as logged.
const (
	TriggerStartup = "startup"
	TriggerTimer   = "timer"
	TriggerChange  = "change"
	TriggerManual  = "manual"
)

// SnapshotSource is the read side the refresher needs.
type SnapshotSource interface {
	ListReceipts(ctx context.Context) ([]core.Receipt, error)
	ListWithdrawals(ctx context.Context) ([]core.Withdrawal, error)
}

// Snapshot is one aggregation result.
type Snapshot struct {
	Dashboard   core.Dashboard `json:"dashboard"`
	Panel       core.Panel     `json:"painel"`
	Receipts    int            `json:"recebimentos"`
	Withdrawals int            `json:"retiradas"`
	Trigger     string         `json:"trigger"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// RefresherConfig holds configuration for the dashboard refresher
type RefresherConfig struct {
	// Interval is the fixed re-fetch period (default: 30s)
	Interval time.Duration

	// Changes delivers change notifications; nil disables them.
	Changes <-chan core.Change
}

// DefaultRefresherConfig returns sensible defaults
func DefaultRefresherConfig() RefresherConfig {
	return RefresherConfig{Interval: 30 * time.Second}
}

// DashboardRefresher re-reads both tables and recomputes the dashboard on
// startup, on every tick, on every change notification and on demand. The
// newest result replaces the previous one; a failed fetch leaves it as is.
type DashboardRefresher struct {
	source SnapshotSource
	config RefresherConfig
	logger *log.Logger
	now    func() time.Time

	latest  atomic.Pointer[Snapshot]
	trigger chan struct{}

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewDashboardRefresher(source SnapshotSource, config RefresherConfig, logger *log.Logger) *DashboardRefresher {
	if config.Interval <= 0 {
		config.Interval = DefaultRefresherConfig().Interval
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DashboardRefresher{
		source:  source,
		config:  config,
		logger:  logger.WithComponent(log.ComponentRefresher),
		now:     time.Now,
		trigger: make(chan struct{}, 1),
	}
}

// Start begins the refresh loop. Returns an error if already running.
func (r *DashboardRefresher) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("dashboard refresher is already running")
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	stopCh, doneCh := r.stopCh, r.doneCh
	r.mu.Unlock()

	go r.runLoop(ctx, stopCh, doneCh)

	r.logger.InfoContext(ctx, "Dashboard refresher started", "interval", r.config.Interval)
	return nil
}

// Stop gracefully stops the refresher and waits for the loop to exit.
func (r *DashboardRefresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	stopCh, doneCh := r.stopCh, r.doneCh
	r.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		r.logger.InfoContext(ctx, "Dashboard refresher stopped gracefully")
		return nil
	case <-ctx.Done():
		r.logger.WarnContext(ctx, "Dashboard refresher stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the refresh loop is active
func (r *DashboardRefresher) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Trigger asks the loop for a refresh. Requests made while one is already
// pending collapse into it.
func (r *DashboardRefresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Latest returns the newest snapshot, or false before the first success.
func (r *DashboardRefresher) Latest() (Snapshot, bool) {
	s := r.latest.Load()
	if s == nil {
		return Snapshot{Dashboard: core.Aggregate(nil, nil), Panel: core.BuildPanel(nil, nil)}, false
	}
	return *s, true
}

// Refresh fetches both tables and, on success, publishes a new snapshot.
func (r *DashboardRefresher) Refresh(ctx context.Context, trigger string) (Snapshot, error) {
	start := r.now()
	var (
		receipts    []core.Receipt
		withdrawals []core.Withdrawal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := r.source.ListReceipts(gctx)
		if err != nil {
			return fmt.Errorf("fetch receipts: %w", err)
		}
		receipts = rows
		return nil
	})
	g.Go(func() error {
		rows, err := r.source.ListWithdrawals(gctx)
		if err != nil {
			return fmt.Errorf("fetch withdrawals: %w", err)
		}
		withdrawals = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		r.logger.Fail(ctx, "Dashboard refresh failed, keeping previous snapshot", err,
			log.FieldTrigger, trigger)
		return Snapshot{}, err
	}

	snap := &Snapshot{
		Dashboard:   core.Aggregate(receipts, withdrawals),
		Panel:       core.BuildPanel(receipts, withdrawals),
		Receipts:    len(receipts),
		Withdrawals: len(withdrawals),
		Trigger:     trigger,
		GeneratedAt: r.now(),
	}
	r.latest.Store(snap)

	fields := log.NewFields().
		WithOperation(log.OpRefresh).
		WithSnapshot(snap.Receipts, snap.Withdrawals)
	r.logger.DebugContext(ctx, "Dashboard refreshed",
		append(fields.ToSlice(), log.FieldTrigger, trigger,
			log.FieldDuration, snap.GeneratedAt.Sub(start).Milliseconds())...)
	return *snap, nil
}

func (r *DashboardRefresher) runLoop(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	defer func() {
		r.mu.Lock()
		if r.doneCh == doneCh {
			r.running = false
		}
		r.mu.Unlock()
	}()

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	// Refresh immediately on startup
	r.Refresh(ctx, TriggerStartup)

	changes := r.config.Changes
	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Refresh(ctx, TriggerTimer)
		case <-r.trigger:
			r.Refresh(ctx, TriggerManual)
		case c, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			r.logger.DebugContext(ctx, "Change notification received",
				log.FieldTable, c.Table, log.FieldRecordID, c.ID)
			r.Refresh(ctx, TriggerChange)
		}
	}
}
