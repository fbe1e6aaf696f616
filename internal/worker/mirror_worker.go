package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"estoque/internal/amqp"
	"estoque/internal/core"
	"estoque/internal/log"
	"estoque/internal/sheets"
)

// Source is the read side of the record store.
type Source interface {
	ListReceipts(ctx context.Context) ([]core.Receipt, error)
	ListWithdrawals(ctx context.Context) ([]core.Withdrawal, error)
	ListWithdrawalItems(ctx context.Context) ([]core.WithdrawalItem, error)
}

// Stats describes the mirror activity since start.
type Stats struct {
	Syncs    int64
	Failures int64
	Skipped  int64
	LastSync time.Time
}

// MirrorWorker rewrites the spreadsheet tabs from full table snapshots.
// Syncs are serialized; a change message older than the start of the last
// successful sync is already covered by it and is skipped.
type MirrorWorker struct {
	source Source
	writer sheets.TabWriter
	logger *log.Logger
	now    func() time.Time

	mu        sync.Mutex
	lastStart time.Time
	stats     Stats
}

func NewMirrorWorker(source Source, writer sheets.TabWriter, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &MirrorWorker{
		source: source,
		writer: writer,
		logger: logger.WithComponent(log.ComponentMirror),
		now:    time.Now,
	}
}

// HandleChangeMessage processes one change message from AMQP.
func (w *MirrorWorker) HandleChangeMessage(ctx context.Context, msg *amqp.ChangeMessage) error {
	w.mu.Lock()
	covered := !w.lastStart.IsZero() && msg.Timestamp.Before(w.lastStart)
	if covered {
		w.stats.Skipped++
	}
	w.mu.Unlock()

	if covered {
		w.logger.DebugContext(ctx, "Change already mirrored",
			log.FieldMessageID, msg.MessageID, log.FieldTable, msg.Table)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing change message",
		log.FieldMessageID, msg.MessageID,
		log.FieldTable, msg.Table,
		log.FieldOperation, msg.Op,
		log.FieldRecordID, msg.RecordID)
	return w.Sync(ctx)
}

// Sync reads all three tables and republishes them.
func (w *MirrorWorker) Sync(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := w.now()
	snap, err := w.snapshot(ctx)
	if err == nil {
		err = sheets.Publish(ctx, w.writer, snap)
	}
	if err != nil {
		w.stats.Failures++
		w.logger.Fail(ctx, "Mirror sync failed", err)
		return fmt.Errorf("mirror sync: %w", err)
	}

	w.lastStart = start
	w.stats.Syncs++
	w.stats.LastSync = w.now()
	w.logger.InfoContext(ctx, "Spreadsheet mirrored",
		append(log.NewFields().WithOperation(log.OpMirror).WithSnapshot(len(snap.Receipts), len(snap.Withdrawals)).ToSlice(),
			log.FieldItems, len(snap.Items),
			log.FieldDuration, w.now().Sub(start).Milliseconds())...)
	return nil
}

func (w *MirrorWorker) snapshot(ctx context.Context) (sheets.Snapshot, error) {
	var snap sheets.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Receipts, err = w.source.ListReceipts(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Withdrawals, err = w.source.ListWithdrawals(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Items, err = w.source.ListWithdrawalItems(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return sheets.Snapshot{}, fmt.Errorf("read tables: %w", err)
	}
	return snap, nil
}

// Poll syncs every interval until ctx is done. Failures are logged and
// retried on the next tick.
func (w *MirrorWorker) Poll(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "Polling for changes", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = w.Sync(ctx)
		}
	}
}

// Stats returns a copy of the counters.
func (w *MirrorWorker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}
