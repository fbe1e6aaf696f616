package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"estoque/internal/core"
	"estoque/internal/storage/memory"
)

type flakySource struct {
	SnapshotSource
	fail  atomic.Bool
	calls atomic.Int32
}

func (f *flakySource) ListReceipts(ctx context.Context) ([]core.Receipt, error) {
	f.calls.Add(1)
	if f.fail.Load() {
		return nil, errors.New("connection refused")
	}
	return f.SnapshotSource.ListReceipts(ctx)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	if _, err := store.CreateReceipt(ctx, core.Receipt{
		Item:        "Cabo",
		Supplier:    "Alfa",
		Quantity:    decimal.NewFromInt(1),
		TotalPrice:  decimal.NewFromInt(100),
		PostingDate: core.NewDate(2024, 5, 2),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateWithdrawal(ctx, core.Withdrawal{
		Date:     core.NewDate(2024, 5, 3),
		Company:  "Agro",
		Location: "Sede",
		Regional: "Norte",
		Status:   "Pendente",
	}); err != nil {
		t.Fatal(err)
	}
	return store
}

func TestDefaultRefresherConfig(t *testing.T) {
	if got := DefaultRefresherConfig().Interval; got != 30*time.Second {
		t.Errorf("expected Interval 30s, got %v", got)
	}
}

func TestDashboardRefresher_LatestBeforeFirstRefresh(t *testing.T) {
	r := NewDashboardRefresher(memory.New(), RefresherConfig{}, quietLogger())

	snap, ok := r.Latest()
	if ok {
		t.Fatalf("expected no snapshot yet")
	}
	if snap.Dashboard.Monthly == nil || snap.Dashboard.TopSuppliers == nil {
		t.Fatalf("empty snapshot must carry non-nil views: %+v", snap.Dashboard)
	}
}

func TestDashboardRefresher_Refresh(t *testing.T) {
	r := NewDashboardRefresher(seededStore(t), RefresherConfig{}, quietLogger())

	snap, err := r.Refresh(context.Background(), TriggerManual)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if len(snap.Dashboard.Monthly) != 1 || snap.Dashboard.Monthly[0].Key != "2024-05" {
		t.Fatalf("Monthly = %+v", snap.Dashboard.Monthly)
	}
	point := snap.Dashboard.Monthly[0]
	if point.Receipts != 1 || point.Withdrawals != 1 || !point.Value.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("point = %+v", point)
	}
	if snap.Panel.PendingWithdrawals != 1 {
		t.Errorf("PendingWithdrawals = %d, want 1", snap.Panel.PendingWithdrawals)
	}

	latest, ok := r.Latest()
	if !ok || latest.GeneratedAt != snap.GeneratedAt {
		t.Fatalf("Latest() did not return the stored snapshot")
	}
}

func TestDashboardRefresher_FailedFetchKeepsPrevious(t *testing.T) {
	source := &flakySource{SnapshotSource: seededStore(t)}
	r := NewDashboardRefresher(source, RefresherConfig{}, quietLogger())
	ctx := context.Background()

	first, err := r.Refresh(ctx, TriggerStartup)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	source.fail.Store(true)
	if _, err := r.Refresh(ctx, TriggerTimer); err == nil {
		t.Fatalf("expected fetch error")
	}

	latest, ok := r.Latest()
	if !ok || latest.Trigger != TriggerStartup || latest.GeneratedAt != first.GeneratedAt {
		t.Fatalf("previous snapshot was replaced: %+v", latest)
	}
}

func TestDashboardRefresher_StartStop(t *testing.T) {
	r := NewDashboardRefresher(seededStore(t), RefresherConfig{Interval: time.Hour}, quietLogger())
	ctx := context.Background()

	if r.IsRunning() {
		t.Fatal("refresher should not be running initially")
	}
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("Stop() on idle refresher error = %v", err)
	}
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := r.Start(ctx); err == nil {
		t.Fatal("expected error when starting a running refresher")
	}

	waitFor(t, func() bool { _, ok := r.Latest(); return ok })

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := r.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if r.IsRunning() {
		t.Fatal("refresher should not be running after Stop")
	}
}

func TestDashboardRefresher_RefreshesOnChangeAndTrigger(t *testing.T) {
	store := seededStore(t)
	source := &flakySource{SnapshotSource: store}
	changes := make(chan core.Change, 1)
	r := NewDashboardRefresher(source, RefresherConfig{Interval: time.Hour, Changes: changes}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := r.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer r.Stop(context.Background())

	waitFor(t, func() bool { return source.calls.Load() >= 1 })

	if _, err := store.CreateWithdrawal(ctx, core.Withdrawal{Company: "B", Location: "L", Date: core.NewDate(2024, 5, 9)}); err != nil {
		t.Fatal(err)
	}
	changes <- core.Change{Table: core.TableWithdrawals, Op: core.OpInsert}
	waitFor(t, func() bool {
		snap, _ := r.Latest()
		return snap.Withdrawals == 2 && snap.Trigger == TriggerChange
	})

	r.Trigger()
	waitFor(t, func() bool {
		snap, _ := r.Latest()
		return snap.Trigger == TriggerManual
	})
}

func TestDashboardRefresher_StopsWithContext(t *testing.T) {
	r := NewDashboardRefresher(memory.New(), RefresherConfig{Interval: time.Hour}, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	if err := r.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()
	waitFor(t, func() bool { return !r.IsRunning() })
}
