package services

import (
	"context"
	"fmt"
	"sync"

	"estoque/internal/cache"
	"estoque/internal/core"
	"estoque/internal/log"
)

const allKey = "all"

// RecordService orchestrates record writes across the store and the change
// notifiers. Full table reads are cached until the next write.
type RecordService struct {
	store    core.Store
	notifier core.Notifier
	cache    *cache.Manager
	logger   *log.Logger
	today    func() core.Date

	// generations counts invalidations per table. A list read only fills
	// the cache when no invalidation happened while it was reading.
	genMu       sync.Mutex
	generations map[string]uint64
}

func NewRecordService(store core.Store, notifier core.Notifier, c *cache.Manager, logger *log.Logger) *RecordService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if c == nil {
		c = cache.NewManager(0)
	}
	return &RecordService{
		store:       store,
		notifier:    notifier,
		cache:       c,
		logger:      logger.WithComponent(log.ComponentRecords),
		today:       core.Today,
		generations: make(map[string]uint64),
	}
}

// table bundles the store calls and record hooks of one table.
type table[T any] struct {
	name    string
	list    func(context.Context) ([]T, error)
	get     func(context.Context, int64) (T, error)
	create  func(context.Context, T) (T, error)
	update  func(context.Context, T) (T, error)
	delete  func(context.Context, int64) error
	prepare func(*T, core.Date) error
	id      func(T) int64
	setID   func(*T, int64)
}

func (s *RecordService) receipts() table[core.Receipt] {
	return table[core.Receipt]{
		name:   core.TableReceipts,
		list:   s.store.ListReceipts,
		get:    s.store.GetReceipt,
		create: s.store.CreateReceipt,
		update: s.store.UpdateReceipt,
		delete: s.store.DeleteReceipt,
		prepare: func(r *core.Receipt, today core.Date) error {
			r.Normalize(today)
			return r.Validate()
		},
		id:    func(r core.Receipt) int64 { return r.ID },
		setID: func(r *core.Receipt, id int64) { r.ID = id },
	}
}

func (s *RecordService) withdrawals() table[core.Withdrawal] {
	return table[core.Withdrawal]{
		name:   core.TableWithdrawals,
		list:   s.store.ListWithdrawals,
		get:    s.store.GetWithdrawal,
		create: s.store.CreateWithdrawal,
		update: s.store.UpdateWithdrawal,
		delete: s.store.DeleteWithdrawal,
		prepare: func(w *core.Withdrawal, today core.Date) error {
			w.Normalize(today)
			return w.Validate()
		},
		id:    func(w core.Withdrawal) int64 { return w.ID },
		setID: func(w *core.Withdrawal, id int64) { w.ID = id },
	}
}

func (s *RecordService) items() table[core.WithdrawalItem] {
	return table[core.WithdrawalItem]{
		name:   core.TableWithdrawalItems,
		list:   s.store.ListWithdrawalItems,
		get:    s.store.GetWithdrawalItem,
		create: s.store.CreateWithdrawalItem,
		update: s.store.UpdateWithdrawalItem,
		delete: s.store.DeleteWithdrawalItem,
		prepare: func(it *core.WithdrawalItem, today core.Date) error {
			it.Normalize(today)
			return it.Validate()
		},
		id:    func(it core.WithdrawalItem) int64 { return it.ID },
		setID: func(it *core.WithdrawalItem, id int64) { it.ID = id },
	}
}

func listAll[T any](ctx context.Context, s *RecordService, t table[T]) ([]T, error) {
	ns := cache.For[[]T](s.cache, t.name)
	if rows, ok := ns.Get(allKey); ok {
		return rows, nil
	}
	gen := s.generation(t.name)
	rows, err := t.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}

	s.genMu.Lock()
	if s.generations[t.name] == gen {
		ns.Set(allKey, rows)
	}
	s.genMu.Unlock()
	return rows, nil
}

func (s *RecordService) generation(tableName string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[tableName]
}

// Invalidate drops the cached list of a table. Writes made through the
// service do this themselves; callers use it for changes made elsewhere,
// such as another process writing to the same database.
func (s *RecordService) Invalidate(tableName string) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.generations[tableName]++
	cache.For[any](s.cache, tableName).Clear()
}

func search[T interface{ Matches(string) bool }](ctx context.Context, s *RecordService, t table[T], query string) ([]T, error) {
	rows, err := listAll(ctx, s, t)
	if err != nil {
		return nil, err
	}
	return core.Filter(rows, query), nil
}

func getRecord[T any](ctx context.Context, t table[T], id int64) (T, error) {
	var zero T
	if id <= 0 {
		return zero, core.ErrInvalidID
	}
	rec, err := t.get(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("get %s %d: %w", t.name, id, err)
	}
	return rec, nil
}

func createRecord[T any](ctx context.Context, s *RecordService, t table[T], rec T) (T, error) {
	var zero T
	if err := t.prepare(&rec, s.today()); err != nil {
		return zero, err
	}
	saved, err := t.create(ctx, rec)
	if err != nil {
		return zero, fmt.Errorf("create %s: %w", t.name, err)
	}
	s.written(ctx, t.name, core.OpInsert, t.id(saved))
	return saved, nil
}

func updateRecord[T any](ctx context.Context, s *RecordService, t table[T], id int64, rec T) (T, error) {
	var zero T
	if id <= 0 {
		return zero, core.ErrInvalidID
	}
	t.setID(&rec, id)
	if err := t.prepare(&rec, s.today()); err != nil {
		return zero, err
	}
	saved, err := t.update(ctx, rec)
	if err != nil {
		return zero, fmt.Errorf("update %s %d: %w", t.name, id, err)
	}
	s.written(ctx, t.name, core.OpUpdate, id)
	return saved, nil
}

func deleteRecord[T any](ctx context.Context, s *RecordService, t table[T], id int64) error {
	if id <= 0 {
		return core.ErrInvalidID
	}
	if err := t.delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", t.name, id, err)
	}
	s.written(ctx, t.name, core.OpDelete, id)
	return nil
}

// written runs after a successful store write. The record is already
// persisted, so notification failures are logged and not returned.
func (s *RecordService) written(ctx context.Context, tableName, op string, id int64) {
	s.Invalidate(tableName)
	s.logger.LogWrite(ctx, op, tableName, id)

	if s.notifier == nil {
		s.logger.WarnContext(ctx, "No notifier configured, skipping change notification",
			log.FieldTable, tableName, log.FieldRecordID, id)
		return
	}
	change := core.Change{Table: tableName, Op: op, ID: id}
	if err := s.notifier.Notify(ctx, change); err != nil {
		s.logger.Fail(ctx, "Failed to publish change notification", err,
			log.FieldTable, tableName, log.FieldRecordID, id)
	}
}

// Receipts

func (s *RecordService) ListReceipts(ctx context.Context, query string) ([]core.Receipt, error) {
	return search(ctx, s, s.receipts(), query)
}

func (s *RecordService) GetReceipt(ctx context.Context, id int64) (core.Receipt, error) {
	return getRecord(ctx, s.receipts(), id)
}

func (s *RecordService) CreateReceipt(ctx context.Context, r core.Receipt) (core.Receipt, error) {
	return createRecord(ctx, s, s.receipts(), r)
}

func (s *RecordService) UpdateReceipt(ctx context.Context, id int64, r core.Receipt) (core.Receipt, error) {
	return updateRecord(ctx, s, s.receipts(), id, r)
}

func (s *RecordService) DeleteReceipt(ctx context.Context, id int64) error {
	return deleteRecord(ctx, s, s.receipts(), id)
}

// Withdrawals

func (s *RecordService) ListWithdrawals(ctx context.Context, query string) ([]core.Withdrawal, error) {
	return search(ctx, s, s.withdrawals(), query)
}

func (s *RecordService) GetWithdrawal(ctx context.Context, id int64) (core.Withdrawal, error) {
	return getRecord(ctx, s.withdrawals(), id)
}

func (s *RecordService) CreateWithdrawal(ctx context.Context, w core.Withdrawal) (core.Withdrawal, error) {
	return createRecord(ctx, s, s.withdrawals(), w)
}

func (s *RecordService) UpdateWithdrawal(ctx context.Context, id int64, w core.Withdrawal) (core.Withdrawal, error) {
	return updateRecord(ctx, s, s.withdrawals(), id, w)
}

func (s *RecordService) DeleteWithdrawal(ctx context.Context, id int64) error {
	return deleteRecord(ctx, s, s.withdrawals(), id)
}

// Withdrawal items

func (s *RecordService) ListWithdrawalItems(ctx context.Context, query string) ([]core.WithdrawalItem, error) {
	return search(ctx, s, s.items(), query)
}

func (s *RecordService) GetWithdrawalItem(ctx context.Context, id int64) (core.WithdrawalItem, error) {
	return getRecord(ctx, s.items(), id)
}

func (s *RecordService) CreateWithdrawalItem(ctx context.Context, it core.WithdrawalItem) (core.WithdrawalItem, error) {
	return createRecord(ctx, s, s.items(), it)
}

func (s *RecordService) UpdateWithdrawalItem(ctx context.Context, id int64, it core.WithdrawalItem) (core.WithdrawalItem, error) {
	return updateRecord(ctx, s, s.items(), id, it)
}

func (s *RecordService) DeleteWithdrawalItem(ctx context.Context, id int64) error {
	return deleteRecord(ctx, s, s.items(), id)
}
