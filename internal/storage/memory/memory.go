package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"estoque/internal/core"
)

// Store keeps all records in process memory. It backs the "memory" data
// backend and doubles as the store in tests.
type Store struct {
	mu          sync.RWMutex
	now         func() time.Time
	nextID      int64
	receipts    []core.Receipt
	withdrawals []core.Withdrawal
	items       []core.WithdrawalItem
}

var _ core.Store = (*Store)(nil)

// Seed is the on-disk shape accepted by NewFromFile.
type Seed struct {
	Receipts        []core.Receipt        `json:"recebimentos"`
	Withdrawals     []core.Withdrawal     `json:"retiradas"`
	WithdrawalItems []core.WithdrawalItem `json:"retirada_itens"`
}

func New() *Store {
	return &Store{now: time.Now}
}

// NewFromFile loads a JSON seed. A missing file gives an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	ctx := context.Background()
	for _, r := range seed.Receipts {
		if _, err := s.CreateReceipt(ctx, r); err != nil {
			return nil, err
		}
	}
	for _, w := range seed.Withdrawals {
		if _, err := s.CreateWithdrawal(ctx, w); err != nil {
			return nil, err
		}
	}
	for _, it := range seed.WithdrawalItems {
		if _, err := s.CreateWithdrawalItem(ctx, it); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// SetClock replaces the time source used for created_at/updated_at.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) stamp() core.Timestamp {
	return core.Timestamp{Time: s.now().UTC()}
}

func (s *Store) Close() error { return nil }

// newest returns a sorted copy so callers never share the backing array.
func newest[T any](rows []T, key func(T) (core.Timestamp, int64)) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	core.SortNewestFirst(out, key)
	return out
}

func indexOf[T any](rows []T, id int64, idOf func(T) int64) int {
	for i, r := range rows {
		if idOf(r) == id {
			return i
		}
	}
	return -1
}

func receiptKey(r core.Receipt) (core.Timestamp, int64)       { return r.CreatedAt, r.ID }
func withdrawalKey(w core.Withdrawal) (core.Timestamp, int64) { return w.CreatedAt, w.ID }
func itemKey(it core.WithdrawalItem) (core.Timestamp, int64)  { return it.CreatedAt, it.ID }
func receiptID(r core.Receipt) int64                          { return r.ID }
func withdrawalID(w core.Withdrawal) int64                    { return w.ID }
func itemID(it core.WithdrawalItem) int64                     { return it.ID }

func (s *Store) ListReceipts(_ context.Context) ([]core.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newest(s.receipts, receiptKey), nil
}

func (s *Store) GetReceipt(_ context.Context, id int64) (core.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.receipts, id, receiptID)
	if i < 0 {
		return core.Receipt{}, core.ErrNotFound
	}
	return s.receipts[i], nil
}

func (s *Store) CreateReceipt(_ context.Context, r core.Receipt) (core.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r.ID = s.nextID
	r.CreatedAt = s.stamp()
	r.UpdatedAt = r.CreatedAt
	s.receipts = append(s.receipts, r)
	return r, nil
}

func (s *Store) UpdateReceipt(_ context.Context, r core.Receipt) (core.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.receipts, r.ID, receiptID)
	if i < 0 {
		return core.Receipt{}, core.ErrNotFound
	}
	r.CreatedAt = s.receipts[i].CreatedAt
	r.UpdatedAt = s.stamp()
	s.receipts[i] = r
	return r, nil
}

func (s *Store) DeleteReceipt(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.receipts, id, receiptID)
	if i < 0 {
		return core.ErrNotFound
	}
	s.receipts = append(s.receipts[:i], s.receipts[i+1:]...)
	return nil
}

func (s *Store) ListWithdrawals(_ context.Context) ([]core.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newest(s.withdrawals, withdrawalKey), nil
}

func (s *Store) GetWithdrawal(_ context.Context, id int64) (core.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.withdrawals, id, withdrawalID)
	if i < 0 {
		return core.Withdrawal{}, core.ErrNotFound
	}
	return s.withdrawals[i], nil
}

func (s *Store) CreateWithdrawal(_ context.Context, w core.Withdrawal) (core.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	w.ID = s.nextID
	w.CreatedAt = s.stamp()
	w.UpdatedAt = w.CreatedAt
	s.withdrawals = append(s.withdrawals, w)
	return w, nil
}

func (s *Store) UpdateWithdrawal(_ context.Context, w core.Withdrawal) (core.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.withdrawals, w.ID, withdrawalID)
	if i < 0 {
		return core.Withdrawal{}, core.ErrNotFound
	}
	w.CreatedAt = s.withdrawals[i].CreatedAt
	w.UpdatedAt = s.stamp()
	s.withdrawals[i] = w
	return w, nil
}

func (s *Store) DeleteWithdrawal(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.withdrawals, id, withdrawalID)
	if i < 0 {
		return core.ErrNotFound
	}
	s.withdrawals = append(s.withdrawals[:i], s.withdrawals[i+1:]...)
	return nil
}

func (s *Store) ListWithdrawalItems(_ context.Context) ([]core.WithdrawalItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newest(s.items, itemKey), nil
}

func (s *Store) GetWithdrawalItem(_ context.Context, id int64) (core.WithdrawalItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.items, id, itemID)
	if i < 0 {
		return core.WithdrawalItem{}, core.ErrNotFound
	}
	return s.items[i], nil
}

func (s *Store) CreateWithdrawalItem(_ context.Context, it core.WithdrawalItem) (core.WithdrawalItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	it.ID = s.nextID
	it.CreatedAt = s.stamp()
	it.UpdatedAt = it.CreatedAt
	s.items = append(s.items, it)
	return it, nil
}

func (s *Store) UpdateWithdrawalItem(_ context.Context, it core.WithdrawalItem) (core.WithdrawalItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.items, it.ID, itemID)
	if i < 0 {
		return core.WithdrawalItem{}, core.ErrNotFound
	}
	it.CreatedAt = s.items[i].CreatedAt
	it.UpdatedAt = s.stamp()
	s.items[i] = it
	return it, nil
}

func (s *Store) DeleteWithdrawalItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.items, id, itemID)
	if i < 0 {
		return core.ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}
