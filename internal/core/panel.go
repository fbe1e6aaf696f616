package core

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const RecentSize = 5

// Panel is the overview shown on the landing page after login.
type Panel struct {
	TotalReceipts      int             `json:"total_recebimentos"`
	TotalValue         decimal.Decimal `json:"valor_total"`
	ActiveSuppliers    int             `json:"fornecedores_ativos"`
	TotalWithdrawals   int             `json:"total_retiradas"`
	PendingWithdrawals int             `json:"retiradas_pendentes"`
	RecentReceipts     []Receipt       `json:"recebimentos_recentes"`
	RecentWithdrawals  []Withdrawal    `json:"retiradas_recentes"`
}

// BuildPanel computes the overview counters and the most recent records.
func BuildPanel(receipts []Receipt, withdrawals []Withdrawal) Panel {
	p := Panel{
		TotalReceipts:    len(receipts),
		TotalValue:       decimal.Zero,
		TotalWithdrawals: len(withdrawals),
	}

	suppliers := make(map[string]struct{})
	for _, r := range receipts {
		p.TotalValue = p.TotalValue.Add(r.TotalPrice)
		if r.Supplier != "" {
			suppliers[r.Supplier] = struct{}{}
		}
	}
	p.ActiveSuppliers = len(suppliers)

	for _, w := range withdrawals {
		if strings.EqualFold(w.Status, DefaultStatus) {
			p.PendingWithdrawals++
		}
	}

	p.RecentReceipts = recent(receipts, func(r Receipt) (Timestamp, int64) { return r.CreatedAt, r.ID })
	p.RecentWithdrawals = recent(withdrawals, func(w Withdrawal) (Timestamp, int64) { return w.CreatedAt, w.ID })
	return p
}

func recent[T any](items []T, key func(T) (Timestamp, int64)) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)
	SortNewestFirst(sorted, key)
	if len(sorted) > RecentSize {
		sorted = sorted[:RecentSize]
	}
	return sorted
}

// SortNewestFirst orders records by creation time, newest first, then by id.
func SortNewestFirst[T any](items []T, key func(T) (Timestamp, int64)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj.Time) {
			return ti.After(tj.Time)
		}
		return idi > idj
	})
}
