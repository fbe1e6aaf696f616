package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

const (
	// UnidentifiedLabel groups receipts without supplier and withdrawals without regional.
	UnidentifiedLabel = "Não identificado"
	// NoStatusLabel groups withdrawals without status.
	NoStatusLabel = "Sem status"

	MonthlyWindow   = 6
	TopSupplierSize = 5
	TopRegionalSize = 5
)

type (
	// MonthlyPoint is one month of the time series.
	MonthlyPoint struct {
		Key         string          `json:"chave"` // YYYY-MM
		Label       string          `json:"mes"`
		Receipts    int             `json:"total"`
		Value       decimal.Decimal `json:"valor"`
		Withdrawals int             `json:"retiradas"`
	}

	// SupplierTotal sums receipts of one supplier.
	SupplierTotal struct {
		Name     string          `json:"nome"`
		Quantity decimal.Decimal `json:"quantidade"`
		Value    decimal.Decimal `json:"valor"`
	}

	RegionalCount struct {
		Regional string `json:"setor"`
		Count    int    `json:"quantidade"`
	}

	StatusCount struct {
		Status string `json:"status"`
		Count  int    `json:"quantidade"`
	}

	// Dashboard holds the four chart views derived from a snapshot.
	Dashboard struct {
		Monthly      []MonthlyPoint  `json:"mensal"`
		TopSuppliers []SupplierTotal `json:"fornecedores"`
		Regionals    []RegionalCount `json:"regionais"`
		Statuses     []StatusCount   `json:"status"`
	}
)

// Aggregate derives the dashboard views from the full set of receipts and
// withdrawals. It never fails and does not modify its inputs; empty inputs
// give empty, non-nil views.
//
// Groups that tie on the sort value keep the order in which they were first
// seen in the input.
func Aggregate(receipts []Receipt, withdrawals []Withdrawal) Dashboard {
	return Dashboard{
		Monthly:      MonthlySeries(receipts, withdrawals),
		TopSuppliers: TopSuppliers(receipts),
		Regionals:    RegionalCounts(withdrawals),
		Statuses:     StatusCounts(withdrawals),
	}
}

// MonthlySeries buckets receipts by posting month and withdrawals by date
// month, keeping the most recent six months in chronological order.
// Records without a date are left out.
func MonthlySeries(receipts []Receipt, withdrawals []Withdrawal) []MonthlyPoint {
	buckets := make(map[string]*MonthlyPoint)
	bucket := func(key string) *MonthlyPoint {
		p, ok := buckets[key]
		if !ok {
			p = &MonthlyPoint{Key: key, Value: decimal.Zero}
			buckets[key] = p
		}
		return p
	}

	for _, r := range receipts {
		if r.PostingDate.IsEmpty() {
			continue
		}
		p := bucket(r.PostingDate.MonthKey())
		p.Receipts++
		p.Value = p.Value.Add(r.TotalPrice)
	}
	for _, w := range withdrawals {
		if w.Date.IsEmpty() {
			continue
		}
		bucket(w.Date.MonthKey()).Withdrawals++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > MonthlyWindow {
		keys = keys[len(keys)-MonthlyWindow:]
	}

	out := make([]MonthlyPoint, 0, len(keys))
	for _, k := range keys {
		p := *buckets[k]
		p.Label = ShortMonthLabel(k)
		out = append(out, p)
	}
	return out
}

// TopSuppliers ranks suppliers by summed receipt value.
func TopSuppliers(receipts []Receipt) []SupplierTotal {
	var order []string
	totals := make(map[string]*SupplierTotal)
	for _, r := range receipts {
		name := r.Supplier
		if name == "" {
			name = UnidentifiedLabel
		}
		t, ok := totals[name]
		if !ok {
			t = &SupplierTotal{Name: name, Quantity: decimal.Zero, Value: decimal.Zero}
			totals[name] = t
			order = append(order, name)
		}
		t.Quantity = t.Quantity.Add(r.Quantity)
		t.Value = t.Value.Add(r.TotalPrice)
	}

	out := make([]SupplierTotal, 0, len(order))
	for _, name := range order {
		out = append(out, *totals[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value.GreaterThan(out[j].Value)
	})
	if len(out) > TopSupplierSize {
		out = out[:TopSupplierSize]
	}
	return out
}

// RegionalCounts counts withdrawals per regional, largest first.
func RegionalCounts(withdrawals []Withdrawal) []RegionalCount {
	names, counts := countBy(withdrawals, func(w Withdrawal) string {
		if w.Regional == "" {
			return UnidentifiedLabel
		}
		return w.Regional
	})

	out := make([]RegionalCount, 0, len(names))
	for _, n := range names {
		out = append(out, RegionalCount{Regional: n, Count: counts[n]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > TopRegionalSize {
		out = out[:TopRegionalSize]
	}
	return out
}

// StatusCounts counts withdrawals per status in first-seen order.
func StatusCounts(withdrawals []Withdrawal) []StatusCount {
	names, counts := countBy(withdrawals, func(w Withdrawal) string {
		if w.Status == "" {
			return NoStatusLabel
		}
		return w.Status
	})

	out := make([]StatusCount, 0, len(names))
	for _, n := range names {
		out = append(out, StatusCount{Status: n, Count: counts[n]})
	}
	return out
}

func countBy[T any](items []T, key func(T) string) ([]string, map[string]int) {
	var order []string
	counts := make(map[string]int)
	for _, it := range items {
		k := key(it)
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}
	return order, counts
}
