package core

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func receipt(supplier, total, date string) Receipt {
	r := Receipt{Supplier: supplier, TotalPrice: dec(total), Quantity: dec("1")}
	if date != "" {
		r.PostingDate, _ = ParseDate(date)
	}
	return r
}

func withdrawal(date, status, regional string) Withdrawal {
	w := Withdrawal{Status: status, Regional: regional}
	if date != "" {
		w.Date, _ = ParseDate(date)
	}
	return w
}

func TestAggregateTwoReceiptsSameMonth(t *testing.T) {
	receipts := []Receipt{
		receipt("A", "100", "2025-01-10"),
		receipt("B", "50", "2025-01-20"),
	}
	d := Aggregate(receipts, nil)

	if len(d.Monthly) != 1 {
		t.Fatalf("expected one month, got %d", len(d.Monthly))
	}
	m := d.Monthly[0]
	if m.Key != "2025-01" || m.Label != "jan." {
		t.Fatalf("unexpected month %q/%q", m.Key, m.Label)
	}
	if m.Receipts != 2 || !m.Value.Equal(dec("150")) || m.Withdrawals != 0 {
		t.Fatalf("unexpected totals %+v", m)
	}

	if len(d.TopSuppliers) != 2 {
		t.Fatalf("expected two suppliers, got %d", len(d.TopSuppliers))
	}
	if d.TopSuppliers[0].Name != "A" || !d.TopSuppliers[0].Value.Equal(dec("100")) {
		t.Fatalf("unexpected first supplier %+v", d.TopSuppliers[0])
	}
	if d.TopSuppliers[1].Name != "B" || !d.TopSuppliers[1].Value.Equal(dec("50")) {
		t.Fatalf("unexpected second supplier %+v", d.TopSuppliers[1])
	}
}

func TestAggregateEmpty(t *testing.T) {
	d := Aggregate(nil, nil)
	if d.Monthly == nil || d.TopSuppliers == nil || d.Regionals == nil || d.Statuses == nil {
		t.Fatalf("expected non-nil empty views, got %+v", d)
	}
	if len(d.Monthly)+len(d.TopSuppliers)+len(d.Regionals)+len(d.Statuses) != 0 {
		t.Fatalf("expected empty views, got %+v", d)
	}
}

func TestMonthlySeriesKeepsSixMostRecent(t *testing.T) {
	var receipts []Receipt
	for m := 1; m <= 7; m++ {
		receipts = append(receipts, receipt("A", "10", fmt.Sprintf("2025-%02d-05", m)))
	}
	series := MonthlySeries(receipts, nil)
	if len(series) != MonthlyWindow {
		t.Fatalf("expected %d months, got %d", MonthlyWindow, len(series))
	}
	if series[0].Key != "2025-02" || series[5].Key != "2025-07" {
		t.Fatalf("unexpected window %s..%s", series[0].Key, series[5].Key)
	}
	for i := 1; i < len(series); i++ {
		if series[i-1].Key >= series[i].Key {
			t.Fatalf("series not ordered at %d: %s >= %s", i, series[i-1].Key, series[i].Key)
		}
	}
}

func TestMonthlySeriesAcrossYears(t *testing.T) {
	receipts := []Receipt{
		receipt("A", "1", "2025-03-01"),
		receipt("A", "1", "2024-03-01"),
		receipt("A", "1", "2024-12-31"),
	}
	series := MonthlySeries(receipts, nil)
	var keys []string
	for _, p := range series {
		keys = append(keys, p.Key)
	}
	want := []string{"2024-03", "2024-12", "2025-03"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	if series[0].Label != "mar." || series[2].Label != "mar." {
		t.Fatalf("labels = %q, %q", series[0].Label, series[2].Label)
	}
}

func TestMonthlySeriesMergesStreams(t *testing.T) {
	receipts := []Receipt{receipt("A", "10", "2025-02-01")}
	withdrawals := []Withdrawal{
		withdrawal("2025-02-10", "Pendente", ""),
		withdrawal("2025-03-10", "Pendente", ""),
	}
	series := MonthlySeries(receipts, withdrawals)
	if len(series) != 2 {
		t.Fatalf("expected 2 months, got %d", len(series))
	}
	if series[0].Receipts != 1 || series[0].Withdrawals != 1 {
		t.Fatalf("feb = %+v", series[0])
	}
	if series[1].Receipts != 0 || series[1].Withdrawals != 1 || !series[1].Value.IsZero() {
		t.Fatalf("mar = %+v", series[1])
	}
}

func TestMonthlySeriesSkipsUndated(t *testing.T) {
	receipts := []Receipt{
		receipt("A", "10", "2025-02-01"),
		receipt("A", "10", ""),
		receipt("A", "10", "not a date"),
	}
	series := MonthlySeries(receipts, []Withdrawal{withdrawal("", "", "")})
	total := 0
	for _, p := range series {
		total += p.Receipts + p.Withdrawals
	}
	if total != 1 {
		t.Fatalf("expected only the dated receipt to count, got %d", total)
	}
}

func TestTopSuppliers(t *testing.T) {
	receipts := []Receipt{
		receipt("", "5", "2025-01-01"),
		receipt("A", "10", "2025-01-01"),
		receipt("B", "70", "2025-01-01"),
		receipt("C", "30", "2025-01-01"),
		receipt("D", "30", "2025-01-01"),
		receipt("E", "1", "2025-01-01"),
		receipt("A", "15", "2025-01-01"),
	}
	top := TopSuppliers(receipts)
	if len(top) != TopSupplierSize {
		t.Fatalf("expected %d suppliers, got %d", TopSupplierSize, len(top))
	}
	var names []string
	for _, s := range top {
		names = append(names, s.Name)
	}
	want := []string{"B", "C", "D", "A", UnidentifiedLabel}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	if !top[3].Quantity.Equal(dec("2")) || !top[3].Value.Equal(dec("25")) {
		t.Fatalf("A = %+v", top[3])
	}
	for i := 1; i < len(top); i++ {
		if top[i].Value.GreaterThan(top[i-1].Value) {
			t.Fatalf("ranking increases at %d", i)
		}
	}
}

func TestRegionalCounts(t *testing.T) {
	var ws []Withdrawal
	add := func(regional string, n int) {
		for i := 0; i < n; i++ {
			ws = append(ws, withdrawal("2025-01-01", "Pendente", regional))
		}
	}
	add("Norte", 1)
	add("", 2)
	add("Sul", 4)
	add("Leste", 3)
	add("Oeste", 1)
	add("Centro", 1)

	got := RegionalCounts(ws)
	want := []RegionalCount{
		{Regional: "Sul", Count: 4},
		{Regional: "Leste", Count: 3},
		{Regional: UnidentifiedLabel, Count: 2},
		{Regional: "Norte", Count: 1},
		{Regional: "Oeste", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestStatusCounts(t *testing.T) {
	ws := []Withdrawal{
		withdrawal("", "Concluído", ""),
		withdrawal("", "", ""),
		withdrawal("", "Pendente", ""),
		withdrawal("", "Concluído", ""),
	}
	got := StatusCounts(ws)
	want := []StatusCount{
		{Status: "Concluído", Count: 2},
		{Status: NoStatusLabel, Count: 1},
		{Status: "Pendente", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	sum := 0
	for _, s := range got {
		sum += s.Count
	}
	if sum != len(ws) {
		t.Fatalf("status counts sum to %d, want %d", sum, len(ws))
	}
}

func TestAggregateIdempotent(t *testing.T) {
	receipts := []Receipt{
		receipt("A", "10", "2025-01-01"),
		receipt("B", "10", "2025-02-01"),
		receipt("C", "10", "2025-03-01"),
	}
	withdrawals := []Withdrawal{
		withdrawal("2025-01-03", "Pendente", "Norte"),
		withdrawal("2025-02-03", "", "Sul"),
	}
	first := Aggregate(receipts, withdrawals)
	second := Aggregate(receipts, withdrawals)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation is not idempotent:\n%+v\n%+v", first, second)
	}
	if receipts[0].Supplier != "A" || withdrawals[1].Status != "" {
		t.Fatalf("inputs were modified")
	}
}
