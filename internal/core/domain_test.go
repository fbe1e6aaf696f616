package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestMonthAndWeekdayNames(t *testing.T) {
	cases := []struct {
		date    string
		month   string
		weekday string
	}{
		{"2025-01-05", "Janeiro", "Domingo"},
		{"2025-03-10", "Março", "Segunda-feira"},
		{"2025-10-18", "Outubro", "Sábado"},
		{"2024-12-31", "Dezembro", "Terça-feira"},
	}
	for _, tc := range cases {
		t.Run(tc.date, func(t *testing.T) {
			d, err := ParseDate(tc.date)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := MonthName(d); got != tc.month {
				t.Fatalf("MonthName = %q, want %q", got, tc.month)
			}
			if got := WeekdayName(d); got != tc.weekday {
				t.Fatalf("WeekdayName = %q, want %q", got, tc.weekday)
			}
		})
	}
	if MonthName(Date{}) != "" || WeekdayName(Date{}) != "" {
		t.Fatalf("empty date should give empty names")
	}
}

func TestParseDateLayouts(t *testing.T) {
	for _, s := range []string{"2025-01-10", "2025-01-10T08:30:00Z", "2025-01-10 08:30:00", "10/01/2025"} {
		d, err := ParseDate(s)
		if err != nil {
			t.Fatalf("%q: %v", s, err)
		}
		if d.String() != "2025-01-10" {
			t.Fatalf("%q parsed as %s", s, d)
		}
	}
	if _, err := ParseDate("janeiro"); err == nil {
		t.Fatalf("expected error for garbage")
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan("bogus"); err != nil || !d.IsEmpty() {
		t.Fatalf("malformed text should scan as empty, got %v %v", d, err)
	}
	if err := d.Scan(time.Date(2025, 2, 3, 23, 0, 0, 0, time.UTC)); err != nil || d.String() != "2025-02-03" {
		t.Fatalf("time scan gave %v %v", d, err)
	}
	if err := d.Scan(nil); err != nil || !d.IsEmpty() {
		t.Fatalf("nil should scan as empty")
	}
	if err := d.Scan(42); err == nil {
		t.Fatalf("expected error for int")
	}
}

func TestDateJSON(t *testing.T) {
	var w Withdrawal
	if err := json.Unmarshal([]byte(`{"data":"2025-04-01","empresa":"X"}`), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w.Date.String() != "2025-04-01" {
		t.Fatalf("date = %s", w.Date)
	}
	out, err := json.Marshal(Withdrawal{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	_ = json.Unmarshal(out, &m)
	if m["data"] != nil {
		t.Fatalf("empty date should marshal as null, got %v", m["data"])
	}
}

func TestReceiptNormalize(t *testing.T) {
	today := NewDate(2025, 6, 1)
	r := Receipt{Item: " Parafuso ", Quantity: dec("3"), UnitPrice: dec("2.5")}
	r.Normalize(today)
	if r.Item != "Parafuso" {
		t.Fatalf("item not trimmed: %q", r.Item)
	}
	if !r.TotalPrice.Equal(dec("7.5")) {
		t.Fatalf("total = %s", r.TotalPrice)
	}
	if r.PostingDate != today {
		t.Fatalf("posting date = %s", r.PostingDate)
	}

	stored := Receipt{Item: "x", Quantity: dec("3"), UnitPrice: dec("2.5"), TotalPrice: dec("8")}
	stored.Normalize(today)
	if !stored.TotalPrice.Equal(dec("8")) {
		t.Fatalf("stored total should be kept, got %s", stored.TotalPrice)
	}
}

func TestReceiptValidate(t *testing.T) {
	good := Receipt{SAPCode: "100200", Quantity: dec("1"), UnitPrice: dec("1")}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Receipt{
		{Quantity: dec("1")},
		{Item: "a", Quantity: dec("-1")},
		{Item: "a", UnitPrice: dec("-0.01")},
	}
	for i, r := range bads {
		err := r.Validate()
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestWithdrawalNormalize(t *testing.T) {
	w := Withdrawal{Company: "Bracell", Location: "Almoxarifado"}
	w.Normalize(NewDate(2025, 10, 17))
	if w.Status != DefaultStatus {
		t.Fatalf("status = %q", w.Status)
	}
	if w.Month != "Outubro" || w.Weekday != "Sexta-feira" {
		t.Fatalf("derived %q/%q", w.Month, w.Weekday)
	}

	kept := Withdrawal{Date: NewDate(2025, 1, 1), Status: StatusDone}
	kept.Normalize(NewDate(2025, 10, 17))
	if kept.Status != StatusDone || kept.Month != "Janeiro" {
		t.Fatalf("unexpected %+v", kept)
	}
	if err := kept.Validate(); err == nil {
		t.Fatalf("expected error without empresa/local")
	}
}

func TestWithdrawalItemNormalizeAndValidate(t *testing.T) {
	it := WithdrawalItem{Item: "Luva", Quantity: dec("4"), UnitValue: "2,50"}
	it.Normalize(NewDate(2025, 2, 2))
	if it.Location != DefaultItemLocation {
		t.Fatalf("location = %q", it.Location)
	}
	if it.TotalValue != "10" {
		t.Fatalf("total value = %q", it.TotalValue)
	}
	if !it.TotalAmount().Equal(dec("10")) {
		t.Fatalf("total amount = %s", it.TotalAmount())
	}
	if err := it.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []WithdrawalItem{
		{Quantity: dec("1")},
		{Item: "x"},
		{Item: "x", Quantity: dec("1"), UnitValue: "abc"},
	}
	for i, c := range cases {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
