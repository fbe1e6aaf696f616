package report

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"estoque/internal/core"
)

func sampleData() (core.Dashboard, core.Panel) {
	receipts := []core.Receipt{
		{Supplier: "Agro Sul", Quantity: decimal.NewFromInt(2), TotalPrice: decimal.RequireFromString("1500.50"), PostingDate: core.NewDate(2024, 3, 4)},
		{Supplier: "", Quantity: decimal.NewFromInt(1), TotalPrice: decimal.NewFromInt(10), PostingDate: core.NewDate(2024, 3, 9)},
	}
	withdrawals := []core.Withdrawal{
		{Regional: "Norte", Status: core.DefaultStatus, Date: core.NewDate(2024, 3, 10)},
		{Regional: "", Status: "", Date: core.NewDate(2024, 2, 1)},
	}
	return core.Aggregate(receipts, withdrawals), core.BuildPanel(receipts, withdrawals)
}

func TestMarkdown(t *testing.T) {
	d, p := sampleData()
	md := Markdown(d, p, time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC))

	for _, want := range []string{
		"Gerado em 15/03/2024 09:30",
		"| Recebimentos | 2 |",
		"| Fornecedores ativos | 1 |",
		"| Agro Sul | 2 | " + core.FormatBRL(decimal.RequireFromString("1500.50")) + " |",
		"| " + core.UnidentifiedLabel + " | 1 | " + core.FormatBRL(decimal.NewFromInt(10)) + " |",
		"| Norte | 1 |",
		"| " + core.NoStatusLabel + " | 1 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
}

func TestMarkdown_Empty(t *testing.T) {
	md := Markdown(core.Aggregate(nil, nil), core.BuildPanel(nil, nil), time.Now())

	if !strings.Contains(md, "Sem movimentação no período.") {
		t.Error("expected empty monthly message")
	}
	if strings.Count(md, "Nenhuma retirada registrada.") != 2 {
		t.Error("expected empty message for regionals and statuses")
	}
}

func TestRender(t *testing.T) {
	d, p := sampleData()
	out, err := Render(Markdown(d, p, time.Now()), "notty", 120)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "Agro Sul") {
		t.Errorf("rendered output missing supplier:\n%s", out)
	}
	if !strings.Contains(out, "Principais fornecedores") {
		t.Errorf("rendered output missing heading:\n%s", out)
	}
}
