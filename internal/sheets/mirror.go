// Package sheets mirrors the inventory tables into spreadsheet tabs.
package sheets

import (
	"context"
	"fmt"

	"estoque/internal/core"
)

// Tab names in the mirrored spreadsheet.
const (
	TabReceipts    = "Recebimentos"
	TabWithdrawals = "Retiradas"
	TabItems       = "Itens"
)

// Snapshot is the full content of the three tables at one point in time.
type Snapshot struct {
	Receipts    []core.Receipt
	Withdrawals []core.Withdrawal
	Items       []core.WithdrawalItem
}

var (
	receiptHeader = []any{"id", "pedido", "cod_sap", "item", "qtde", "valor_unit", "valor_total",
		"fornecedor", "nota_fiscal", "statis", "miro", "data_lanc"}
	withdrawalHeader = []any{"id", "data", "mes", "dia_da_semana", "status_da_retirada", "empresa",
		"local", "solicitante", "entregue_por", "retirado_por", "fazenda", "modulo", "regional"}
	itemHeader = []any{"id", "data", "mes", "dia_da_semana", "status_da_retirada", "empresa",
		"cod_sap", "item", "quantidade", "unidade_medida", "valor_unitario", "valor_total", "local",
		"solicitante", "entregue_por", "retirado_por", "fazenda", "modulo", "regional"}
)

// ReceiptRows renders receipts as a header plus one row per record.
// Numbers go out as plain decimal text so the sheet locale parses them.
func ReceiptRows(receipts []core.Receipt) [][]any {
	rows := make([][]any, 0, len(receipts)+1)
	rows = append(rows, receiptHeader)
	for _, r := range receipts {
		rows = append(rows, []any{
			r.ID, r.OrderRef, r.SAPCode, r.Item, r.Quantity.String(), r.UnitPrice.StringFixed(2),
			r.TotalPrice.StringFixed(2), r.Supplier, r.Invoice, r.Status, r.Miro, r.PostingDate.String(),
		})
	}
	return rows
}

func WithdrawalRows(withdrawals []core.Withdrawal) [][]any {
	rows := make([][]any, 0, len(withdrawals)+1)
	rows = append(rows, withdrawalHeader)
	for _, w := range withdrawals {
		rows = append(rows, []any{
			w.ID, w.Date.String(), w.Month, w.Weekday, w.Status, w.Company, w.Location,
			w.Requester, w.DeliveredBy, w.ReceivedBy, w.Farm, w.Module, w.Regional,
		})
	}
	return rows
}

func ItemRows(items []core.WithdrawalItem) [][]any {
	rows := make([][]any, 0, len(items)+1)
	rows = append(rows, itemHeader)
	for _, it := range items {
		rows = append(rows, []any{
			it.ID, it.Date.String(), it.Month, it.Weekday, it.Status, it.Company, it.SAPCode, it.Item,
			it.Quantity.String(), it.Unit, it.UnitValue, it.TotalValue, it.Location, it.Requester,
			it.DeliveredBy, it.ReceivedBy, it.Farm, it.Module, it.Regional,
		})
	}
	return rows
}

// Publish rewrites the three tabs from snap. It stops at the first failing
// tab; the next publish rewrites everything again.
func Publish(ctx context.Context, w TabWriter, snap Snapshot) error {
	tabs := []struct {
		name string
		rows [][]any
	}{
		{TabReceipts, ReceiptRows(snap.Receipts)},
		{TabWithdrawals, WithdrawalRows(snap.Withdrawals)},
		{TabItems, ItemRows(snap.Items)},
	}
	for _, tab := range tabs {
		if err := w.ReplaceTab(ctx, tab.name, tab.rows); err != nil {
			return fmt.Errorf("publish tab %s: %w", tab.name, err)
		}
	}
	return nil
}
