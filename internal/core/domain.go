package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultStatus is assigned to withdrawals created without a status.
	DefaultStatus = "Pendente"
	// DefaultItemLocation is assigned to withdrawal items created without a location.
	DefaultItemLocation = "Logística"

	StatusInProgress = "Em Andamento"
	StatusDone       = "Concluído"
	StatusCancelled  = "Cancelado"
)

type (
	// Receipt is an incoming-material transaction ("recebimento").
	Receipt struct {
		ID          int64           `db:"id" json:"id"`
		OrderRef    string          `db:"pedido" json:"pedido"`
		SAPCode     string          `db:"cod_sap" json:"cod_sap"`
		Item        string          `db:"item" json:"item"`
		Quantity    decimal.Decimal `db:"qtde" json:"qtde"`
		UnitPrice   decimal.Decimal `db:"valor_unit" json:"valor_unit"`
		TotalPrice  decimal.Decimal `db:"valor_total" json:"valor_total"`
		Supplier    string          `db:"fornecedor" json:"fornecedor"`
		Invoice     string          `db:"nota_fiscal" json:"nota_fiscal"`
		Status      string          `db:"statis" json:"statis"`
		Miro        string          `db:"miro" json:"miro"`
		PostingDate Date            `db:"data_lanc" json:"data_lanc"`
		CreatedAt   Timestamp       `db:"created_at" json:"created_at"`
		UpdatedAt   Timestamp       `db:"updated_at" json:"updated_at"`
	}

	// Withdrawal is an outgoing-material event ("retirada").
	Withdrawal struct {
		ID          int64     `db:"id" json:"id"`
		Date        Date      `db:"data" json:"data"`
		Month       string    `db:"mes" json:"mes"`
		Weekday     string    `db:"dia_da_semana" json:"dia_da_semana"`
		Status      string    `db:"status_da_retirada" json:"status_da_retirada"`
		Company     string    `db:"empresa" json:"empresa"`
		Location    string    `db:"local" json:"local"`
		Requester   string    `db:"solicitante" json:"solicitante"`
		DeliveredBy string    `db:"entregue_por" json:"entregue_por"`
		ReceivedBy  string    `db:"retirado_por" json:"retirado_por"`
		Farm        string    `db:"fazenda" json:"fazenda"`
		Module      string    `db:"modulo" json:"modulo"`
		Regional    string    `db:"regional" json:"regional"`
		CreatedAt   Timestamp `db:"created_at" json:"created_at"`
		UpdatedAt   Timestamp `db:"updated_at" json:"updated_at"`
	}

	// WithdrawalItem is a line item of a withdrawal. Its values are kept as
	// text, the way the legacy sheets stored them.
	WithdrawalItem struct {
		ID          int64           `db:"id" json:"id"`
		Date        Date            `db:"data" json:"data"`
		Month       string          `db:"mes" json:"mes"`
		Weekday     string          `db:"dia_da_semana" json:"dia_da_semana"`
		Status      string          `db:"status_da_retirada" json:"status_da_retirada"`
		Company     string          `db:"empresa" json:"empresa"`
		SAPCode     string          `db:"cod_sap" json:"cod_sap"`
		Item        string          `db:"item" json:"item"`
		Quantity    decimal.Decimal `db:"quantidade" json:"quantidade"`
		Unit        string          `db:"unidade_medida" json:"unidade_medida"`
		UnitValue   string          `db:"valor_unitario" json:"valor_unitario"`
		TotalValue  string          `db:"valor_total" json:"valor_total"`
		Location    string          `db:"local" json:"local"`
		Requester   string          `db:"solicitante" json:"solicitante"`
		DeliveredBy string          `db:"entregue_por" json:"entregue_por"`
		ReceivedBy  string          `db:"retirado_por" json:"retirado_por"`
		Farm        string          `db:"fazenda" json:"fazenda"`
		Module      string          `db:"modulo" json:"modulo"`
		Regional    string          `db:"regional" json:"regional"`
		CreatedAt   Timestamp       `db:"created_at" json:"created_at"`
		UpdatedAt   Timestamp       `db:"updated_at" json:"updated_at"`
	}
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrInvalidID = errors.New("invalid id")
)

// ValidationError reports a rejected field on a write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ComputedTotal returns qtde * valor_unit.
func (r Receipt) ComputedTotal() decimal.Decimal {
	return r.Quantity.Mul(r.UnitPrice)
}

// Normalize fills the fields the entry form derives: the posting date
// defaults to today and a zero total is derived from quantity and unit price.
func (r *Receipt) Normalize(today Date) {
	r.trim()
	if r.PostingDate.IsEmpty() {
		r.PostingDate = today
	}
	if r.TotalPrice.IsZero() {
		r.TotalPrice = r.ComputedTotal()
	}
}

func (r *Receipt) trim() {
	r.OrderRef = strings.TrimSpace(r.OrderRef)
	r.SAPCode = strings.TrimSpace(r.SAPCode)
	r.Item = strings.TrimSpace(r.Item)
	r.Supplier = strings.TrimSpace(r.Supplier)
	r.Invoice = strings.TrimSpace(r.Invoice)
}

func (r Receipt) Validate() error {
	if blank(r.Item) && blank(r.SAPCode) {
		return invalid("item", "item or cod_sap is required")
	}
	if r.Quantity.IsNegative() {
		return invalid("qtde", "must not be negative")
	}
	if r.UnitPrice.IsNegative() {
		return invalid("valor_unit", "must not be negative")
	}
	if r.TotalPrice.IsNegative() {
		return invalid("valor_total", "must not be negative")
	}
	if len(r.Item) > 500 {
		return invalid("item", "too long (max 500 characters)")
	}
	return nil
}

// Normalize derives month and weekday names from the date and applies the
// default date and status.
func (w *Withdrawal) Normalize(today Date) {
	if w.Date.IsEmpty() {
		w.Date = today
	}
	w.Month = MonthName(w.Date)
	w.Weekday = WeekdayName(w.Date)
	w.Status = strings.TrimSpace(w.Status)
	if w.Status == "" {
		w.Status = DefaultStatus
	}
	w.Company = strings.TrimSpace(w.Company)
	w.Location = strings.TrimSpace(w.Location)
	w.Regional = strings.TrimSpace(w.Regional)
}

func (w Withdrawal) Validate() error {
	if blank(w.Company) {
		return invalid("empresa", "is required")
	}
	if blank(w.Location) {
		return invalid("local", "is required")
	}
	return nil
}

// Normalize applies the same derivations as Withdrawal plus the default
// location and numeric cleanup of the text values.
func (it *WithdrawalItem) Normalize(today Date) {
	if it.Date.IsEmpty() {
		it.Date = today
	}
	it.Month = MonthName(it.Date)
	it.Weekday = WeekdayName(it.Date)
	it.Status = strings.TrimSpace(it.Status)
	if it.Status == "" {
		it.Status = DefaultStatus
	}
	it.Location = strings.TrimSpace(it.Location)
	if it.Location == "" {
		it.Location = DefaultItemLocation
	}
	it.SAPCode = strings.TrimSpace(it.SAPCode)
	it.Item = strings.TrimSpace(it.Item)
	if strings.TrimSpace(it.TotalValue) == "" || it.TotalValue == "0" {
		if unit, err := ParseDecimal(it.UnitValue); err == nil {
			it.TotalValue = unit.Mul(it.Quantity).String()
		}
	}
}

func (it WithdrawalItem) Validate() error {
	if blank(it.SAPCode) && blank(it.Item) {
		return invalid("item", "item or cod_sap is required")
	}
	if !it.Quantity.IsPositive() {
		return invalid("quantidade", "must be greater than zero")
	}
	if it.UnitValue != "" {
		if _, err := ParseDecimal(it.UnitValue); err != nil {
			return invalid("valor_unitario", "not a number")
		}
	}
	return nil
}

// TotalAmount parses the item's stored total, falling back to zero.
func (it WithdrawalItem) TotalAmount() decimal.Decimal {
	v, err := ParseDecimal(it.TotalValue)
	if err != nil {
		return decimal.Zero
	}
	return v
}
