// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing request data into records.
// HTML forms and JSON bodies go through the same field accessors.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"estoque/internal/core"
)

const maxBodyBytes = 1 << 20

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once and stores it for parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}
	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if strings.Contains(p.contentType, "json") || p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// Decimal reads an optional number field. Blank gives zero.
func (p *RequestBodyParser) Decimal(key string) (decimal.Decimal, error) {
	v := p.Get(key)
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := core.ParseDecimal(v)
	if err != nil {
		return decimal.Zero, &core.ValidationError{Field: key, Message: "not a number"}
	}
	return d, nil
}

// Date reads an optional date field. Blank gives the empty date.
func (p *RequestBodyParser) Date(key string) (core.Date, error) {
	v := p.Get(key)
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, &core.ValidationError{Field: key, Message: "invalid date"}
	}
	return d, nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// parseReceipt builds a receipt from the request body.
func parseReceipt(p *RequestBodyParser) (core.Receipt, error) {
	var err error
	r := core.Receipt{
		OrderRef: p.Get("pedido"),
		SAPCode:  p.Get("cod_sap"),
		Item:     p.Get("item"),
		Supplier: p.Get("fornecedor"),
		Invoice:  p.Get("nota_fiscal"),
		Status:   p.Get("statis"),
		Miro:     p.Get("miro"),
	}
	if r.Quantity, err = p.Decimal("qtde"); err != nil {
		return r, err
	}
	if r.UnitPrice, err = p.Decimal("valor_unit"); err != nil {
		return r, err
	}
	if r.TotalPrice, err = p.Decimal("valor_total"); err != nil {
		return r, err
	}
	if r.PostingDate, err = p.Date("data_lanc"); err != nil {
		return r, err
	}
	return r, nil
}

// parseWithdrawal builds a withdrawal from the request body. Month and
// weekday are always derived from the date.
func parseWithdrawal(p *RequestBodyParser) (core.Withdrawal, error) {
	var err error
	w := core.Withdrawal{
		Status:      p.Get("status_da_retirada"),
		Company:     p.Get("empresa"),
		Location:    p.Get("local"),
		Requester:   p.Get("solicitante"),
		DeliveredBy: p.Get("entregue_por"),
		ReceivedBy:  p.Get("retirado_por"),
		Farm:        p.Get("fazenda"),
		Module:      p.Get("modulo"),
		Regional:    p.Get("regional"),
	}
	if w.Date, err = p.Date("data"); err != nil {
		return w, err
	}
	return w, nil
}

func parseWithdrawalItem(p *RequestBodyParser) (core.WithdrawalItem, error) {
	w, err := parseWithdrawal(p)
	if err != nil {
		return core.WithdrawalItem{}, err
	}
	it := core.WithdrawalItem{
		Date:        w.Date,
		Status:      w.Status,
		Company:     w.Company,
		Location:    w.Location,
		Requester:   w.Requester,
		DeliveredBy: w.DeliveredBy,
		ReceivedBy:  w.ReceivedBy,
		Farm:        w.Farm,
		Module:      w.Module,
		Regional:    w.Regional,
		SAPCode:     p.Get("cod_sap"),
		Item:        p.Get("item"),
		Unit:        p.Get("unidade_medida"),
		UnitValue:   p.Get("valor_unitario"),
		TotalValue:  p.Get("valor_total"),
	}
	if it.Quantity, err = p.Decimal("quantidade"); err != nil {
		return it, err
	}
	return it, nil
}

// parseID reads the {id} route parameter.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ErrInvalidID
	}
	return id, nil
}

// ListParams holds the search and pagination query parameters.
type ListParams struct {
	Query    string
	Page     int
	PageSize int
}

// ParseListParams reads q, page and page_size. Invalid numbers fall back to
// the defaults applied by core.Paginate.
func ParseListParams(query url.Values) ListParams {
	params := ListParams{Query: sanitizeInput(query.Get("q"))}
	if v, err := strconv.Atoi(strings.TrimSpace(query.Get("page"))); err == nil {
		params.Page = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(query.Get("page_size"))); err == nil {
		params.PageSize = v
	}
	return params
}

var errBadBody = errors.New("invalid request body")
