// Package importer loads legacy spreadsheet exports into the record tables.
package importer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"estoque/internal/core"
	"estoque/internal/log"
)

type Kind string

const (
	KindReceipts    Kind = "recebimentos"
	KindWithdrawals Kind = "retiradas"
	KindItems       Kind = "itens"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindReceipts, KindWithdrawals, KindItems:
		return k, nil
	default:
		return "", fmt.Errorf("unknown kind %q: must be one of recebimentos, retiradas, itens", s)
	}
}

// RecordWriter creates records through the same path as the HTTP API.
type RecordWriter interface {
	CreateReceipt(ctx context.Context, r core.Receipt) (core.Receipt, error)
	CreateWithdrawal(ctx context.Context, w core.Withdrawal) (core.Withdrawal, error)
	CreateWithdrawalItem(ctx context.Context, it core.WithdrawalItem) (core.WithdrawalItem, error)
}

// CSVOptions controls how a CSV export is decoded. A zero Delimiter is
// detected from the header line.
type CSVOptions struct {
	Delimiter rune
	Latin1    bool
}

// RowError reports a row that was skipped. Row is 1-based and counts the
// header, matching what a spreadsheet shows.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

type Result struct {
	Rows     int
	Imported int
	Skipped  []RowError
}

// ReadCSV decodes a CSV export into a dataframe of string columns.
func ReadCSV(r io.Reader, opts CSVOptions) (dataframe.DataFrame, error) {
	if opts.Latin1 {
		r = charmap.Windows1252.NewDecoder().Reader(r)
	} else {
		r = transform.NewReader(r, xunicode.UTF8BOM.NewDecoder())
	}

	br := bufio.NewReader(r)
	delim := opts.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(br)
	}

	df := dataframe.ReadCSV(br,
		dataframe.WithDelimiter(delim),
		dataframe.WithLazyQuotes(true),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String))
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read csv: %w", df.Err)
	}
	if df.Nrow() == 0 {
		return dataframe.DataFrame{}, errors.New("dataframe is empty")
	}
	return df, nil
}

// FromRecords builds a dataframe from rows whose first row is the header,
// as read from a spreadsheet tab.
func FromRecords(records [][]string) (dataframe.DataFrame, error) {
	if len(records) < 2 {
		return dataframe.DataFrame{}, errors.New("dataframe is empty")
	}
	width := len(records[0])
	padded := make([][]string, len(records))
	for i, row := range records {
		padded[i] = make([]string, width)
		copy(padded[i], row)
	}
	df := dataframe.LoadRecords(padded,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String))
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("load records: %w", df.Err)
	}
	return df, nil
}

func sniffDelimiter(br *bufio.Reader) rune {
	head, _ := br.Peek(4096)
	line := string(head)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if strings.Count(line, ";") >= strings.Count(line, ",") && strings.Contains(line, ";") {
		return ';'
	}
	return ','
}

// Importer writes dataframe rows as records of one kind.
type Importer struct {
	writer RecordWriter
	logger *log.Logger
}

func New(writer RecordWriter, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Importer{writer: writer, logger: logger.WithComponent(log.ComponentImporter)}
}

// Import creates one record per row. Rows that fail to parse or validate
// are skipped and reported; any other write error aborts the import.
func (im *Importer) Import(ctx context.Context, df dataframe.DataFrame, kind Kind) (Result, error) {
	cols := columnIndex(df.Names())
	if err := requireColumns(cols, kind); err != nil {
		return Result{}, err
	}

	res := Result{Rows: df.Nrow()}
	for i := 0; i < df.Nrow(); i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		row := rowReader{df: df, cols: cols, i: i}
		if row.blank() {
			continue
		}

		err := im.importRow(ctx, row, kind)
		var verr *core.ValidationError
		switch {
		case err == nil:
			res.Imported++
		case errors.As(err, &verr):
			res.Skipped = append(res.Skipped, RowError{Row: i + 2, Err: err})
		default:
			return res, fmt.Errorf("import row %d: %w", i+2, err)
		}
	}

	im.logger.InfoContext(ctx, "Import finished",
		log.FieldOperation, log.OpImport,
		"kind", string(kind),
		"rows", res.Rows,
		"imported", res.Imported,
		"skipped", len(res.Skipped))
	return res, nil
}

func (im *Importer) importRow(ctx context.Context, row rowReader, kind Kind) error {
	switch kind {
	case KindReceipts:
		r, err := row.receipt()
		if err != nil {
			return err
		}
		_, err = im.writer.CreateReceipt(ctx, r)
		return err
	case KindWithdrawals:
		w, err := row.withdrawal()
		if err != nil {
			return err
		}
		_, err = im.writer.CreateWithdrawal(ctx, w)
		return err
	default:
		it, err := row.item()
		if err != nil {
			return err
		}
		_, err = im.writer.CreateWithdrawalItem(ctx, it)
		return err
	}
}

// aliases maps folded header spellings found in exports to column names.
var aliases = map[string]string{
	"codigo_sap":         "cod_sap",
	"cod._sap":           "cod_sap",
	"codsap":             "cod_sap",
	"descricao":          "item",
	"material":           "item",
	"qtd":                "qtde",
	"vlr_unit":           "valor_unit",
	"vlr_total":          "valor_total",
	"nf":                 "nota_fiscal",
	"data_lancamento":    "data_lanc",
	"data_de_lancamento": "data_lanc",
	"unidade":            "unidade_medida",
	"un":                 "unidade_medida",
	"dia_semana":         "dia_da_semana",
}

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldHeader lowercases, strips accents and joins words with underscores.
func foldHeader(h string) string {
	folded, _, err := transform.String(foldAccents, strings.ToLower(strings.TrimSpace(h)))
	if err != nil {
		folded = strings.ToLower(strings.TrimSpace(h))
	}
	folded = strings.Join(strings.Fields(folded), "_")
	if canonical, ok := aliases[folded]; ok {
		return canonical
	}
	return folded
}

func columnIndex(names []string) map[string]string {
	cols := make(map[string]string, len(names))
	for _, name := range names {
		key := foldHeader(name)
		if _, dup := cols[key]; !dup {
			cols[key] = name
		}
	}
	return cols
}

var required = map[Kind][][]string{
	KindReceipts:    {{"item", "cod_sap"}},
	KindWithdrawals: {{"empresa"}, {"local"}},
	KindItems:       {{"quantidade", "qtde"}},
}

func requireColumns(cols map[string]string, kind Kind) error {
	for _, anyOf := range required[kind] {
		found := false
		for _, c := range anyOf {
			if _, ok := cols[c]; ok {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("missing column %s for %s", strings.Join(anyOf, " or "), kind)
		}
	}
	return nil
}

type rowReader struct {
	df   dataframe.DataFrame
	cols map[string]string
	i    int
}

// get returns the first present column among keys, "" for NA cells.
func (r rowReader) get(keys ...string) string {
	for _, k := range keys {
		name, ok := r.cols[k]
		if !ok {
			continue
		}
		el := r.df.Col(name).Elem(r.i)
		if el.IsNA() {
			return ""
		}
		return strings.TrimSpace(el.String())
	}
	return ""
}

func (r rowReader) blank() bool {
	for _, name := range r.cols {
		el := r.df.Col(name).Elem(r.i)
		if !el.IsNA() && strings.TrimSpace(el.String()) != "" {
			return false
		}
	}
	return true
}

func (r rowReader) amount(field string, keys ...string) (decimal.Decimal, error) {
	v := r.get(keys...)
	if v == "" || v == "-" {
		return decimal.Zero, nil
	}
	d, err := core.ParseDecimal(v)
	if err != nil {
		return decimal.Zero, &core.ValidationError{Field: field, Message: fmt.Sprintf("not a number: %q", v)}
	}
	return d, nil
}

func (r rowReader) date(field string, keys ...string) (core.Date, error) {
	v := r.get(keys...)
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, &core.ValidationError{Field: field, Message: fmt.Sprintf("invalid date: %q", v)}
	}
	return d, nil
}

func (r rowReader) receipt() (core.Receipt, error) {
	var err error
	rec := core.Receipt{
		OrderRef: r.get("pedido"),
		SAPCode:  r.get("cod_sap"),
		Item:     r.get("item"),
		Supplier: r.get("fornecedor"),
		Invoice:  r.get("nota_fiscal"),
		Status:   r.get("statis", "status"),
		Miro:     r.get("miro"),
	}
	if rec.Quantity, err = r.amount("qtde", "qtde", "quantidade"); err != nil {
		return rec, err
	}
	if rec.UnitPrice, err = r.amount("valor_unit", "valor_unit", "valor_unitario"); err != nil {
		return rec, err
	}
	if rec.TotalPrice, err = r.amount("valor_total", "valor_total"); err != nil {
		return rec, err
	}
	if rec.PostingDate, err = r.date("data_lanc", "data_lanc", "data"); err != nil {
		return rec, err
	}
	return rec, nil
}

// withdrawal ignores exported mes and dia_da_semana columns; they are
// derived again from the date.
func (r rowReader) withdrawal() (core.Withdrawal, error) {
	var err error
	w := core.Withdrawal{
		Status:      r.get("status_da_retirada", "status"),
		Company:     r.get("empresa"),
		Location:    r.get("local"),
		Requester:   r.get("solicitante"),
		DeliveredBy: r.get("entregue_por"),
		ReceivedBy:  r.get("retirado_por"),
		Farm:        r.get("fazenda"),
		Module:      r.get("modulo"),
		Regional:    r.get("regional"),
	}
	if w.Date, err = r.date("data", "data"); err != nil {
		return w, err
	}
	return w, nil
}

func (r rowReader) item() (core.WithdrawalItem, error) {
	w, err := r.withdrawal()
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
		SAPCode:     r.get("cod_sap"),
		Item:        r.get("item"),
		Unit:        r.get("unidade_medida"),
		UnitValue:   r.get("valor_unitario", "valor_unit"),
		TotalValue:  r.get("valor_total"),
	}
	if it.Quantity, err = r.amount("quantidade", "quantidade", "qtde"); err != nil {
		return it, err
	}
	return it, nil
}
