package http

import (
	"encoding/json"
	"html/template"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"estoque/internal/core"
)

// sanitizeInput drops control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// formatDate renders dates the way Brazilian users read them.
func formatDate(d core.Date) string {
	if d.IsEmpty() {
		return "-"
	}
	return d.Format("02/01/2006")
}

func formatTimestamp(ts core.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("02/01/2006 15:04")
}

// formatAmount renders decimal.Decimal or text values as BRL.
func formatAmount(v any) string {
	switch val := v.(type) {
	case decimal.Decimal:
		return core.FormatBRL(val)
	case string:
		d, err := core.ParseDecimal(val)
		if err != nil {
			return val
		}
		return core.FormatBRL(d)
	default:
		return ""
	}
}

// toJSON embeds a value as a script literal.
func toJSON(v any) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

// statusOptions lists the withdrawal statuses for a select, keeping an
// imported status that is not one of them.
func statusOptions(current string) []string {
	opts := []string{core.DefaultStatus, core.StatusInProgress, core.StatusDone, core.StatusCancelled}
	if current != "" && !slices.Contains(opts, current) {
		opts = append([]string{current}, opts...)
	}
	return opts
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"date":       formatDate,
		"datetime":   formatTimestamp,
		"brl":        formatAmount,
		"truncate":   core.TruncateName,
		"json":       toJSON,
		"monthLabel": core.ShortMonthLabel,
		"add":        func(a, b int) int { return a + b },
		"statuses":   statusOptions,
	}
}
