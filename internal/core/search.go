package core

import "strings"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is one slice of a filtered list.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func containsFold(field, term string) bool {
	return strings.Contains(strings.ToLower(field), term)
}

func anyContains(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if containsFold(f, term) {
			return true
		}
	}
	return false
}

// Matches reports whether the search term occurs in item, SAP code,
// supplier or invoice, ignoring case.
func (r Receipt) Matches(term string) bool {
	return anyContains(term, r.Item, r.SAPCode, r.Supplier, r.Invoice)
}

// Matches searches requester, company, location, regional and farm.
func (w Withdrawal) Matches(term string) bool {
	return anyContains(term, w.Requester, w.Company, w.Location, w.Regional, w.Farm)
}

// Matches searches item description and SAP code.
func (it WithdrawalItem) Matches(term string) bool {
	return anyContains(term, it.Item, it.SAPCode)
}

// Filter keeps the records matching term. An empty term keeps everything.
func Filter[T interface{ Matches(string) bool }](items []T, term string) []T {
	if strings.TrimSpace(term) == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.Matches(term) {
			out = append(out, it)
		}
	}
	return out
}

// Paginate returns the requested 1-based page. Out of range pages are
// clamped to the nearest valid one.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	total := len(items)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	return Page[T]{
		Items:      items[start:end],
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: pages,
	}
}
