// Package memory keeps mirrored tabs in process, for dry runs and tests.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	ports "estoque/internal/sheets"
)

type Sheet struct {
	mu     sync.Mutex
	tabs   map[string][][]any
	writes int
	// FailTab makes ReplaceTab fail for that tab.
	FailTab string
}

var (
	_ ports.TabWriter = (*Sheet)(nil)
	_ ports.TabReader = (*Sheet)(nil)
)

func New() *Sheet {
	return &Sheet{tabs: make(map[string][][]any)}
}

// ReplaceTab stores a copy of rows under tab.
func (s *Sheet) ReplaceTab(_ context.Context, tab string, rows [][]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailTab != "" && s.FailTab == tab {
		return fmt.Errorf("write %s: simulated failure", tab)
	}
	cp := make([][]any, len(rows))
	for i, row := range rows {
		cp[i] = append([]any(nil), row...)
	}
	s.tabs[tab] = cp
	s.writes++
	return nil
}

// ReadTab returns the stored cells as text.
func (s *Sheet) ReadTab(_ context.Context, tab string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.tabs[tab]
	if !ok {
		return nil, fmt.Errorf("tab %q not found", tab)
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out, nil
}

// Rows returns the raw rows of tab.
func (s *Sheet) Rows(tab string) [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs[tab]
}

// Writes counts successful ReplaceTab calls.
func (s *Sheet) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
