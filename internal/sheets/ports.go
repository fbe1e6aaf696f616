package sheets

import "context"

// Ports for the spreadsheet adapters.
type (
	// TabWriter replaces the whole content of a tab.
	TabWriter interface {
		ReplaceTab(ctx context.Context, tab string, rows [][]any) error
	}

	// TabReader returns the cells of a tab as text, header row included.
	TabReader interface {
		ReadTab(ctx context.Context, tab string) ([][]string, error)
	}
)
