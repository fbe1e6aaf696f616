// Package report renders the dashboard as a markdown document for the
// admin CLI.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"estoque/internal/core"
)

// Markdown writes the panel counters and the four dashboard views as
// markdown tables.
func Markdown(d core.Dashboard, p core.Panel, generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Controle de estoque\n\nGerado em %s\n\n", generatedAt.Format("02/01/2006 15:04"))

	b.WriteString("## Painel\n\n| Indicador | Valor |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Recebimentos | %d |\n", p.TotalReceipts)
	fmt.Fprintf(&b, "| Valor recebido | %s |\n", core.FormatBRL(p.TotalValue))
	fmt.Fprintf(&b, "| Fornecedores ativos | %d |\n", p.ActiveSuppliers)
	fmt.Fprintf(&b, "| Retiradas | %d |\n", p.TotalWithdrawals)
	fmt.Fprintf(&b, "| Retiradas pendentes | %d |\n\n", p.PendingWithdrawals)

	b.WriteString("## Movimentação mensal\n\n")
	if len(d.Monthly) == 0 {
		b.WriteString("Sem movimentação no período.\n\n")
	} else {
		b.WriteString("| Mês | Recebimentos | Valor | Retiradas |\n|---|---:|---:|---:|\n")
		for _, m := range d.Monthly {
			fmt.Fprintf(&b, "| %s | %d | %s | %d |\n", m.Label, m.Receipts, core.FormatBRL(m.Value), m.Withdrawals)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Principais fornecedores\n\n")
	if len(d.TopSuppliers) == 0 {
		b.WriteString("Nenhum recebimento registrado.\n\n")
	} else {
		b.WriteString("| Fornecedor | Quantidade | Valor |\n|---|---:|---:|\n")
		for _, s := range d.TopSuppliers {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", escape(core.TruncateName(s.Name)), s.Quantity.String(), core.FormatBRL(s.Value))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Retiradas por regional\n\n")
	writeCounts(&b, "Regional", len(d.Regionals), func(i int) (string, int) {
		return d.Regionals[i].Regional, d.Regionals[i].Count
	})

	b.WriteString("## Retiradas por status\n\n")
	writeCounts(&b, "Status", len(d.Statuses), func(i int) (string, int) {
		return d.Statuses[i].Status, d.Statuses[i].Count
	})

	return b.String()
}

func writeCounts(b *strings.Builder, title string, n int, row func(int) (string, int)) {
	if n == 0 {
		b.WriteString("Nenhuma retirada registrada.\n\n")
		return
	}
	fmt.Fprintf(b, "| %s | Quantidade |\n|---|---:|\n", title)
	for i := 0; i < n; i++ {
		label, count := row(i)
		fmt.Fprintf(b, "| %s | %d |\n", escape(label), count)
	}
	b.WriteString("\n")
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Render formats markdown for the terminal. An empty style picks one from
// the terminal background.
func Render(md, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
