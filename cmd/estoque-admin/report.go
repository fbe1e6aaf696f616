package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"estoque/internal/report"
	"estoque/internal/services"
)

type reportCmd struct {
	style string
	width int
	raw   bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print the dashboard in the terminal" }
func (*reportCmd) Usage() string {
	return `estoque-admin report [-style dark|light|notty] [-width n] [-raw]

  Aggregates the current records and prints the panel and dashboard views.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.style, "style", "", "glamour style; detected from the terminal when empty")
	f.IntVar(&c.width, "width", 100, "word wrap width")
	f.BoolVar(&c.raw, "raw", false, "print markdown without rendering")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	env, err := openEnv(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer env.Close()

	refresher := services.NewDashboardRefresher(env.store.Store, services.DefaultRefresherConfig(), env.logger)
	snap, err := refresher.Refresh(ctx, services.TriggerManual)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading records: %v\n", err)
		return subcommands.ExitFailure
	}

	md := report.Markdown(snap.Dashboard, snap.Panel, time.Now())
	if c.raw {
		fmt.Print(md)
		return subcommands.ExitSuccess
	}
	out, err := report.Render(md, c.style, c.width)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}
