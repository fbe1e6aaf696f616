package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"estoque/internal/seed"
)

type seedCmd struct {
	opts seed.Options
}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "insert generated demo records" }
func (*seedCmd) Usage() string {
	return `estoque-admin seed [-receipts n] [-withdrawals n] [-items n] [-months n] [-seed n]

  Generates receipts, withdrawals and withdrawal items spread over the last
  months and writes them through the record service.
`
}

func (c *seedCmd) SetFlags(f *flag.FlagSet) {
	def := seed.DefaultOptions()
	f.IntVar(&c.opts.Receipts, "receipts", def.Receipts, "number of receipts")
	f.IntVar(&c.opts.Withdrawals, "withdrawals", def.Withdrawals, "number of withdrawals")
	f.IntVar(&c.opts.ItemsPerWithdrawal, "items", def.ItemsPerWithdrawal, "items per withdrawal")
	f.IntVar(&c.opts.Months, "months", def.Months, "months of history, ending today")
	f.Int64Var(&c.opts.Seed, "seed", 0, "random seed; 0 picks one")
}

func (c *seedCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.opts.Receipts < 0 || c.opts.Withdrawals < 0 || c.opts.ItemsPerWithdrawal < 0 {
		fmt.Fprintln(os.Stderr, "Error: counts must not be negative")
		return subcommands.ExitUsageError
	}

	env, err := openEnv(ctx, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer env.Close()

	c.opts.Today = seed.DefaultOptions().Today
	counts, err := seed.Run(ctx, env.records, c.opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error seeding: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("seeded %d receipts, %d withdrawals, %d items\n", counts.Receipts, counts.Withdrawals, counts.Items)
	return subcommands.ExitSuccess
}
