package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/subcommands"

	"estoque/internal/importer"
	gsheet "estoque/internal/sheets/google"
)

type importCmd struct {
	kind      string
	file      string
	sheet     string
	delimiter string
	latin1    bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import records from a CSV export or a spreadsheet tab" }
func (*importCmd) Usage() string {
	return `estoque-admin import -kind <recebimentos|retiradas|itens> (-file <csv> | -sheet <tab>)

  Reads the legacy spreadsheet layout and creates one record per row.
  Rows that fail validation are reported and skipped.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "", "record kind: recebimentos, retiradas or itens")
	f.StringVar(&c.file, "file", "", "CSV file to import")
	f.StringVar(&c.sheet, "sheet", "", "tab of GOOGLE_SPREADSHEET_ID to import instead of a file")
	f.StringVar(&c.delimiter, "delimiter", "", "CSV delimiter; detected from the header when empty")
	f.BoolVar(&c.latin1, "latin1", false, "the CSV file is Windows-1252 encoded")
}

func (c *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	kind, err := importer.ParseKind(c.kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if (c.file == "") == (c.sheet == "") {
		fmt.Fprintln(os.Stderr, "Error: exactly one of -file or -sheet is required")
		return subcommands.ExitUsageError
	}
	if utf8.RuneCountInString(c.delimiter) > 1 {
		fmt.Fprintln(os.Stderr, "Error: -delimiter must be a single character")
		return subcommands.ExitUsageError
	}

	env, err := openEnv(ctx, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer env.Close()

	var df dataframe.DataFrame
	if c.file != "" {
		df, err = c.readFile()
	} else {
		df, err = c.readSheet(ctx, env)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		return subcommands.ExitFailure
	}

	res, err := importer.New(env.records, env.logger).Import(ctx, df, kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, skipped := range res.Skipped {
		fmt.Fprintf(os.Stderr, "skipped %v\n", skipped)
	}
	fmt.Printf("imported %d of %d rows into %s\n", res.Imported, res.Rows, kind)
	return subcommands.ExitSuccess
}

func (c *importCmd) readFile() (dataframe.DataFrame, error) {
	f, err := os.Open(c.file)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer f.Close()

	opts := importer.CSVOptions{Latin1: c.latin1}
	if c.delimiter != "" {
		opts.Delimiter, _ = utf8.DecodeRuneInString(c.delimiter)
	}
	return importer.ReadCSV(f, opts)
}

func (c *importCmd) readSheet(ctx context.Context, env *adminEnv) (dataframe.DataFrame, error) {
	client, err := gsheet.New(ctx, gsheet.FromAppConfig(env.cfg), env.logger)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	rows, err := client.ReadTab(ctx, c.sheet)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	return importer.FromRecords(rows)
}
