package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"estoque/internal/config"
)

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply the database migrations" }
func (*migrateCmd) Usage() string {
	return `estoque-admin migrate

  Applies the embedded migrations to the sqlite or postgres database
  selected by DATA_BACKEND.
`
}

func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	env, err := openEnv(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer env.Close()

	if env.cfg.DataBackend == config.BackendMemory {
		fmt.Println("memory backend has no schema, nothing to migrate")
		return subcommands.ExitSuccess
	}
	fmt.Printf("%s database is up to date\n", env.cfg.DataBackend)
	return subcommands.ExitSuccess
}
