package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"estoque/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&migrateCmd{}, "database")
	commander.Register(&seedCmd{}, "database")
	commander.Register(&importCmd{}, "database")
	commander.Register(&reportCmd{}, "reports")
	commander.Register(&oauthInitCmd{}, "google")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
