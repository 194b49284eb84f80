package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version         kong.VersionFlag   `short:"v" help:"Show version"`
	Serve           ServeCmd           `cmd:"" default:"withargs" help:"Run the blackjack table server"`
	Migrate         MigrateCmd         `cmd:"" help:"Apply pending SQLite migrations"`
	CreateMigration CreateMigrationCmd `cmd:"create-migration" help:"Create a new, empty migration file"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjackd"),
		kong.Description("Blackjack table server with a JSON and websocket API"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
