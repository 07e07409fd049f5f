package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/navbuilder/cmd/navbuilder/commands"
	"git.home.luguber.info/inful/navbuilder/internal/version"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("navbuilder"),
		kong.Description("Resolve site navigation and page metadata for a static site renderer."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	if err := ctx.Run(&commands.Global{Out: os.Stdout}); err != nil {
		adapter := ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
		os.Exit(adapter.HandleError(err))
	}
}
