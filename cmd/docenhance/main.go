package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docenhance/cmd/docenhance/commands"
	ferrors "git.home.luguber.info/inful/docenhance/internal/foundation/errors"
	"git.home.luguber.info/inful/docenhance/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("docenhance"),
		kong.Description("Client-side enhancement for statically generated documentation sites: MathJax setup, copy buttons, smooth scrolling and responsive tables."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	if err := ctx.Run(&commands.Global{}, &cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, nil).HandleError(err)
	}
}
