package main

import (
	"git.home.luguber.info/inful/exportcfg/cmd/exportcfg/commands"
	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
	"git.home.luguber.info/inful/exportcfg/internal/version"
	"github.com/alecthomas/kong"
)

func main() {
	var cli commands.CLI
	global := commands.NewGlobal()
	ctx := kong.Parse(&cli,
		kong.Name("exportcfg"),
		kong.Description("Resolve the build configuration of a client-only static site export."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)
	if err := ctx.Run(&cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
