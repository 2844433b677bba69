package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version   kong.VersionFlag `short:"v" help:"Show version"`
	Serve     ServeCmd         `cmd:"" help:"Run the party game server"`
	Questions QuestionsCmd     `cmd:"" help:"List question categories in a catalog"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("guessbets"),
		kong.Description("Guess-and-wager trivia party game server"),
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
