// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "Path to configuration file",
	Value:   "config.toml",
}

// runCommand starts the gateway bot
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Connect to Discord and serve playback commands",
		Flags:  []cli.Flag{configFlag},
		Action: r.Run,
	}
}

// setupCommand initializes configuration and the database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize database and run migrations",
		Flags:  []cli.Flag{configFlag},
		Action: r.Setup,
	}
}

// previewCommand lists a catalog playlist without importing it
func previewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Show the tracks of a Spotify playlist",
		ArgsUsage: "<playlist-url>",
		Flags:     []cli.Flag{configFlag},
		Action:    r.Preview,
	}
}

// historyCommand inspects archived playlist imports
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "List archived playlist imports",
		ArgsUsage: "[playlist-id]",
		Flags: []cli.Flag{
			configFlag,
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit JSON instead of plain text",
			},
		},
		Action: r.History,
	}
}
