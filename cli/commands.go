package cli

import (
	"github.com/go-barry/dayview"
	"github.com/go-barry/dayview/core"

	"github.com/urfave/cli/v2"
)

var serveFlags = []cli.Flag{
	&cli.IntFlag{
		Name:    "port",
		Aliases: []string{"p"},
		Value:   8080,
		Usage:   "port to listen on",
		EnvVars: []string{"PORT"},
	},
	configFlag,
}

var configFlag = &cli.StringFlag{
	Name:  "config",
	Value: core.ConfigFile,
	Usage: "path to the site config file",
}

var DevCommand = &cli.Command{
	Name:  "dev",
	Usage: "Start dayview in dev mode (templates re-read per request, live reload)",
	Flags: serveFlags,
	Action: func(c *cli.Context) error {
		dayview.Start(dayview.RuntimeConfig{
			Env:        "dev",
			Port:       c.Int("port"),
			ConfigPath: c.String("config"),
		})
		return nil
	},
}

var ProdCommand = &cli.Command{
	Name:  "prod",
	Usage: "Start dayview in production mode (template cache, minified assets)",
	Flags: serveFlags,
	Action: func(c *cli.Context) error {
		dayview.Start(dayview.RuntimeConfig{
			Env:        "prod",
			Port:       c.Int("port"),
			ConfigPath: c.String("config"),
		})
		return nil
	},
}
