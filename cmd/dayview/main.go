package main

import (
	"log"
	"os"

	dayviewcli "github.com/go-barry/dayview/cli"
	clilib "github.com/urfave/cli/v2"
)

func runApp(args []string) error {
	app := &clilib.App{
		Name:  "dayview",
		Usage: "Server-rendered pages for the advice and astronomy picture APIs",
		Commands: []*clilib.Command{
			dayviewcli.InitCommand,
			dayviewcli.DevCommand,
			dayviewcli.ProdCommand,
			dayviewcli.CleanCommand,
			dayviewcli.CheckCommand,
			dayviewcli.InfoCommand,
		},
	}
	return app.Run(args)
}

func main() {
	if err := runApp(os.Args); err != nil {
		log.Fatal(err)
	}
}
