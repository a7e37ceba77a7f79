package cli

import (
	"bytes"
	"fmt"

	"github.com/go-barry/dayview/core"
	"github.com/urfave/cli/v2"
)

var CheckCommand = &cli.Command{
	Name:  "check",
	Usage: "Parse and execute every view with an empty context",
	Flags: []cli.Flag{configFlag},
	Action: func(c *cli.Context) error {
		config := core.LoadConfig(c.String("config"))
		renderer := core.NewRenderer("dev", config)

		views, err := renderer.Views()
		if err != nil {
			return cli.Exit(fmt.Sprintf("cannot read views: %v", err), 1)
		}

		var failed bool
		for _, name := range views {
			var buf bytes.Buffer
			if err := renderer.Execute(&buf, name, core.Context{}); err != nil {
				failed = true
				fmt.Printf("❌ %s → %v\n", name, err)
				continue
			}
			fmt.Printf("✅ %s\n", name)
		}

		if failed {
			return cli.Exit("some views failed to render", 1)
		}

		fmt.Println("✅ All views validated successfully.")
		return nil
	},
}
