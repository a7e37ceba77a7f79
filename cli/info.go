package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-barry/dayview/core"
	"github.com/urfave/cli/v2"
)

var InfoCommand = &cli.Command{
	Name:  "info",
	Usage: "Print site configuration and asset summary",
	Flags: []cli.Flag{configFlag},
	Action: func(c *cli.Context) error {
		config := core.LoadConfig(c.String("config"))

		fmt.Println("📁 Output Directory:", config.OutputDir)
		fmt.Println("🖼️  Views Directory:", config.ViewsDir)
		fmt.Println("📂 Public Directory:", config.PublicDir)
		fmt.Println("🔁 Debug Headers Enabled:", config.DebugHeaders)
		if config.UpstreamTimeout > 0 {
			fmt.Println("⏱️  Upstream Timeout:", config.UpstreamTimeout)
		} else {
			fmt.Println("⏱️  Upstream Timeout: none")
		}
		fmt.Println()

		views, _ := core.NewRenderer("dev", config).Views()

		assetCount := 0
		filepath.Walk(config.PublicDir, func(path string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() {
				assetCount++
			}
			return nil
		})

		cachedCount := 0
		filepath.Walk(config.OutputDir, func(path string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() && filepath.Ext(path) != ".gz" {
				cachedCount++
			}
			return nil
		})

		fmt.Println("🗂️  Views Found:", len(views))
		fmt.Println("📦 Static Files:", assetCount)
		fmt.Println("💾 Minified Assets:", cachedCount)
		fmt.Println()

		settings, err := core.LoadSettings(config.EnvFile)
		if err != nil {
			return err
		}
		keys := []string{core.SettingAdviceURL, core.SettingAPODURL, core.SettingNASAAPIKey}
		present := settings.Present(keys...)
		fmt.Println("🔑 Settings from", config.EnvFile+":")
		for _, k := range keys {
			mark := "❌ missing"
			if present[k] {
				mark = "✅ set"
			}
			fmt.Printf("   %s %s\n", k, mark)
		}

		return nil
	},
}
