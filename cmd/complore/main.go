package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func newApp() *cli.App {
	return &cli.App{
		Name:      "complore",
		Usage:     "Map code complexity and change activity across a source tree",
		Version:   version,
		ArgsUsage: "[path|glob...]",
		Description: `complore measures every matched file (lines, functions, imports,
longest function, commit activity) and writes one report: an interactive
flamegraph page, a compact pixel page, or a JSON document.

Examples:
  complore                              # scan . into report.html
  complore src 'lib/**/*.js'            # scan a directory and a glob
  complore -r json -o metrics.json src  # write the JSON report
  complore -r compact --height functions --color imports
  complore --ignore 'dist,*.min.js' --folders-only .`,
		Flags:    scanFlags(),
		Action:   runScanCmd,
		Commands: []*cli.Command{initCmd(), configCmd()},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
