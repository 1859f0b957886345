// Command vrt plays reactive UI scenes against an in-memory document.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vrt/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ╦┬─┐┌┬┐
  ╚╗╔╝├┬┘ │
   ╚╝ ┴└─ ┴
`

func main() {
	opts := &rootOptions{}
	if err := newRootCmd(opts).Execute(); err != nil {
		opts.printer(os.Stderr).Error(err)
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	noColor    bool
}

// printer returns an error printer for w. --no-color and NO_COLOR turn
// colors off.
func (o *rootOptions) printer(w io.Writer) *errors.Printer {
	return errors.NewPrinter(w, !o.noColor)
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vrt",
		Short: "A minimal reactive UI runtime",
		Long: `vrt renders reactive component trees into an in-memory document.

Scenes are YAML or JSON files listing successive trees. vrt patches
each frame onto the previous one and records every document mutation:

  • render plays a scene and prints the final HTML and op log
  • serve opens an HTTP inspector with a live websocket op stream`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (default: vrt.{json,yaml,yml,toml} in the working directory)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output (also NO_COLOR)")

	rootCmd.AddCommand(
		renderCmd(opts),
		serveCmd(opts),
		versionCmd(),
	)
	return rootCmd
}

// printBanner prints the vrt ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(p *errors.Printer, format string, args ...any) {
	mark := "✓"
	if p.Color() {
		mark = "\033[32m✓\033[0m"
	}
	fmt.Printf("%s %s\n", mark, fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
