// Package root provides the root command for the latexdoc CLI, the
// same NewCmdRoot-plus-AddCommand shape as the pack's
// open-cli-collective-confluence-cli (internal/cmd/root/root.go).
package root

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/latexdoc/reader/cmd/latexdoc/internal/convert"
)

// Version is set at build time via -ldflags, matching the teacher's
// own lack of a version string (main.go has none) generalized to the
// pack's versioning convention instead.
var Version = "dev"

// NewCmdRoot creates the root command for latexdoc.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "latexdoc",
		Short:         "Read a LaTeX document into a structured document tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				color.NoColor = true
			}
		},
	}
	cmd.PersistentFlags().Bool("no-color", false, "disable colored warning output")
	cmd.AddCommand(convert.NewCmdConvert())
	return cmd
}
