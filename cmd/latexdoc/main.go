// Command latexdoc is the CLI front end for package reader: it turns a
// .tex file into its doctree.Doc and prints the result as JSON,
// colorizing recoverable warnings the way a developer tool highlights
// build diagnostics, in the spirit of the teacher's own main.go but
// grown into a spf13/cobra command tree (SPEC_FULL.md section 1).
package main

import (
	"fmt"
	"os"

	"github.com/latexdoc/reader/cmd/latexdoc/internal/root"
)

func main() {
	if err := root.NewCmdRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
