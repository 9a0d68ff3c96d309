// Package convert implements the latexdoc CLI's `convert` subcommand:
// read a .tex file, run it through package reader, and print the
// resulting doctree.Doc as JSON, highlighting recoverable warnings
// (spec.md section 7) the way a build tool colors diagnostics.
package convert

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/latexdoc/reader/config"
	"github.com/latexdoc/reader/includecache"
	"github.com/latexdoc/reader/reader"
	"github.com/latexdoc/reader/state"
)

// NewCmdConvert builds the `convert` subcommand.
func NewCmdConvert() *cobra.Command {
	var outputPath, configPath string
	var rawTex, noMacros, noSmartQuotes, noCache bool

	cmd := &cobra.Command{
		Use:   "convert <input.tex>",
		Short: "Convert a LaTeX file into its document tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), args[0], outputPath, configPath, rawTex, noMacros, noSmartQuotes, noCache)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default: ./.latexdoc.yaml, else latexdoc/config.yaml in the user config directory)")
	cmd.Flags().BoolVar(&rawTex, "raw-tex", false, "pass unrecognised commands/environments through as raw nodes")
	cmd.Flags().BoolVar(&noMacros, "no-macros", false, "disable \\newcommand/\\def expansion")
	cmd.Flags().BoolVar(&noSmartQuotes, "no-smart-quotes", false, "disable curly-quote conversion")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the on-disk tokenized-include cache")
	return cmd
}

func run(stdout io.Writer, inputPath, outputPath, configPath string, rawTex, noMacros, noSmartQuotes, noCache bool) error {
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if rawTex {
		cfg.Extensions.RawTex = true
	}
	if noMacros {
		cfg.Extensions.LatexMacros = false
	}
	if noSmartQuotes {
		cfg.Extensions.SmartQuotes = false
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	var cache *includecache.Cache
	if !noCache {
		if cfg.IncludeCacheDir != "" {
			os.Setenv("LATEXDOC_CACHE", cfg.IncludeCacheDir)
		}
		cache, err = includecache.NewCache("latexdoc")
		if err != nil {
			return fmt.Errorf("opening include cache: %w", err)
		}
		defer cache.Close(100 << 20)
	}

	r := reader.New(cache)
	doc, st, err := r.Parse(data, inputPath, cfg.ToOptions(nil))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", inputPath, err)
	}

	printWarnings(st.Log)

	out := stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outputPath, err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// printWarnings colorizes each recoverable diagnostic by severity the
// way open-cli-collective-confluence-cli's view package colorizes
// table output: yellow for content loss, red for structural trouble.
func printWarnings(log []state.LogEntry) {
	for _, e := range log {
		line := fmt.Sprintf("%s:%d:%d: %s: %s", e.Source, e.Pos.Line, e.Pos.Column, e.Kind, e.Message)
		switch e.Kind {
		case state.CouldNotLoadIncludeFile, state.UnexpectedEndOfDocument:
			color.New(color.FgRed).Fprintln(os.Stderr, line)
		default:
			color.New(color.FgYellow).Fprintln(os.Stderr, line)
		}
	}
}
