// Package macro implements the token-rewriting macro engine of
// spec.md section 4.3: a table of named rewrite rules (fixed-arity or
// pattern-based), the recursion-bounded expansion loop that applies
// them in place during tokenized parsing, and the \newcommand/\def
// family of definitions that populate the table.
package macro

import (
	"fmt"

	"github.com/latexdoc/reader/token"
	"github.com/latexdoc/reader/tokenizer"
)

// MaxExpansionDepth bounds the number of nested macro expansions before
// the engine gives up and reports a LoopError (spec.md section
// 4.3, "Recursion bound").
const MaxExpansionDepth = 20

// LoopError is returned when expanding a single head position recurses
// more than MaxExpansionDepth times.
type LoopError struct {
	Name string
}

func (e *LoopError) Error() string {
	return fmt.Sprintf("macro expansion loop in \\%s (exceeded %d nested expansions)", e.Name, MaxExpansionDepth)
}

// Macro is a named token-rewriting rule.
type Macro interface {
	// ReadArgs consumes this macro's arguments from s — which is
	// positioned immediately after the invoking control sequence or
	// environment name — and returns the token list to splice onto the
	// stream in place of the call. pos is the invocation-site position
	// every substituted token should inherit. tab is passed through so
	// definition-installing macros (\newcommand and friends) can mutate
	// the table they were looked up in.
	ReadArgs(s *tokenizer.Stream, pos token.Pos, tab *Table) (token.List, error)
}

// Func adapts a plain function to the Macro interface, the way the
// teacher's tokenizer.macroFunc adapts parseDef/parseUsepackage.
type Func func(s *tokenizer.Stream, pos token.Pos, tab *Table) (token.List, error)

// ReadArgs implements Macro.
func (f Func) ReadArgs(s *tokenizer.Stream, pos token.Pos, tab *Table) (token.List, error) {
	return f(s, pos, tab)
}
