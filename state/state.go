// Package state holds the side-channel state threaded through a LaTeX
// parse (spec.md section 4.6): the macro table, quote and verbatim
// context, the pending caption slot, heading-anchor identifier set, the
// include-file loop guard, accumulated diagnostics, and reader options.
// It also hosts the expansion-aware parsing primitives (Satisfy,
// Grouped, WithRaw) that sit one level above the raw, non-expanding
// group readers in package macro.
package state

import (
	"log"

	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/macro"
	"github.com/latexdoc/reader/token"
	"github.com/latexdoc/reader/tokenizer"
)

// QuoteContext tracks which LaTeX-style quote the parser is nested
// inside, so that `` / '' / ` / ' pair up correctly instead of being
// treated as independent symbols (spec.md section 4.4).
type QuoteContext int

const (
	NoQuote QuoteContext = iota
	InSingleQuote
	InDoubleQuote
)

// Options are the reader-wide settings of spec.md section 6: which
// optional LaTeX extensions are honoured, and a few behavioural knobs.
type Options struct {
	Extensions Extensions

	// RawMode, when true, disables all tree rewriting and macro
	// expansion in favour of best-effort byte-preserving raw capture
	// (spec.md's opt-in exception to the "no byte-exact round-tripping"
	// Non-goal).
	RawMode bool

	// DefaultImageExtension is appended to \includegraphics targets that
	// have no extension of their own.
	DefaultImageExtension string

	// InputSources lists the host's invocation paths; the first
	// element's directory is used to locate a sibling .bbl file for
	// \bibliography.
	InputSources []string
}

// Extensions are individually togglable LaTeX reader behaviours.
type Extensions struct {
	// LatexMacros gates whether \newcommand/\def/\newenvironment
	// actually install entries (see macro.Table.MacrosEnabled).
	LatexMacros bool
	// RawTex, when enabled, lets unrecognised control sequences and
	// environments pass through as RawInline/RawBlock nodes instead of
	// being dropped with a SkippedContent log entry.
	RawTex bool
	// SmartQuotes turns `` / '' / ` / ' into curly Quoted spans.
	SmartQuotes bool
	// LiterateHaskell turns `|...|` into inline verbatim code spans, per
	// spec.md section 4.4.
	LiterateHaskell bool
}

// DefaultExtensions matches the teacher's own defaults: the pieces that
// make a LaTeX document renderable at all are on, cosmetic rewrites
// that could surprise a caller are off unless asked for.
func DefaultExtensions() Extensions {
	return Extensions{LatexMacros: true, RawTex: false, SmartQuotes: true}
}

// LogKind enumerates the recoverable-diagnostic taxonomy of spec.md
// section 7. ParseError and MacroLoop are not LogKinds: they abort the
// parse and are returned as Go errors instead.
type LogKind int

const (
	SkippedContent LogKind = iota
	MacroAlreadyDefined
	UnexpectedEndOfDocument
	CouldNotLoadIncludeFile
	ParsingUnescaped
)

func (k LogKind) String() string {
	switch k {
	case SkippedContent:
		return "skipped-content"
	case MacroAlreadyDefined:
		return "macro-already-defined"
	case UnexpectedEndOfDocument:
		return "unexpected-end-of-document"
	case CouldNotLoadIncludeFile:
		return "could-not-load-include-file"
	case ParsingUnescaped:
		return "parsing-unescaped"
	default:
		return "log"
	}
}

// LogEntry is one recoverable diagnostic raised during parsing.
type LogEntry struct {
	Kind    LogKind
	Pos     token.Pos
	Source  string
	Message string
}

// Logger receives LogEntry values as they're raised. The default
// (NewLogger) writes them through the standard library's log.Logger,
// matching the teacher's own log.Printf-based warnings in
// latex/pass1.go and latex/pass2.go.
type Logger interface {
	Log(e LogEntry)
}

// StdLogger adapts *log.Logger to the Logger interface.
type StdLogger struct {
	L *log.Logger
}

// Log implements Logger.
func (s StdLogger) Log(e LogEntry) {
	s.L.Printf("%s:%d:%d: %s: %s", e.Source, e.Pos.Line, e.Pos.Column, e.Kind, e.Message)
}

// NewLogger returns the default Logger, writing to the standard
// library's log.Default().
func NewLogger() Logger {
	return StdLogger{L: log.Default()}
}

// State is the full side-channel threaded through a parse.
type State struct {
	Stream  *tokenizer.Stream
	Macros  *macro.Table
	Options Options
	Logger  Logger

	Quote    QuoteContext
	Verbatim bool

	// PendingCaption holds inline content captured by a \caption{...}
	// that has not yet been attached to the figure/table it belongs to.
	// nil means empty. It is cleared whenever a figure/table/tikzpicture
	// environment is entered, and consumed by the caption-attachment
	// rewriter in package rewrite.
	PendingCaption []doctree.Inline

	InListItem  bool
	InTableCell bool

	// ResourcePath accumulates directories appended by \graphicspath.
	// The block engine searches them, after the TEXINPUTS directories,
	// for \include/\input/\subfile/\usepackage targets; \includegraphics
	// does not consult them.
	ResourcePath []string

	// Identifiers is the set of heading-anchor slugs already assigned,
	// so duplicates get a numeric suffix instead of colliding.
	Identifiers map[string]bool

	// IncludeStack is the loop guard for \include/\input/\subfile:
	// resolved absolute paths currently being read, innermost last.
	IncludeStack []string

	// Meta accumulates document metadata (\title, \author, \date, and
	// similar declarations): scalar keys overwrite, list keys append,
	// per spec.md section 4.7.
	Meta *Meta

	Log []LogEntry
}

// New constructs a State with fresh, empty side-channels.
func New(opts Options) *State {
	tab := macro.NewTable()
	tab.MacrosEnabled = opts.Extensions.LatexMacros
	st := &State{
		Stream:      tokenizer.New(),
		Macros:      tab,
		Options:     opts,
		Logger:      NewLogger(),
		Identifiers: make(map[string]bool),
		Meta:        NewMeta(),
	}
	tab.Warn = func(pos token.Pos, msg string) {
		st.Warn(MacroAlreadyDefined, pos, msg)
	}
	return st
}

// Warn appends a LogEntry and forwards it to the Logger.
func (s *State) Warn(kind LogKind, pos token.Pos, msg string) {
	e := LogEntry{Kind: kind, Pos: pos, Source: s.Stream.SourceName(), Message: msg}
	s.Log = append(s.Log, e)
	if s.Logger != nil {
		s.Logger.Log(e)
	}
}

// Clone returns a State for a re-entrant sub-parse (table cell,
// \include body, raw escape hatch): a fresh Stream wrapping the same
// underlying tokens, a macro table cloned from the parent's so macros
// defined mid-subparse don't leak back unless explicitly merged, and
// copy-on-write semantics for the rest of the side-channel. The
// identifier set and include stack are shared (not cloned): heading
// anchors and the include loop guard must stay globally consistent
// even across a sub-parse.
func (s *State) Clone(sub *tokenizer.Stream) *State {
	cp := &State{
		Stream:       sub,
		Macros:       s.Macros.Clone(),
		Options:      s.Options,
		Logger:       s.Logger,
		Quote:        s.Quote,
		Verbatim:     s.Verbatim,
		InListItem:   s.InListItem,
		InTableCell:  s.InTableCell,
		Identifiers:  s.Identifiers,
		IncludeStack: s.IncludeStack,
		Meta:         s.Meta,
	}
	cp.Macros.Warn = func(pos token.Pos, msg string) {
		cp.Warn(MacroAlreadyDefined, pos, msg)
	}
	return cp
}

// MergeBack folds a sub-parse's learned macros and log entries into s,
// per spec.md section 4.8's "merge-back" requirement for re-entrant
// parses.
func (s *State) MergeBack(sub *State) {
	s.Macros.MergeFrom(sub.Macros)
	s.Log = append(s.Log, sub.Log...)
}
