// Package block implements the Block Engine of spec.md section 4.5:
// sections, environments, lists, includes and the paragraph fallback,
// dispatching to doctree.Builder the same way package inline does for
// inline content.
//
// Grounded on the teacher's latex/convert.go dispatch-by-token-kind
// loop and latex/env.go's named-environment table, generalized from the
// teacher's fixed HTML-producing environment set to spec.md's larger,
// builder-driven one.
package block

import (
	"fmt"

	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/inline"
	"github.com/latexdoc/reader/macro"
	"github.com/latexdoc/reader/state"
	"github.com/latexdoc/reader/token"
	"github.com/latexdoc/reader/tokenizer"
)

// ParseError is an unrecoverable syntactic failure, position-bearing in
// the style of the teacher's scanner.Error (spec.md section 7).
type ParseError struct {
	Pos     token.Pos
	Source  string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Source, e.Pos.Line, e.Pos.Column, e.Message)
}

// Includer resolves and loads the content of an \include/\input/
// \subfile/\usepackage/\lstinputlisting target. Implementations own all
// file-system and TEXINPUTS search behaviour (spec.md section 1: file
// I/O for include directives is an external collaborator touched only
// through this interface). A nil Includer on Engine makes every include
// directive log CouldNotLoadIncludeFile and contribute nothing.
type Includer interface {
	// Load resolves name against searchPath (the colon-split TEXINPUTS
	// entries, or "." when TEXINPUTS is unset, followed by the
	// \graphicspath directories) and returns its absolute path and raw
	// bytes.
	Load(name string, searchPath []string) (absPath string, data []byte, err error)
}

// Engine parses block content against a shared parser state.State.
type Engine struct {
	St       *state.State
	Builder  doctree.Builder
	Includer Includer
	Cache    IncludeCache

	// enumCounters holds \setcounter{enumN}{v} starting values, reset on
	// leaving the innermost enumerate (teacher-style package-global
	// counter table, scoped to one Engine per document parse).
	enumCounters map[string]int

	// pendingAuthors holds the most recent \author group's parts, so a
	// following \institute call can patch in affiliation superscripts
	// (spec.md section 4.8).
	pendingAuthors []authorPart

	// icmlAffilSeq counts \icmlaffiliation calls seen so far, so each one
	// gets a stable 1-based superscript index the way \institute's
	// \and-separated group does positionally.
	icmlAffilSeq int
}

// IncludeCache is the subset of includecache.Cache that block consumes,
// kept as a narrow interface here so the block package never imports
// includecache directly (package dependency runs the other way: reader
// wires a *includecache.Cache in through this interface).
type IncludeCache interface {
	Get(key string) (token.List, bool)
	Put(key string, toks token.List)
}

// New constructs an Engine. includer/cache may be nil.
func New(st *state.State, b doctree.Builder, includer Includer, cache IncludeCache) *Engine {
	if b == nil {
		b = doctree.DefaultBuilder{}
	}
	return &Engine{St: st, Builder: b, Includer: includer, Cache: cache, enumCounters: map[string]int{}}
}

// ParseBlocks consumes block content from the head of the stream until
// stop reports true for the next token or input runs out. stop may be
// nil (parse to end of input, for the top-level document).
func (e *Engine) ParseBlocks(stop func(*token.Token) bool) ([]doctree.Block, error) {
	var out []doctree.Block
	for {
		if err := e.St.ExpandHead(); err != nil {
			return out, err
		}
		head, ok, err := e.St.Stream.Peek()
		if err != nil {
			return out, err
		}
		if !ok || (stop != nil && stop(head)) {
			return out, nil
		}
		blocks, err := e.block(head)
		if err != nil {
			return out, err
		}
		out = append(out, blocks...)
	}
}

// childEngine builds an Engine sharing e's collaborators (Builder,
// Includer, Cache) over a freshly cloned sub-state, for any re-entrant
// sub-parse (table cell, include, raw escape hatch).
func (e *Engine) childEngine(subState *state.State) *Engine {
	return &Engine{St: subState, Builder: e.Builder, Includer: e.Includer, Cache: e.Cache, enumCounters: map[string]int{}}
}

// parseSubBlocks re-enters the block engine over an already-captured
// token list (a table cell, a bibitem pulled out of a raw escape hatch)
// using a cloned sub-state, merging learned macros back into e before
// returning — the block-level counterpart of inline.ParseTokenListAsInlines.
func (e *Engine) parseSubBlocks(toks token.List) ([]doctree.Block, error) {
	sub := tokenizer.New()
	sub.PrependTokens(toks)
	subState := e.St.Clone(sub)
	blocks, err := e.childEngine(subState).ParseBlocks(nil)
	e.St.MergeBack(subState)
	return blocks, err
}

// ParseOneBlock attempts exactly one block-level construct (environment,
// include, bibliography, or registered block command) from the head of
// the stream, succeeding even if it produces zero blocks (a macro
// definition or \maketitle). ok is false when the head is plain text (a
// paragraph, or end of input) rather than a distinct LaTeX construct —
// package raw's rawLaTeXBlock escape hatch (spec.md section 4.9) uses
// this instead of ParseBlocks, which loops until a stop predicate or EOF
// rather than stopping after one construct.
func (e *Engine) ParseOneBlock() (blocks []doctree.Block, ok bool, err error) {
	before := e.St.Stream.BytesConsumed()
	if err := e.St.ExpandHead(); err != nil {
		return nil, false, err
	}
	// A macroDef (\newcommand et al.) is consumed transparently by
	// ExpandHead and leaves nothing behind of its own; report success
	// even when no control sequence remains to dispatch on.
	consumedByExpand := e.St.Stream.BytesConsumed() > before

	head, present, err := e.St.Stream.Peek()
	if err != nil {
		return nil, false, err
	}
	if !present || head.Kind != token.ControlSeq {
		return nil, consumedByExpand, err
	}
	switch {
	case head.Name == "begin", head.Name == "end", head.Name == "bibliography", includeCommands[head.Name]:
		blocks, err = e.block(head)
		return blocks, true, err
	}
	if _, isBlockCmd := blockCommands[head.Name]; isBlockCmd {
		blocks, err = e.block(head)
		return blocks, true, err
	}
	return nil, false, nil
}

// isEndToken reports whether tok opens an \end{...} marker; used as the
// stop predicate for any construct that owns an explicit closing tag
// (environments). The matching name is verified by consumeEnd once
// ParseBlocks returns, not by the predicate itself (a predicate only
// sees one token of lookahead).
func isEndToken(tok *token.Token) bool {
	return tok != nil && tok.Kind == token.ControlSeq && tok.Name == "end"
}

// block dispatches exactly one block-level construct starting at head
// (already peeked, not yet consumed), per spec.md section 4.5's
// `block` ::= spaces1 | environment | include | bibliography-bbl |
// blockCommand | paragraph | grouped block alternation. (macroDef is
// handled transparently by ExpandHead before block is ever called — a
// \newcommand call expands to zero replacement tokens.)
func (e *Engine) block(head *token.Token) ([]doctree.Block, error) {
	switch {
	case head.Kind == token.Spaces || head.Kind == token.Newline || head.Kind == token.Comment:
		_, _, err := e.St.Stream.Next()
		return nil, err

	case head.Kind == token.Symbol && head.Name == "{":
		var out []doctree.Block
		err := e.St.Grouped(func() error {
			if err := e.St.ExpandHead(); err != nil {
				return err
			}
			inner, ok, err := e.St.Stream.Peek()
			if err != nil || !ok {
				return err
			}
			blocks, err := e.block(inner)
			out = append(out, blocks...)
			return err
		})
		return out, err

	case head.Kind == token.ControlSeq && head.Name == "begin":
		return e.environment()

	case head.Kind == token.ControlSeq && head.Name == "end":
		// A stray \end with no matching \begin in this Engine's scope:
		// consume and log rather than looping forever.
		if _, _, err := e.St.Stream.Next(); err != nil {
			return nil, err
		}
		_, _, err := macro.ReadBraced(e.St.Stream)
		e.St.Warn(state.UnexpectedEndOfDocument, head.Pos, "unmatched \\end")
		return nil, err

	case head.Kind == token.ControlSeq && includeCommands[head.Name]:
		return e.include(head.Name)

	case head.Kind == token.ControlSeq && head.Name == "bibliography":
		if _, _, err := e.St.Stream.Next(); err != nil {
			return nil, err
		}
		return e.bibliography()

	case head.Kind == token.ControlSeq:
		if h, ok := blockCommands[head.Name]; ok {
			if _, _, err := e.St.Stream.Next(); err != nil {
				return nil, err
			}
			return h(e, head)
		}
		return e.paragraph()

	default:
		return e.paragraph()
	}
}

// paragraph implements spec.md section 4.5's paragraph alternative: one
// or more inlines up to a blank line or the next block-level construct,
// trimmed of leading/trailing Space/SoftBreak; empty input yields
// nothing.
func (e *Engine) paragraph() ([]doctree.Block, error) {
	ie := inline.New(e.St, e.Builder)
	inlines, err := ie.ParseInlines(e.stopParagraph)
	if err != nil {
		return nil, err
	}
	inlines = trimInlines(inlines)
	if len(inlines) == 0 {
		return nil, nil
	}
	return []doctree.Block{e.Builder.Para(inlines)}, nil
}

// stopParagraph reports whether head starts a block-level construct
// that ends the current paragraph without being consumed by the inline
// engine: any \begin/\end, an include directive, \bibliography, or a
// registered block command.
func (e *Engine) stopParagraph(head *token.Token) bool {
	if head.Kind != token.ControlSeq {
		return false
	}
	if head.Name == "begin" || head.Name == "end" || head.Name == "bibliography" {
		return true
	}
	if includeCommands[head.Name] {
		return true
	}
	_, ok := blockCommands[head.Name]
	return ok
}

func trimInlines(in []doctree.Inline) []doctree.Inline {
	start := 0
	for start < len(in) {
		if isBreak(in[start]) {
			start++
			continue
		}
		break
	}
	end := len(in)
	for end > start {
		if isBreak(in[end-1]) {
			end--
			continue
		}
		break
	}
	return in[start:end]
}

func isBreak(in doctree.Inline) bool {
	switch in.(type) {
	case doctree.Space, doctree.SoftBreak:
		return true
	}
	return false
}

func flattenText(in []doctree.Inline) string {
	var out []byte
	for _, i := range in {
		if s, ok := i.(doctree.Str); ok {
			out = append(out, s.Text...)
		}
		if _, ok := i.(doctree.Space); ok {
			out = append(out, ' ')
		}
	}
	return string(out)
}
