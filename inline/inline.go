// Package inline implements the Inline Engine of spec.md section 4.4:
// dispatching control sequences and environments encountered in inline
// context to doctree.Builder calls, handling accents, quote context,
// math delimiters, dash/tilde collapsing, and raw passthrough for
// anything unrecognised.
package inline

import (
	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/state"
	"github.com/latexdoc/reader/token"
)

// Engine parses inline content against a shared parser state.State.
type Engine struct {
	St      *state.State
	Builder doctree.Builder
}

func New(st *state.State, b doctree.Builder) *Engine {
	if b == nil {
		b = doctree.DefaultBuilder{}
	}
	return &Engine{St: st, Builder: b}
}

// ParseInlines consumes inline content from the head of the stream
// until stop reports true for the next token, input runs out, or a
// blank line (paragraph break) is reached — in the latter case the
// blank line's second newline token is left unconsumed, for the block
// engine's paragraph splitter to see. stop may be nil.
func (e *Engine) ParseInlines(stop func(*token.Token) bool) ([]doctree.Inline, error) {
	var out []doctree.Inline
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
		brk, err := e.step(&out)
		if err != nil {
			return out, err
		}
		if brk {
			return out, nil
		}
	}
}

// ParseOneInline attempts exactly one inline-level construct (a
// recognised control sequence or environment) from the head of the
// stream, succeeding even if it produces zero inlines. ok is false when
// the head is plain text (a word, space, symbol) rather than a distinct
// command — package raw's rawLaTeXInline escape hatch (spec.md section
// 4.9) uses this instead of ParseInlines, which loops to a stop
// predicate or EOF rather than stopping after one construct.
func (e *Engine) ParseOneInline() (inlines []doctree.Inline, ok bool, err error) {
	before := e.St.Stream.BytesConsumed()
	if err := e.St.ExpandHead(); err != nil {
		return nil, false, err
	}
	consumedByExpand := e.St.Stream.BytesConsumed() > before

	head, present, err := e.St.Stream.Peek()
	if err != nil {
		return nil, false, err
	}
	if !present || head.Kind != token.ControlSeq {
		return nil, consumedByExpand, err
	}
	var out []doctree.Inline
	_, err = e.step(&out)
	return out, true, err
}

// step consumes exactly one token's worth of inline content (a dash run
// and a command's own arguments count as one step) and appends to out.
// brk reports that a paragraph break (blank line) was reached.
func (e *Engine) step(out *[]doctree.Inline) (brk bool, err error) {
	tok, ok, err := e.St.Stream.Next()
	if err != nil || !ok {
		return false, err
	}

	switch tok.Kind {
	case token.Word:
		*out = append(*out, e.Builder.Str(tok.Name))
	case token.Spaces:
		*out = append(*out, e.Builder.Space())
	case token.Newline:
		return e.handleNewline(out)
	case token.Comment:
		// Comments carry no content.
	case token.Esc1, token.Esc2:
		*out = append(*out, e.Builder.Str(decodeEscape(tok)))
	case token.Arg:
		// An unsubstituted Arg reaching here means it was never
		// inside a real invocation; render literally rather than
		// silently dropping it.
		*out = append(*out, e.Builder.Str(tok.Raw))
	case token.ControlSeq:
		return false, e.dispatchControlSeq(tok, out)
	case token.Symbol:
		return false, e.dispatchSymbol(tok, out)
	}
	return false, nil
}

func (e *Engine) handleNewline(out *[]doctree.Inline) (bool, error) {
	head, ok, err := e.St.Stream.Peek()
	if err != nil {
		return false, err
	}
	if ok && head.Kind == token.Newline {
		return true, nil
	}
	*out = append(*out, e.Builder.SoftBreak())
	return false, nil
}

func decodeEscape(tok *token.Token) string {
	switch tok.Kind {
	case token.Esc2:
		hi := hexVal(tok.Name[2])
		lo := hexVal(tok.Name[3])
		return string(rune(hi*16 + lo))
	case token.Esc1:
		c := tok.Name[2]
		if c >= 64 {
			c -= 64
		} else {
			c += 64
		}
		return string(rune(c))
	}
	return tok.Raw
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	}
	return 0
}
