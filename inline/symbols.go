package inline

import (
	"strings"

	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/state"
	"github.com/latexdoc/reader/token"
)

// dispatchSymbol handles a Symbol token already consumed from the head
// of the stream, per spec.md section 4.4.
func (e *Engine) dispatchSymbol(tok *token.Token, out *[]doctree.Inline) error {
	switch {
	case tok.Name == "-":
		return e.collapseDashes(out)
	case tok.Name == "~":
		*out = append(*out, e.Builder.Str(" "))
	case tok.Name == "`" || tok.Name == "'" || tok.Name == "``" || tok.Name == "''" || tok.Name == `"`:
		return e.handleQuote(tok.Name, out)
	case tok.Name == "$" || tok.Name == "$$":
		return e.handleMath(tok.Name, out)
	case tok.Name == "|" && e.St.Options.Extensions.LiterateHaskell:
		return e.handleLiterateVerbatim(out)
	default:
		*out = append(*out, e.Builder.Str(tok.Name))
	}
	return nil
}

// collapseDashes implements the "-"/"--"/"---" → hyphen/en-dash/em-dash
// rule: up to two further consecutive "-" symbols are folded into the
// one already consumed.
func (e *Engine) collapseDashes(out *[]doctree.Inline) error {
	count := 1
	for count < 3 {
		head, ok, err := e.St.Stream.Peek()
		if err != nil {
			return err
		}
		if !ok || head.Kind != token.Symbol || head.Name != "-" {
			break
		}
		if _, _, err := e.St.Stream.Next(); err != nil {
			return err
		}
		count++
	}
	switch count {
	case 1:
		*out = append(*out, e.Builder.Str("-"))
	case 2:
		*out = append(*out, e.Builder.Str("–"))
	default:
		*out = append(*out, e.Builder.Str("—"))
	}
	return nil
}

// handleQuote implements spec.md section 4.4's quote-context tracking:
// `` / '' and `"` toggle double quotes, ` and ' toggle single quotes, a
// closing ' must not be immediately followed by a letter (apostrophe
// heuristic). When the smart extension is off the raw marker is emitted
// literally.
func (e *Engine) handleQuote(name string, out *[]doctree.Inline) error {
	if !e.St.Options.Extensions.SmartQuotes {
		*out = append(*out, e.Builder.Str(name))
		return nil
	}
	switch name {
	case "``":
		e.St.Quote = state.InDoubleQuote
		*out = append(*out, e.Builder.Str("“"))
	case "''":
		e.St.Quote = state.NoQuote
		*out = append(*out, e.Builder.Str("”"))
	case `"`:
		if e.St.Quote == state.InDoubleQuote {
			e.St.Quote = state.NoQuote
			*out = append(*out, e.Builder.Str("”"))
		} else {
			e.St.Quote = state.InDoubleQuote
			*out = append(*out, e.Builder.Str("“"))
		}
	case "`":
		e.St.Quote = state.InSingleQuote
		*out = append(*out, e.Builder.Str("‘"))
	case "'":
		head, ok, err := e.St.Stream.Peek()
		if err != nil {
			return err
		}
		if ok && head.Kind == token.Word {
			// Followed by a letter: this is an apostrophe, not a
			// closing quote — leave the quote context alone.
			*out = append(*out, e.Builder.Str("’"))
			return nil
		}
		e.St.Quote = state.NoQuote
		*out = append(*out, e.Builder.Str("’"))
	}
	return nil
}

// handleMath consumes tokens until the matching math delimiter using a
// byte-level raw scan (math content is never macro-expanded or
// rendered, per the Non-goals; it is kept as opaque source text for a
// downstream math renderer) and trims the captured text.
func (e *Engine) handleMath(delim string, out *[]doctree.Inline) error {
	raw, _ := e.St.Stream.RawUntil(delim)
	kind := doctree.InlineMath
	if delim == "$$" {
		kind = doctree.DisplayMath
	}
	*out = append(*out, e.Builder.Math(kind, strings.TrimSpace(raw)))
	return nil
}

// handleLiterateVerbatim implements the literate_haskell extension's
// "|...|" inline verbatim span.
func (e *Engine) handleLiterateVerbatim(out *[]doctree.Inline) error {
	raw, _ := e.St.Stream.RawUntil("|")
	*out = append(*out, e.Builder.Code(doctree.Attr{}, raw))
	return nil
}
