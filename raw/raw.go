// Package raw implements the re-entrant raw-LaTeX escape hatches of
// spec.md section 4.9: entry points a host parser for some other format
// (Markdown's raw_tex extension, say) can call to try consuming a
// fragment of embedded LaTeX out of its own character input, without
// the host needing to know anything about tokens, macros or the
// document tree builder.
//
// No example repo in the retrieved pack implements this kind of
// cross-reader embedding (the teacher only ever reads whole documents),
// so this package is new; it is written against this module's own
// state/block/inline packages exactly as package table and package
// rewrite are, reusing their Clone/MergeBack re-entrancy contract
// (state.State.Clone, block.Engine.ParseOneBlock, inline.Engine.
// ParseOneInline) rather than inventing a new one.
package raw

import (
	"strings"

	"github.com/latexdoc/reader/block"
	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/inline"
	"github.com/latexdoc/reader/state"
	"github.com/latexdoc/reader/tokenizer"
)

// looksLikeLaTeX is the cheap lookahead spec.md section 4.9 calls for
// before paying for a full tokenize-and-parse attempt: the fragment must
// start (after horizontal whitespace) with "\letter" or "$".
func looksLikeLaTeX(input string) bool {
	trimmed := strings.TrimLeft(input, " \t")
	if trimmed == "" {
		return false
	}
	if trimmed[0] == '$' {
		return true
	}
	if trimmed[0] != '\\' || len(trimmed) < 2 {
		return false
	}
	c := trimmed[1]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Block implements rawLaTeXBlock: it tries to parse one block-level
// LaTeX construct (environment, include, bibliography, or block
// command) from the head of input against host's shared macro/meta
// state. On success, consumed gives the number of bytes of input the
// parse used and host's state has absorbed any macros the fragment
// defined; the caller should advance its own cursor by consumed bytes
// and treat the rest of input as still unconsumed. ok is false (with
// consumed == 0) if input doesn't open with a LaTeX block construct at
// all, in which case host's state is untouched.
func Block(host *block.Engine, input string) (blocks []doctree.Block, consumed int, ok bool, err error) {
	if !looksLikeLaTeX(input) {
		return nil, 0, false, nil
	}

	sub := tokenizer.New()
	sub.Prepend([]byte(input), "raw-latex-block")
	subState := host.St.Clone(sub)
	subEngine := block.New(subState, host.Builder, host.Includer, host.Cache)

	blocks, ok, err = subEngine.ParseOneBlock()
	if err != nil || !ok {
		return nil, 0, ok, err
	}
	host.St.MergeBack(subState)
	return blocks, int(sub.BytesConsumed()), true, nil
}

// Inline implements rawLaTeXInline, the inline-context counterpart of
// Block: one control sequence (with its own arguments) parsed off the
// head of input.
func Inline(host *inline.Engine, input string) (inlines []doctree.Inline, consumed int, ok bool, err error) {
	if !looksLikeLaTeX(input) {
		return nil, 0, false, nil
	}

	sub := tokenizer.New()
	sub.Prepend([]byte(input), "raw-latex-inline")
	subState := host.St.Clone(sub)
	subEngine := inline.New(subState, host.Builder)

	inlines, ok, err = subEngine.ParseOneInline()
	if err != nil || !ok {
		return nil, 0, ok, err
	}
	host.St.MergeBack(subState)
	return inlines, int(sub.BytesConsumed()), true, nil
}

// Macros implements applyMacros (spec.md section 4.9): if the
// latex_macros extension is enabled on host, text is tokenized,
// expanded to a fixpoint against host's current macro table, and
// re-emitted as a string; a text with no invocations of defined macros
// is returned unchanged byte-for-byte. Macro definitions appearing
// inside text itself are expanded away like any other macro call but
// are not merged back into host — text is typically a short embedded
// fragment (a figure's alt-text, say), not a place new macros should be
// declared from.
func Macros(host *state.State, text string) (string, error) {
	if !host.Options.Extensions.LatexMacros {
		return text, nil
	}

	sub := tokenizer.New()
	sub.Prepend([]byte(text), "apply-macros")
	subState := host.Clone(sub)

	var b strings.Builder
	for {
		if err := subState.ExpandHead(); err != nil {
			return "", err
		}
		tok, ok, err := subState.Stream.Next()
		if err != nil {
			return "", err
		}
		if !ok {
			break
		}
		b.WriteString(tok.Raw)
	}
	return b.String(), nil
}
