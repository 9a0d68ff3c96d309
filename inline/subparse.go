package inline

import (
	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/state"
	"github.com/latexdoc/reader/token"
	"github.com/latexdoc/reader/tokenizer"
)

// parseTokenListAsInlines re-enters the inline engine over an
// already-captured token list (a macro argument, an \ifstrequal
// branch, a citation prefix/suffix) using a cloned sub-state per
// spec.md sections 4.8/4.9, merging any macros the sub-parse learned
// back into the caller before returning.
func (e *Engine) parseTokenListAsInlines(body token.List) ([]doctree.Inline, error) {
	return ParseTokenListAsInlines(e.St, e.Builder, body)
}

// parseStringAsInlines is parseTokenListAsInlines for raw text that
// hasn't been tokenized yet (e.g. a \citetext segment split out of raw
// captured text).
func (e *Engine) parseStringAsInlines(text, sourceName string) ([]doctree.Inline, error) {
	return ParseStringAsInlines(e.St, e.Builder, text, sourceName)
}

// ParseTokenListAsInlines is the package-level form of
// parseTokenListAsInlines, exported so the block, table, rewrite and raw
// packages can turn an already-captured token list (a section title, a
// table cell, a caption) into inlines without duplicating the
// clone/merge-back dance.
func ParseTokenListAsInlines(st *state.State, b doctree.Builder, body token.List) ([]doctree.Inline, error) {
	sub := tokenizer.New()
	sub.PrependTokens(body)
	subState := st.Clone(sub)
	e := New(subState, b)
	inlines, err := e.ParseInlines(nil)
	st.MergeBack(subState)
	return inlines, err
}

// ParseStringAsInlines is ParseTokenListAsInlines for raw, untokenized
// text.
func ParseStringAsInlines(st *state.State, b doctree.Builder, text, sourceName string) ([]doctree.Inline, error) {
	sub := tokenizer.New()
	sub.Prepend([]byte(text), sourceName)
	subState := st.Clone(sub)
	e := New(subState, b)
	inlines, err := e.ParseInlines(nil)
	st.MergeBack(subState)
	return inlines, err
}
