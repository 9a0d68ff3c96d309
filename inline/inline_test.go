package inline

import (
	"testing"

	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, input string) *Engine {
	t.Helper()
	st := state.New(state.Options{Extensions: state.DefaultExtensions()})
	st.Stream.Prepend([]byte(input), "test")
	return New(st, nil)
}

func TestEmphWithWord(t *testing.T) {
	e := newTestEngine(t, `hello \emph{world}`)
	in, err := e.ParseInlines(nil)
	require.NoError(t, err)
	require.Len(t, in, 3)
	assert.Equal(t, doctree.Str{Text: "hello"}, in[0])
	assert.Equal(t, doctree.Space{}, in[1])
	assert.Equal(t, doctree.Emph{Inlines: []doctree.Inline{doctree.Str{Text: "world"}}}, in[2])
}

func TestAccentAppliesToFirstCharOfWord(t *testing.T) {
	e := newTestEngine(t, `\'e`)
	in, err := e.ParseInlines(nil)
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, doctree.Str{Text: "é"}, in[0])
}

func TestAccentMissingArgumentFallsBackToLiteral(t *testing.T) {
	e := newTestEngine(t, `\'`)
	in, err := e.ParseInlines(nil)
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, doctree.Str{Text: "'"}, in[0])
}

func TestDashCollapsing(t *testing.T) {
	e := newTestEngine(t, `a-b--c---d`)
	in, err := e.ParseInlines(nil)
	require.NoError(t, err)
	var got string
	for _, i := range in {
		if s, ok := i.(doctree.Str); ok {
			got += s.Text
		}
	}
	assert.Equal(t, "a-b–c—d", got)
}

func TestDoubleQuotesToggleContext(t *testing.T) {
	e := newTestEngine(t, "``hi''")
	in, err := e.ParseInlines(nil)
	require.NoError(t, err)
	require.Len(t, in, 3)
	assert.Equal(t, doctree.Str{Text: "“"}, in[0])
	assert.Equal(t, doctree.Str{Text: "hi"}, in[1])
	assert.Equal(t, doctree.Str{Text: "”"}, in[2])
	assert.Equal(t, state.NoQuote, e.St.Quote)
}

func TestInlineMath(t *testing.T) {
	e := newTestEngine(t, `$x^2$`)
	in, err := e.ParseInlines(nil)
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, doctree.Math{Kind: doctree.InlineMath, Text: "x^2"}, in[0])
}

func TestCitationSingleKey(t *testing.T) {
	e := newTestEngine(t, `\cite{Foo2000}`)
	in, err := e.ParseInlines(nil)
	require.NoError(t, err)
	require.Len(t, in, 1)
	cite, ok := in[0].(doctree.Cite)
	require.True(t, ok)
	require.Len(t, cite.Citations, 1)
	assert.Equal(t, "Foo2000", cite.Citations[0].ID)
	assert.Equal(t, doctree.NormalCitation, cite.Citations[0].Mode)
}

func TestCitationMultipleKeysAndSuffix(t *testing.T) {
	e := newTestEngine(t, `\cite[p.~5]{Foo2000,Bar1999}`)
	in, err := e.ParseInlines(nil)
	require.NoError(t, err)
	require.Len(t, in, 1)
	cite, ok := in[0].(doctree.Cite)
	require.True(t, ok)
	require.Len(t, cite.Citations, 2)
	assert.Equal(t, "Foo2000", cite.Citations[0].ID)
	assert.Equal(t, "Bar1999", cite.Citations[1].ID)
	assert.NotEmpty(t, cite.Citations[0].Suffix)
}

func TestUnknownCommandLogsSkippedContent(t *testing.T) {
	e := newTestEngine(t, `\nosuchcommand`)
	in, err := e.ParseInlines(nil)
	require.NoError(t, err)
	assert.Empty(t, in)
	require.Len(t, e.St.Log, 1)
	assert.Equal(t, state.SkippedContent, e.St.Log[0].Kind)
}

func TestUnknownCommandRawPassthroughWhenExtensionOn(t *testing.T) {
	st := state.New(state.Options{Extensions: state.Extensions{RawTex: true}})
	st.Stream.Prepend([]byte(`\nosuchcommand`), "test")
	e := New(st, nil)
	in, err := e.ParseInlines(nil)
	require.NoError(t, err)
	require.Len(t, in, 1)
	raw, ok := in[0].(doctree.RawInline)
	require.True(t, ok)
	assert.Equal(t, `\nosuchcommand`, raw.Text)
}
