package raw

import (
	"testing"

	"github.com/latexdoc/reader/block"
	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/inline"
	"github.com/latexdoc/reader/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHostState(t *testing.T) *state.State {
	t.Helper()
	return state.New(state.Options{Extensions: state.DefaultExtensions()})
}

func TestBlockRejectsNonLaTeXInput(t *testing.T) {
	host := block.New(newHostState(t), nil, nil, nil)
	blocks, consumed, ok, err := Block(host, "just some plain text")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, consumed)
	assert.Nil(t, blocks)
}

func TestBlockParsesEnvironmentAndReportsConsumedBytes(t *testing.T) {
	host := block.New(newHostState(t), nil, nil, nil)
	input := `\begin{quote}hello\end{quote} and more text after`
	blocks, consumed, ok, err := Block(host, input)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, blocks, 1)
	assert.Equal(t, `\begin{quote}hello\end{quote}`, input[:consumed])
}

func TestBlockMergesMacroDefinitionsBack(t *testing.T) {
	host := block.New(newHostState(t), nil, nil, nil)
	_, _, ok, err := Block(host, `\newcommand{\foo}{bar}`)
	require.NoError(t, err)
	require.True(t, ok)
	_, ok2 := host.St.Macros.Lookup("foo")
	assert.True(t, ok2)
}

func TestInlineRejectsNonLaTeXInput(t *testing.T) {
	host := inline.New(newHostState(t), nil)
	inlines, consumed, ok, err := Inline(host, "plain")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, consumed)
	assert.Nil(t, inlines)
}

func TestInlineParsesSingleCommand(t *testing.T) {
	host := inline.New(newHostState(t), nil)
	input := `\emph{hi} trailing`
	out, consumed, ok, err := Inline(host, input)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, out, 1)
	assert.Equal(t, doctree.Emph{Inlines: []doctree.Inline{doctree.Str{Text: "hi"}}}, out[0])
	assert.Equal(t, `\emph{hi}`, input[:consumed])
}

func TestMacrosExpandsToFixpoint(t *testing.T) {
	host := newHostState(t)
	_, _, ok, err := Block(block.New(host, nil, nil, nil), `\newcommand{\greeting}{hello world}`)
	require.NoError(t, err)
	require.True(t, ok)

	out, err := Macros(host, `say: \greeting!`)
	require.NoError(t, err)
	assert.Equal(t, "say: hello world!", out)
}

func TestMacrosNoopWhenExtensionDisabled(t *testing.T) {
	host := state.New(state.Options{Extensions: state.Extensions{LatexMacros: false}})
	out, err := Macros(host, `\undefined{x}`)
	require.NoError(t, err)
	assert.Equal(t, `\undefined{x}`, out)
}
