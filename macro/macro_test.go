package macro

import (
	"testing"

	"github.com/latexdoc/reader/token"
	"github.com/latexdoc/reader/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expandAll(t *testing.T, tab *Table, input string) string {
	t.Helper()
	s := tokenizer.New()
	s.Prepend([]byte(input), "test")
	var out token.List
	for {
		require.NoError(t, ExpandHead(s, tab))
		tok, ok, err := s.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		out = append(out, tok)
	}
	return out.Raw()
}

func TestNewCommandSimple(t *testing.T) {
	tab := NewTable()
	got := expandAll(t, tab, `\newcommand{\greet}{Hello}\greet!`)
	assert.Equal(t, "Hello!", got)
}

func TestNewCommandWithArgs(t *testing.T) {
	tab := NewTable()
	got := expandAll(t, tab, `\newcommand{\wrap}[2]{[#1/#2]}\wrap{a}{b}`)
	assert.Equal(t, "[a/b]", got)
}

func TestNewCommandOptionalArg(t *testing.T) {
	tab := NewTable()
	got := expandAll(t, tab, `\newcommand{\greet}[1][World]{Hello #1}\greet[Mars]\greet`)
	// Invoking with an explicit "[...]" overrides the default; invoking
	// bare (no bracket) falls back to the default.
	assert.Equal(t, "Hello MarsHello World", got)
}

func TestNewCommandAlreadyDefinedWarns(t *testing.T) {
	tab := NewTable()
	var warned []string
	tab.Warn = func(pos token.Pos, msg string) { warned = append(warned, msg) }
	expandAll(t, tab, `\newcommand{\a}{1}\newcommand{\a}{2}`)
	require.Len(t, warned, 1)
	assert.Contains(t, warned[0], "\\a")
}

func TestProvideCommandDoesNotOverwrite(t *testing.T) {
	tab := NewTable()
	got := expandAll(t, tab, `\newcommand{\a}{first}\providecommand{\a}{second}\a`)
	assert.Equal(t, "first", got)
}

func TestNewEnvironment(t *testing.T) {
	tab := NewTable()
	got := expandAll(t, tab, `\newenvironment{box}{<}{>}\begin{box}content\end{box}`)
	assert.Equal(t, "<content>", got)
}

func TestNewEnvironmentWithArg(t *testing.T) {
	tab := NewTable()
	got := expandAll(t, tab, `\newenvironment{box}[1]{<#1>}{</#1>}\begin{box}{x}mid\end{box}`)
	assert.Equal(t, "<x>mid</x>", got)
}

func TestUnknownEnvironmentPassesThrough(t *testing.T) {
	tab := NewTable()
	s := tokenizer.New()
	s.Prepend([]byte(`\begin{itemize}\item a\end{itemize}`), "test")
	require.NoError(t, ExpandHead(s, tab))
	tok, ok, err := s.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, token.ControlSeq, tok.Kind)
	assert.Equal(t, "begin", tok.Name)
}

func TestDefSimple(t *testing.T) {
	tab := NewTable()
	got := expandAll(t, tab, `\def\foo#1{<#1>}\foo{x}`)
	assert.Equal(t, "<x>", got)
}

func TestDefDelimitedParameter(t *testing.T) {
	tab := NewTable()
	got := expandAll(t, tab, `\def\foo#1,{[#1]}\foo abc,`)
	assert.Equal(t, "[abc]", got)
}

func TestMacroLoopDetected(t *testing.T) {
	tab := NewTable()
	s := tokenizer.New()
	// \def defines \a, and ExpandHead keeps expanding at the head within
	// a single call: once \def installs \a, the trailing invocation
	// immediately recurses into itself.
	s.Prepend([]byte(`\def\a{\a}\a`), "test")
	err := ExpandHead(s, tab)
	require.Error(t, err)
	var loopErr *LoopError
	require.ErrorAs(t, err, &loopErr)
	assert.Equal(t, "a", loopErr.Name)
}

func TestMacrosDisabledSkipsInstallation(t *testing.T) {
	tab := NewTable()
	tab.MacrosEnabled = false
	got := expandAll(t, tab, `\newcommand{\a}{x}\a`)
	// \newcommand itself still "expands" (consumes its own syntax, emits
	// nothing) but installs no entry, so \a is left for the caller to
	// treat as an unknown control sequence.
	assert.Equal(t, `\a`, got)
}
