package state

import (
	"testing"

	"github.com/latexdoc/reader/token"
	"github.com/latexdoc/reader/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSatisfyExpandsAfterConsuming(t *testing.T) {
	st := New(Options{Extensions: DefaultExtensions()})
	st.Stream.Prepend([]byte(`\newcommand{\x}{expanded}a\x b`), "test")

	// \newcommand is itself a macro-table entry, driven by an ordinary
	// ExpandHead call at the top of the parse loop — not by Satisfy,
	// which is for consuming a single already-identified token.
	require.NoError(t, st.ExpandHead())

	tok, ok, err := st.Satisfy(func(t *token.Token) bool { return t.Kind == token.Word && t.Name == "a" })
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", tok.Name)

	// The head is now \x; Satisfy's post-consume expansion attempt
	// should have already turned it into "expanded" before returning.
	tok, ok, err = st.Satisfy(func(t *token.Token) bool { return t.Kind == token.Word && t.Name == "expanded" })
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "expanded", tok.Name)
}

func TestGroupedReadsBalancedContent(t *testing.T) {
	st := New(Options{Extensions: DefaultExtensions()})
	st.Stream.Prepend([]byte(`{a{b}c}tail`), "test")

	var collected []string
	err := st.Grouped(func() error {
		tok, ok, err := st.Stream.Next()
		if err != nil || !ok {
			return err
		}
		collected = append(collected, tok.Raw)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "{", "b", "}", "c"}, collected)

	tok, ok, err := st.Stream.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tail", tok.Name)
}

func TestCloneAndMergeBack(t *testing.T) {
	parent := New(Options{Extensions: DefaultExtensions()})
	sub := tokenizer.New()
	sub.Prepend([]byte(`\newcommand{\y}{z}`), "sub")
	child := parent.Clone(sub)

	// \newcommand is itself a registered built-in macro form, so a
	// single ExpandHead call at the head of the sub-stream drives the
	// whole \newcommand{\y}{z} definition and installs "y" in the
	// child's (cloned) table.
	require.NoError(t, child.ExpandHead())
	_, found := child.Macros.Lookup("y")
	require.True(t, found, "macro should be installed in the child's own cloned table")

	_, foundInParent := parent.Macros.Lookup("y")
	require.False(t, foundInParent, "macro defined in a clone must not leak before merge-back")

	parent.MergeBack(child)
	_, foundInParent = parent.Macros.Lookup("y")
	require.True(t, foundInParent, "macro defined in a clone must appear in parent after merge-back")
}
