package reader

import (
	"os"
	"testing"

	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSkipsPreambleAndKeepsDocumentBody(t *testing.T) {
	r := &Reader{}
	input := `\documentclass{article}
\newcommand{\foo}{bar}
\title{My Doc}
\begin{document}
Hello world.
\end{document}
`
	doc, st, err := r.Parse([]byte(input), "in.tex", state.Options{Extensions: state.DefaultExtensions()})
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	para := doc.Blocks[0].(doctree.Para)
	assert.Equal(t, doctree.Str{Text: "Hello"}, para.Inlines[0])

	title, ok := doc.Meta["title"]
	require.True(t, ok)
	assert.Equal(t, doctree.Str{Text: "My"}, title.Inlines[0])
	assert.Empty(t, st.Log)
}

func TestParseDiscardsUnrecognisedPreambleTokens(t *testing.T) {
	r := &Reader{}
	input := `\pagestyle{empty}
\begin{document}
Body text.
\end{document}`
	doc, _, err := r.Parse([]byte(input), "in.tex", state.Options{Extensions: state.DefaultExtensions()})
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, doctree.Str{Text: "Body"}, doc.Blocks[0].(doctree.Para).Inlines[0])
}

func TestParseNormalizesHeaderLevels(t *testing.T) {
	r := &Reader{}
	input := "\\begin{document}\n\\chapter{Inner}\n\\end{document}"
	doc, _, err := r.Parse([]byte(input), "in.tex", state.Options{Extensions: state.DefaultExtensions()})
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	h := doc.Blocks[0].(doctree.Header)
	assert.Equal(t, 1, h.Level)
}

func TestParseWithNoDocumentEnvironmentYieldsNoBlocks(t *testing.T) {
	r := &Reader{}
	doc, _, err := r.Parse([]byte("just some text"), "in.tex", state.Options{Extensions: state.DefaultExtensions()})
	require.NoError(t, err)
	require.Empty(t, doc.Blocks)
}

func TestFileIncluderResolvesFromSearchPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/chapter.tex", []byte("chapter body"), 0o644))

	inc := NewFileIncluder()
	abs, data, err := inc.Load("chapter", []string{dir})
	require.NoError(t, err)
	assert.Equal(t, "chapter body", string(data))
	assert.Contains(t, abs, "chapter.tex")
}

func TestFileIncluderReturnsErrorWhenNotFound(t *testing.T) {
	inc := NewFileIncluder()
	_, _, err := inc.Load("nope", []string{t.TempDir()})
	assert.Error(t, err)
}
