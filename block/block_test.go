package block

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
	return New(st, doctree.DefaultBuilder{}, nil, nil)
}

func TestParseBlocksSimpleParagraph(t *testing.T) {
	e := newTestEngine(t, "hello world")
	blocks, err := e.ParseBlocks(nil)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	para, ok := blocks[0].(doctree.Para)
	require.True(t, ok)
	require.Len(t, para.Inlines, 3)
	assert.Equal(t, doctree.Str{Text: "hello"}, para.Inlines[0])
}

func TestParseBlocksBlankLineSplitsParagraphs(t *testing.T) {
	e := newTestEngine(t, "first\n\nsecond")
	blocks, err := e.ParseBlocks(nil)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, doctree.Str{Text: "first"}, blocks[0].(doctree.Para).Inlines[0])
	assert.Equal(t, doctree.Str{Text: "second"}, blocks[1].(doctree.Para).Inlines[0])
}

func TestSectionHandlerAssignsHeaderLevelAndID(t *testing.T) {
	e := newTestEngine(t, `\section{My Title}`)
	blocks, err := e.ParseBlocks(nil)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	h := blocks[0].(doctree.Header)
	assert.Equal(t, 1, h.Level)
	assert.Equal(t, "my-title", h.Attr.ID)
}

func TestSectionHandlerDuplicateTitlesGetSuffixedIDs(t *testing.T) {
	e := newTestEngine(t, `\section{Intro}\section{Intro}`)
	blocks, err := e.ParseBlocks(nil)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	first := blocks[0].(doctree.Header)
	second := blocks[1].(doctree.Header)
	assert.Equal(t, "intro", first.Attr.ID)
	assert.Equal(t, "intro-2", second.Attr.ID)
}

func TestSectionHandlerStarIsUnnumbered(t *testing.T) {
	e := newTestEngine(t, `\section*{Intro}`)
	blocks, err := e.ParseBlocks(nil)
	require.NoError(t, err)
	h := blocks[0].(doctree.Header)
	assert.Contains(t, h.Attr.Classes, "unnumbered")
}

func TestItemizeEnvParsesItems(t *testing.T) {
	e := newTestEngine(t, "\\begin{itemize}\n\\item one\n\\item two\n\\end{itemize}")
	blocks, err := e.ParseBlocks(nil)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	list := blocks[0].(doctree.BulletList)
	require.Len(t, list.Items, 2)
}

func TestEnumerateEnvRespectsSetCounter(t *testing.T) {
	e := newTestEngine(t, "\\begin{enumerate}\n\\setcounter{enumi}{4}\n\\item x\n\\end{enumerate}")
	blocks, err := e.ParseBlocks(nil)
	require.NoError(t, err)
	list := blocks[0].(doctree.OrderedList)
	assert.Equal(t, 5, list.Start)
}

func TestDescriptionEnvPairsTermsAndBodies(t *testing.T) {
	e := newTestEngine(t, "\\begin{description}\n\\item[Foo] bar\n\\end{description}")
	blocks, err := e.ParseBlocks(nil)
	require.NoError(t, err)
	list := blocks[0].(doctree.DefinitionList)
	require.Len(t, list.Items, 1)
	assert.Equal(t, doctree.Str{Text: "Foo"}, list.Items[0].Term[0])
}

func TestFigureAttachesCaptionToImage(t *testing.T) {
	e := newTestEngine(t, "\\begin{figure}\n\\includegraphics{plot.png}\n\\caption{A plot}\n\\end{figure}")
	blocks, err := e.ParseBlocks(nil)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	div := blocks[0].(doctree.Div)
	assert.Contains(t, div.Attr.Classes, "figure")
	para := div.Blocks[0].(doctree.Para)
	img := para.Inlines[0].(doctree.Image)
	assert.Equal(t, "fig:plot.png", img.Target)
}

func TestAuthorInstituteAttachesSuperscript(t *testing.T) {
	e := newTestEngine(t, `\author{Alice\inst{1}\and Bob\inst{2}}\institute{Uni A \and Uni B}`)
	_, err := e.ParseBlocks(nil)
	require.NoError(t, err)
	authorMeta, ok := e.St.Meta.Get("author")
	require.True(t, ok)
	require.Len(t, authorMeta.List, 2)
	assert.Equal(t, doctree.Str{Text: "Alice"}, authorMeta.List[0].Inlines[0])
	sup, ok := authorMeta.List[0].Inlines[len(authorMeta.List[0].Inlines)-1].(doctree.Superscript)
	require.True(t, ok)
	assert.Equal(t, doctree.Str{Text: "1"}, sup.Inlines[0])
}

func TestBibitemRegistersCitationID(t *testing.T) {
	e := newTestEngine(t, `\bibitem{key1} Some reference text.`)
	blocks, err := e.ParseBlocks(nil)
	require.NoError(t, err)
	require.NotEmpty(t, blocks)
	assert.Equal(t, "bib-key1", blocks[0].(doctree.Div).Attr.ID)
}

func TestBibliographyRecordsMetaEntries(t *testing.T) {
	e := newTestEngine(t, `\bibliography{refs,more}`)
	_, err := e.ParseBlocks(nil)
	require.NoError(t, err)
	bib, ok := e.St.Meta.Get("bibliography")
	require.True(t, ok)
	require.Len(t, bib.List, 2)
	assert.Equal(t, doctree.Str{Text: "refs"}, bib.List[0].Inlines[0])
	assert.Equal(t, doctree.Str{Text: "more"}, bib.List[1].Inlines[0])
}

func TestVerbatimEnvCapturesRawBody(t *testing.T) {
	e := newTestEngine(t, "\\begin{verbatim}\nraw \\stuff $here\n\\end{verbatim}")
	blocks, err := e.ParseBlocks(nil)
	require.NoError(t, err)
	cb := blocks[0].(doctree.CodeBlock)
	assert.Contains(t, cb.Text, `\stuff`)
	assert.Contains(t, cb.Attr.Classes, "verbatim")
}

func TestUnmatchedEndLogsWarning(t *testing.T) {
	e := newTestEngine(t, `\end{itemize}`)
	_, err := e.ParseBlocks(nil)
	require.NoError(t, err)
	require.NotEmpty(t, e.St.Log)
	assert.Equal(t, state.UnexpectedEndOfDocument, e.St.Log[0].Kind)
}

// stubIncluder is a fixed in-memory Includer for testing \input/\include.
type stubIncluder struct {
	files map[string][]byte
}

func (s stubIncluder) Load(name string, searchPath []string) (string, []byte, error) {
	data, ok := s.files[name]
	if !ok {
		return "", nil, assert.AnError
	}
	return name, data, nil
}

func TestIncludePullsInNestedContent(t *testing.T) {
	st := state.New(state.Options{Extensions: state.DefaultExtensions()})
	st.Stream.Prepend([]byte(`\input{part}`), "test")
	includer := stubIncluder{files: map[string][]byte{"part": []byte("nested text")}}
	e := New(st, doctree.DefaultBuilder{}, includer, nil)

	blocks, err := e.ParseBlocks(nil)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	para := blocks[0].(doctree.Para)
	assert.Equal(t, doctree.Str{Text: "nested"}, para.Inlines[0])
}

func TestIncludeMissingFileLogsAndContributesNothing(t *testing.T) {
	st := state.New(state.Options{Extensions: state.DefaultExtensions()})
	st.Stream.Prepend([]byte(`\input{missing}`), "test")
	e := New(st, doctree.DefaultBuilder{}, stubIncluder{files: map[string][]byte{}}, nil)

	blocks, err := e.ParseBlocks(nil)
	require.NoError(t, err)
	assert.Empty(t, blocks)
	require.NotEmpty(t, e.St.Log)
	assert.Equal(t, state.CouldNotLoadIncludeFile, e.St.Log[0].Kind)
}

func TestParseOneBlockReportsFalseOnPlainText(t *testing.T) {
	e := newTestEngine(t, "just words")
	blocks, ok, err := e.ParseOneBlock()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, blocks)
}

func TestParseOneBlockSucceedsOnBareMacroDefinition(t *testing.T) {
	e := newTestEngine(t, `\newcommand{\foo}{bar}`)
	blocks, ok, err := e.ParseOneBlock()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, blocks)
	_, defined := e.St.Macros.Lookup("foo")
	assert.True(t, defined)
}

func TestParseOneBlockParsesExactlyOneEnvironment(t *testing.T) {
	e := newTestEngine(t, "\\begin{quote}hi\\end{quote} trailing")
	blocks, ok, err := e.ParseOneBlock()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, blocks, 1)

	rest, err := e.ParseBlocks(nil)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, doctree.Str{Text: "trailing"}, rest[0].(doctree.Para).Inlines[0])
}
