package table

import (
	"testing"

	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/state"
	"github.com/latexdoc/reader/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T, input string) *state.State {
	t.Helper()
	st := state.New(state.Options{Extensions: state.DefaultExtensions()})
	st.Stream.Prepend([]byte(input), "test")
	return st
}

// flattenParser turns a cell's captured tokens directly into a single
// Plain of Str/Space inlines, standing in for block's full parseCell
// callback so these tests don't need to import package block (which
// already imports table).
func flattenParser(body token.List) ([]doctree.Block, error) {
	var inlines []doctree.Inline
	for _, tok := range body {
		switch tok.Kind {
		case token.Word:
			inlines = append(inlines, doctree.Str{Text: tok.Name})
		case token.Spaces:
			inlines = append(inlines, doctree.Space{})
		}
	}
	if len(inlines) == 0 {
		return nil, nil
	}
	return []doctree.Block{doctree.Plain{Inlines: inlines}}, nil
}

func TestParseAlignsBasic(t *testing.T) {
	aligns := parseAligns(`|l|c|r|`)
	assert.Equal(t, []doctree.Align{doctree.AlignLeft, doctree.AlignCenter, doctree.AlignRight}, aligns)
}

func TestParseAlignsStarExpansion(t *testing.T) {
	aligns := parseAligns(`*{3}{c}`)
	assert.Equal(t, []doctree.Align{doctree.AlignCenter, doctree.AlignCenter, doctree.AlignCenter}, aligns)
}

func TestParseAlignsDiscardsAtAndPColumns(t *testing.T) {
	aligns := parseAligns(`l@{, }p{3cm}`)
	assert.Equal(t, []doctree.Align{doctree.AlignLeft, doctree.AlignLeft}, aligns)
}

func TestParseEnvironmentSimpleTable(t *testing.T) {
	st := newTestState(t, `{lc}
a & b \\
c & d \\
\end{tabular}`)
	blk, err := ParseEnvironment(st, doctree.DefaultBuilder{}, "tabular", flattenParser)
	require.NoError(t, err)
	tbl, ok := blk.(doctree.Table)
	require.True(t, ok)
	assert.Equal(t, []doctree.Align{doctree.AlignLeft, doctree.AlignCenter}, tbl.Aligns)
	require.Len(t, tbl.Rows, 2)
	require.Len(t, tbl.Rows[0], 2)
}

func TestParseEnvironmentDetectsHeaderRow(t *testing.T) {
	st := newTestState(t, `{ll}
Name & Value \\
\hline
a & b \\
\end{tabular}`)
	blk, err := ParseEnvironment(st, doctree.DefaultBuilder{}, "tabular", flattenParser)
	require.NoError(t, err)
	tbl := blk.(doctree.Table)
	require.Len(t, tbl.Header, 2)
	require.Len(t, tbl.Rows, 1)
}

func TestParseEnvironmentCaption(t *testing.T) {
	st := newTestState(t, `{l}
\caption{A caption}
a \\
\end{tabular}`)
	blk, err := ParseEnvironment(st, doctree.DefaultBuilder{}, "tabular", flattenParser)
	require.NoError(t, err)
	tbl := blk.(doctree.Table)
	require.Len(t, tbl.Caption, 3)
	assert.Equal(t, doctree.Str{Text: "A"}, tbl.Caption[0])
	assert.Equal(t, doctree.Str{Text: "caption"}, tbl.Caption[2])
}

func TestIsRowEndRecognizesDoubleBackslash(t *testing.T) {
	st := newTestState(t, `\\`)
	tok, _, err := st.Stream.Next()
	require.NoError(t, err)
	assert.True(t, isRowEnd(tok))
}

func TestIsRowEndRecognizesTabularNewline(t *testing.T) {
	st := newTestState(t, `\tabularnewline`)
	tok, _, err := st.Stream.Next()
	require.NoError(t, err)
	assert.True(t, isRowEnd(tok))
}
