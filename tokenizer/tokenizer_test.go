package tokenizer

import (
	"testing"

	"github.com/latexdoc/reader/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allTokens(t *testing.T, input string) token.List {
	t.Helper()
	s := New()
	s.Prepend([]byte(input), "test")
	var out token.List
	for {
		tok, ok, err := s.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		out = append(out, tok)
	}
	return out
}

func TestTokenizerRoundTrip(t *testing.T) {
	inputs := []string{
		`hello \emph{world}`,
		"a % comment\nb",
		`\def\greet#1{Hi #1!}`,
		"em--dash---triple",
		"^^41^^z",
		"100%\ndone",
	}
	for _, in := range inputs {
		toks := allTokens(t, in)
		assert.Equal(t, in, toks.Raw(), "round trip for %q", in)
	}
}

func TestTokenizerKinds(t *testing.T) {
	toks := allTokens(t, `hello \emph{world}`)
	require.Len(t, toks, 6)
	assert.Equal(t, token.Word, toks[0].Kind)
	assert.Equal(t, "hello", toks[0].Name)
	assert.Equal(t, token.Spaces, toks[1].Kind)
	assert.Equal(t, token.ControlSeq, toks[2].Kind)
	assert.Equal(t, "emph", toks[2].Name)
	assert.Equal(t, token.Symbol, toks[3].Kind)
	assert.Equal(t, "{", toks[3].Name)
	assert.Equal(t, token.Word, toks[4].Kind)
	assert.Equal(t, token.Symbol, toks[5].Kind)
	assert.Equal(t, "}", toks[5].Name)
}

func TestTokenizerControlSeqTrailingSpace(t *testing.T) {
	toks := allTokens(t, `\foo   bar`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.ControlSeq, toks[0].Kind)
	assert.Equal(t, "foo", toks[0].Name)
	assert.Equal(t, `\foo   `, toks[0].Raw)
	assert.Equal(t, "bar", toks[1].Name)
}

func TestTokenizerSingleCharControlSeq(t *testing.T) {
	toks := allTokens(t, `\{\}\,`)
	require.Len(t, toks, 3)
	for i, name := range []string{"{", "}", ","} {
		assert.Equal(t, token.ControlSeq, toks[i].Kind)
		assert.Equal(t, name, toks[i].Name)
	}
}

func TestTokenizerArgPlaceholder(t *testing.T) {
	toks := allTokens(t, `#1#23`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.Arg, toks[0].Kind)
	assert.Equal(t, 1, toks[0].ArgNum)
	assert.Equal(t, token.Arg, toks[1].Kind)
	assert.Equal(t, 23, toks[1].ArgNum)
}

func TestTokenizerEscapes(t *testing.T) {
	toks := allTokens(t, "^^41 ^^z")
	require.Len(t, toks, 3)
	assert.Equal(t, token.Esc2, toks[0].Kind)
	assert.Equal(t, token.Spaces, toks[1].Kind)
	assert.Equal(t, token.Esc1, toks[2].Kind)
}

func TestTokenizerLineContinuation(t *testing.T) {
	toks := allTokens(t, "a\\\nb")
	require.Len(t, toks, 2)
	assert.Equal(t, "a", toks[0].Name)
	assert.Equal(t, "b", toks[1].Name)
}

func TestTokenizerPositionsIncrease(t *testing.T) {
	toks := allTokens(t, "ab\ncd ef")
	var last token.Pos
	for i, tok := range toks {
		if i == 0 {
			last = tok.Pos
			continue
		}
		after := advance(last, toks[i-1].Raw)
		assert.Equal(t, after, tok.Pos, "token %d position", i)
		last = tok.Pos
	}
}

func advance(pos token.Pos, raw string) token.Pos {
	for _, c := range raw {
		if c == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	return pos
}

func TestStreamPrependTokens(t *testing.T) {
	s := New()
	s.Prepend([]byte("world"), "test")
	s.PrependTokens(token.List{{Kind: token.Word, Name: "hello", Raw: "hello"}})

	tok, ok, err := s.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", tok.Name)

	tok, ok, err = s.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "world", tok.Name)
}

func TestRawUntil(t *testing.T) {
	s := New()
	s.Prepend([]byte("line one\nline two\\end{verbatim} rest"), "test")
	body, found := s.RawUntil(`\end{verbatim}`)
	assert.True(t, found)
	assert.Equal(t, "line one\nline two", body)

	tok, ok, err := s.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, token.Spaces, tok.Kind)
	tok, ok, err = s.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "rest", tok.Name)
}
