// Package token defines the lexical units produced by the tokenizer and
// the primitives used to rewrite and substitute them during macro
// expansion.
package token

import "strings"

// Kind enumerates the token types described in spec.md section 4.1.
type Kind int

const (
	// ControlSeq is a backslash-introduced command name, e.g. "\section".
	// Name holds the name without the backslash.
	ControlSeq Kind = iota
	// Symbol is a single non-alphanumeric, non-whitespace character (or
	// the two-character literals "$$", "``", "''").
	Symbol
	// Word is a maximal run of letters/digits.
	Word
	// Spaces is a maximal run of horizontal whitespace.
	Spaces
	// Newline is a single "\n".
	Newline
	// Comment is a "%"-introduced comment, to end of line, excluding the
	// newline.
	Comment
	// Arg is a macro-body placeholder "#n".
	Arg
	// Esc1 decodes a "^^X" three-character escape.
	Esc1
	// Esc2 decodes a "^^xy" four-character hex escape.
	Esc2
)

func (k Kind) String() string {
	switch k {
	case ControlSeq:
		return "ControlSeq"
	case Symbol:
		return "Symbol"
	case Word:
		return "Word"
	case Spaces:
		return "Spaces"
	case Newline:
		return "Newline"
	case Comment:
		return "Comment"
	case Arg:
		return "Arg"
	case Esc1:
		return "Esc1"
	case Esc2:
		return "Esc2"
	default:
		return "Invalid"
	}
}

// Pos is a source position, 1-based in both fields.
type Pos struct {
	Line   int
	Column int
}

// Token is a single syntactic unit emitted by the tokenizer.
type Token struct {
	Pos Pos
	Kind Kind

	// Name holds the control sequence name (sans backslash), the word or
	// symbol text, or the comment body. Unused for Spaces/Newline/Arg.
	Name string

	// ArgNum holds the placeholder number for Kind == Arg.
	ArgNum int

	// Raw is the literal source text this token was read from.
	// Concatenating Raw across a token stream reproduces the input
	// (modulo line-ending normalisation); see spec.md section 8.
	Raw string
}

// At returns a shallow copy of tok repositioned at pos. Used when
// substituting macro arguments: every substituted token inherits the
// invocation-site position so diagnostics point at the caller, not the
// macro body (spec.md section 9).
func (tok *Token) At(pos Pos) *Token {
	cp := *tok
	cp.Pos = pos
	return &cp
}

// List is a sequence of tokens, as produced by the tokenizer or consumed
// as a macro argument/replacement body.
type List []*Token

// Raw concatenates the Raw text of every token in order. For a token
// list taken directly from the tokenizer (never macro-substituted) this
// reproduces the original source text.
func (toks List) Raw() string {
	var b strings.Builder
	for _, tok := range toks {
		b.WriteString(tok.Raw)
	}
	return b.String()
}

// Clone returns a deep copy of the list with every token repositioned at
// pos. Used to give a macro argument's tokens the position of the
// invocation when they are substituted into a replacement body.
func (toks List) Clone(pos Pos) List {
	out := make(List, len(toks))
	for i, tok := range toks {
		out[i] = tok.At(pos)
	}
	return out
}

// IsControlSeq reports whether tok is a control sequence with the given
// name.
func IsControlSeq(tok *Token, name string) bool {
	return tok != nil && tok.Kind == ControlSeq && tok.Name == name
}
