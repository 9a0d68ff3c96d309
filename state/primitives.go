package state

import (
	"github.com/latexdoc/reader/macro"
	"github.com/latexdoc/reader/token"
)

// Satisfy consumes the next token if pred holds, then — unless the
// verbatim flag is set — attempts macro expansion on the new head of
// the stream before returning, per spec.md section 4.2. This is the
// single point where macro expansion is driven during ordinary parsing;
// everything in package macro's primitives.go deliberately does not do
// this (argument capture is lazy, per section 4.3).
func (s *State) Satisfy(pred func(*token.Token) bool) (*token.Token, bool, error) {
	tok, ok, err := s.Stream.Peek()
	if err != nil || !ok || !pred(tok) {
		return nil, false, err
	}
	if _, _, err := s.Stream.Next(); err != nil {
		return nil, false, err
	}
	if !s.Verbatim {
		if err := macro.ExpandHead(s.Stream, s.Macros); err != nil {
			return tok, true, err
		}
	}
	return tok, true, nil
}

// ExpandHead re-applies macro expansion at the current head; callers
// that consumed tokens via the Stream directly (rather than Satisfy)
// use this to keep the lazy-expansion invariant after, e.g., reading a
// group's raw content and beginning to walk it.
func (s *State) ExpandHead() error {
	if s.Verbatim {
		return nil
	}
	return macro.ExpandHead(s.Stream, s.Macros)
}

// Grouped reads a "{...}"-delimited (or \bgroup...\egroup) scope,
// calling parse repeatedly until the matching close is reached. parse
// reports ok=false when there is nothing more to consume at the current
// head (e.g. the close was reached) without itself detecting the close;
// Grouped is responsible for recognizing bgroup/egroup and stopping.
//
// Nested groups are handed to parse like any other content: the outer
// pair of "{{a,b}}" is not treated as transparent, so it does not parse
// identically to "{a,b}", and this package has no variant of Grouped
// that does so.
func (s *State) Grouped(parse func() error) error {
	head, ok, err := s.Stream.Peek()
	if err != nil || !ok {
		return err
	}
	if !isOpenGroup(head) {
		return nil
	}
	if _, _, err := s.Stream.Next(); err != nil {
		return err
	}
	if !s.Verbatim {
		if err := macro.ExpandHead(s.Stream, s.Macros); err != nil {
			return err
		}
	}
	depth := 1
	for {
		head, ok, err := s.Stream.Peek()
		if err != nil {
			return err
		}
		if !ok {
			s.Warn(UnexpectedEndOfDocument, s.Stream.Pos(), "unclosed group")
			return nil
		}
		if isOpenGroup(head) {
			depth++
		} else if isCloseGroup(head) {
			depth--
			if depth == 0 {
				_, _, err := s.Stream.Next()
				return err
			}
		}
		if err := parse(); err != nil {
			return err
		}
	}
}

func isOpenGroup(tok *token.Token) bool {
	return tok != nil && ((tok.Kind == token.Symbol && tok.Name == "{") ||
		token.IsControlSeq(tok, "bgroup") || token.IsControlSeq(tok, "begingroup"))
}

func isCloseGroup(tok *token.Token) bool {
	return tok != nil && ((tok.Kind == token.Symbol && tok.Name == "}") ||
		token.IsControlSeq(tok, "egroup") || token.IsControlSeq(tok, "endgroup"))
}

// WithRaw runs parse and also returns the literal token slice consumed
// while doing so, per spec.md section 4.2. It relies on the caller's
// parse function passing each token it consumes to the emit func —
// since Stream doesn't expose "tokens consumed since X" directly,
// callers collect as they go, and WithRaw returns what was emitted.
func (s *State) WithRaw(parse func(emit func(*token.Token)) error) ([]*token.Token, error) {
	var raw []*token.Token
	err := parse(func(t *token.Token) { raw = append(raw, t) })
	return raw, err
}
