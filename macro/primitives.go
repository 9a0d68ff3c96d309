package macro

import (
	"github.com/latexdoc/reader/token"
	"github.com/latexdoc/reader/tokenizer"
)

// The primitives in this file are the raw, non-expanding token-group
// readers of spec.md section 4.2: they capture a macro's own argument
// text without applying macro expansion to it. Expansion of that
// captured content happens lazily, only once it reaches the head of the
// stream again during ordinary parsing (ExpandHead, or the
// expansion-aware Grouped helper in package state) — never while it is
// merely being lifted out as an argument.

func isOpenGroup(tok *token.Token) bool {
	return tok != nil && ((tok.Kind == token.Symbol && tok.Name == "{") ||
		token.IsControlSeq(tok, "bgroup") || token.IsControlSeq(tok, "begingroup"))
}

func isCloseGroup(tok *token.Token) bool {
	return tok != nil && ((tok.Kind == token.Symbol && tok.Name == "}") ||
		token.IsControlSeq(tok, "egroup") || token.IsControlSeq(tok, "endgroup"))
}

// SkipSpaces consumes a single run of Spaces/Newline tokens at the head
// of s, as TeX does between a macro name and its first argument.
func SkipSpaces(s *tokenizer.Stream) error {
	for {
		tok, ok, err := s.Peek()
		if err != nil || !ok {
			return err
		}
		if tok.Kind != token.Spaces && tok.Kind != token.Newline {
			return nil
		}
		if _, _, err := s.Next(); err != nil {
			return err
		}
	}
}

// ReadBraced requires the head of s to open a group (bgroup returns an
// UnexpectedEndOfDocument-flavoured error via ok=false if the stream
// ends before a matching close is found — the synthesized recovery
// described in spec.md section 7 is applied by the caller, not here)
// and returns the tokens strictly inside it.
func ReadBraced(s *tokenizer.Stream) (token.List, bool, error) {
	head, ok, err := s.Peek()
	if err != nil || !ok || !isOpenGroup(head) {
		return nil, false, err
	}
	if _, _, err := s.Next(); err != nil {
		return nil, false, err
	}
	body, closed, err := readGroupBody(s)
	return body, closed, err
}

// readGroupBody reads tokens up to (and consuming) the matching close
// of a group whose open has already been consumed, tracking nested
// open/close pairs. closed is false if input ran out first.
func readGroupBody(s *tokenizer.Stream) (token.List, bool, error) {
	depth := 1
	var out token.List
	for {
		tok, ok, err := s.Next()
		if err != nil {
			return out, false, err
		}
		if !ok {
			return out, false, nil
		}
		switch {
		case isOpenGroup(tok):
			depth++
			out = append(out, tok)
		case isCloseGroup(tok):
			depth--
			if depth == 0 {
				return out, true, nil
			}
			out = append(out, tok)
		default:
			out = append(out, tok)
		}
	}
}

// ReadBracedOrSingle implements the TeX "undelimited parameter" rule
// used by \def-style patterns and by \newcommand's fixed arguments: if
// the head opens a group, read the balanced group; otherwise read
// exactly one token.
func ReadBracedOrSingle(s *tokenizer.Stream) (token.List, error) {
	head, ok, err := s.Peek()
	if err != nil || !ok {
		return nil, err
	}
	if isOpenGroup(head) {
		body, _, err := ReadBraced(s)
		return body, err
	}
	tok, _, err := s.Next()
	if err != nil {
		return nil, err
	}
	return token.List{tok}, nil
}

// ReadBracketed reads an optional "[...]" argument. found is false if
// the head (after skipping at most one run of spaces) is not "[", in
// which case s is left exactly as it was.
func ReadBracketed(s *tokenizer.Stream) (body token.List, found bool, err error) {
	var spaceTok *token.Token
	head, ok, err := s.Peek()
	if err != nil {
		return nil, false, err
	}
	if ok && head.Kind == token.Spaces {
		spaceTok, _, err = s.Next()
		if err != nil {
			return nil, false, err
		}
	}

	head, ok, err = s.Peek()
	if err != nil {
		return nil, false, err
	}
	if !ok || !(head.Kind == token.Symbol && head.Name == "[") {
		if spaceTok != nil {
			s.PrependTokens(token.List{spaceTok})
		}
		return nil, false, nil
	}
	if _, _, err := s.Next(); err != nil {
		return nil, false, err
	}

	depth := 1
	var out token.List
	for {
		tok, ok, err := s.Next()
		if err != nil {
			return out, true, err
		}
		if !ok {
			return out, true, nil
		}
		if tok.Kind == token.Symbol && tok.Name == "[" {
			depth++
			out = append(out, tok)
			continue
		}
		if tok.Kind == token.Symbol && tok.Name == "]" {
			depth--
			if depth == 0 {
				return out, true, nil
			}
			out = append(out, tok)
			continue
		}
		out = append(out, tok)
	}
}

// ReadUntilSymbol consumes tokens up to (not including) the first
// top-level Symbol token whose Name equals delim, for SymbolSuffixed
// \def patterns such as \def\a#1,{...}.
func ReadUntilSymbol(s *tokenizer.Stream, delim string) (token.List, error) {
	var out token.List
	for {
		tok, ok, err := s.Peek()
		if err != nil || !ok {
			return out, err
		}
		if tok.Kind == token.Symbol && tok.Name == delim {
			return out, nil
		}
		if _, _, err := s.Next(); err != nil {
			return out, err
		}
		out = append(out, tok)
	}
}

// ReadUntilControlSeq consumes tokens up to (not including) the first
// top-level ControlSeq token named name, for CtrlSeqSuffixed patterns.
func ReadUntilControlSeq(s *tokenizer.Stream, name string) (token.List, error) {
	var out token.List
	for {
		tok, ok, err := s.Peek()
		if err != nil || !ok {
			return out, err
		}
		if tok.Kind == token.ControlSeq && tok.Name == name {
			return out, nil
		}
		if _, _, err := s.Next(); err != nil {
			return out, err
		}
		out = append(out, tok)
	}
}
