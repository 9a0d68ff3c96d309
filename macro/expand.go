package macro

import (
	"github.com/latexdoc/reader/token"
	"github.com/latexdoc/reader/tokenizer"
)

// ExpandHead repeatedly looks up and expands the control sequence (or
// \begin{name}/\end{name} environment marker) sitting at the head of s,
// splicing each macro's substituted body back onto the stream and
// looking again, until the head is no longer an expandable macro call.
// It is a no-op (returns immediately) if the head is anything else —
// ordinary text, or a control sequence with no entry in tab, which the
// inline/block engines dispatch on directly.
//
// \begin/\end are special because whether they expand depends on the
// environment name, which sits inside a following "{...}" group: the
// name is read speculatively, and if it doesn't name a user-defined
// environment (i.e. one installed by \newenvironment) the consumed
// tokens are pushed back unchanged so the block engine can read the
// same \begin{name} itself.
func ExpandHead(s *tokenizer.Stream, tab *Table) error {
	depth := 0
	for {
		head, ok, err := s.Peek()
		if err != nil || !ok {
			return err
		}

		if head.Kind == token.ControlSeq && (head.Name == "begin" || head.Name == "end") {
			consumed, name, hasGroup, err := readEnvHeader(s)
			if err != nil {
				return err
			}
			if !hasGroup {
				s.PrependTokens(consumed)
				return nil
			}
			key := name
			if head.Name == "end" {
				key = "end" + name
			}
			m, found := tab.Lookup(key)
			if !found {
				s.PrependTokens(consumed)
				return nil
			}
			depth++
			if depth > MaxExpansionDepth {
				return &LoopError{Name: key}
			}
			body, err := m.ReadArgs(s, head.Pos, tab)
			if err != nil {
				return err
			}
			s.PrependTokens(body)
			continue
		}

		if head.Kind != token.ControlSeq {
			return nil
		}
		m, found := tab.Lookup(head.Name)
		if !found {
			return nil
		}
		depth++
		if depth > MaxExpansionDepth {
			return &LoopError{Name: head.Name}
		}
		if _, _, err := s.Next(); err != nil {
			return err
		}
		body, err := m.ReadArgs(s, head.Pos, tab)
		if err != nil {
			return err
		}
		s.PrependTokens(body)
	}
}

// readEnvHeader consumes \begin or \end together with its following
// "{name}" group, returning the full consumed token sequence (for
// pushback when name turns out not to be a user-defined environment),
// the extracted name, and whether a group was actually found.
func readEnvHeader(s *tokenizer.Stream) (consumed token.List, name string, hasGroup bool, err error) {
	tok, _, err := s.Next()
	if err != nil {
		return nil, "", false, err
	}
	consumed = append(consumed, tok)

	for {
		p, ok, perr := s.Peek()
		if perr != nil {
			return consumed, "", false, perr
		}
		if !ok || p.Kind != token.Spaces {
			break
		}
		t, _, nerr := s.Next()
		if nerr != nil {
			return consumed, "", false, nerr
		}
		consumed = append(consumed, t)
	}

	p, ok, perr := s.Peek()
	if perr != nil {
		return consumed, "", false, perr
	}
	if !ok || !(p.Kind == token.Symbol && p.Name == "{") {
		return consumed, "", false, nil
	}
	open, _, nerr := s.Next()
	if nerr != nil {
		return consumed, "", false, nerr
	}
	consumed = append(consumed, open)

	depth := 1
	var raw []byte
	for {
		t, ok, nerr := s.Next()
		if nerr != nil {
			return consumed, "", false, nerr
		}
		if !ok {
			// Unterminated {name} group: treat as "no group found" so
			// the caller pushes back what it has and lets the block
			// engine raise the UnexpectedEndOfDocument diagnostic.
			return consumed, "", false, nil
		}
		consumed = append(consumed, t)
		if t.Kind == token.Symbol && t.Name == "{" {
			depth++
			raw = append(raw, t.Raw...)
			continue
		}
		if t.Kind == token.Symbol && t.Name == "}" {
			depth--
			if depth == 0 {
				break
			}
			raw = append(raw, t.Raw...)
			continue
		}
		raw = append(raw, t.Raw...)
	}
	return consumed, string(raw), true, nil
}
