// Package tokenizer converts LaTeX byte input into a lazy stream of
// tokens (spec.md section 4.1), and provides the raw byte-level reads
// needed for verbatim-like content that must bypass ordinary
// tokenization (spec.md section 4.2, "withRaw").
//
// Stream never touches the file system: the host splices in bytes with
// Prepend, whether they come from the top-level document, an include
// file it already read, or (via the macro engine) a macro body being
// re-scanned.
package tokenizer

import (
	"strings"

	"github.com/latexdoc/reader/scanner"
	"github.com/latexdoc/reader/token"
)

// Stream produces a sequence of Tokens from one or more byte sources,
// merged with a queue of already-tokenized lookahead that a macro
// expansion step may push back onto the front of the stream.
type Stream struct {
	scan    *scanner.Scanner
	pending token.List
}

// New creates an empty Stream.
func New() *Stream {
	return &Stream{scan: scanner.New()}
}

// Prepend splices raw bytes into the stream ahead of everything already
// queued. name identifies the source for diagnostics.
func (s *Stream) Prepend(data []byte, name string) {
	s.scan.Prepend(data, name)
}

// PrependTokens splices an already-tokenized list back onto the front of
// the stream, ahead of both the pending queue and any raw bytes. This is
// how macro expansion re-injects a substituted replacement body.
func (s *Stream) PrependTokens(toks token.List) {
	if len(toks) == 0 {
		return
	}
	s.pending = append(append(token.List{}, toks...), s.pending...)
}

// SourceName identifies the innermost active byte source.
func (s *Stream) SourceName() string {
	return s.scan.SourceName()
}

// BytesConsumed returns the total bytes lexed from Prepend-ed sources so
// far (see scanner.Scanner.BytesConsumed): used by package raw to report
// how much of a host's character input an escape-hatch parse consumed.
func (s *Stream) BytesConsumed() int64 {
	return s.scan.BytesConsumed()
}

// Depth reports the current include/macro re-entrancy nesting of the
// underlying byte scanner (pending pushed-back tokens are not counted).
func (s *Stream) Depth() int {
	return s.scan.Depth()
}

// Pos returns the position that the next freshly-lexed token would
// start at. While tokens are queued in the pending pushback list, their
// own recorded Pos is authoritative instead.
func (s *Stream) Pos() token.Pos {
	return s.scan.Pos()
}

// Peek returns the next token without consuming it. ok is false at end
// of input.
func (s *Stream) Peek() (*token.Token, bool, error) {
	if len(s.pending) > 0 {
		return s.pending[0], true, nil
	}
	tok, err := s.lexOne()
	if err != nil {
		return nil, false, err
	}
	if tok == nil {
		return nil, false, nil
	}
	s.pending = append(s.pending, tok)
	return tok, true, nil
}

// Next consumes and returns the next token.
func (s *Stream) Next() (*token.Token, bool, error) {
	tok, ok, err := s.Peek()
	if !ok || err != nil {
		return nil, ok, err
	}
	s.pending = s.pending[1:]
	return tok, true, nil
}

// RawUntil performs a byte-level (non-tokenizing) scan for the literal
// string marker, returning the text preceding it and consuming input
// through the end of the marker. Any tokens already queued in the
// pending pushback list are drained into the raw result first (by their
// original Raw text) so a verbatim body started immediately after a
// macro expansion still captures correctly.
//
// Used for environments whose body must be read literally: verbatim,
// Verbatim, lstlisting, minted, comment, and the rawLaTeXBlock /
// rawLaTeXInline escape hatches of spec.md section 4.9.
func (s *Stream) RawUntil(marker string) (string, bool) {
	var b strings.Builder
	for _, tok := range s.pending {
		b.WriteString(tok.Raw)
	}
	s.pending = nil

	for {
		if !s.scan.Next() {
			return b.String(), false
		}
		buf := s.scan.Peek()
		idx := strings.Index(string(buf), marker)
		if idx >= 0 {
			b.Write(buf[:idx])
			s.scan.Skip(idx + len(marker))
			return b.String(), true
		}

		// No match within the lookahead window: consume all but a
		// trailing slice long enough to still contain the marker if it
		// straddles the boundary, and keep scanning.
		keep := len(marker) - 1
		if keep < 0 {
			keep = 0
		}
		take := len(buf) - keep
		if take <= 0 {
			// Buffer too small to make progress; consume one byte.
			if len(buf) == 0 {
				return b.String(), false
			}
			b.WriteByte(buf[0])
			s.scan.Skip(1)
			continue
		}
		b.Write(buf[:take])
		s.scan.Skip(take)
	}
}

// RawByte returns the single next raw byte without tokenizing it, or ok
// == false at end of input. Used by \verb's delimiter-bracketed capture.
func (s *Stream) RawByte() (byte, bool) {
	if len(s.pending) > 0 {
		tok := s.pending[0]
		if tok.Raw != "" {
			// Re-lexing mid-token is not supported; this path is only
			// ever used right after a Next() at a token boundary.
			return tok.Raw[0], true
		}
	}
	if !s.scan.Next() {
		return 0, false
	}
	buf := s.scan.Peek()
	if len(buf) == 0 {
		return 0, false
	}
	c := buf[0]
	s.scan.Skip(1)
	return c, true
}
