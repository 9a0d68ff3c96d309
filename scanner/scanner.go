// Package scanner implements the low-level, multi-source byte buffer the
// tokenizer reads from.
//
// A Scanner never performs file I/O itself: callers Prepend raw bytes
// (the contents of the top-level document, of a macro body being
// re-scanned, or of an included file the host has already read) and the
// scanner splices them into the stream in the right order. This keeps
// file-system access — out of scope for the reader core, per spec.md
// section 1 — entirely in the host's hands while still letting the
// scanner track source names and positions for diagnostics.
package scanner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/latexdoc/reader/token"
)

// PeekWindowSize gives the minimum size of the lookahead buffer. Unless
// the end of input is reached, at least this many bytes are visible in
// the buffer returned by Peek.
const PeekWindowSize = 256

// Scanner walks a stack of input sources, presenting them to the
// tokenizer as a single contiguous byte stream.
type Scanner struct {
	sources []*source
	peekBuf []byte
	ready   bool
	skipped int64
}

// New creates an empty Scanner.
func New() *Scanner {
	return &Scanner{}
}

// Prepend adds data to the list of input sources. Its contents are read
// next, before any previously registered input. name identifies the
// source in error messages and should be a short human-readable string
// (a file name, or "macro body of \foo").
func (s *Scanner) Prepend(data []byte, name string) {
	s.sources = append(s.sources, &source{Name: name, Buffer: data, Line: 1, Column: 1})
}

// Next checks whether more input is available. It must be called before
// every call to Peek.
func (s *Scanner) Next() bool {
	var peekBuf []byte
	for idx := len(s.sources) - 1; idx >= 0 && len(peekBuf) < PeekWindowSize; idx-- {
		peekBuf = append(peekBuf, s.sources[idx].Buffer...)
	}
	if len(peekBuf) > PeekWindowSize {
		peekBuf = peekBuf[:PeekWindowSize]
	}
	s.peekBuf = peekBuf

	n := len(s.sources)
	for n > 0 && len(s.sources[n-1].Buffer) == 0 {
		n--
	}
	s.sources = s.sources[:n]
	s.ready = true
	return len(peekBuf) > 0
}

// Peek returns the input bytes starting at the current position. Unless
// end of input is reached the buffer is at least PeekWindowSize bytes
// long. The buffer is only valid until the next call to Skip; Next must
// be called again before the next Peek.
func (s *Scanner) Peek() []byte {
	if !s.ready {
		panic("scanner: Peek called without a preceding Next")
	}
	return s.peekBuf
}

// Pos returns the current source position.
func (s *Scanner) Pos() token.Pos {
	if len(s.sources) == 0 {
		return token.Pos{Line: 1, Column: 1}
	}
	src := s.sources[len(s.sources)-1]
	return token.Pos{Line: src.Line, Column: src.Column}
}

// SourceName returns a human-readable identifier for the innermost
// active source, used to build diagnostics and include-cycle messages.
func (s *Scanner) SourceName() string {
	if len(s.sources) == 0 {
		return "<eof>"
	}
	return s.sources[len(s.sources)-1].Name
}

// Depth returns the number of active (non-exhausted) sources, i.e. the
// current include/macro re-entrancy nesting.
func (s *Scanner) Depth() int {
	return len(s.sources)
}

// BytesConsumed returns the total number of bytes skipped over so far
// across this Scanner's lifetime, counting only bytes actually lexed
// from a Prepend-ed source (macro-substituted tokens spliced in via
// Stream.PrependTokens never pass through Skip). Used by package raw to
// measure how much of a host's raw character input one escape-hatch
// parse consumed (spec.md section 4.9).
func (s *Scanner) BytesConsumed() int64 {
	return s.skipped
}

// Skip advances the current position by n bytes.
func (s *Scanner) Skip(n int) {
	if n < 0 {
		panic("scanner: negative skip")
	}
	s.skipped += int64(n)
	s.ready = false
	idx := len(s.sources) - 1
	for n > 0 {
		src := s.sources[idx]
		k := len(src.Buffer)
		if k > n {
			k = n
		}
		src.skip(k)
		n -= k
		s.peekBuf = s.peekBuf[k:]
		idx--
	}
}

type source struct {
	Name   string
	Buffer []byte
	Line   int
	Column int
}

func (src *source) skip(n int) {
	for _, c := range src.Buffer[:n] {
		if c == '\n' {
			src.Line++
			src.Column = 1
		} else {
			src.Column++
		}
	}
	src.Buffer = src.Buffer[n:]
}

// Error is a position-bearing parse error, formatted as a stack of
// source frames the way an included file's error points back through
// its chain of includes.
type Error struct {
	Message string
	stack   []frame
}

type frame struct {
	Name    string
	Line    int
	Context string
}

// MakeError builds an Error carrying the current position of every
// active source, innermost first.
func (s *Scanner) MakeError(message string) *Error {
	err := &Error{Message: message}
	for idx := len(s.sources) - 1; idx >= 0; idx-- {
		src := s.sources[idx]
		context := string(src.Buffer)
		if len(context) > 20 {
			context = context[:17] + "..."
		}
		err.stack = append(err.stack, frame{Name: src.Name, Line: src.Line, Context: context})
	}
	return err
}

func (e *Error) Error() string {
	parts := []string{e.Message}
	for i, fr := range e.stack {
		if i > 0 {
			parts = append(parts, ", included from")
		}
		parts = append(parts, "\n    ", fr.Name, ", line ", strconv.Itoa(fr.Line))
		if fr.Context != "" {
			parts = append(parts, fmt.Sprintf(", before %q", fr.Context))
		}
	}
	return strings.Join(parts, "")
}
