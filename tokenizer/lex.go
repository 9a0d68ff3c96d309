package tokenizer

import (
	"strconv"

	"github.com/latexdoc/reader/token"
)

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlnum(c byte) bool {
	return isLetter(c) || isDigit(c)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == 0xA0
}

func isLowerHex(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'f'
}

var doubled = map[byte]bool{'$': true, '`': true, '\'': true}

// lexOne reads exactly one token from the underlying scanner, following
// the rules of spec.md section 4.1. It returns (nil, nil) at end of
// input.
func (s *Stream) lexOne() (*token.Token, error) {
	if !s.scan.Next() {
		return nil, nil
	}
	pos := s.scan.Pos()
	buf := s.scan.Peek()
	c := buf[0]

	switch {
	case c == '\n':
		s.scan.Skip(1)
		return &token.Token{Pos: pos, Kind: token.Newline, Raw: "\n"}, nil

	case isSpace(c):
		n := 1
		for n < len(buf) && isSpace(buf[n]) {
			n++
		}
		raw := string(buf[:n])
		s.scan.Skip(n)
		return &token.Token{Pos: pos, Kind: token.Spaces, Raw: raw}, nil

	case isAlnum(c):
		n := 1
		for n < len(buf) && isAlnum(buf[n]) {
			n++
		}
		raw := string(buf[:n])
		s.scan.Skip(n)
		return &token.Token{Pos: pos, Kind: token.Word, Name: raw, Raw: raw}, nil

	case c == '%':
		n := 1
		for n < len(buf) && buf[n] != '\n' {
			n++
		}
		raw := string(buf[:n])
		s.scan.Skip(n)
		return &token.Token{Pos: pos, Kind: token.Comment, Name: raw, Raw: raw}, nil

	case c == '\\':
		return s.lexControlSeq(pos, buf)

	case c == '#' && len(buf) > 1 && isDigit(buf[1]):
		n := 1
		for n < len(buf) && isDigit(buf[n]) {
			n++
		}
		raw := string(buf[:n])
		num, _ := strconv.Atoi(raw[1:])
		s.scan.Skip(n)
		return &token.Token{Pos: pos, Kind: token.Arg, ArgNum: num, Raw: raw}, nil

	case c == '^' && len(buf) > 1 && buf[1] == '^':
		if len(buf) >= 4 && isLowerHex(buf[2]) && isLowerHex(buf[3]) {
			raw := string(buf[:4])
			s.scan.Skip(4)
			return &token.Token{Pos: pos, Kind: token.Esc2, Name: raw, Raw: raw}, nil
		}
		if len(buf) >= 3 && buf[2] < 0x80 {
			raw := string(buf[:3])
			s.scan.Skip(3)
			return &token.Token{Pos: pos, Kind: token.Esc1, Name: raw, Raw: raw}, nil
		}
		raw := string(buf[:1])
		s.scan.Skip(1)
		return &token.Token{Pos: pos, Kind: token.Symbol, Name: raw, Raw: raw}, nil

	default:
		if len(buf) >= 2 && doubled[c] && buf[1] == c {
			raw := string(buf[:2])
			s.scan.Skip(2)
			return &token.Token{Pos: pos, Kind: token.Symbol, Name: raw, Raw: raw}, nil
		}
		raw := string(buf[:1])
		s.scan.Skip(1)
		return &token.Token{Pos: pos, Kind: token.Symbol, Name: raw, Raw: raw}, nil
	}
}

func (s *Stream) lexControlSeq(pos token.Pos, buf []byte) (*token.Token, error) {
	if len(buf) < 2 {
		raw := string(buf[:1])
		s.scan.Skip(1)
		return &token.Token{Pos: pos, Kind: token.Symbol, Name: raw, Raw: raw}, nil
	}

	next := buf[1]
	switch {
	case next == '\t' || next == '\n':
		// Line-continuation: the backslash-newline pair is dropped and
		// we lex again from here.
		s.scan.Skip(2)
		return s.lexOne()

	case isLetter(next) || next == '@':
		n := 2
		for n < len(buf) && (isLetter(buf[n]) || buf[n] == '@') {
			n++
		}
		name := string(buf[1:n])
		trail := n
		for trail < len(buf) && (buf[trail] == ' ' || buf[trail] == '\t') {
			trail++
		}
		raw := string(buf[:trail])
		s.scan.Skip(trail)
		return &token.Token{Pos: pos, Kind: token.ControlSeq, Name: name, Raw: raw}, nil

	default:
		name := string(buf[1:2])
		raw := string(buf[:2])
		s.scan.Skip(2)
		return &token.Token{Pos: pos, Kind: token.ControlSeq, Name: name, Raw: raw}, nil
	}
}
