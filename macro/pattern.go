package macro

import (
	"github.com/latexdoc/reader/token"
	"github.com/latexdoc/reader/tokenizer"
)

// ArgKind enumerates how a single parameter of a Pattern macro is
// delimited, per spec.md section 4.3.
type ArgKind int

const (
	// Naked consumes a balanced "{...}" group if present, otherwise a
	// single token — TeX's undelimited parameter.
	Naked ArgKind = iota
	// Bracketed consumes an optional "[...]" argument.
	Bracketed
	// SymbolSuffixed consumes tokens up to a literal Symbol delimiter.
	SymbolSuffixed
	// CtrlSeqSuffixed consumes tokens up to a literal control-sequence
	// delimiter.
	CtrlSeqSuffixed
)

// ArgSpec describes one parameter slot of a Pattern macro.
type ArgSpec struct {
	Kind  ArgKind
	Delim string // delimiter text for SymbolSuffixed/CtrlSeqSuffixed
}

// Pattern is a macro whose parameters are read according to an explicit
// sequence of ArgSpecs, covering the general \def forms that
// \newcommand's fixed arity can't express (delimited parameters).
type Pattern struct {
	Args []ArgSpec
	Body token.List
}

// ReadArgs implements Macro.
func (p *Pattern) ReadArgs(s *tokenizer.Stream, pos token.Pos, tab *Table) (token.List, error) {
	args := make([]token.List, len(p.Args))
	for i, spec := range p.Args {
		switch spec.Kind {
		case Naked:
			if err := SkipSpaces(s); err != nil {
				return nil, err
			}
			arg, err := ReadBracedOrSingle(s)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		case Bracketed:
			arg, _, err := ReadBracketed(s)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		case SymbolSuffixed:
			arg, err := ReadUntilSymbol(s, spec.Delim)
			if err != nil {
				return nil, err
			}
			args[i] = arg
			if _, _, err := s.Next(); err != nil { // consume the delimiter itself
				return nil, err
			}
		case CtrlSeqSuffixed:
			arg, err := ReadUntilControlSeq(s, spec.Delim)
			if err != nil {
				return nil, err
			}
			args[i] = arg
			if _, _, err := s.Next(); err != nil {
				return nil, err
			}
		}
	}
	return substitute(p.Body, args, pos), nil
}

// FixedArity is a macro defined via \newcommand/\newenvironment: N
// arguments, each braced-or-single, except that when OptDefault is
// non-nil the first argument is instead an optional "[...]" falling
// back to OptDefault when omitted.
type FixedArity struct {
	N          int
	OptDefault token.List // nil if there is no optional first argument
	Body       token.List
}

// ReadArgs implements Macro.
func (f *FixedArity) ReadArgs(s *tokenizer.Stream, pos token.Pos, tab *Table) (token.List, error) {
	args := make([]token.List, f.N)
	start := 0
	if f.OptDefault != nil && f.N > 0 {
		arg, found, err := ReadBracketed(s)
		if err != nil {
			return nil, err
		}
		if found {
			args[0] = arg
		} else {
			args[0] = f.OptDefault
		}
		start = 1
	}
	for i := start; i < f.N; i++ {
		if err := SkipSpaces(s); err != nil {
			return nil, err
		}
		arg, err := ReadBracedOrSingle(s)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return substitute(f.Body, args, pos), nil
}

// substitute expands a macro body, replacing each Arg(n) placeholder
// with args[n-1] and repositioning every emitted token — body literals
// and argument tokens alike — at pos, so diagnostics raised while
// re-parsing the expansion point at the invocation site rather than the
// macro definition (spec.md section 4.3, "position inheritance").
func substitute(body token.List, args []token.List, pos token.Pos) token.List {
	out := make(token.List, 0, len(body))
	for _, tok := range body {
		if tok.Kind == token.Arg {
			if tok.ArgNum >= 1 && tok.ArgNum <= len(args) {
				out = append(out, args[tok.ArgNum-1].Clone(pos)...)
			}
			continue
		}
		out = append(out, tok.At(pos))
	}
	return out
}
