package macro

import (
	"strconv"
	"strings"

	"github.com/latexdoc/reader/token"
	"github.com/latexdoc/reader/tokenizer"
)

// registerDefs installs the built-in definition-parsing forms. Each is
// itself an ordinary Macro: ExpandHead consumes the invoking control
// sequence the same way it would any other macro call, then the Func's
// ReadArgs parses the rest of the \newcommand/\def syntax directly off
// the stream and installs a new Table entry as a side effect, returning
// no replacement tokens.
func registerDefs(t *Table) {
	t.entries["newcommand"] = Func(newCommand(false, true))
	t.entries["renewcommand"] = Func(newCommand(true, true))
	t.entries["providecommand"] = Func(newCommand(false, false))
	t.entries["newenvironment"] = Func(newEnvironment(false, true))
	t.entries["renewenvironment"] = Func(newEnvironment(true, true))
	t.entries["provideenvironment"] = Func(newEnvironment(false, false))
	t.entries["def"] = Func(parseDef)
}

// readCommandName reads a macro name given either as "{\name}" or bare
// "\name", returning the name without its leading backslash.
func readCommandName(s *tokenizer.Stream) (string, error) {
	if err := SkipSpaces(s); err != nil {
		return "", err
	}
	head, ok, err := s.Peek()
	if err != nil || !ok {
		return "", err
	}
	if head.Kind == token.Symbol && head.Name == "{" {
		body, _, err := ReadBraced(s)
		if err != nil {
			return "", err
		}
		if len(body) > 0 && body[0].Kind == token.ControlSeq {
			return body[0].Name, nil
		}
		return "", nil
	}
	tok, _, err := s.Next()
	if err != nil {
		return "", err
	}
	if tok.Kind == token.ControlSeq {
		return tok.Name, nil
	}
	return "", nil
}

// readArgCount reads an optional "[n]" argument count, defaulting to 0.
func readArgCount(s *tokenizer.Stream) (int, error) {
	body, found, err := ReadBracketed(s)
	if err != nil || !found {
		return 0, err
	}
	n, _ := strconv.Atoi(strings.TrimSpace(body.Raw()))
	return n, nil
}

func newCommand(allowRedefine, warnOnRedefine bool) func(*tokenizer.Stream, token.Pos, *Table) (token.List, error) {
	return func(s *tokenizer.Stream, pos token.Pos, tab *Table) (token.List, error) {
		name, err := readCommandName(s)
		if err != nil || name == "" {
			return nil, err
		}
		n, err := readArgCount(s)
		if err != nil {
			return nil, err
		}
		optDefault, hasDefault, err := ReadBracketed(s)
		if err != nil {
			return nil, err
		}
		if err := SkipSpaces(s); err != nil {
			return nil, err
		}
		body, _, err := ReadBraced(s)
		if err != nil {
			return nil, err
		}
		if !tab.MacrosEnabled {
			return nil, nil
		}
		m := &FixedArity{N: n, Body: body}
		if hasDefault {
			m.OptDefault = optDefault
		}
		switch {
		case !allowRedefine && warnOnRedefine:
			existed := tab.Define(name, m)
			if existed && tab.Warn != nil {
				tab.Warn(pos, "macro already defined: \\"+name)
			}
		case !allowRedefine && !warnOnRedefine:
			tab.DefineIfAbsent(name, m)
		default:
			tab.Define(name, m)
		}
		return nil, nil
	}
}

func newEnvironment(allowRedefine, warnOnRedefine bool) func(*tokenizer.Stream, token.Pos, *Table) (token.List, error) {
	return func(s *tokenizer.Stream, pos token.Pos, tab *Table) (token.List, error) {
		name, err := readCommandNameAsWord(s)
		if err != nil || name == "" {
			return nil, err
		}
		n, err := readArgCount(s)
		if err != nil {
			return nil, err
		}
		optDefault, hasDefault, err := ReadBracketed(s)
		if err != nil {
			return nil, err
		}
		if err := SkipSpaces(s); err != nil {
			return nil, err
		}
		beginBody, _, err := ReadBraced(s)
		if err != nil {
			return nil, err
		}
		if err := SkipSpaces(s); err != nil {
			return nil, err
		}
		endBody, _, err := ReadBraced(s)
		if err != nil {
			return nil, err
		}
		if !tab.MacrosEnabled {
			return nil, nil
		}
		env := &environment{n: n, optDefault: optDefault, hasDefault: hasDefault, beginBody: beginBody, endBody: endBody}
		begin, end := env.beginMacro(), env.endMacro()

		switch {
		case !allowRedefine && warnOnRedefine:
			existed := tab.Define(name, begin)
			if existed && tab.Warn != nil {
				tab.Warn(pos, "environment already defined: "+name)
			}
			tab.Define("end"+name, end)
		case !allowRedefine && !warnOnRedefine:
			tab.DefineIfAbsent(name, begin)
			tab.DefineIfAbsent("end"+name, end)
		default:
			tab.Define(name, begin)
			tab.Define("end"+name, end)
		}
		return nil, nil
	}
}

// environment holds a \newenvironment pair. LaTeX lets the end-body
// reference the same #n arguments the matching \begin call captured, so
// the two Macro halves share an argument stack (LIFO handles nested
// occurrences of the same environment name).
type environment struct {
	n                  int
	optDefault         token.List
	hasDefault         bool
	beginBody, endBody token.List
	argStack           [][]token.List
}

func (e *environment) beginMacro() Macro {
	return Func(func(s *tokenizer.Stream, pos token.Pos, tab *Table) (token.List, error) {
		args := make([]token.List, e.n)
		start := 0
		if e.hasDefault && e.n > 0 {
			arg, found, err := ReadBracketed(s)
			if err != nil {
				return nil, err
			}
			if found {
				args[0] = arg
			} else {
				args[0] = e.optDefault
			}
			start = 1
		}
		for i := start; i < e.n; i++ {
			if err := SkipSpaces(s); err != nil {
				return nil, err
			}
			arg, err := ReadBracedOrSingle(s)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		e.argStack = append(e.argStack, args)
		return substitute(e.beginBody, args, pos), nil
	})
}

func (e *environment) endMacro() Macro {
	return Func(func(s *tokenizer.Stream, pos token.Pos, tab *Table) (token.List, error) {
		var args []token.List
		if n := len(e.argStack); n > 0 {
			args = e.argStack[n-1]
			e.argStack = e.argStack[:n-1]
		}
		return substitute(e.endBody, args, pos), nil
	})
}

// readCommandNameAsWord reads a "{name}" group for \newenvironment,
// where the name is a bare identifier rather than a control sequence.
func readCommandNameAsWord(s *tokenizer.Stream) (string, error) {
	if err := SkipSpaces(s); err != nil {
		return "", err
	}
	body, _, err := ReadBraced(s)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(body.Raw()), nil
}

// parseDef implements \def\name<pattern>{body}. Only the common
// delimiter shapes are recognised: a bare #n slot (Naked), or a #n
// immediately followed by a single literal Symbol or ControlSeq token
// before the next #n or the body's opening brace (SymbolSuffixed /
// CtrlSeqSuffixed).
func parseDef(s *tokenizer.Stream, pos token.Pos, tab *Table) (token.List, error) {
	if err := SkipSpaces(s); err != nil {
		return nil, err
	}
	nameTok, _, err := s.Next()
	if err != nil {
		return nil, err
	}
	if nameTok == nil || nameTok.Kind != token.ControlSeq {
		return nil, nil
	}

	var specs []ArgSpec
	for {
		head, ok, err := s.Peek()
		if err != nil || !ok {
			break
		}
		if head.Kind == token.Symbol && head.Name == "{" {
			break
		}
		tok, _, err := s.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.Arg {
			specs = append(specs, ArgSpec{Kind: Naked})
			continue
		}
		if len(specs) > 0 {
			last := &specs[len(specs)-1]
			if last.Kind == Naked && last.Delim == "" {
				if tok.Kind == token.ControlSeq {
					last.Kind = CtrlSeqSuffixed
					last.Delim = tok.Name
				} else {
					last.Kind = SymbolSuffixed
					last.Delim = tok.Name
				}
			}
		}
	}

	body, _, err := ReadBraced(s)
	if err != nil {
		return nil, err
	}
	if tab.MacrosEnabled {
		tab.Define(nameTok.Name, &Pattern{Args: specs, Body: body})
	}
	return nil, nil
}
