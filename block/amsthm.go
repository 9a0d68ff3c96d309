package block

import (
	"fmt"
	"strings"

	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/inline"
	"github.com/latexdoc/reader/macro"
	"github.com/latexdoc/reader/token"
	"github.com/latexdoc/reader/tokenizer"
)

// theorem describes one \newtheorem-registered environment: SPEC_FULL.md
// section 3's supplemented amsthm support, grounded on the teacher's
// latex/pkg-amsthm.go (mNewtheorem installs conv.Envs[name] with a
// Prefix and a Counter; here the environment instead becomes a
// block.Environment that emits a Div classed "theorem" with a numbered
// prefix, rather than HTML).
type theorem struct {
	prefix  string
	counter string
}

// theorems and theoremCounters are the \newtheorem registry and running
// per-counter numbering, package-global maps like the teacher's
// conv.Envs/conv.Counters: every Engine shares them, and nothing resets
// them between parses.
var theorems = map[string]*theorem{}
var theoremCounters = map[string]int{}

func cmdNewtheorem(e *Engine, tok *token.Token) ([]doctree.Block, error) {
	_, _, _ = macro.ReadBracketed(e.St.Stream) // optional shared-counter name, not modeled
	name, err := e.readArgText()
	if err != nil {
		return nil, err
	}
	prefixBody, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return nil, err
	}
	counter := name
	if _, found, err := macro.ReadBracketed(e.St.Stream); err == nil && found {
		// optional [parent-counter]: reset semantics not modeled, the
		// counter still exists under this theorem's own name.
	} else if err != nil {
		return nil, err
	}
	theorems[name] = &theorem{prefix: strings.TrimSpace(prefixBody.Raw()), counter: counter}
	environments[name] = theoremEnvironment(name)
	environments["end"+name] = nil // presence marker only; dispatch keys off the begin name
	return nil, nil
}

// theoremEnvironment returns the envHandler for a \newtheorem-declared
// environment: an optional "[Title]" override, a Div classed "theorem"
// containing a Para with the numbered prefix followed by the body
// blocks.
func theoremEnvironment(name string) envHandler {
	return func(e *Engine, envName string) ([]doctree.Block, error) {
		th := theorems[name]
		title, _, err := macro.ReadBracketed(e.St.Stream)
		if err != nil {
			return nil, err
		}
		theoremCounters[th.counter]++
		n := theoremCounters[th.counter]

		lead := fmt.Sprintf("%s %d", th.prefix, n)
		if len(title) > 0 {
			titleInlines, err := inline.ParseTokenListAsInlines(e.St, e.Builder, title)
			if err != nil {
				return nil, err
			}
			lead += " (" + flattenText(titleInlines) + ")"
		}

		blocks, err := e.ParseBlocks(isEndToken)
		if err != nil {
			return nil, err
		}
		if err := e.consumeEnd(name); err != nil {
			return nil, err
		}
		heading := e.Builder.Para([]doctree.Inline{e.Builder.Strong([]doctree.Inline{e.Builder.Str(lead + ".")})})
		return []doctree.Block{e.Builder.Div(doctree.Attr{Classes: []string{"theorem", name}}, append([]doctree.Block{heading}, blocks...))}, nil
	}
}

// cmdDeclareMathOperator implements SPEC_FULL.md section 3's amsmath
// supplement (grounded on the same latex/pkg-amsthm.go package-registration
// pattern as cmdNewtheorem, applied to a one-off command instead of an
// environment): the operator's name is registered in the inline dispatch
// table as a zero-argument math symbol, rendered as an inline Math node
// containing its own text (operator typesetting itself is out of scope
// per spec.md's Non-goals; only the token is recognised so it isn't
// dropped as SkippedContent).
func cmdDeclareMathOperator(e *Engine, tok *token.Token) ([]doctree.Block, error) {
	star, err := e.consumeStar()
	if err != nil {
		return nil, err
	}
	_ = star
	name, err := readCommandName(e.St.Stream)
	if err != nil {
		return nil, err
	}
	op, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return nil, err
	}
	inline.RegisterMathOperator(name, strings.TrimSpace(op.Raw()))
	return nil, nil
}

// readCommandName reads a bare "\name" control sequence, as
// \DeclareMathOperator\opname{...} requires (no "{\name}" alternate
// form in amsmath, unlike \newcommand).
func readCommandName(s *tokenizer.Stream) (string, error) {
	tok, ok, err := s.Next()
	if err != nil || !ok {
		return "", err
	}
	return tok.Name, nil
}
