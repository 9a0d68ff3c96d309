package inline

import (
	"strings"

	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/macro"
	"github.com/latexdoc/reader/state"
	"github.com/latexdoc/reader/token"
)

// cmdHandler implements one inline control sequence. It has already
// consumed the command token itself; it is responsible for consuming
// its own arguments.
type cmdHandler func(e *Engine, name string) ([]doctree.Inline, error)

// accentChars are the one-letter accent commands of spec.md section
// 4.4. Checked before the general command table since a few of them
// (c, v, u, H) collide with ordinary short macro names.
var accentChars = map[string]bool{
	"`": true, "'": true, "^": true, "~": true, `"`: true,
	".": true, "=": true, "c": true, "v": true, "u": true, "H": true,
}

// commands is the inline command dispatch table of spec.md section 6
// (excerpted — this covers the named concrete classes, not an
// exhaustive ~200-command catalogue). Unknown control sequences fall
// through to raw-passthrough-or-skip handling in dispatchControlSeq.
var commands map[string]cmdHandler

// mathOperators holds \DeclareMathOperator-registered zero-argument
// operator names (SPEC_FULL.md section 3's amsmath supplement),
// populated by block.cmdDeclareMathOperator as the preamble is parsed.
var mathOperators = map[string]string{}

// RegisterMathOperator records name (without its leading backslash) as
// a math-mode identifier rendering as text, for later use by a bare
// "\name" appearing in running text outside a math environment.
func RegisterMathOperator(name, text string) {
	mathOperators[name] = text
}

func init() {
	commands = map[string]cmdHandler{
		"emph":    simpleWrap((*Engine).emphWrap),
		"textit":  simpleWrap((*Engine).emphWrap),
		"textsl":  simpleWrap((*Engine).emphWrap),
		"textbf":  simpleWrap((*Engine).strongWrap),
		"textsc":  simpleWrap((*Engine).smallcapsWrap),
		"texttt":  simpleWrap((*Engine).codeWrap),
		"textsf":  simpleWrap((*Engine).sansWrap),
		"textsuperscript": simpleWrap((*Engine).superscriptWrap),
		"textsubscript":   simpleWrap((*Engine).subscriptWrap),
		"sout":            simpleWrap((*Engine).strikeoutWrap),
		"ldots":           literal("…"),
		"xspace":          literal(""),
		"url":             cmdURL,
		"href":            cmdHref,
		"includegraphics": cmdIncludegraphics,
		"footnote":        cmdFootnote,
		"thanks":          cmdFootnote,
		"label":           cmdLabel,
		"ref":             cmdRef,
		"cref":            cmdRef,
		"enquote":         cmdEnquote,
		"SI":              cmdSI,
		"textcolor":       cmdTextcolor,
		"colorbox":        cmdTextcolor,
		"color":           cmdSkipArg,
		"multirow":        cmdMultirow,
		"text":            cmdText,
		"ensuremath":      cmdEnsuremath,
		"verb":            cmdVerb,
		"lstinline":       cmdVerb,
		"ifstrequal":      cmdIfstrequal,
		"citetext":        cmdCitetext,
	}
}

func (e *Engine) emphWrap(in []doctree.Inline) doctree.Inline       { return e.Builder.Emph(in) }
func (e *Engine) strongWrap(in []doctree.Inline) doctree.Inline     { return e.Builder.Strong(in) }
func (e *Engine) smallcapsWrap(in []doctree.Inline) doctree.Inline  { return e.Builder.Smallcaps(in) }
func (e *Engine) strikeoutWrap(in []doctree.Inline) doctree.Inline  { return e.Builder.Strikeout(in) }
func (e *Engine) subscriptWrap(in []doctree.Inline) doctree.Inline  { return e.Builder.Subscript(in) }
func (e *Engine) superscriptWrap(in []doctree.Inline) doctree.Inline {
	return e.Builder.Superscript(in)
}
func (e *Engine) codeWrap(in []doctree.Inline) doctree.Inline {
	return e.Builder.Code(doctree.Attr{}, flattenText(in))
}
func (e *Engine) sansWrap(in []doctree.Inline) doctree.Inline {
	return e.Builder.Span(doctree.Attr{Classes: []string{"sans"}}, in)
}

// simpleWrap adapts an (args []Inline) -> Inline method into a
// cmdHandler: read one argument, call the method, emit the result.
func simpleWrap(f func(e *Engine, in []doctree.Inline) doctree.Inline) cmdHandler {
	return func(e *Engine, name string) ([]doctree.Inline, error) {
		arg, err := e.readArg()
		if err != nil {
			return nil, err
		}
		return []doctree.Inline{f(e, arg)}, nil
	}
}

// literal always emits the same string, consuming no arguments —
// \ldots, \xspace and similar.
func literal(s string) cmdHandler {
	return func(e *Engine, name string) ([]doctree.Inline, error) {
		if s == "" {
			return nil, nil
		}
		return []doctree.Inline{e.Builder.Str(s)}, nil
	}
}

func flattenText(in []doctree.Inline) string {
	var b strings.Builder
	for _, i := range in {
		if s, ok := i.(doctree.Str); ok {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

func cmdURL(e *Engine, name string) ([]doctree.Inline, error) {
	target, err := e.readArgText()
	if err != nil {
		return nil, err
	}
	return []doctree.Inline{e.Builder.Link(doctree.Attr{}, []doctree.Inline{e.Builder.Str(target)}, target, "")}, nil
}

func cmdHref(e *Engine, name string) ([]doctree.Inline, error) {
	target, err := e.readArgText()
	if err != nil {
		return nil, err
	}
	text, err := e.readArg()
	if err != nil {
		return nil, err
	}
	return []doctree.Inline{e.Builder.Link(doctree.Attr{}, text, target, "")}, nil
}

func cmdIncludegraphics(e *Engine, name string) ([]doctree.Inline, error) {
	if err := e.skipOpts(); err != nil {
		return nil, err
	}
	target, err := e.readArgText()
	if err != nil {
		return nil, err
	}
	if !strings.Contains(target, ".") && e.St.Options.DefaultImageExtension != "" {
		target += e.St.Options.DefaultImageExtension
	}
	return []doctree.Inline{e.Builder.Image(doctree.Attr{}, nil, target, "")}, nil
}

// cmdFootnote wraps its argument's parsed inlines in a single Plain
// block, since doctree.Note carries Blocks rather than Inlines.
func cmdFootnote(e *Engine, name string) ([]doctree.Inline, error) {
	body, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return nil, err
	}
	inlines, err := e.parseTokenListAsInlines(body)
	if err != nil {
		return nil, err
	}
	return []doctree.Inline{e.Builder.Note([]doctree.Block{e.Builder.Plain(inlines)})}, nil
}

func cmdLabel(e *Engine, name string) ([]doctree.Inline, error) {
	id, err := e.readArgText()
	if err != nil {
		return nil, err
	}
	return []doctree.Inline{e.Builder.Span(doctree.Attr{ID: id}, nil)}, nil
}

func cmdRef(e *Engine, name string) ([]doctree.Inline, error) {
	target, err := e.readArgText()
	if err != nil {
		return nil, err
	}
	return []doctree.Inline{e.Builder.Link(doctree.Attr{}, []doctree.Inline{e.Builder.Str(target)}, "#"+target, "")}, nil
}

func cmdEnquote(e *Engine, name string) ([]doctree.Inline, error) {
	arg, err := e.readArg()
	if err != nil {
		return nil, err
	}
	open, close := "“", "”"
	if e.St.Quote == state.InSingleQuote {
		open, close = "‘", "’"
	}
	in := append([]doctree.Inline{e.Builder.Str(open)}, arg...)
	in = append(in, e.Builder.Str(close))
	return []doctree.Inline{e.Builder.Span(doctree.Attr{Classes: []string{"quoted"}}, in)}, nil
}

func cmdSI(e *Engine, name string) ([]doctree.Inline, error) {
	value, err := e.readArgText()
	if err != nil {
		return nil, err
	}
	unit, err := e.readArgText()
	if err != nil {
		return nil, err
	}
	return []doctree.Inline{e.Builder.Str(value + " " + unit)}, nil
}

func cmdTextcolor(e *Engine, name string) ([]doctree.Inline, error) {
	colorName, err := e.readArgText()
	if err != nil {
		return nil, err
	}
	arg, err := e.readArg()
	if err != nil {
		return nil, err
	}
	return []doctree.Inline{e.Builder.Span(doctree.Attr{KVs: []doctree.KV{{Key: "color", Value: colorName}}}, arg)}, nil
}

// cmdSkipArg consumes one braced argument and emits nothing — used for
// commands whose effect (e.g. bare \color{name} switching the current
// color for the rest of the group) has no representation in the
// document tree.
func cmdSkipArg(e *Engine, name string) ([]doctree.Inline, error) {
	_, _, err := macro.ReadBraced(e.St.Stream)
	return nil, err
}

// cmdMultirow drops its row-span/width arguments and renders the
// content argument in place; doctree.Table has no row-span
// representation (spec.md section 3.4's flattened Table), so the
// visual merge is not reproduced.
func cmdMultirow(e *Engine, name string) ([]doctree.Inline, error) {
	if _, _, err := macro.ReadBraced(e.St.Stream); err != nil {
		return nil, err
	}
	if _, _, err := macro.ReadBraced(e.St.Stream); err != nil {
		return nil, err
	}
	return e.readArg()
}

func cmdText(e *Engine, name string) ([]doctree.Inline, error) {
	return e.readArg()
}

func cmdEnsuremath(e *Engine, name string) ([]doctree.Inline, error) {
	body, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return nil, err
	}
	return []doctree.Inline{e.Builder.Math(doctree.InlineMath, strings.TrimSpace(body.Raw()))}, nil
}

// cmdVerb implements \verb and \lstinline's delimiter-bracketed raw
// capture: the character immediately following the command is the
// delimiter, and the body runs up to its next occurrence.
func cmdVerb(e *Engine, name string) ([]doctree.Inline, error) {
	if err := macro.SkipSpaces(e.St.Stream); err != nil {
		return nil, err
	}
	delim, ok := e.St.Stream.RawByte()
	if !ok {
		return nil, nil
	}
	raw, _ := e.St.Stream.RawUntil(string(delim))
	return []doctree.Inline{e.Builder.Code(doctree.Attr{}, raw)}, nil
}

// cmdIfstrequal implements spec.md section 9's "\else assumes the
// if-branch" simplification applied one level up: it is not a general
// conditional engine, but since \ifstrequal always supplies both
// branches textually, the comparison itself is still evaluated (unlike
// \else, there is no ambiguity about which branch is "the" branch).
func cmdIfstrequal(e *Engine, name string) ([]doctree.Inline, error) {
	s1, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return nil, err
	}
	s2, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return nil, err
	}
	thenBody, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return nil, err
	}
	elseBody, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return nil, err
	}
	chosen := elseBody
	if s1.Raw() == s2.Raw() {
		chosen = thenBody
	}
	return e.parseTokenListAsInlines(chosen)
}

func cmdCitetext(e *Engine, name string) ([]doctree.Inline, error) {
	in, err := e.parseCitetext()
	if err != nil {
		return nil, err
	}
	return []doctree.Inline{in}, nil
}

// dispatchControlSeq looks up tok (already consumed) in the accent
// table, the citation command family, the general command table, the
// math-delimiter escapes \(\)\[\], and finally falls back to raw
// passthrough or a SkippedContent log entry.
func (e *Engine) dispatchControlSeq(tok *token.Token, out *[]doctree.Inline) error {
	name := tok.Name

	if accentChars[name] {
		return e.dispatchAccent(name, out)
	}
	if spec, ok := citeCommands[name]; ok {
		in, err := e.parseCitation(tok, spec)
		if err != nil {
			return err
		}
		*out = append(*out, in)
		return nil
	}
	if h, ok := commands[name]; ok {
		in, err := h(e, name)
		if err != nil {
			return err
		}
		*out = append(*out, in...)
		return nil
	}
	switch name {
	case "(":
		return e.handleEnsuremathLike(`\)`, doctree.InlineMath, out)
	case "[":
		return e.handleEnsuremathLike(`\]`, doctree.DisplayMath, out)
	}
	if text, ok := mathOperators[name]; ok {
		*out = append(*out, e.Builder.Math(doctree.InlineMath, text))
		return nil
	}

	if e.St.Options.Extensions.RawTex && inlineSafe(tok) {
		*out = append(*out, e.Builder.RawInline("latex", tok.Raw))
		return nil
	}
	e.St.Warn(state.SkippedContent, tok.Pos, "unknown inline command \\"+name)
	return nil
}

func (e *Engine) handleEnsuremathLike(marker string, kind doctree.MathKind, out *[]doctree.Inline) error {
	raw, _ := e.St.Stream.RawUntil(marker)
	*out = append(*out, e.Builder.Math(kind, strings.TrimSpace(raw)))
	return nil
}

// dispatchAccent applies name's accent to the first character of the
// following argument. Per spec.md section 9's resolved open question,
// an empty argument (end of input, or "{}") falls back to the accent's
// own literal character; an argument that does not start with text is
// emitted unchanged.
func (e *Engine) dispatchAccent(name string, out *[]doctree.Inline) error {
	arg, err := e.readArg()
	if err != nil {
		return err
	}
	if len(arg) == 0 {
		*out = append(*out, e.Builder.Str(name))
		return nil
	}
	first, ok := arg[0].(doctree.Str)
	if !ok || first.Text == "" {
		*out = append(*out, arg...)
		return nil
	}
	runes := []rune(first.Text)
	runes[0] = applyAccent(name, runes[0])
	*out = append(*out, e.Builder.Str(string(runes)))
	*out = append(*out, arg[1:]...)
	return nil
}

// inlineSafe reports whether an unrecognised control sequence looks
// safe to preserve verbatim as a RawInline rather than a RawBlock-sized
// construct — i.e. it isn't \begin/\end, which the block engine owns.
func inlineSafe(tok *token.Token) bool {
	return tok.Name != "begin" && tok.Name != "end"
}
