package block

import (
	"strings"

	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/inline"
	"github.com/latexdoc/reader/macro"
	"github.com/latexdoc/reader/rewrite"
	"github.com/latexdoc/reader/state"
	"github.com/latexdoc/reader/table"
	"github.com/latexdoc/reader/token"
)

// envHandler implements one \begin{name}...\end{name} environment. It is
// called right after the opening "{name}" group has been consumed and is
// responsible for reading the matching \end{name} itself (usually via
// e.ParseBlocks(isEndToken) followed by e.consumeEnd(name)), the same
// split of responsibility the teacher's latex/env.go gives its
// environment table versus latex/convert.go's caller.
type envHandler func(e *Engine, name string) ([]doctree.Block, error)

// environments is the built-in environment dispatch table of spec.md
// section 4.5. User-defined environments (\newenvironment) never reach
// here: macro.ExpandHead already expands their \begin/\end transparently
// before block() ever peeks at the token.
var environments map[string]envHandler

func init() {
	environments = map[string]envHandler{
		"document":  envPassthrough,
		"abstract":  envDiv("abstract"),
		"letter":    envDiv("letter"),
		"center":    envDiv("center"),
		"quote":     envBlockQuote,
		"quotation": envBlockQuote,
		"verse":     envBlockQuote,

		"figure":       envFigure,
		"figure*":      envFigure,
		"wrapfigure":   envFigure,
		"subfigure":    envFigure,
		"subfigure*":   envFigure,
		"floatingfigure": envFigure,

		"minipage": envMinipage,

		"itemize":     itemizeEnv,
		"enumerate":   enumerateEnv,
		"description": descriptionEnv,

		"alltt":     envVerbatim("alltt"),
		"verbatim":  envVerbatim("verbatim"),
		"Verbatim":  envVerbatim("verbatim"),
		"lstlisting": envVerbatim("lstlisting"),
		"minted":     envMinted,
		"code":       envVerbatim("code"),
		"obeylines":  envVerbatim("obeylines"),
		"comment":    envComment,

		"CJK":  envPassthroughSkipArgs(1),
		"CJK*": envPassthroughSkipArgs(1),

		"displaymath": envMath,
		"equation":    envMath,
		"equation*":   envMath,
		"gather":      envMath,
		"gather*":     envMath,
		"multline":    envMath,
		"multline*":   envMath,
		"eqnarray":    envMath,
		"eqnarray*":   envMath,
		"align":       envMath,
		"align*":      envMath,
		"alignat":     envMathStarArg,
		"alignat*":    envMathStarArg,
		"empheq":      envMathOptArg,
		"flalign":     envMath,
		"flalign*":    envMath,

		"proof":     envTitledDiv("proof"),
		"algorithm": envTitledDiv("algorithm"),

		"tikzpicture": envTikz,

		"icmlauthorlist": envDiv("authors"),
		"thebibliography": envBibliography,

		"figwindow":    envFigure,
		"adjustbox":    envPassthroughSkipArgs(1),
		"TAB":          envPassthrough,
		"IEEEbiography": envTitledDiv("biography"),
	}

	for _, name := range table.EnvironmentNames() {
		environments[name] = envTable
	}
}

// environment implements the "\begin{name}...\end{name}" block
// alternative of spec.md section 4.5: read the environment name,
// dispatch to its handler (or genericEnvironment as a fallback), and
// clear any caption left dangling from a sibling environment.
func (e *Engine) environment() ([]doctree.Block, error) {
	if _, _, err := e.St.Stream.Next(); err != nil { // consume \begin
		return nil, err
	}
	name, err := e.readEnvName()
	if err != nil {
		return nil, err
	}
	h, ok := environments[name]
	if !ok {
		return e.genericEnvironment(name)
	}
	return h(e, name)
}

// readEnvName reads the "{name}" group following \begin or \end.
func (e *Engine) readEnvName() (string, error) {
	body, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(body.Raw()), nil
}

// consumeEnd reads a following \end{...} and warns (rather than
// aborting the parse, per spec.md section 7's tolerant-recovery stance)
// if its name doesn't match the environment that was opened.
func (e *Engine) consumeEnd(name string) error {
	head, ok, err := e.St.Stream.Peek()
	if err != nil {
		return err
	}
	if !ok || head.Kind != token.ControlSeq || head.Name != "end" {
		e.St.Warn(state.UnexpectedEndOfDocument, e.St.Stream.Pos(), "missing \\end{"+name+"}")
		return nil
	}
	pos := head.Pos
	if _, _, err := e.St.Stream.Next(); err != nil {
		return err
	}
	closing, err := e.readEnvName()
	if err != nil {
		return err
	}
	if closing != name {
		e.St.Warn(state.UnexpectedEndOfDocument, pos, "expected \\end{"+name+"}, found \\end{"+closing+"}")
	}
	return nil
}

// genericEnvironment is the fallback for any \begin{name} not in the
// dispatch table: its body is parsed as ordinary blocks and wrapped in a
// Div classed by the environment name, so unrecognised but well-formed
// LaTeX degrades gracefully instead of losing content (spec.md section 7).
func (e *Engine) genericEnvironment(name string) ([]doctree.Block, error) {
	blocks, err := e.ParseBlocks(isEndToken)
	if err != nil {
		return nil, err
	}
	if err := e.consumeEnd(name); err != nil {
		return nil, err
	}
	return []doctree.Block{e.Builder.Div(doctree.Attr{Classes: []string{name}}, blocks)}, nil
}

func envPassthrough(e *Engine, name string) ([]doctree.Block, error) {
	blocks, err := e.ParseBlocks(isEndToken)
	if err != nil {
		return nil, err
	}
	return blocks, e.consumeEnd(name)
}

// envPassthroughSkipArgs discards n leading braced arguments (e.g.
// \begin{CJK}{UTF8}{gbsn}) then parses its body as ordinary blocks with
// no wrapping div.
func envPassthroughSkipArgs(n int) envHandler {
	return func(e *Engine, name string) ([]doctree.Block, error) {
		for i := 0; i < n; i++ {
			if _, _, err := macro.ReadBraced(e.St.Stream); err != nil {
				return nil, err
			}
		}
		return envPassthrough(e, name)
	}
}

func envDiv(class string) envHandler {
	return func(e *Engine, name string) ([]doctree.Block, error) {
		blocks, err := e.ParseBlocks(isEndToken)
		if err != nil {
			return nil, err
		}
		if err := e.consumeEnd(name); err != nil {
			return nil, err
		}
		return []doctree.Block{e.Builder.Div(doctree.Attr{Classes: []string{class}}, blocks)}, nil
	}
}

// envTitledDiv is envDiv plus an optional "[Title]" rendered as a
// leading bold lead-in paragraph, for proof/algorithm/IEEEbiography-like
// environments.
func envTitledDiv(class string) envHandler {
	return func(e *Engine, name string) ([]doctree.Block, error) {
		title, _, err := macro.ReadBracketed(e.St.Stream)
		if err != nil {
			return nil, err
		}
		blocks, err := e.ParseBlocks(isEndToken)
		if err != nil {
			return nil, err
		}
		if err := e.consumeEnd(name); err != nil {
			return nil, err
		}
		if len(title) > 0 {
			titleInlines, err := inline.ParseTokenListAsInlines(e.St, e.Builder, title)
			if err != nil {
				return nil, err
			}
			lead := e.Builder.Para([]doctree.Inline{e.Builder.Strong(titleInlines)})
			blocks = append([]doctree.Block{lead}, blocks...)
		}
		return []doctree.Block{e.Builder.Div(doctree.Attr{Classes: []string{class}}, blocks)}, nil
	}
}

func envBlockQuote(e *Engine, name string) ([]doctree.Block, error) {
	blocks, err := e.ParseBlocks(isEndToken)
	if err != nil {
		return nil, err
	}
	if err := e.consumeEnd(name); err != nil {
		return nil, err
	}
	return []doctree.Block{e.Builder.BlockQuote(blocks)}, nil
}

// envMinipage discards its optional "[pos]" and required "{width}"
// arguments (presentation-only, with no doctree representation) and
// wraps its body in a Div classed "minipage".
func envMinipage(e *Engine, name string) ([]doctree.Block, error) {
	if _, _, err := macro.ReadBracketed(e.St.Stream); err != nil {
		return nil, err
	}
	if _, _, err := macro.ReadBraced(e.St.Stream); err != nil {
		return nil, err
	}
	return envDiv("minipage")(e, name)
}

// envFigure implements spec.md section 4.7: the body (an image and/or
// nested content) is parsed normally, picking up any \caption along the
// way through state.PendingCaption; once the environment closes,
// rewrite.AttachImageCaption runs the image-rewriter over the parsed
// body exactly as the spec describes it (a post-walk, not a live
// append), consuming PendingCaption while it is still in scope.
func envFigure(e *Engine, name string) ([]doctree.Block, error) {
	e.St.PendingCaption = nil
	blocks, err := e.ParseBlocks(isEndToken)
	if err != nil {
		return nil, err
	}
	if err := e.consumeEnd(name); err != nil {
		return nil, err
	}
	blocks = rewrite.AttachImageCaption(blocks, e.St.PendingCaption)
	e.St.PendingCaption = nil
	return []doctree.Block{e.Builder.Div(doctree.Attr{Classes: []string{"figure"}}, blocks)}, nil
}

// envVerbatim captures its body literally, bypassing tokenization
// entirely (spec.md section 4.9's raw-capture requirement for
// verbatim-like environments), and emits one CodeBlock.
func envVerbatim(class string) envHandler {
	return func(e *Engine, name string) ([]doctree.Block, error) {
		raw, _ := e.St.Stream.RawUntil(`\end{` + name + `}`)
		return []doctree.Block{e.Builder.CodeBlock(doctree.Attr{Classes: []string{class}}, trimOneLeadingNewline(raw))}, nil
	}
}

// envMinted is envVerbatim plus a leading "{language}" argument captured
// as the CodeBlock's language class.
func envMinted(e *Engine, name string) ([]doctree.Block, error) {
	lang, err := e.readArgText()
	if err != nil {
		return nil, err
	}
	raw, _ := e.St.Stream.RawUntil(`\end{` + name + `}`)
	classes := []string{"minted"}
	if lang != "" {
		classes = append(classes, lang)
	}
	return []doctree.Block{e.Builder.CodeBlock(doctree.Attr{Classes: classes}, trimOneLeadingNewline(raw))}, nil
}

// envComment discards its body entirely.
func envComment(e *Engine, name string) ([]doctree.Block, error) {
	_, _ = e.St.Stream.RawUntil(`\end{` + name + `}`)
	return nil, nil
}

func trimOneLeadingNewline(s string) string {
	if strings.HasPrefix(s, "\n") {
		return s[1:]
	}
	return strings.TrimPrefix(s, "\r\n")
}

// envMath captures a display-math environment's body literally (math
// content is never macro-expanded, per spec.md's Non-goals) and emits
// one DisplayMath node, dropping the \begin{name}/\end{name} delimiters
// themselves but keeping everything between them including the
// environment's own row/column markup for a downstream math renderer.
func envMath(e *Engine, name string) ([]doctree.Block, error) {
	raw, _ := e.St.Stream.RawUntil(`\end{` + name + `}`)
	return []doctree.Block{e.Builder.Plain([]doctree.Inline{e.Builder.Math(doctree.DisplayMath, strings.TrimSpace(raw))})}, nil
}

// envMathStarArg is envMath for alignat/alignat*, which take a required
// "{n}" column-count argument before their body.
func envMathStarArg(e *Engine, name string) ([]doctree.Block, error) {
	if _, _, err := macro.ReadBraced(e.St.Stream); err != nil {
		return nil, err
	}
	return envMath(e, name)
}

// envMathOptArg is envMath for empheq, which takes an optional "[opts]"
// before its body.
func envMathOptArg(e *Engine, name string) ([]doctree.Block, error) {
	if _, _, err := macro.ReadBracketed(e.St.Stream); err != nil {
		return nil, err
	}
	return envMath(e, name)
}

// envTikz captures a tikzpicture's body as raw, unparsed source (spec.md
// section 1 puts rendering out of scope) and hands it to
// rewrite.WrapTikz along with any pending caption, per spec.md section
// 4.7's "parallel tikz-rewriter".
func envTikz(e *Engine, name string) ([]doctree.Block, error) {
	e.St.PendingCaption = nil
	raw, _ := e.St.Stream.RawUntil(`\end{` + name + `}`)
	rawBlock := e.Builder.RawBlock("latex-tikz", strings.TrimSpace(raw))
	wrapped := rewrite.WrapTikz(rawBlock, e.St.PendingCaption)
	e.St.PendingCaption = nil
	return []doctree.Block{wrapped}, nil
}

// envBibliography implements spec.md section 4.8's thebibliography
// fallback for documents with no external .bbl file: an optional
// "{widest-label}" argument, then a run of \bibitem entries.
func envBibliography(e *Engine, name string) ([]doctree.Block, error) {
	if _, _, err := macro.ReadBraced(e.St.Stream); err != nil {
		return nil, err
	}
	var items []doctree.Block
	for {
		if err := e.St.ExpandHead(); err != nil {
			return nil, err
		}
		head, ok, err := e.St.Stream.Peek()
		if err != nil {
			return nil, err
		}
		if !ok || isEndToken(head) {
			break
		}
		if token.IsControlSeq(head, "bibitem") {
			if _, _, err := e.St.Stream.Next(); err != nil {
				return nil, err
			}
			entry, err := cmdBibitem(e, head)
			if err != nil {
				return nil, err
			}
			items = append(items, entry...)
			continue
		}
		// Tolerate stray content (comments, whitespace) between entries.
		if _, err := e.block(head); err != nil {
			return nil, err
		}
	}
	if err := e.consumeEnd(name); err != nil {
		return nil, err
	}
	return []doctree.Block{e.Builder.Div(doctree.Attr{ID: "bibliography", Classes: []string{"thebibliography"}}, items)}, nil
}

// envTable delegates to package table for the tabular-family
// environments (spec.md section 4.6), after the "{name}" header token
// has already been consumed by environment(). table.ParseEnvironment
// owns consuming its own trailing \caption and \end{name}; parseCell
// gives it a way to re-enter this Engine for each cell's content
// without package table importing package block.
func envTable(e *Engine, name string) ([]doctree.Block, error) {
	block, err := table.ParseEnvironment(e.St, e.Builder, name, e.parseSubBlocks)
	if err != nil {
		return nil, err
	}
	return []doctree.Block{block}, nil
}
