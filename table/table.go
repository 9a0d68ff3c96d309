// Package table implements the Table Engine of spec.md section 4.6:
// alignment-spec parsing, row/cell splitting, header detection and
// caption attachment for the tabular family of environments.
//
// No example repo in the retrieved pack implements LaTeX tables (the
// teacher is an EPUB converter with no tabular support at all), so this
// package is new rather than adapted — but it is written in the
// teacher's idiom: a position-bearing Error type mirroring
// scanner.Error, and every node constructed through doctree.Builder
// exactly as package inline and package block do.
package table

import (
	"strings"

	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/macro"
	"github.com/latexdoc/reader/state"
	"github.com/latexdoc/reader/token"
)

// EnvironmentNames lists the tabular-family \begin names block.go
// registers against table.ParseEnvironment.
func EnvironmentNames() []string {
	return []string{"tabular", "tabular*", "tabularx", "longtable", "array", "tabu", "supertabular"}
}

// CellParser re-enters the block engine over one cell's or caption's
// captured tokens, so nested environments are allowed inside a cell per
// spec.md section 4.6 without package table importing package block
// (which imports table for this very call) — the same inversion-of-
// control role Engine.Includer plays for file loading.
type CellParser func(body token.List) ([]doctree.Block, error)

// Error is a table-parse failure, position-bearing like block.ParseError
// and scanner.Error.
type Error struct {
	Pos     token.Pos
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// rowSeparators are recognized as row-separator commands rather than
// ordinary content; each may be followed by an optional "[dim]" that is
// discarded.
var rowSeparators = map[string]bool{
	"hline": true, "toprule": true, "midrule": true, "bottomrule": true,
	"endhead": true, "endfirsthead": true, "endfoot": true, "endlastfoot": true,
}

// ParseEnvironment parses a tabular-family environment's body, starting
// right after \begin{name}'s own "{name}" group has been consumed, up to
// and including the matching \end{name}. parseCell turns a cell's (or
// caption's) captured tokens into blocks by re-entering the host's block
// engine.
func ParseEnvironment(st *state.State, b doctree.Builder, name string, parseCell CellParser) (doctree.Block, error) {
	aligns, err := readColSpec(st, name)
	if err != nil {
		return nil, err
	}

	p := &parser{st: st, parseCell: parseCell}
	if err := p.run(name); err != nil {
		return nil, err
	}

	width := len(aligns)
	if width == 0 {
		width = maxRowWidth(p.header, p.rows)
	}
	header := padCells(p.header, width)
	widths := make([]float64, width)
	return b.Table(p.caption, padAligns(aligns, width), widths, header, p.rows), nil
}

// parser holds the running state of one tabular-family body scan.
type parser struct {
	st        *state.State
	parseCell CellParser

	header       []doctree.Cell
	rows         [][]doctree.Cell
	caption      []doctree.Inline
	headerTaken  bool
	cells        []token.List // completed cells of the row in progress
	curCell      token.List
}

// hasNonSpace reports whether toks contains anything beyond
// whitespace/newlines/comments.
func hasNonSpace(toks token.List) bool {
	for _, tok := range toks {
		if tok.Kind != token.Spaces && tok.Kind != token.Newline && tok.Kind != token.Comment {
			return true
		}
	}
	return false
}

func (p *parser) flushCell() {
	p.cells = append(p.cells, p.curCell)
	p.curCell = nil
}

// flushRow finalizes the row in progress (including whatever cell was
// still being accumulated) into parsed doctree.Cells, resetting for the
// next row.
func (p *parser) flushRow() ([]doctree.Cell, error) {
	p.flushCell()
	row := make([]doctree.Cell, 0, len(p.cells))
	for _, body := range p.cells {
		blocks, err := p.parseCell(body)
		if err != nil {
			return nil, err
		}
		row = append(row, doctree.Cell{Blocks: blocks})
	}
	p.cells = nil
	return row, nil
}

// consumeRuleIfPresent looks past any whitespace/comments following a
// just-flushed row (a rule conventionally sits on its own line, e.g.
// "a & b \\\n\\hline\n") and, if a rowSeparators control sequence is
// there, consumes it (plus its optional trailing "[dim]") and reports
// true. Intervening whitespace is discarded only when a rule is
// actually found; otherwise it is left for the main loop to treat as
// ordinary leading content of the next row.
func (p *parser) consumeRuleIfPresent() (bool, error) {
	var skipped token.List
	for {
		if err := p.st.ExpandHead(); err != nil {
			return false, err
		}
		head, ok, err := p.st.Stream.Peek()
		if err != nil || !ok {
			p.st.Stream.PrependTokens(skipped)
			return false, err
		}
		if head.Kind == token.Spaces || head.Kind == token.Newline || head.Kind == token.Comment {
			tok, _, err := p.st.Stream.Next()
			if err != nil {
				return false, err
			}
			skipped = append(skipped, tok)
			continue
		}
		if head.Kind != token.ControlSeq || !rowSeparators[head.Name] {
			p.st.Stream.PrependTokens(skipped)
			return false, nil
		}
		if _, _, err := p.st.Stream.Next(); err != nil {
			return false, err
		}
		if _, _, err := macro.ReadBracketed(p.st.Stream); err != nil {
			return false, err
		}
		return true, nil
	}
}

func (p *parser) run(name string) error {
	for {
		if err := p.st.ExpandHead(); err != nil {
			return err
		}
		head, ok, err := p.st.Stream.Peek()
		if err != nil {
			return err
		}
		if !ok {
			return &Error{Pos: p.st.Stream.Pos(), Message: "unterminated \\begin{" + name + "}"}
		}
		if head.Kind == token.ControlSeq && head.Name == "end" {
			break
		}

		switch {
		case head.Kind == token.ControlSeq && head.Name == "caption":
			if err := p.readCaption(); err != nil {
				return err
			}

		case head.Kind == token.ControlSeq && rowSeparators[head.Name]:
			// A rule with no row immediately preceding it (leading
			// \toprule, a lone \hline between rows, trailing
			// \bottomrule): consume and carry on.
			if _, err := p.consumeRuleIfPresent(); err != nil {
				return err
			}

		case isRowEnd(head):
			if _, _, err := p.st.Stream.Next(); err != nil {
				return err
			}
			row, err := p.flushRow()
			if err != nil {
				return err
			}
			rule, err := p.consumeRuleIfPresent()
			if err != nil {
				return err
			}
			if rule && !p.headerTaken && len(p.rows) == 0 {
				p.header = row
				p.headerTaken = true
			} else {
				p.rows = append(p.rows, row)
			}

		case head.Kind == token.Symbol && head.Name == "&":
			if _, _, err := p.st.Stream.Next(); err != nil {
				return err
			}
			p.flushCell()

		default:
			tok, _, err := p.st.Stream.Next()
			if err != nil {
				return err
			}
			p.curCell = append(p.curCell, tok)
		}
	}

	if _, _, err := p.st.Stream.Next(); err != nil { // consume \end
		return err
	}
	closing, _, err := macro.ReadBraced(p.st.Stream)
	if err != nil {
		return err
	}
	if strings.TrimSpace(closing.Raw()) != name {
		p.st.Warn(state.UnexpectedEndOfDocument, p.st.Stream.Pos(), "expected \\end{"+name+"}, found \\end{"+strings.TrimSpace(closing.Raw())+"}")
	}

	// A trailing partial row with no closing "\\" still counts as content,
	// but trailing whitespace/newlines alone (the common "...\\\n\end{...}"
	// layout) must not manufacture a phantom empty row.
	if len(p.cells) > 0 || hasNonSpace(p.curCell) {
		row, err := p.flushRow()
		if err != nil {
			return err
		}
		p.rows = append(p.rows, row)
	}
	return nil
}

func (p *parser) readCaption() error {
	if _, _, err := p.st.Stream.Next(); err != nil {
		return err
	}
	if _, _, err := macro.ReadBracketed(p.st.Stream); err != nil {
		return err
	}
	body, _, err := macro.ReadBraced(p.st.Stream)
	if err != nil {
		return err
	}
	blocks, err := p.parseCell(body)
	if err != nil {
		return err
	}
	p.caption = flattenToInlines(blocks)
	return nil
}

// isRowEnd reports whether tok is a "\\" row terminator. "\\" tokenizes
// as a ControlSeq named a single backslash (tokenizer.lexControlSeq's
// default branch: a control symbol, not a control word, since the
// second backslash isn't a letter), or the synonymous \tabularnewline.
func isRowEnd(tok *token.Token) bool {
	if tok.Kind == token.ControlSeq && tok.Name == `\` {
		return true
	}
	return tok.Kind == token.ControlSeq && tok.Name == "tabularnewline"
}

// readColSpec consumes the environment's width/column-spec arguments and
// returns the parsed alignment list, per spec.md section 4.6: letters
// c/l/r map directly, p/m/b/X/L/R/C/J/P and any other letter or "?"
// approximate to Left, "*{n}{spec}" expands to n copies, and
// "|"/"@{...}"/">{...}"/"<{...}"/":"/whitespace are discarded.
func readColSpec(st *state.State, name string) ([]doctree.Align, error) {
	switch name {
	case "tabularx", "tabu":
		if _, _, err := macro.ReadBraced(st.Stream); err != nil { // width
			return nil, err
		}
	case "tabular*":
		if _, _, err := macro.ReadBracketed(st.Stream); err != nil { // [pos]
			return nil, err
		}
		if _, _, err := macro.ReadBraced(st.Stream); err != nil { // width
			return nil, err
		}
	case "tabular", "longtable", "supertabular", "array":
		if _, _, err := macro.ReadBracketed(st.Stream); err != nil { // [pos]
			return nil, err
		}
	}
	spec, _, err := macro.ReadBraced(st.Stream)
	if err != nil {
		return nil, err
	}
	return parseAligns(spec.Raw()), nil
}

func parseAligns(spec string) []doctree.Align {
	var out []doctree.Align
	i := 0
	for i < len(spec) {
		c := spec[i]
		switch {
		case c == '*':
			i++
			n, adv := readBraceInt(spec[i:])
			i += adv
			sub, adv2 := readBraceGroup(spec[i:])
			i += adv2
			inner := parseAligns(sub)
			for k := 0; k < n; k++ {
				out = append(out, inner...)
			}
		case c == '@' || c == '>' || c == '<':
			i++
			_, adv := readBraceGroup(spec[i:])
			i += adv
		case c == '|' || c == ':' || c == ' ' || c == '\t' || c == '\n':
			i++
		case c == 'c':
			out = append(out, doctree.AlignCenter)
			i++
		case c == 'l':
			out = append(out, doctree.AlignLeft)
			i++
		case c == 'r':
			out = append(out, doctree.AlignRight)
			i++
		default:
			// p/m/b/X/L/R/C/J/P/?/anything else: approximate to Left.
			// p/m/b's "{width}" argument is skipped with the column.
			out = append(out, doctree.AlignLeft)
			i++
			if c == 'p' || c == 'm' || c == 'b' {
				_, adv := readBraceGroup(spec[i:])
				i += adv
			}
		}
	}
	return out
}

// readBraceGroup reads a balanced "{...}" starting at s[0] == '{' and
// returns its inner text plus the number of bytes consumed including
// both braces. Returns "", 0 if s doesn't start with '{'.
func readBraceGroup(s string) (string, int) {
	if len(s) == 0 || s[0] != '{' {
		return "", 0
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[1:i], i + 1
			}
		}
	}
	return s[1:], len(s)
}

func readBraceInt(s string) (int, int) {
	body, adv := readBraceGroup(s)
	n := 0
	for _, r := range body {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	if n == 0 {
		n = 1
	}
	return n, adv
}

func maxRowWidth(header []doctree.Cell, rows [][]doctree.Cell) int {
	max := len(header)
	for _, r := range rows {
		if len(r) > max {
			max = len(r)
		}
	}
	return max
}

// padCells pads row to width with empty cells, per spec.md section 4.6's
// "if the header list is empty, it is padded to that length".
func padCells(row []doctree.Cell, width int) []doctree.Cell {
	for len(row) < width {
		row = append(row, doctree.Cell{})
	}
	return row
}

func padAligns(aligns []doctree.Align, width int) []doctree.Align {
	for len(aligns) < width {
		aligns = append(aligns, doctree.AlignLeft)
	}
	return aligns
}

// flattenToInlines pulls the inline content back out of a parsed
// caption's blocks (almost always a single Para/Plain), for
// doctree.Table's []Inline Caption field.
func flattenToInlines(blocks []doctree.Block) []doctree.Inline {
	var out []doctree.Inline
	for _, blk := range blocks {
		switch v := blk.(type) {
		case doctree.Para:
			out = append(out, v.Inlines...)
		case doctree.Plain:
			out = append(out, v.Inlines...)
		}
	}
	return out
}
