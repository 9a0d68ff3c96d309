package block

import (
	"strings"

	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/inline"
	"github.com/latexdoc/reader/macro"
	"github.com/latexdoc/reader/state"
	"github.com/latexdoc/reader/token"
)

// blockHandler implements one block-level command. It has already
// consumed the command token itself.
type blockHandler func(e *Engine, tok *token.Token) ([]doctree.Block, error)

// blockCommands is the block command dispatch table of spec.md section
// 6 (excerpted, as the inline table is). sectionHandler entries are
// added by sections.go's init. Populated by an init() below (rather than
// a composite literal) to avoid an initialization cycle: some handlers
// (e.g. cmdNewtheorem) transitively reach back into the block-dispatch
// machinery that reads this table.
var blockCommands map[string]blockHandler

func init() {
	blockCommands = map[string]blockHandler{
		"caption":             cmdCaption,
		"hrule":               cmdHRule,
		"rule":                cmdHRule,
		"hypertarget":         cmdHypertarget,
		"documentclass":       cmdSkipOptArgArg,
		"centerline":          cmdCenterline,
		"bibitem":             cmdBibitem,
		"item":                cmdStrayItem,
		"title":               metaInlineCmd("title"),
		"date":                metaInlineCmd("date"),
		"subtitle":            metaInlineCmd("subtitle"),
		"address":             metaInlineCmd("address"),
		"dedication":          metaInlineCmd("dedication"),
		"author":              cmdAuthor,
		"institute":           cmdInstitute,
		"icmltitle":           metaInlineCmd("title"),
		"icmlauthor":          cmdIcmlAuthor,
		"icmlaffiliation":     cmdIcmlAffiliation,
		"addbibresource":      cmdBibResource,
		"graphicspath":        cmdGraphicsPath,
		"lstinputlisting":     cmdLstInputListing,
		"newtheorem":          cmdNewtheorem,
		"DeclareMathOperator": cmdDeclareMathOperator,
	}
}

// cmdCaption implements spec.md section 4.6/4.7: \caption{...} writes
// its parsed inlines into the pending-caption side channel rather than
// emitting a block directly; the figure/table environment handler
// consumes and clears it on close.
func cmdCaption(e *Engine, tok *token.Token) ([]doctree.Block, error) {
	if err := e.skipOpts(); err != nil {
		return nil, err
	}
	body, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return nil, err
	}
	in, err := inline.ParseTokenListAsInlines(e.St, e.Builder, body)
	if err != nil {
		return nil, err
	}
	e.St.PendingCaption = in
	return nil, nil
}

func cmdHRule(e *Engine, tok *token.Token) ([]doctree.Block, error) {
	// \rule takes two braced dimension arguments; \hrule takes none.
	if tok.Name == "rule" {
		if _, _, err := macro.ReadBraced(e.St.Stream); err != nil {
			return nil, err
		}
		if _, _, err := macro.ReadBraced(e.St.Stream); err != nil {
			return nil, err
		}
	}
	return []doctree.Block{e.Builder.HorizontalRule()}, nil
}

func cmdHypertarget(e *Engine, tok *token.Token) ([]doctree.Block, error) {
	id, err := e.readArgText()
	if err != nil {
		return nil, err
	}
	body, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return nil, err
	}
	in, err := inline.ParseTokenListAsInlines(e.St, e.Builder, body)
	if err != nil {
		return nil, err
	}
	return []doctree.Block{e.Builder.Plain(append([]doctree.Inline{e.Builder.Span(doctree.Attr{ID: id}, nil)}, in...))}, nil
}

// cmdSkipOptArgArg consumes an optional "[...]" then a required
// "{...}" and emits nothing — \documentclass has no tree representation.
func cmdSkipOptArgArg(e *Engine, tok *token.Token) ([]doctree.Block, error) {
	if err := e.skipOpts(); err != nil {
		return nil, err
	}
	_, _, err := macro.ReadBraced(e.St.Stream)
	return nil, err
}

func cmdCenterline(e *Engine, tok *token.Token) ([]doctree.Block, error) {
	body, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return nil, err
	}
	in, err := inline.ParseTokenListAsInlines(e.St, e.Builder, body)
	if err != nil {
		return nil, err
	}
	return []doctree.Block{e.Builder.Para(in)}, nil
}

// cmdBibitem implements a bare top-level \bibitem (outside
// thebibliography, where environments.go's own loop handles it
// directly): optional "[label]", {key}, then the entry text runs to
// the next \bibitem or \end.
func cmdBibitem(e *Engine, tok *token.Token) ([]doctree.Block, error) {
	if err := e.skipOpts(); err != nil {
		return nil, err
	}
	key, err := e.readArgText()
	if err != nil {
		return nil, err
	}
	blocks, err := e.ParseBlocks(func(t *token.Token) bool {
		return isEndToken(t) || token.IsControlSeq(t, "bibitem")
	})
	if err != nil {
		return nil, err
	}
	return []doctree.Block{e.Builder.Div(doctree.Attr{ID: "bib-" + key}, blocks)}, nil
}

// cmdStrayItem handles a top-level \item with no enclosing list (lists
// handle their own \item internally); emitted as an ordinary paragraph
// of whatever follows.
func cmdStrayItem(e *Engine, tok *token.Token) ([]doctree.Block, error) {
	_, _, _ = macro.ReadBracketed(e.St.Stream)
	e.St.Warn(state.SkippedContent, tok.Pos, "\\item outside any list environment")
	return e.paragraph()
}

// metaInlineCmd handles the family of meta commands whose argument is
// inline content placed into the meta mapping as a scalar (spec.md
// section 4.8): \title, \date, \subtitle, \address, \dedication.
func metaInlineCmd(key string) blockHandler {
	return func(e *Engine, tok *token.Token) ([]doctree.Block, error) {
		body, _, err := macro.ReadBraced(e.St.Stream)
		if err != nil {
			return nil, err
		}
		in, err := inline.ParseTokenListAsInlines(e.St, e.Builder, body)
		if err != nil {
			return nil, err
		}
		e.St.Meta.SetScalar(key, doctree.MetaValue{Inlines: in})
		return nil, nil
	}
}

func cmdBibResource(e *Engine, tok *token.Token) ([]doctree.Block, error) {
	return e.bibliographyArg()
}

// cmdGraphicsPath appends each braced "{dir}" group to
// state.ResourcePath, per spec.md section 4.5.
func cmdGraphicsPath(e *Engine, tok *token.Token) ([]doctree.Block, error) {
	if err := macro.SkipSpaces(e.St.Stream); err != nil {
		return nil, err
	}
	head, ok, err := e.St.Stream.Peek()
	if err != nil || !ok || !(head.Kind == token.Symbol && head.Name == "{") {
		return nil, err
	}
	outer, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return nil, err
	}
	raw := outer.Raw()
	for _, part := range strings.Split(raw, "}{") {
		dir := strings.Trim(part, "{}")
		if dir != "" {
			e.St.ResourcePath = append(e.St.ResourcePath, dir)
		}
	}
	return nil, nil
}

// cmdLstInputListing reads a file as a CodeBlock, per spec.md section
// 4.5. Options (language, line ranges) are captured as Attr key-values
// without being interpreted further — selecting a sub-range of lines is
// a presentation detail the downstream writer can apply.
func cmdLstInputListing(e *Engine, tok *token.Token) ([]doctree.Block, error) {
	kvs, err := e.keyVals()
	if err != nil {
		return nil, err
	}
	path, err := e.readArgText()
	if err != nil {
		return nil, err
	}
	attr := doctree.Attr{}
	for _, kv := range kvs {
		attr = attr.WithKV(kv.Key, kv.Value)
	}
	data, ok := e.loadFile(path)
	if !ok {
		e.St.Warn(state.CouldNotLoadIncludeFile, tok.Pos, "could not load listing file: "+path)
		return nil, nil
	}
	return []doctree.Block{e.Builder.CodeBlock(attr, string(data))}, nil
}

func (e *Engine) loadFile(name string) ([]byte, bool) {
	if e.Includer == nil {
		return nil, false
	}
	_, data, err := e.Includer.Load(name, e.searchPath())
	if err != nil {
		return nil, false
	}
	return data, true
}

// keyVals parses a bracketed "key=value,key2=value2" option list the
// same way package inline does, over the raw captured text rather than
// re-tokenizing.
func (e *Engine) keyVals() ([]inline.KeyVal, error) {
	body, found, err := macro.ReadBracketed(e.St.Stream)
	if err != nil || !found {
		return nil, err
	}
	raw := body.Raw()
	var out []inline.KeyVal
	for _, entry := range splitTopLevel(raw, ',') {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := splitTopLevel(entry, '=')
		if len(parts) == 1 {
			out = append(out, inline.KeyVal{Key: strings.TrimSpace(parts[0])})
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(strings.Join(parts[1:], "="))
		value = strings.TrimPrefix(strings.TrimSuffix(value, "}"), "{")
		out = append(out, inline.KeyVal{Key: key, Value: value})
	}
	return out, nil
}

func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		default:
			if s[i] == sep && depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

func (e *Engine) readArgText() (string, error) {
	body, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(body.Raw()), nil
}
