package block

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/inline"
	"github.com/latexdoc/reader/macro"
	"github.com/latexdoc/reader/token"
)

// sectionLevels maps a section-family command to its doctree.Header
// level, per spec.md section 4.5 (\part is -1, \chapter is 0, and so
// on through \subparagraph at 5).
var sectionLevels = map[string]int{
	"part":          -1,
	"chapter":       0,
	"section":       1,
	"subsection":    2,
	"subsubsection": 3,
	"paragraph":     4,
	"subparagraph":  5,
	"frametitle":    1,
}

// identNamespace is a fixed, arbitrary namespace UUID, the same role
// the teacher's epub/writer.go plays for its per-book UUID: it exists
// purely so uuid.NewSHA1 is deterministic across runs for the same
// input, not to identify anything external.
var identNamespace = uuid.MustParse("2f6f1e2a-7b0a-4c9e-9b0a-7f7f9c3a4d10")

func init() {
	for name, level := range sectionLevels {
		blockCommands[name] = sectionHandler(level)
	}
}

// sectionHandler builds the blockHandler for one section-family
// command: optional "*" (unnumbered), optional "[short title]"
// (discarded — short titles have no representation in doctree.Header),
// the title group parsed as inlines, and an optional trailing
// \label{id} per spec.md section 4.5.
func sectionHandler(level int) blockHandler {
	return func(e *Engine, tok *token.Token) ([]doctree.Block, error) {
		attr := doctree.Attr{}
		star, err := e.consumeStar()
		if err != nil {
			return nil, err
		}
		if star {
			attr = attr.WithClass("unnumbered")
		}
		if err := e.skipOpts(); err != nil {
			return nil, err
		}
		body, _, err := macro.ReadBraced(e.St.Stream)
		if err != nil {
			return nil, err
		}
		inlines, err := inline.ParseTokenListAsInlines(e.St, e.Builder, body)
		if err != nil {
			return nil, err
		}

		id, hasLabel, err := e.peekLabel()
		if err != nil {
			return nil, err
		}
		if hasLabel && id != "" {
			e.St.Identifiers[id] = true
			attr.ID = id
		} else {
			attr.ID = e.registerHeader(flattenText(inlines), tok.Pos)
		}
		return []doctree.Block{e.Builder.Header(level, attr, inlines)}, nil
	}
}

// consumeStar consumes a single leading "*" Symbol, if present.
func (e *Engine) consumeStar() (bool, error) {
	head, ok, err := e.St.Stream.Peek()
	if err != nil || !ok {
		return false, err
	}
	if head.Kind == token.Symbol && head.Name == "*" {
		_, _, err := e.St.Stream.Next()
		return true, err
	}
	return false, nil
}

// skipOpts discards a trailing "[...]" option group, if present.
func (e *Engine) skipOpts() error {
	_, _, err := macro.ReadBracketed(e.St.Stream)
	return err
}

// peekLabel consumes a following \label{id} if the head (after macro
// expansion) is one, per spec.md section 4.5's "optional trailing
// \label{id} sets the anchor".
func (e *Engine) peekLabel() (string, bool, error) {
	if err := e.St.ExpandHead(); err != nil {
		return "", false, err
	}
	head, ok, err := e.St.Stream.Peek()
	if err != nil || !ok {
		return "", false, err
	}
	if head.Kind != token.ControlSeq || head.Name != "label" {
		return "", false, nil
	}
	if _, _, err := e.St.Stream.Next(); err != nil {
		return "", false, err
	}
	body, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return "", false, err
	}
	return strings.TrimSpace(body.Raw()), true, nil
}

// registerHeader implements spec.md section 4.5's "ensures uniqueness
// within the identifier set" (and section 8's "Identifier uniqueness"
// testable property): slugify the title; an empty slug (a
// pure-math/pure-symbol title) is replaced by "sec-" plus a short ID;
// if the slug is already taken, append numeric suffixes; if even that
// space is exhausted, fall back to a position-derived short ID. Short
// IDs are deterministic uuid.NewSHA1 derivations, the same pattern the teacher's
// epub/writer.go uses to turn a human string into a stable identifier —
// reproducible across runs of the same document rather than random.
func (e *Engine) registerHeader(title string, pos token.Pos) string {
	slug := slugify(title)
	if slug == "" {
		slug = "sec-" + shortUUID(title, pos)
	}
	if !e.St.Identifiers[slug] {
		e.St.Identifiers[slug] = true
		return slug
	}
	for i := 2; i <= 1000; i++ {
		cand := fmt.Sprintf("%s-%d", slug, i)
		if !e.St.Identifiers[cand] {
			e.St.Identifiers[cand] = true
			return cand
		}
	}
	id := "sec-" + shortUUID(fmt.Sprintf("%s@%d:%d", title, pos.Line, pos.Column), pos)
	e.St.Identifiers[id] = true
	return id
}

func shortUUID(title string, pos token.Pos) string {
	name := fmt.Sprintf("%s@%d:%d", title, pos.Line, pos.Column)
	id := uuid.NewSHA1(identNamespace, []byte(name))
	return id.String()[:8]
}

// slugify lowercases title, keeps letters/digits, and collapses
// everything else to single hyphens, the common Pandoc-style heading
// anchor rule.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
