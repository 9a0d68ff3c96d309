package block

import (
	"strconv"
	"strings"

	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/inline"
	"github.com/latexdoc/reader/macro"
	"github.com/latexdoc/reader/token"
)

// authorPart is one "\and"-separated entry of an \author group, before
// \institute has had a chance to attach its affiliation superscript.
type authorPart struct {
	inlines []doctree.Inline
	abbrev  string // from a following \inst{abbrev}, if present
}

// cmdAuthor implements spec.md section 4.8: a braced group whose parts
// are separated by \and, each optionally followed by \inst{abbrev}.
// The parts (without superscripts yet — those are attached when
// \institute is seen) are appended to the meta "author" list, one
// MetaValue per author, and also kept on the Engine so a later
// \institute call can walk back and patch them.
func cmdAuthor(e *Engine, tok *token.Token) ([]doctree.Block, error) {
	body, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return nil, err
	}
	parts, err := e.parseAndSeparated(body)
	if err != nil {
		return nil, err
	}
	e.pendingAuthors = parts
	for _, p := range parts {
		e.St.Meta.Append("author", doctree.MetaValue{Inlines: p.inlines})
	}
	return nil, nil
}

// parseAndSeparated splits body's raw text on top-level "\and" control
// sequences and a trailing optional "\inst{abbrev}", parsing each
// author's own inline content via a sub-parse.
func (e *Engine) parseAndSeparated(body token.List) ([]authorPart, error) {
	var parts []authorPart
	var cur token.List
	flush := func() error {
		abbrev := ""
		// Pull a trailing \inst{...} off the end of this author's
		// tokens, if present.
		if n := len(cur); n >= 2 {
			last := cur[n-1]
			if last.Kind == token.Symbol && last.Name == "}" {
				// find matching \inst by scanning backward for the
				// control sequence that opened this brace run.
				depth := 1
				i := n - 2
				for i >= 0 && depth > 0 {
					if cur[i].Kind == token.Symbol && cur[i].Name == "}" {
						depth++
					} else if cur[i].Kind == token.Symbol && cur[i].Name == "{" {
						depth--
					}
					i--
				}
				if i >= 0 && token.IsControlSeq(cur[i], "inst") {
					abbrev = strings.TrimSpace(cur[i+2 : n-1].Raw())
					cur = cur[:i]
				}
			}
		}
		in, err := inline.ParseTokenListAsInlines(e.St, e.Builder, cur)
		if err != nil {
			return err
		}
		in = trimInlines(in)
		if len(in) > 0 || abbrev != "" {
			parts = append(parts, authorPart{inlines: in, abbrev: abbrev})
		}
		cur = nil
		return nil
	}
	for _, tok := range body {
		if token.IsControlSeq(tok, "and") {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		cur = append(cur, tok)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return parts, nil
}

// cmdInstitute implements spec.md section 4.8: a parallel \and
// -separated list of affiliations. For each affiliation whose position
// matches a pending author's \inst abbreviation (by declared order —
// the teacher's observed reversed-then-zipped numbering per spec.md
// section 9's resolved open question, whose net effect is that the
// first-declared affiliation carries superscript 1), append a numeric
// Superscript to that author's inlines in the meta list and emit
// a Span classed "affiliation" as a block-level Plain.
func cmdInstitute(e *Engine, tok *token.Token) ([]doctree.Block, error) {
	body, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return nil, err
	}
	affils, err := e.parseAndSeparated(body)
	if err != nil {
		return nil, err
	}
	return e.attachAffiliations(affils), nil
}

// attachAffiliations assigns affiliation index i+1 (1-based, in
// declared order — see cmdInstitute's doc comment) to every pending
// author whose \inst abbreviation names it (abbreviations are
// comma-separated for multi-affiliation authors), appends a matching
// superscript to that author's entry in the meta "author" list, and
// returns one Plain block per affiliation, classed "affiliation".
func (e *Engine) attachAffiliations(affils []authorPart) []doctree.Block {
	index := make(map[string]int, len(affils))
	for i, a := range affils {
		index[strconv.Itoa(i+1)] = i + 1
		if a.abbrev != "" {
			index[a.abbrev] = i + 1
		}
	}

	authorMeta, _ := e.St.Meta.Get("author")
	for ai, author := range e.pendingAuthors {
		if author.abbrev == "" || ai >= len(authorMeta.List) {
			continue
		}
		var sups []doctree.Inline
		for _, ab := range strings.Split(author.abbrev, ",") {
			ab = strings.TrimSpace(ab)
			if n, ok := index[ab]; ok {
				sups = append(sups, e.Builder.Superscript([]doctree.Inline{e.Builder.Str(strconv.Itoa(n))}))
			}
		}
		if len(sups) > 0 {
			entry := authorMeta.List[ai]
			entry.Inlines = append(append([]doctree.Inline{}, entry.Inlines...), sups...)
			authorMeta.List[ai] = entry
		}
	}
	if len(authorMeta.List) > 0 {
		e.St.Meta.SetScalar("author", authorMeta)
	}

	var out []doctree.Block
	for i, a := range affils {
		in := append([]doctree.Inline{e.Builder.Superscript([]doctree.Inline{e.Builder.Str(strconv.Itoa(i + 1))}), e.Builder.Space()}, a.inlines...)
		out = append(out, e.Builder.Plain([]doctree.Inline{e.Builder.Span(doctree.Attr{Classes: []string{"affiliation"}}, in)}))
	}
	return out
}

// cmdIcmlAuthor and cmdIcmlAffiliation are the ICML-style equivalents
// of \author/\institute (spec.md section 4.8's "\icmlauthor /
// \icmlaffiliation follow the same scheme"): each call names one
// author or affiliation directly rather than an \and-separated group.
func cmdIcmlAuthor(e *Engine, tok *token.Token) ([]doctree.Block, error) {
	body, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return nil, err
	}
	abbrevToks, _, err := macro.ReadBracketed(e.St.Stream)
	if err != nil {
		return nil, err
	}
	in, err := inline.ParseTokenListAsInlines(e.St, e.Builder, body)
	if err != nil {
		return nil, err
	}
	abbrev := strings.TrimSpace(abbrevToks.Raw())
	e.pendingAuthors = append(e.pendingAuthors, authorPart{inlines: in, abbrev: abbrev})
	e.St.Meta.Append("author", doctree.MetaValue{Inlines: in})
	return nil, nil
}

// cmdIcmlAffiliation assigns the next 1-based superscript index to
// every pending \icmlauthor whose bracketed abbreviation names label
// (comma-separated for multi-affiliation authors), the single-affiliation
// counterpart of attachAffiliations.
func cmdIcmlAffiliation(e *Engine, tok *token.Token) ([]doctree.Block, error) {
	label, err := e.readArgText()
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

	e.icmlAffilSeq++
	n := e.icmlAffilSeq
	authorMeta, _ := e.St.Meta.Get("author")
	for ai, author := range e.pendingAuthors {
		if ai >= len(authorMeta.List) {
			continue
		}
		for _, ab := range strings.Split(author.abbrev, ",") {
			if strings.TrimSpace(ab) != label {
				continue
			}
			sup := e.Builder.Superscript([]doctree.Inline{e.Builder.Str(strconv.Itoa(n))})
			entry := authorMeta.List[ai]
			entry.Inlines = append(append([]doctree.Inline{}, entry.Inlines...), sup)
			authorMeta.List[ai] = entry
			break
		}
	}
	if len(authorMeta.List) > 0 {
		e.St.Meta.SetScalar("author", authorMeta)
	}

	labeled := append([]doctree.Inline{e.Builder.Superscript([]doctree.Inline{e.Builder.Str(strconv.Itoa(n))}), e.Builder.Space()}, in...)
	return []doctree.Block{e.Builder.Plain([]doctree.Inline{e.Builder.Span(doctree.Attr{Classes: []string{"affiliation"}}, labeled)})}, nil
}

// bibliography implements \bibliography{files}: a comma-separated list
// of bibliography database names placed into the meta mapping as a
// Str-list, per spec.md section 4.8. The sibling .bbl lookup itself
// (InputSources[0]'s directory) is the host's Includer's concern; here
// we only record the reference.
func (e *Engine) bibliography() ([]doctree.Block, error) {
	return e.bibliographyArg()
}

func (e *Engine) bibliographyArg() ([]doctree.Block, error) {
	body, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return nil, err
	}
	for _, name := range strings.Split(body.Raw(), ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		e.St.Meta.Append("bibliography", doctree.MetaValue{Inlines: []doctree.Inline{e.Builder.Str(name)}})
	}
	return nil, nil
}
