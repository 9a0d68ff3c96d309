package inline

import (
	"strings"

	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/macro"
	"github.com/latexdoc/reader/token"
)

// citeSpec records how a citation-family command's keys should be
// interpreted, per spec.md section 4.4.
type citeSpec struct {
	mode doctree.CitationMode
	note bool
}

// citeCommands is the citation command family of spec.md section 4.4:
// \cite and its capitalised/plural natbib and biblatex variants.
var citeCommands = map[string]citeSpec{
	"cite":       {mode: doctree.NormalCitation},
	"Cite":       {mode: doctree.NormalCitation},
	"citep":      {mode: doctree.NormalCitation},
	"Citep":      {mode: doctree.NormalCitation},
	"citeps":     {mode: doctree.NormalCitation},
	"cites":      {mode: doctree.NormalCitation},
	"Cites":      {mode: doctree.NormalCitation},
	"citet":      {mode: doctree.AuthorInText},
	"Citet":      {mode: doctree.AuthorInText},
	"citets":     {mode: doctree.AuthorInText},
	"textcite":   {mode: doctree.AuthorInText},
	"Textcite":   {mode: doctree.AuthorInText},
	"parencite":  {mode: doctree.NormalCitation},
	"Parencite":  {mode: doctree.NormalCitation},
	"footcite":   {mode: doctree.NormalCitation, note: true},
	"Footcite":   {mode: doctree.NormalCitation, note: true},
	"citeyear":   {mode: doctree.SuppressAuthor},
	"Citeyear":   {mode: doctree.SuppressAuthor},
	"autocite":   {mode: doctree.NormalCitation},
	"Autocite":   {mode: doctree.NormalCitation},
	"citeauthor": {mode: doctree.AuthorInText, note: false},
}

// parseCitation implements spec.md section 4.4: one or more
// `[prefix][suffix]{keys}` groups (keys comma-separated), building a
// Citation per key, and wraps the result in a Cite carrying a
// RawInline mirror of the original command text for round-trip
// fidelity (LaTeX citation rendering itself is out of scope — the
// downstream writer decides how Cite is displayed).
//
// Only one bracketed group present before the keys is the natbib
// convention for a post-note (suffix), e.g. `\cite[p.~5]{Key}`; both
// groups present follow `[prefix][suffix]` order.
func (e *Engine) parseCitation(cmdTok *token.Token, spec citeSpec) (doctree.Inline, error) {
	var citations []doctree.Citation
	var mirror strings.Builder
	mirror.WriteString(cmdTok.Raw)

	for {
		firstBody, firstFound, err := macro.ReadBracketed(e.St.Stream)
		if err != nil {
			return nil, err
		}
		var secondBody token.List
		secondFound := false
		if firstFound {
			secondBody, secondFound, err = macro.ReadBracketed(e.St.Stream)
			if err != nil {
				return nil, err
			}
		}
		keysBody, _, err := macro.ReadBraced(e.St.Stream)
		if err != nil {
			return nil, err
		}

		if firstFound {
			mirror.WriteString("[" + firstBody.Raw() + "]")
		}
		if secondFound {
			mirror.WriteString("[" + secondBody.Raw() + "]")
		}
		mirror.WriteString("{" + keysBody.Raw() + "}")

		var prefix, suffix []doctree.Inline
		switch {
		case firstFound && secondFound:
			prefix, err = e.parseTokenListAsInlines(firstBody)
			if err != nil {
				return nil, err
			}
			suffix, err = e.parseTokenListAsInlines(secondBody)
			if err != nil {
				return nil, err
			}
		case firstFound:
			suffix, err = e.parseTokenListAsInlines(firstBody)
			if err != nil {
				return nil, err
			}
		}

		for _, k := range strings.Split(keysBody.Raw(), ",") {
			id := strings.TrimSpace(k)
			if id == "" {
				continue
			}
			citations = append(citations, doctree.Citation{
				ID: id, Prefix: prefix, Suffix: suffix, Mode: spec.mode, Note: spec.note,
			})
		}

		head, ok, err := e.St.Stream.Peek()
		if err != nil {
			return nil, err
		}
		if !ok || head.Kind != token.Symbol || (head.Name != "[" && head.Name != "{") {
			break
		}
	}

	mirrorInlines := []doctree.Inline{e.Builder.RawInline("latex", mirror.String())}
	return e.Builder.Cite(citations, mirrorInlines), nil
}

// parseCitetext implements `\citetext{...}`: a semicolon-separated
// group of inline sequences, each becoming one citation whose suffix is
// the segment's own parsed inlines (citetext has no bibliography keys
// of its own — it free-forms citation-styled text, commonly "see also
// ...").
func (e *Engine) parseCitetext() (doctree.Inline, error) {
	body, _, err := macro.ReadBraced(e.St.Stream)
	if err != nil {
		return nil, err
	}
	raw := body.Raw()

	var citations []doctree.Citation
	for _, seg := range splitTopLevel(raw, ';') {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		inlines, err := e.parseStringAsInlines(seg, "citetext")
		if err != nil {
			return nil, err
		}
		citations = append(citations, doctree.Citation{Suffix: inlines, Mode: doctree.NormalCitation})
	}

	mirror := []doctree.Inline{e.Builder.RawInline("latex", `\citetext{`+raw+`}`)}
	return e.Builder.Cite(citations, mirror), nil
}
