// Package reader ties the tokenizer, macro table, inline/block engines,
// table/rewrite passes and include cache into the single parse() call
// spec.md section 2 describes as the reader's external surface,
// mirroring the way the teacher's latex.Convert (latex/convert.go)
// glues its own pass1/pass2/scanner/macros together behind one
// function a caller invokes with a filename.
package reader

import (
	"strings"

	"github.com/latexdoc/reader/block"
	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/macro"
	"github.com/latexdoc/reader/rewrite"
	"github.com/latexdoc/reader/state"
	"github.com/latexdoc/reader/token"
)

// Reader owns the collaborators shared across a parse: the document
// builder, the include loader, and the include cache. A zero-value
// Reader is usable (nil Includer/Cache, DefaultBuilder).
type Reader struct {
	Builder  doctree.Builder
	Includer block.Includer
	Cache    block.IncludeCache
}

// New returns a Reader with a filesystem-backed Includer and no
// Builder override (doctree.DefaultBuilder is used).
func New(cache block.IncludeCache) *Reader {
	return &Reader{Includer: NewFileIncluder(), Cache: cache}
}

// Parse reads data as a complete LaTeX document (spec.md section 4.10):
// a preamble of includes/macro definitions/meta commands/ignorable
// tokens up to `\begin{document}`, the document body, and a final
// header-level normalization pass over the resulting tree. The
// returned *state.State exposes Log (spec.md section 7's recoverable
// diagnostics) and Meta for a caller that wants more than the Doc.
func (r *Reader) Parse(data []byte, sourceName string, opts state.Options) (*doctree.Doc, *state.State, error) {
	st := state.New(opts)
	st.Stream.Prepend(data, sourceName)
	st.Options.InputSources = append([]string{sourceName}, opts.InputSources...)

	e := block.New(st, r.Builder, r.Includer, r.Cache)

	body, err := parseDocument(e, st)
	if err != nil {
		return nil, st, err
	}
	body = rewrite.NormalizeHeaderLevels(body)

	doc := &doctree.Doc{Blocks: body, Meta: st.Meta.Map()}
	return doc, st, nil
}

// parseDocument implements spec.md section 4.10's preamble handling:
// includes, macro definitions, block commands (meta capture,
// \documentclass, ...) and any other single ignorable token are
// consumed without contributing block-level output until
// `\begin{document}` is reached, whose body becomes the returned
// blocks. A document with no `\begin{document}` at all has no
// document body by definition and yields no blocks, though its
// preamble side effects (macro definitions, meta capture) still run.
func parseDocument(e *block.Engine, st *state.State) ([]doctree.Block, error) {
	for {
		if err := st.ExpandHead(); err != nil {
			return nil, err
		}
		head, ok, err := st.Stream.Peek()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}

		if head.Kind == token.ControlSeq && head.Name == "begin" {
			if _, _, err := st.Stream.Next(); err != nil {
				return nil, err
			}
			name, err := readEnvName(st)
			if err != nil {
				return nil, err
			}
			if name == "document" {
				body, err := e.ParseBlocks(isEndToken)
				if err != nil {
					return nil, err
				}
				if err := consumeEnd(st, name); err != nil {
					return nil, err
				}
				return body, nil
			}
			// Any other environment encountered in the preamble
			// (spec.md's "braced groups... as ignorable preamble") is
			// parsed for its side effects (nested macro definitions,
			// meta commands) but its own block-level output is
			// discarded, since it precedes the actual document body.
			if _, err := e.ParseBlocks(isEndToken); err != nil {
				return nil, err
			}
			if err := consumeEnd(st, name); err != nil {
				return nil, err
			}
			continue
		}

		blocks, recognized, err := e.ParseOneBlock()
		if err != nil {
			return nil, err
		}
		if recognized {
			// includes/macroDefs/blockCommands run for their side
			// effects (meta capture, macro table entries); any blocks
			// they produce are still preamble, so are dropped here.
			_ = blocks
			continue
		}

		// An unrecognised single token: consume and ignore it, per
		// spec.md section 4.10.
		if _, _, err := st.Stream.Next(); err != nil {
			return nil, err
		}
	}
}

func isEndToken(tok *token.Token) bool {
	return tok != nil && tok.Kind == token.ControlSeq && tok.Name == "end"
}

func readEnvName(st *state.State) (string, error) {
	body, _, err := macro.ReadBraced(st.Stream)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(body.Raw()), nil
}

func consumeEnd(st *state.State, name string) error {
	head, ok, err := st.Stream.Peek()
	if err != nil {
		return err
	}
	if !ok || head.Kind != token.ControlSeq || head.Name != "end" {
		st.Warn(state.UnexpectedEndOfDocument, st.Stream.Pos(), "missing \\end{"+name+"}")
		return nil
	}
	pos := head.Pos
	if _, _, err := st.Stream.Next(); err != nil {
		return err
	}
	closing, err := readEnvName(st)
	if err != nil {
		return err
	}
	if closing != name {
		st.Warn(state.UnexpectedEndOfDocument, pos, "expected \\end{"+name+"}, found \\end{"+closing+"}")
	}
	return nil
}
