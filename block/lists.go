package block

import (
	"strconv"
	"strings"

	"github.com/latexdoc/reader/doctree"
	"github.com/latexdoc/reader/inline"
	"github.com/latexdoc/reader/macro"
	"github.com/latexdoc/reader/token"
)

// itemizeEnv implements \begin{itemize}: a run of \item-delimited
// entries, each parsed as blocks, per spec.md section 4.5.
func itemizeEnv(e *Engine, name string) ([]doctree.Block, error) {
	items, err := e.readItems(name)
	if err != nil {
		return nil, err
	}
	return []doctree.Block{e.Builder.BulletList(items)}, nil
}

// enumerateEnv implements \begin{enumerate}: as itemize, but a
// \setcounter{enumi}{v} inside the environment sets the starting number
// to v+1 (tracked on Engine.enumCounters, spec.md section 4.5); per-\item
// markers carry no doctree representation beyond the list's own
// start/style.
func enumerateEnv(e *Engine, name string) ([]doctree.Block, error) {
	const counterName = "enumi"

	items, err := e.readItems(name)
	if err != nil {
		return nil, err
	}
	start := e.enumCounters[counterName] + 1
	delete(e.enumCounters, counterName)
	return []doctree.Block{e.Builder.OrderedList(start, doctree.Decimal, doctree.Period, items)}, nil
}

// descriptionEnv implements \begin{description}: each \item[term] gives
// the term inlines; the following blocks (up to the next \item or
// \end) are its definition.
func descriptionEnv(e *Engine, name string) ([]doctree.Block, error) {
	var items []doctree.DefinitionItem
	for {
		term, ok, err := e.nextItem(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		body, err := e.ParseBlocks(func(t *token.Token) bool {
			return isEndToken(t) || token.IsControlSeq(t, "item")
		})
		if err != nil {
			return nil, err
		}
		items = append(items, doctree.DefinitionItem{Term: term, Definition: [][]doctree.Block{body}})
	}
	if err := e.consumeEnd(name); err != nil {
		return nil, err
	}
	return []doctree.Block{e.Builder.DefinitionList(items)}, nil
}

// readItems is the shared \item loop for itemize/enumerate: each item's
// optional "[marker]" is discarded (itemize has no use for it; enumerate
// only uses it for display, out of scope for the tree), and its body
// runs to the next \item or the environment's \end.
func (e *Engine) readItems(name string) ([][]doctree.Block, error) {
	var items [][]doctree.Block
	for {
		_, ok, err := e.nextItem(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		body, err := e.ParseBlocks(func(t *token.Token) bool {
			return isEndToken(t) || token.IsControlSeq(t, "item")
		})
		if err != nil {
			return nil, err
		}
		items = append(items, body)
	}
	if err := e.consumeEnd(name); err != nil {
		return nil, err
	}
	return items, nil
}

// nextItem advances past whitespace/comments/nested \setcounter and
// reports whether an \item follows (consuming it and its optional
// "[marker]"/description term if so) before the environment's \end.
func (e *Engine) nextItem(name string) ([]doctree.Inline, bool, error) {
	for {
		if err := e.St.ExpandHead(); err != nil {
			return nil, false, err
		}
		head, ok, err := e.St.Stream.Peek()
		if err != nil {
			return nil, false, err
		}
		if !ok || isEndToken(head) {
			return nil, false, nil
		}
		if token.IsControlSeq(head, "item") {
			if _, _, err := e.St.Stream.Next(); err != nil {
				return nil, false, err
			}
			marker, found, err := macro.ReadBracketed(e.St.Stream)
			if err != nil {
				return nil, false, err
			}
			if !found {
				return nil, true, nil
			}
			term, err := inline.ParseTokenListAsInlines(e.St, e.Builder, marker)
			if err != nil {
				return nil, false, err
			}
			return term, true, nil
		}
		if token.IsControlSeq(head, "setcounter") {
			if _, _, err := e.St.Stream.Next(); err != nil {
				return nil, false, err
			}
			if err := e.applySetCounter(); err != nil {
				return nil, false, err
			}
			continue
		}
		// Tolerate stray whitespace/comments before the first \item.
		if head.Kind == token.Spaces || head.Kind == token.Newline || head.Kind == token.Comment {
			if _, _, err := e.St.Stream.Next(); err != nil {
				return nil, false, err
			}
			continue
		}
		return nil, false, nil
	}
}

// applySetCounter implements \setcounter{name}{value} for the
// enum-family counters; other counter names are accepted and recorded
// the same way but have no other reader-visible effect.
func (e *Engine) applySetCounter() error {
	name, err := e.readArgText()
	if err != nil {
		return err
	}
	valText, err := e.readArgText()
	if err != nil {
		return err
	}
	v, err := strconv.Atoi(strings.TrimSpace(valText))
	if err != nil {
		return nil
	}
	e.enumCounters[name] = v
	return nil
}
