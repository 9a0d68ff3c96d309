// Package rewrite implements the post-parse tree adjustments of spec.md
// sections 4.7 and 4.10: attaching a pending caption to the image (or
// tikzpicture) it belongs to, and normalizing header levels so the
// minimum level in the document is at least 1.
//
// Grounded on the teacher's latex/pass2.go, which walks the already-built
// tree a second time to patch up cross-references the first pass
// couldn't resolve inline.
package rewrite

import "github.com/latexdoc/reader/doctree"

// AttachImageCaption implements spec.md section 4.7: for the first Image
// found anywhere in blocks whose Target does not already start with
// "fig:", if caption is non-empty its inlines replace the image's
// alt-text inlines and "fig:" is prepended to the target. blocks is
// returned unmodified if caption is empty or no eligible Image is found.
func AttachImageCaption(blocks []doctree.Block, caption []doctree.Inline) []doctree.Block {
	if len(caption) == 0 {
		return blocks
	}
	attached := false
	return mapBlocks(blocks, func(b doctree.Block) doctree.Block {
		if attached {
			return b
		}
		return mapInlineHost(b, func(in []doctree.Inline) []doctree.Inline {
			return mapInlines(in, func(i doctree.Inline) doctree.Inline {
				if attached {
					return i
				}
				img, ok := i.(doctree.Image)
				if !ok || hasFigPrefix(img.Target) {
					return i
				}
				attached = true
				img.Inlines = caption
				img.Target = "fig:" + img.Target
				return img
			})
		})
	})
}

func hasFigPrefix(target string) bool {
	return len(target) >= 4 && target[:4] == "fig:"
}

// WrapTikz implements spec.md section 4.7's tikz-rewriter: a raw
// tikzpicture RawBlock plus a Para of caption inlines, wrapped in a Div
// classed "tikzpicture".
func WrapTikz(raw doctree.Block, caption []doctree.Inline) doctree.Block {
	blocks := []doctree.Block{raw}
	if len(caption) > 0 {
		blocks = append(blocks, doctree.Para{Inlines: caption})
	}
	return doctree.Div{Attr: doctree.Attr{Classes: []string{"tikzpicture"}}, Blocks: blocks}
}

// NormalizeHeaderLevels implements spec.md section 4.10's final pass:
// find the minimum Header.Level across the whole document; if it is
// below 1, shift every header by 1-min so the result's minimum is 1.
// Non-header blocks, and headers' own nested content, are left alone —
// doctree.Header carries no nested blocks to recurse into.
func NormalizeHeaderLevels(blocks []doctree.Block) []doctree.Block {
	min, found := minHeaderLevel(blocks)
	if !found || min >= 1 {
		return blocks
	}
	shift := 1 - min
	return mapBlocks(blocks, func(b doctree.Block) doctree.Block {
		if h, ok := b.(doctree.Header); ok {
			h.Level += shift
			return h
		}
		return b
	})
}

func minHeaderLevel(blocks []doctree.Block) (int, bool) {
	min := 0
	found := false
	walkBlocks(blocks, func(b doctree.Block) {
		if h, ok := b.(doctree.Header); ok {
			if !found || h.Level < min {
				min = h.Level
				found = true
			}
		}
	})
	return min, found
}

// walkBlocks visits every block in the tree, including those nested
// inside Div/BlockQuote/list items/table cells.
func walkBlocks(blocks []doctree.Block, visit func(doctree.Block)) {
	for _, b := range blocks {
		visit(b)
		switch v := b.(type) {
		case doctree.Div:
			walkBlocks(v.Blocks, visit)
		case doctree.BlockQuote:
			walkBlocks(v.Blocks, visit)
		case doctree.BulletList:
			for _, item := range v.Items {
				walkBlocks(item, visit)
			}
		case doctree.OrderedList:
			for _, item := range v.Items {
				walkBlocks(item, visit)
			}
		case doctree.DefinitionList:
			for _, item := range v.Items {
				for _, d := range item.Definition {
					walkBlocks(d, visit)
				}
			}
		case doctree.Table:
			for _, row := range v.Header {
				walkBlocks(row.Blocks, visit)
			}
			for _, row := range v.Rows {
				for _, cell := range row {
					walkBlocks(cell.Blocks, visit)
				}
			}
		}
	}
}

// mapBlocks rewrites every block in the tree (including nested ones)
// through f, depth-first, so a structural change to a nested block is
// reflected in its container's copy.
func mapBlocks(blocks []doctree.Block, f func(doctree.Block) doctree.Block) []doctree.Block {
	out := make([]doctree.Block, len(blocks))
	for i, b := range blocks {
		switch v := b.(type) {
		case doctree.Div:
			v.Blocks = mapBlocks(v.Blocks, f)
			out[i] = f(v)
		case doctree.BlockQuote:
			v.Blocks = mapBlocks(v.Blocks, f)
			out[i] = f(v)
		case doctree.BulletList:
			items := make([][]doctree.Block, len(v.Items))
			for j, item := range v.Items {
				items[j] = mapBlocks(item, f)
			}
			v.Items = items
			out[i] = f(v)
		case doctree.OrderedList:
			items := make([][]doctree.Block, len(v.Items))
			for j, item := range v.Items {
				items[j] = mapBlocks(item, f)
			}
			v.Items = items
			out[i] = f(v)
		case doctree.DefinitionList:
			items := make([]doctree.DefinitionItem, len(v.Items))
			for j, item := range v.Items {
				def := make([][]doctree.Block, len(item.Definition))
				for k, d := range item.Definition {
					def[k] = mapBlocks(d, f)
				}
				item.Definition = def
				items[j] = item
			}
			v.Items = items
			out[i] = f(v)
		default:
			out[i] = f(b)
		}
	}
	return out
}

// mapInlineHost rewrites the inline list carried directly by a
// paragraph-like or heading-like block through f, leaving other block
// kinds untouched.
func mapInlineHost(b doctree.Block, f func([]doctree.Inline) []doctree.Inline) doctree.Block {
	switch v := b.(type) {
	case doctree.Para:
		v.Inlines = f(v.Inlines)
		return v
	case doctree.Plain:
		v.Inlines = f(v.Inlines)
		return v
	case doctree.Header:
		v.Inlines = f(v.Inlines)
		return v
	default:
		return b
	}
}

// mapInlines rewrites every inline in in (recursing into wrapper nodes
// that carry their own nested inlines) through f.
func mapInlines(in []doctree.Inline, f func(doctree.Inline) doctree.Inline) []doctree.Inline {
	out := make([]doctree.Inline, len(in))
	for i, v := range in {
		switch w := v.(type) {
		case doctree.Emph:
			w.Inlines = mapInlines(w.Inlines, f)
			out[i] = f(w)
		case doctree.Strong:
			w.Inlines = mapInlines(w.Inlines, f)
			out[i] = f(w)
		case doctree.Span:
			w.Inlines = mapInlines(w.Inlines, f)
			out[i] = f(w)
		default:
			out[i] = f(v)
		}
	}
	return out
}
