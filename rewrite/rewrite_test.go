package rewrite

import (
	"testing"

	"github.com/latexdoc/reader/doctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachImageCaptionSetsAltTextAndPrefix(t *testing.T) {
	blocks := []doctree.Block{
		doctree.Para{Inlines: []doctree.Inline{
			doctree.Image{Target: "plot.png", Inlines: []doctree.Inline{doctree.Str{Text: "alt"}}},
		}},
	}
	caption := []doctree.Inline{doctree.Str{Text: "A", }, doctree.Space{}, doctree.Str{Text: "caption"}}

	out := AttachImageCaption(blocks, caption)
	para := out[0].(doctree.Para)
	img := para.Inlines[0].(doctree.Image)
	assert.Equal(t, "fig:plot.png", img.Target)
	assert.Equal(t, caption, img.Inlines)
}

func TestAttachImageCaptionNoopOnEmptyCaption(t *testing.T) {
	blocks := []doctree.Block{
		doctree.Para{Inlines: []doctree.Inline{doctree.Image{Target: "a.png"}}},
	}
	out := AttachImageCaption(blocks, nil)
	img := out[0].(doctree.Para).Inlines[0].(doctree.Image)
	assert.Equal(t, "a.png", img.Target)
}

func TestAttachImageCaptionSkipsAlreadyAttachedImages(t *testing.T) {
	blocks := []doctree.Block{
		doctree.Para{Inlines: []doctree.Inline{doctree.Image{Target: "fig:already.png"}}},
	}
	out := AttachImageCaption(blocks, []doctree.Inline{doctree.Str{Text: "x"}})
	img := out[0].(doctree.Para).Inlines[0].(doctree.Image)
	assert.Equal(t, "fig:already.png", img.Target)
	assert.Empty(t, img.Inlines)
}

func TestAttachImageCaptionOnlyAttachesFirstMatch(t *testing.T) {
	blocks := []doctree.Block{
		doctree.Para{Inlines: []doctree.Inline{doctree.Image{Target: "a.png"}}},
		doctree.Para{Inlines: []doctree.Inline{doctree.Image{Target: "b.png"}}},
	}
	out := AttachImageCaption(blocks, []doctree.Inline{doctree.Str{Text: "cap"}})
	first := out[0].(doctree.Para).Inlines[0].(doctree.Image)
	second := out[1].(doctree.Para).Inlines[0].(doctree.Image)
	assert.Equal(t, "fig:a.png", first.Target)
	assert.Equal(t, "b.png", second.Target)
}

func TestWrapTikzWithCaption(t *testing.T) {
	raw := doctree.RawBlock{Format: "latex-tikz", Text: `\draw (0,0) -- (1,1);`}
	caption := []doctree.Inline{doctree.Str{Text: "diagram"}}
	out := WrapTikz(raw, caption).(doctree.Div)
	assert.Equal(t, []string{"tikzpicture"}, out.Attr.Classes)
	require.Len(t, out.Blocks, 2)
	assert.Equal(t, raw, out.Blocks[0])
	assert.Equal(t, doctree.Para{Inlines: caption}, out.Blocks[1])
}

func TestWrapTikzWithoutCaption(t *testing.T) {
	raw := doctree.RawBlock{Format: "latex-tikz", Text: "x"}
	out := WrapTikz(raw, nil).(doctree.Div)
	require.Len(t, out.Blocks, 1)
}

func TestNormalizeHeaderLevelsShiftsUpFromZero(t *testing.T) {
	blocks := []doctree.Block{
		doctree.Header{Level: 0, Inlines: []doctree.Inline{doctree.Str{Text: "Part"}}},
		doctree.Div{Blocks: []doctree.Block{
			doctree.Header{Level: 1, Inlines: []doctree.Inline{doctree.Str{Text: "Chapter"}}},
		}},
	}
	out := NormalizeHeaderLevels(blocks)
	assert.Equal(t, 1, out[0].(doctree.Header).Level)
	nested := out[1].(doctree.Div).Blocks[0].(doctree.Header)
	assert.Equal(t, 2, nested.Level)
}

func TestNormalizeHeaderLevelsNoopWhenMinAlreadyOne(t *testing.T) {
	blocks := []doctree.Block{
		doctree.Header{Level: 1},
		doctree.Header{Level: 2},
	}
	out := NormalizeHeaderLevels(blocks)
	assert.Equal(t, blocks, out)
}

func TestNormalizeHeaderLevelsNoopWhenNoHeaders(t *testing.T) {
	blocks := []doctree.Block{doctree.Para{Inlines: []doctree.Inline{doctree.Str{Text: "x"}}}}
	out := NormalizeHeaderLevels(blocks)
	assert.Equal(t, blocks, out)
}
