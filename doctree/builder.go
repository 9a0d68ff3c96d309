package doctree

// Builder is the documented interface spec.md's out-of-scope "document
// model's own types/builders" collaborator exposes: every tree node the
// reader ever produces is constructed by calling through here rather
// than by allocating doctree types directly, so a host can supply its
// own model (a different Inline/Block representation entirely) by
// implementing this interface instead of importing doctree's concrete
// types.
//
// DefaultBuilder below is the reader's own implementation, used unless
// a caller substitutes another.
type Builder interface {
	Str(text string) Inline
	Space() Inline
	SoftBreak() Inline
	LineBreak() Inline
	Emph(inlines []Inline) Inline
	Strong(inlines []Inline) Inline
	Smallcaps(inlines []Inline) Inline
	Strikeout(inlines []Inline) Inline
	Subscript(inlines []Inline) Inline
	Superscript(inlines []Inline) Inline
	Code(attr Attr, text string) Inline
	Math(kind MathKind, text string) Inline
	Link(attr Attr, inlines []Inline, target, title string) Inline
	Image(attr Attr, inlines []Inline, target, title string) Inline
	Cite(citations []Citation, mirror []Inline) Inline
	Note(blocks []Block) Inline
	RawInline(format, text string) Inline
	Span(attr Attr, inlines []Inline) Inline

	Para(inlines []Inline) Block
	Plain(inlines []Inline) Block
	Header(level int, attr Attr, inlines []Inline) Block
	BulletList(items [][]Block) Block
	OrderedList(start int, style OrderedListStyle, delim OrderedListDelim, items [][]Block) Block
	DefinitionList(items []DefinitionItem) Block
	CodeBlock(attr Attr, text string) Block
	BlockQuote(blocks []Block) Block
	HorizontalRule() Block
	Table(caption []Inline, aligns []Align, widths []float64, header []Cell, rows []Cell2D) Block
	Div(attr Attr, blocks []Block) Block
	RawBlock(format, text string) Block
}

// Cell2D is a table row, exposed through Builder as its own named type
// purely for readability at call sites (`[]Cell2D` vs. the bare
// `[][]Cell` doctree.Table.Rows uses internally).
type Cell2D = []Cell

// DefaultBuilder constructs doctree's own concrete node types directly.
type DefaultBuilder struct{}

func (DefaultBuilder) Str(text string) Inline               { return Str{Text: text} }
func (DefaultBuilder) Space() Inline                         { return Space{} }
func (DefaultBuilder) SoftBreak() Inline                     { return SoftBreak{} }
func (DefaultBuilder) LineBreak() Inline                     { return LineBreak{} }
func (DefaultBuilder) Emph(in []Inline) Inline               { return Emph{Inlines: in} }
func (DefaultBuilder) Strong(in []Inline) Inline             { return Strong{Inlines: in} }
func (DefaultBuilder) Smallcaps(in []Inline) Inline          { return Smallcaps{Inlines: in} }
func (DefaultBuilder) Strikeout(in []Inline) Inline          { return Strikeout{Inlines: in} }
func (DefaultBuilder) Subscript(in []Inline) Inline          { return Subscript{Inlines: in} }
func (DefaultBuilder) Superscript(in []Inline) Inline        { return Superscript{Inlines: in} }
func (DefaultBuilder) Code(attr Attr, text string) Inline    { return Code{Attr: attr, Text: text} }
func (DefaultBuilder) Math(kind MathKind, text string) Inline {
	return Math{Kind: kind, Text: text}
}
func (DefaultBuilder) Link(attr Attr, in []Inline, target, title string) Inline {
	return Link{Attr: attr, Inlines: in, Target: target, Title: title}
}
func (DefaultBuilder) Image(attr Attr, in []Inline, target, title string) Inline {
	return Image{Attr: attr, Inlines: in, Target: target, Title: title}
}
func (DefaultBuilder) Cite(citations []Citation, mirror []Inline) Inline {
	return Cite{Citations: citations, Inlines: mirror}
}
func (DefaultBuilder) Note(blocks []Block) Inline               { return Note{Blocks: blocks} }
func (DefaultBuilder) RawInline(format, text string) Inline     { return RawInline{Format: format, Text: text} }
func (DefaultBuilder) Span(attr Attr, in []Inline) Inline       { return Span{Attr: attr, Inlines: in} }

func (DefaultBuilder) Para(in []Inline) Block  { return Para{Inlines: in} }
func (DefaultBuilder) Plain(in []Inline) Block { return Plain{Inlines: in} }
func (DefaultBuilder) Header(level int, attr Attr, in []Inline) Block {
	return Header{Level: level, Attr: attr, Inlines: in}
}
func (DefaultBuilder) BulletList(items [][]Block) Block { return BulletList{Items: items} }
func (DefaultBuilder) OrderedList(start int, style OrderedListStyle, delim OrderedListDelim, items [][]Block) Block {
	return OrderedList{Start: start, Style: style, Delim: delim, Items: items}
}
func (DefaultBuilder) DefinitionList(items []DefinitionItem) Block {
	return DefinitionList{Items: items}
}
func (DefaultBuilder) CodeBlock(attr Attr, text string) Block { return CodeBlock{Attr: attr, Text: text} }
func (DefaultBuilder) BlockQuote(blocks []Block) Block        { return BlockQuote{Blocks: blocks} }
func (DefaultBuilder) HorizontalRule() Block                  { return HorizontalRule{} }
func (DefaultBuilder) Table(caption []Inline, aligns []Align, widths []float64, header []Cell, rows []Cell2D) Block {
	return Table{Caption: caption, Aligns: aligns, Widths: widths, Header: header, Rows: rows}
}
func (DefaultBuilder) Div(attr Attr, blocks []Block) Block   { return Div{Attr: attr, Blocks: blocks} }
func (DefaultBuilder) RawBlock(format, text string) Block    { return RawBlock{Format: format, Text: text} }
