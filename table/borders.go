package table

import (
	"slices"

	"github.com/lvillar/pdftable"
)

// Frame holds the table-level border rules applied on top of cell styles:
// accent lines on the outer left and right edges of the framed sections, and
// a terminal rule under the last body row.
type Frame struct {
	LeftAccentWidth   float64
	RightAccentWidth  float64
	EdgeColor         pdftable.Color
	TerminalRuleWidth float64
	TerminalRuleColor pdftable.Color
	// Sections that get the side accents. Nil means head and body.
	Sections []Section
}

// DefaultFrame returns 0.5pt side accents and a 1pt terminal rule, all in
// DefaultLineColor.
func DefaultFrame() Frame {
	return Frame{
		LeftAccentWidth:   0.5,
		RightAccentWidth:  0.5,
		EdgeColor:         DefaultLineColor,
		TerminalRuleWidth: 1,
		TerminalRuleColor: DefaultLineColor,
	}
}

func (f Frame) frames(sec Section) bool {
	if f.Sections == nil {
		return sec == SectionHead || sec == SectionBody
	}
	return slices.Contains(f.Sections, sec)
}

// Position locates a placed cell in the table.
type Position struct {
	Section           Section
	Row               int // index within the section
	Column            int // first column covered
	ColSpan           int
	Page              int // zero-based
	FirstColumn       bool
	LastColumn        bool
	FirstRowInSection bool
	LastRowInSection  bool
	// LastRowInTable is set on the last body row, the one the terminal rule
	// closes. Foot rows are totals drawn below it and never carry it.
	LastRowInTable bool
}

// Edge is one resolved border line. A zero width is not drawn.
type Edge struct {
	Width float64
	Color pdftable.Color
}

// ResolvedBorders are the final lines and colors of a placed cell.
type ResolvedBorders struct {
	Top, Right, Bottom, Left Edge
	Fill                     pdftable.Color
	Text                     pdftable.Color
}

// CellContext is what a BorderHook sees: the cell, where it sits, and the
// borders the frame rules produced for it.
type CellContext struct {
	Position
	Content string
	Lines   []string
	Style   Resolved
	Width   float64
	Height  float64
	Borders ResolvedBorders
}

// EdgeOverride replaces the width and/or color of one edge. Nil fields keep
// the current value.
type EdgeOverride struct {
	Width *float64
	Color *pdftable.Color
}

func (o EdgeOverride) apply(e *Edge) {
	if o.Width != nil {
		e.Width = *o.Width
	}
	if o.Color != nil {
		e.Color = *o.Color
	}
}

// BorderOverride is a hook's partial override of a cell's decoration.
type BorderOverride struct {
	Top, Right, Bottom, Left EdgeOverride
	Fill                     *pdftable.Color
	TextColor                *pdftable.Color
}

// BorderHook customises the borders of a single placed cell. It is called
// once per placed cell, so head rows repeated on several pages see one call
// per page. An error aborts the layout.
type BorderHook func(CellContext) (BorderOverride, error)

// Composer applies the border rules in order: cell style, left accent, right
// accent, terminal rule, hook. Later rules win per edge.
type Composer struct {
	Frame Frame
	Hook  BorderHook
}

// Compose returns the final borders of a cell placed at pos with the given
// height.
func (c *Composer) Compose(cell BuiltCell, pos Position, height float64) (ResolvedBorders, error) {
	st := cell.Style
	b := ResolvedBorders{
		Top:    Edge{Width: st.LineWidths.Top, Color: st.LineColor},
		Right:  Edge{Width: st.LineWidths.Right, Color: st.LineColor},
		Bottom: Edge{Width: st.LineWidths.Bottom, Color: st.LineColor},
		Left:   Edge{Width: st.LineWidths.Left, Color: st.LineColor},
		Fill:   st.FillColor,
		Text:   st.TextColor,
	}

	framed := c.Frame.frames(pos.Section)
	if framed && pos.FirstColumn {
		b.Left = Edge{Width: c.Frame.LeftAccentWidth, Color: c.Frame.EdgeColor}
	}
	if framed && pos.LastColumn {
		b.Right = Edge{Width: c.Frame.RightAccentWidth, Color: c.Frame.EdgeColor}
	}
	if pos.LastRowInTable {
		b.Bottom = Edge{Width: c.Frame.TerminalRuleWidth, Color: c.Frame.TerminalRuleColor}
	}

	if c.Hook == nil {
		return b, nil
	}
	o, err := c.Hook(CellContext{
		Position: pos,
		Content:  cell.Content,
		Lines:    cell.Lines,
		Style:    st,
		Width:    cell.Width,
		Height:   height,
		Borders:  b,
	})
	if err != nil {
		return ResolvedBorders{}, err
	}
	o.Top.apply(&b.Top)
	o.Right.apply(&b.Right)
	o.Bottom.apply(&b.Bottom)
	o.Left.apply(&b.Left)
	if o.Fill != nil {
		b.Fill = *o.Fill
	}
	if o.TextColor != nil {
		b.Text = *o.TextColor
	}
	return b, nil
}
