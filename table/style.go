// Package table lays out paginated tables: it sizes columns, wraps cell text
// into rows, composes per-cell borders, splits body rows across pages and
// draws the result onto a pdftable.Canvas.
//
// A Table is built once with New and its fluent setters, then passed to
// Layout (pure) and Draw, or to Render which does both. Nothing in this
// package keeps state between calls, so distinct tables may be rendered
// concurrently onto distinct canvases.
package table

import (
	"fmt"
	"strings"

	"github.com/lvillar/pdftable"
	"github.com/lvillar/pdftable/text"
)

// HAlign is the horizontal alignment of text in a cell.
type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

func (a HAlign) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// ParseHAlign accepts "left", "center", "right" and the one-letter forms
// "L", "C", "R".
func ParseHAlign(s string) (HAlign, error) {
	switch strings.ToLower(s) {
	case "", "l", "left", "start":
		return AlignLeft, nil
	case "c", "center", "centre":
		return AlignCenter, nil
	case "r", "right", "end":
		return AlignRight, nil
	}
	return AlignLeft, fmt.Errorf("%w: horizontal alignment %q", pdftable.ErrInvalidParam, s)
}

// VAlign is the vertical alignment of the text block in a cell.
type VAlign int

const (
	AlignMiddle VAlign = iota
	AlignTop
	AlignBottom
)

func (a VAlign) String() string {
	switch a {
	case AlignTop:
		return "top"
	case AlignBottom:
		return "bottom"
	default:
		return "middle"
	}
}

// ParseVAlign accepts "top", "middle", "bottom" and "T", "M", "B".
func ParseVAlign(s string) (VAlign, error) {
	switch strings.ToLower(s) {
	case "", "m", "middle", "center":
		return AlignMiddle, nil
	case "t", "top":
		return AlignTop, nil
	case "b", "bottom":
		return AlignBottom, nil
	}
	return AlignMiddle, fmt.Errorf("%w: vertical alignment %q", pdftable.ErrInvalidParam, s)
}

// Style is one partial layer of cell styling. A nil field is unset and
// inherits from the layer below it.
type Style struct {
	FontSize         *float64
	FontWeight       *pdftable.FontWeight
	HAlign           *HAlign
	VAlign           *VAlign
	FillColor        *pdftable.Color
	TextColor        *pdftable.Color
	Padding          *pdftable.Edges
	LineWidths       *pdftable.Edges
	LineColor        *pdftable.Color
	Overflow         *text.Overflow
	MinCellHeight    *float64
	LineHeightFactor *float64
}

// Ptr returns a pointer to v, for filling in Style literals.
func Ptr[T any](v T) *T {
	return &v
}

// Merge returns s with every field set in o copied over it. Padding and
// LineWidths are replaced as a whole box, not per edge.
func (s Style) Merge(o Style) Style {
	if o.FontSize != nil {
		s.FontSize = o.FontSize
	}
	if o.FontWeight != nil {
		s.FontWeight = o.FontWeight
	}
	if o.HAlign != nil {
		s.HAlign = o.HAlign
	}
	if o.VAlign != nil {
		s.VAlign = o.VAlign
	}
	if o.FillColor != nil {
		s.FillColor = o.FillColor
	}
	if o.TextColor != nil {
		s.TextColor = o.TextColor
	}
	if o.Padding != nil {
		s.Padding = o.Padding
	}
	if o.LineWidths != nil {
		s.LineWidths = o.LineWidths
	}
	if o.LineColor != nil {
		s.LineColor = o.LineColor
	}
	if o.Overflow != nil {
		s.Overflow = o.Overflow
	}
	if o.MinCellHeight != nil {
		s.MinCellHeight = o.MinCellHeight
	}
	if o.LineHeightFactor != nil {
		s.LineHeightFactor = o.LineHeightFactor
	}
	return s
}

// Resolved is a fully specified cell style.
type Resolved struct {
	FontSize         float64
	FontWeight       pdftable.FontWeight
	HAlign           HAlign
	VAlign           VAlign
	FillColor        pdftable.Color
	TextColor        pdftable.Color
	Padding          pdftable.Edges
	LineWidths       pdftable.Edges
	LineColor        pdftable.Color
	Overflow         text.Overflow
	MinCellHeight    float64
	LineHeightFactor float64
}

// Face returns the font face text in the cell is measured and drawn with.
func (r Resolved) Face() pdftable.Face {
	return pdftable.Face{Weight: r.FontWeight, Size: r.FontSize}
}

// LineHeight is the vertical advance of one line of text.
func (r Resolved) LineHeight() float64 {
	return r.FontSize * r.LineHeightFactor
}

// DefaultLineColor is the border color used when no layer sets one.
var DefaultLineColor = pdftable.Color{R: 200, G: 200, B: 200}

// Defaults returns the style every unset field falls back to.
func Defaults() Resolved {
	return Resolved{
		FontSize:         9,
		FontWeight:       pdftable.WeightNormal,
		HAlign:           AlignLeft,
		VAlign:           AlignMiddle,
		FillColor:        pdftable.White,
		TextColor:        pdftable.Black,
		Padding:          pdftable.Uniform(5),
		LineColor:        DefaultLineColor,
		Overflow:         text.Wrap,
		LineHeightFactor: 1.15,
	}
}

// Resolve merges layers in order, later layers winning field by field, and
// fills the remaining gaps from Defaults.
func Resolve(layers ...Style) Resolved {
	var merged Style
	for _, l := range layers {
		merged = merged.Merge(l)
	}

	r := Defaults()
	if merged.FontSize != nil {
		r.FontSize = *merged.FontSize
	}
	if merged.FontWeight != nil {
		r.FontWeight = *merged.FontWeight
	}
	if merged.HAlign != nil {
		r.HAlign = *merged.HAlign
	}
	if merged.VAlign != nil {
		r.VAlign = *merged.VAlign
	}
	if merged.FillColor != nil {
		r.FillColor = *merged.FillColor
	}
	if merged.TextColor != nil {
		r.TextColor = *merged.TextColor
	}
	if merged.Padding != nil {
		r.Padding = *merged.Padding
	}
	if merged.LineWidths != nil {
		r.LineWidths = *merged.LineWidths
	}
	if merged.LineColor != nil {
		r.LineColor = *merged.LineColor
	}
	if merged.Overflow != nil {
		r.Overflow = *merged.Overflow
	}
	if merged.MinCellHeight != nil {
		r.MinCellHeight = *merged.MinCellHeight
	}
	if merged.LineHeightFactor != nil {
		r.LineHeightFactor = *merged.LineHeightFactor
	}
	return r
}
