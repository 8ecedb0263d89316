package table

import (
	"fmt"
	"strings"

	"github.com/lvillar/pdftable"
)

// Section is the role of a row: head, body or foot.
type Section int

const (
	SectionHead Section = iota
	SectionBody
	SectionFoot
)

func (s Section) String() string {
	switch s {
	case SectionHead:
		return "head"
	case SectionFoot:
		return "foot"
	default:
		return "body"
	}
}

// ParseSection accepts "head", "body" and "foot".
func ParseSection(s string) (Section, error) {
	switch strings.ToLower(s) {
	case "head", "header", "thead":
		return SectionHead, nil
	case "body", "tbody":
		return SectionBody, nil
	case "foot", "footer", "tfoot":
		return SectionFoot, nil
	}
	return SectionBody, fmt.Errorf("%w: section %q", pdftable.ErrInvalidParam, s)
}

// Cell represents a single cell in a table row.
type Cell struct {
	Content string
	ColSpan int
	Style   Style
}

// NewCell returns a single-column cell holding text.
func NewCell(text string) *Cell {
	return &Cell{Content: text, ColSpan: 1}
}

// SetColspan sets the number of columns this cell spans.
func (c *Cell) SetColspan(n int) *Cell {
	if n > 0 {
		c.ColSpan = n
	}
	return c
}

// SetStyle replaces the cell's own style layer.
func (c *Cell) SetStyle(s Style) *Cell {
	c.Style = s
	return c
}

// SetAlign sets the horizontal alignment for this cell.
func (c *Cell) SetAlign(a HAlign) *Cell {
	c.Style.HAlign = &a
	return c
}

// SetFillColor sets the background color for this cell.
func (c *Cell) SetFillColor(col pdftable.Color) *Cell {
	c.Style.FillColor = &col
	return c
}

// SetBold switches the cell to the bold face.
func (c *Cell) SetBold() *Cell {
	c.Style.FontWeight = Ptr(pdftable.WeightBold)
	return c
}

func (c *Cell) span() int {
	if c.ColSpan < 1 {
		return 1
	}
	return c.ColSpan
}

// Row represents a single row in a table.
type Row struct {
	Cells []*Cell
}

// AddCell adds a text cell to the row and returns the cell for chaining.
func (r *Row) AddCell(text string) *Cell {
	c := NewCell(text)
	r.Cells = append(r.Cells, c)
	return c
}

// AddCellf adds a formatted text cell to the row.
func (r *Row) AddCellf(format string, args ...any) *Cell {
	return r.AddCell(fmt.Sprintf(format, args...))
}

// AddCells adds one text cell per argument and returns the row.
func (r *Row) AddCells(texts ...string) *Row {
	for _, s := range texts {
		r.AddCell(s)
	}
	return r
}

// Span returns the number of columns the row's cells cover.
func (r *Row) Span() int {
	n := 0
	for _, c := range r.Cells {
		n += c.span()
	}
	return n
}
