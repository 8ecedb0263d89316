package table

import (
	"github.com/lvillar/pdftable"
)

// Draw issues the canvas calls for a placement. A canvas starts with one open
// page, so NewPage is called before every page after the first. Per cell, in
// row-major order: the fill, the top, right, bottom and left border lines
// that have a width, then the text lines.
func Draw(c pdftable.Canvas, p *Placement) {
	for n, page := range p.Pages {
		if n > 0 {
			c.NewPage()
		}
		for _, cell := range page.Cells {
			drawCell(c, cell)
		}
	}
}

func drawCell(c pdftable.Canvas, cell PlacedCell) {
	x, y, w, h := cell.X, cell.Y, cell.Width, cell.Height
	b := cell.Borders

	c.FillRect(x, y, w, h, b.Fill)

	if b.Top.Width > 0 {
		c.DrawLine(x, y, x+w, y, b.Top.Width, b.Top.Color)
	}
	if b.Right.Width > 0 {
		c.DrawLine(x+w, y, x+w, y+h, b.Right.Width, b.Right.Color)
	}
	if b.Bottom.Width > 0 {
		c.DrawLine(x, y+h, x+w, y+h, b.Bottom.Width, b.Bottom.Color)
	}
	if b.Left.Width > 0 {
		c.DrawLine(x, y, x, y+h, b.Left.Width, b.Left.Color)
	}

	st := cell.Style
	pad := st.Padding
	lineH := st.LineHeight()
	block := float64(len(cell.Lines)) * lineH

	top := y + (h-block)/2
	switch st.VAlign {
	case AlignTop:
		top = y + pad.Top
	case AlignBottom:
		top = y + h - pad.Bottom - block
	}

	avail := w - pad.Horizontal()
	for i, line := range cell.Lines {
		if line == "" {
			continue
		}
		lw := cell.LineWidths[i]
		lx := x + pad.Left
		switch st.HAlign {
		case AlignCenter:
			lx = x + pad.Left + (avail-lw)/2
		case AlignRight:
			lx = x + w - pad.Right - lw
		}
		baseline := top + float64(i)*lineH + (lineH-st.FontSize)/2 + 0.8*st.FontSize
		c.DrawText(lx, baseline, line, st.Face(), b.Text)
	}
}

// Result summarises a rendered table.
type Result struct {
	Pages    int
	Widths   []float64
	Warnings []error
	FinalY   float64
}

// Render lays out t and draws it onto c. Nothing is drawn when Layout fails.
func Render(c pdftable.Canvas, t *Table, page pdftable.Page, opts ...Option) (*Result, error) {
	p, err := Layout(t, page, opts...)
	if err != nil {
		return nil, err
	}
	Draw(c, p)
	return &Result{
		Pages:    len(p.Pages),
		Widths:   p.Widths,
		Warnings: p.Warnings,
		FinalY:   p.FinalY,
	}, nil
}

// Render draws the table onto c. See the package-level Render.
func (t *Table) Render(c pdftable.Canvas, page pdftable.Page, opts ...Option) (*Result, error) {
	return Render(c, t, page, opts...)
}
