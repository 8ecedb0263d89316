package table

import (
	"fmt"

	"github.com/lvillar/pdftable"
	"github.com/lvillar/pdftable/text"
)

// PlacedCell is a cell at its absolute position on a page.
type PlacedCell struct {
	BuiltCell
	Position Position
	X, Y     float64
	Height   float64 // the row's height
	Borders  ResolvedBorders
}

// LayoutPage is everything drawn on one page, in row-major order.
type LayoutPage struct {
	Cells  []PlacedCell
	Top    float64
	Bottom float64
}

// Placement is the result of Layout: the positioned content of every page.
// Draw consumes it without changing it.
type Placement struct {
	Page     pdftable.Page // geometry after the table's margin override
	Widths   []float64
	Pages    []LayoutPage
	Warnings []error
	FinalY   float64 // y just below the table on its last page
}

// Layout runs the whole layout pass for t on pages shaped like page: column
// sizing, row building, pagination and border composition. Every error is
// reported here, before anything is drawn. Degenerate rows are not errors;
// they show up in Placement.Warnings.
func Layout(t *Table, page pdftable.Page, opts ...Option) (*Placement, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	if t.margin != nil {
		page.Margins = *t.margin
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}

	startY := page.Margins.Top
	if t.startY != nil {
		startY = *t.startY
		if startY < 0 || startY >= page.Height-page.Margins.Bottom {
			return nil, fmt.Errorf("%w: startY %g outside page of height %g", pdftable.ErrInvalidParam, startY, page.Height)
		}
	}

	m := text.NewMeasurer(o.fonts)
	sizer := &Sizer{Measurer: m}
	widths, err := sizer.Size(t, page.PrintableWidth())
	if err != nil {
		return nil, err
	}
	o.logger.Debug("column widths", "widths", widths, "available", page.PrintableWidth())

	rb := &RowBuilder{Table: t, Measurer: m}
	var built [3][]BuiltRow
	for _, sec := range []Section{SectionHead, SectionBody, SectionFoot} {
		for i, row := range t.Rows(sec) {
			br, err := rb.Build(row, sec, i, widths)
			if err != nil {
				return nil, err
			}
			built[sec] = append(built[sec], br)
		}
	}

	pager := Paginator{
		PageHeight:      page.PrintableHeight(),
		FirstPageHeight: page.Height - page.Margins.Bottom - startY,
		ShowHead:        t.showHead,
		ShowFoot:        t.showFoot,
	}
	pages, warnings := pager.Paginate(built[SectionHead], built[SectionBody], built[SectionFoot])
	for _, w := range warnings {
		o.logger.Warn("row taller than page", "error", w)
	}

	p := &Placement{Page: page, Widths: widths, Warnings: warnings}
	composer := &Composer{Frame: t.frame, Hook: t.hook}
	sectionLen := [3]int{len(built[SectionHead]), len(built[SectionBody]), len(built[SectionFoot])}
	for n, pr := range pages {
		y := page.Margins.Top
		if n == 0 {
			y = startY
		}
		lp := LayoutPage{Top: y}
		for _, row := range pr.Rows() {
			x := page.Margins.Left
			for _, cell := range row.Cells {
				pos := Position{
					Section:           row.Section,
					Row:               row.Index,
					Column:            cell.Column,
					ColSpan:           cell.ColSpan,
					Page:              n,
					FirstColumn:       cell.Column == 0,
					LastColumn:        cell.Column+cell.ColSpan == len(widths),
					FirstRowInSection: row.Index == 0,
					LastRowInSection:  row.Index == sectionLen[row.Section]-1,
					LastRowInTable:    row.Section == SectionBody && row.Index == sectionLen[SectionBody]-1,
				}
				borders, err := composer.Compose(cell, pos, row.Height)
				if err != nil {
					return nil, fmt.Errorf("border hook at %s row %d column %d: %w", row.Section, row.Index, cell.Column, err)
				}
				lp.Cells = append(lp.Cells, PlacedCell{
					BuiltCell: cell,
					Position:  pos,
					X:         x,
					Y:         y,
					Height:    row.Height,
					Borders:   borders,
				})
				x += cell.Width
			}
			y += row.Height
		}
		lp.Bottom = y
		p.Pages = append(p.Pages, lp)
		if n > 0 {
			o.logger.Debug("page break", "page", n+1, "first_body_row", firstBodyIndex(pr))
		}
	}
	p.FinalY = p.Pages[len(p.Pages)-1].Bottom
	return p, nil
}

func firstBodyIndex(pr PageRows) int {
	if len(pr.Body) == 0 {
		return -1
	}
	return pr.Body[0].Index
}
