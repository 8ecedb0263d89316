package table

import (
	"fmt"

	"github.com/lvillar/pdftable"
	"github.com/lvillar/pdftable/text"
)

// BuiltCell is a cell with its style resolved and its text fitted to the
// width of the columns it spans.
type BuiltCell struct {
	Content    string
	Column     int // first column covered
	ColSpan    int
	Width      float64
	Style      Resolved
	Lines      []string
	LineWidths []float64
	Height     float64 // height the cell's own content needs
}

// BuiltRow is a row ready for pagination. Its height is the tallest cell's.
type BuiltRow struct {
	Section Section
	Index   int // index within the section
	Cells   []BuiltCell
	Height  float64
}

// RowBuilder measures rows against computed column widths.
type RowBuilder struct {
	Table    *Table
	Measurer *text.Measurer
}

// Build fits every cell of row into its columns. Rows covering fewer columns
// than widths are padded with empty cells; rows covering more are rejected
// with pdftable.ErrInvalidTable.
func (b *RowBuilder) Build(row *Row, sec Section, index int, widths []float64) (BuiltRow, error) {
	if span := row.Span(); span > len(widths) {
		return BuiltRow{}, fmt.Errorf("%w: %s row %d spans %d columns, table has %d",
			pdftable.ErrInvalidTable, sec, index, span, len(widths))
	}

	built := BuiltRow{Section: sec, Index: index}
	col := 0
	for _, cell := range row.Cells {
		bc, err := b.buildCell(cell, sec, col, cell.span(), widths)
		if err != nil {
			return BuiltRow{}, err
		}
		built.Cells = append(built.Cells, bc)
		col += bc.ColSpan
	}
	for ; col < len(widths); col++ {
		bc, err := b.buildCell(nil, sec, col, 1, widths)
		if err != nil {
			return BuiltRow{}, err
		}
		built.Cells = append(built.Cells, bc)
	}

	for _, bc := range built.Cells {
		built.Height = max(built.Height, bc.Height)
	}
	return built, nil
}

func (b *RowBuilder) buildCell(cell *Cell, sec Section, col, span int, widths []float64) (BuiltCell, error) {
	st := b.Table.ResolveStyle(cell, col, sec)
	bc := BuiltCell{Column: col, ColSpan: span, Style: st}
	if cell != nil {
		bc.Content = cell.Content
	}
	for _, w := range widths[col : col+span] {
		bc.Width += w
	}

	avail := max(bc.Width-st.Padding.Horizontal(), 0)
	lines, err := b.Measurer.Measure(bc.Content, st.Face(), avail, st.Overflow)
	if err != nil {
		return BuiltCell{}, err
	}
	bc.Lines = lines
	bc.LineWidths = make([]float64, len(lines))
	for i, l := range lines {
		if bc.LineWidths[i], err = b.Measurer.Width(l, st.Face()); err != nil {
			return BuiltCell{}, err
		}
	}

	bc.Height = max(float64(len(lines))*st.LineHeight()+st.Padding.Vertical(), st.MinCellHeight)
	return bc, nil
}

func totalHeight(rows []BuiltRow) float64 {
	h := 0.0
	for _, r := range rows {
		h += r.Height
	}
	return h
}
