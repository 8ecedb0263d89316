package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lvillar/pdftable"
	"github.com/lvillar/pdftable/text"
)

// WidthKind selects how a column's width is decided.
type WidthKind int

const (
	// WidthAuto shares the width left over by fixed and content columns.
	WidthAuto WidthKind = iota
	// WidthFixed uses a literal width in points.
	WidthFixed
	// WidthContent fits the widest unwrapped content of the column.
	WidthContent
)

// WidthHint is a column sizing hint. The zero value is Auto.
type WidthHint struct {
	Kind  WidthKind
	Value float64
}

// Fixed returns a hint for a column exactly pt points wide.
func Fixed(pt float64) WidthHint { return WidthHint{Kind: WidthFixed, Value: pt} }

// Auto returns a hint for a column sharing the remaining width.
func Auto() WidthHint { return WidthHint{Kind: WidthAuto} }

// Content returns a hint for a column sized to its widest content.
func Content() WidthHint { return WidthHint{Kind: WidthContent} }

func (h WidthHint) String() string {
	switch h.Kind {
	case WidthFixed:
		return strconv.FormatFloat(h.Value, 'f', -1, 64)
	case WidthContent:
		return "content"
	default:
		return "auto"
	}
}

// ParseWidthHint accepts "auto", "content" (also "wrap") or a number of points.
func ParseWidthHint(s string) (WidthHint, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto(), nil
	case "content", "wrap":
		return Content(), nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return Auto(), fmt.Errorf("%w: column width %q", pdftable.ErrInvalidParam, s)
	}
	return Fixed(v), nil
}

// Column defines the properties of a table column.
type Column struct {
	Width    WidthHint
	MinWidth float64 // lower bound for auto and content columns
	Style    Style   // column layer, applied in every section
}

// Sizer computes column widths for a table.
type Sizer struct {
	Measurer *text.Measurer
}

// Size returns one width per column for a table laid out in available
// points. Content columns are measured first; see DistributeWidths for the
// rest of the algorithm.
func (s *Sizer) Size(t *Table, available float64) ([]float64, error) {
	cols := t.Columns()
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: no columns", pdftable.ErrInvalidTable)
	}
	content, err := s.contentWidths(t, cols)
	if err != nil {
		return nil, err
	}
	return DistributeWidths(cols, content, available)
}

// contentWidths measures the widest unwrapped line of every content column.
// Cells spanning several columns do not count.
func (s *Sizer) contentWidths(t *Table, cols []Column) ([]float64, error) {
	widths := make([]float64, len(cols))
	for _, sec := range []Section{SectionHead, SectionBody, SectionFoot} {
		for _, row := range t.Rows(sec) {
			col := 0
			for _, cell := range row.Cells {
				i := col
				col += cell.span()
				if i >= len(cols) || cell.span() != 1 || cols[i].Width.Kind != WidthContent {
					continue
				}
				st := t.ResolveStyle(cell, i, sec)
				w, err := s.Measurer.Widest(cell.Content, st.Face())
				if err != nil {
					return nil, err
				}
				widths[i] = max(widths[i], w+st.Padding.Horizontal())
			}
		}
	}
	return widths, nil
}

// DistributeWidths turns sizing hints into widths. Fixed columns take their
// literal width and content columns take contentWidths[i] raised to their
// minimum. What is left of available is split across auto columns: each gets
// the floor of an even share, the leftmost ones one extra point each for the
// whole points left over, and the last auto column any fractional residue,
// so the widths add up to available. An auto column whose split width falls
// below its MinWidth is pinned to it and the split is redone for the others.
//
// A *pdftable.LayoutError of kind ColumnOverflow is returned when fixed and
// content widths, plus any pinned minimums, exceed available. Without auto
// columns the table may end up narrower than available.
func DistributeWidths(cols []Column, contentWidths []float64, available float64) ([]float64, error) {
	widths := make([]float64, len(cols))
	used := 0.0
	var autos []int
	for i, c := range cols {
		switch c.Width.Kind {
		case WidthFixed:
			widths[i] = c.Width.Value
		case WidthContent:
			w := 0.0
			if i < len(contentWidths) {
				w = contentWidths[i]
			}
			widths[i] = max(w, c.MinWidth)
		default:
			autos = append(autos, i)
			continue
		}
		used += widths[i]
	}
	if used > available+epsilon {
		return nil, &pdftable.LayoutError{Kind: pdftable.ColumnOverflow, Need: used, Available: available, Row: -1}
	}
	if len(autos) == 0 {
		return widths, nil
	}

	pinned := make(map[int]bool)
	for {
		free := available - used
		var open []int
		for _, i := range autos {
			if pinned[i] {
				free -= cols[i].MinWidth
				continue
			}
			open = append(open, i)
		}
		if free < -epsilon {
			return nil, &pdftable.LayoutError{Kind: pdftable.ColumnOverflow, Need: available - free, Available: available, Row: -1}
		}
		if len(open) == 0 {
			break
		}

		split(widths, open, free)
		repinned := false
		for _, i := range open {
			if widths[i] < cols[i].MinWidth-epsilon {
				pinned[i] = true
				repinned = true
			}
		}
		if !repinned {
			break
		}
	}
	for i := range pinned {
		widths[i] = cols[i].MinWidth
	}
	return widths, nil
}

// split shares free across the open columns in whole points, the residue
// going to the last one.
func split(widths []float64, open []int, free float64) {
	n := float64(len(open))
	base := math.Floor(free/n + epsilon)
	extra := int(math.Floor(free - base*n + epsilon))

	rest := 0.0
	for k, i := range open[:len(open)-1] {
		w := base
		if k < extra {
			w++
		}
		widths[i] = w
		rest += w
	}
	widths[open[len(open)-1]] = free - rest
}

// epsilon absorbs float noise in width and height comparisons.
const epsilon = 1e-9
