package table

import (
	"github.com/lvillar/pdftable"
)

// Table is a high-level table builder. Its setters return the table so calls
// can be chained; the finished table is handed to Layout or Render.
type Table struct {
	columns       []Column
	head          []*Row
	body          []*Row
	foot          []*Row
	style         Style
	sectionStyles [3]Style
	frame         Frame
	hook          BorderHook
	margin        *pdftable.Edges
	startY        *float64
	showHead      HeadPolicy
	showFoot      FootPolicy
}

// New creates an empty table with the default frame.
func New() *Table {
	return &Table{frame: DefaultFrame()}
}

// SetColumns sets column definitions for the table.
func (t *Table) SetColumns(cols ...Column) *Table {
	t.columns = cols
	return t
}

// SetColumnWidths is a convenience method to set column widths directly.
// A width of 0 means the column will auto-fill remaining space.
func (t *Table) SetColumnWidths(widths ...float64) *Table {
	t.columns = make([]Column, len(widths))
	for i, w := range widths {
		if w > 0 {
			t.columns[i] = Column{Width: Fixed(w)}
		}
	}
	return t
}

// AddHeadRow adds a new head row and returns it for chaining. Head rows are
// repeated at the top of each page unless SetShowHead says otherwise.
func (t *Table) AddHeadRow() *Row {
	r := &Row{}
	t.head = append(t.head, r)
	return r
}

// AddRow adds a new body row to the table and returns it for chaining.
func (t *Table) AddRow() *Row {
	r := &Row{}
	t.body = append(t.body, r)
	return r
}

// AddFootRow adds a new foot row and returns it for chaining.
func (t *Table) AddFootRow() *Row {
	r := &Row{}
	t.foot = append(t.foot, r)
	return r
}

// SetStyle sets the table-wide style layer.
func (t *Table) SetStyle(s Style) *Table {
	t.style = s
	return t
}

// SetSectionStyle sets the style layer shared by every row of a section.
func (t *Table) SetSectionStyle(sec Section, s Style) *Table {
	t.sectionStyles[sec] = s
	return t
}

// SetFrame replaces the outer frame rules.
func (t *Table) SetFrame(f Frame) *Table {
	t.frame = f
	return t
}

// SetBorderHook installs a per-cell border override. The hook runs after the
// frame rules and its output always wins.
func (t *Table) SetBorderHook(h BorderHook) *Table {
	t.hook = h
	return t
}

// SetMargin overrides the page margins for this table.
func (t *Table) SetMargin(m pdftable.Edges) *Table {
	t.margin = &m
	return t
}

// SetStartY sets where the table starts on its first page, measured from the
// top edge. Later pages start at the top margin.
func (t *Table) SetStartY(y float64) *Table {
	t.startY = &y
	return t
}

// SetShowHead sets on which pages head rows are drawn.
func (t *Table) SetShowHead(p HeadPolicy) *Table {
	t.showHead = p
	return t
}

// SetShowFoot sets on which pages foot rows are drawn.
func (t *Table) SetShowFoot(p FootPolicy) *Table {
	t.showFoot = p
	return t
}

// Columns returns the column definitions. When none were set, one auto
// column is assumed for each column the widest row covers.
func (t *Table) Columns() []Column {
	if len(t.columns) > 0 {
		return t.columns
	}
	n := 0
	for _, sec := range []Section{SectionHead, SectionBody, SectionFoot} {
		for _, r := range t.Rows(sec) {
			n = max(n, r.Span())
		}
	}
	return make([]Column, n)
}

// Rows returns the rows of a section.
func (t *Table) Rows(sec Section) []*Row {
	switch sec {
	case SectionHead:
		return t.head
	case SectionFoot:
		return t.foot
	default:
		return t.body
	}
}

// Frame returns the table's frame rules.
func (t *Table) Frame() Frame {
	return t.frame
}

// ResolveStyle returns the effective style of a cell whose first column is
// column, merging the table, section, column and cell layers in that order.
func (t *Table) ResolveStyle(cell *Cell, column int, sec Section) Resolved {
	var colStyle Style
	if cols := t.columns; column >= 0 && column < len(cols) {
		colStyle = cols[column].Style
	}
	var cellStyle Style
	if cell != nil {
		cellStyle = cell.Style
	}
	return Resolve(t.style, t.sectionStyles[sec], colStyle, cellStyle)
}
