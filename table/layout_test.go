package table_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/pdftable"
	"github.com/lvillar/pdftable/canvas"
	"github.com/lvillar/pdftable/font"
	"github.com/lvillar/pdftable/table"
)

var fixedFonts = table.WithFonts(font.Fixed{})

// gridTable has 10pt head and foot rows and 20pt body rows: no padding, one
// 10pt line per cell and a 20pt minimum in the body.
func gridTable(bodyRows int) *table.Table {
	tb := table.New().
		SetColumns(table.Column{}, table.Column{}).
		SetStyle(table.Style{
			Padding:          table.Ptr(pdftable.Edges{}),
			FontSize:         table.Ptr(10.0),
			LineHeightFactor: table.Ptr(1.0),
		}).
		SetSectionStyle(table.SectionBody, table.Style{MinCellHeight: table.Ptr(20.0)})
	tb.AddHeadRow().AddCells("Name", "Qty")
	for i := range bodyRows {
		tb.AddRow().AddCells(fmt.Sprintf("Item %d", i+1), fmt.Sprint(i+1))
	}
	tb.AddFootRow().AddCells("TOTAL", "15")
	return tb
}

// smallPage has a 260x100 printable area.
var smallPage = pdftable.Page{Width: 300, Height: 140, Margins: pdftable.Uniform(20)}

func TestRenderPaginates(t *testing.T) {
	rec := canvas.NewRecorder()
	res, err := table.Render(rec, gridTable(5), smallPage, fixedFonts)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 2, rec.Pages())
	assert.Len(t, rec.Filter(canvas.OpNewPage), 1)
	assert.InDeltaSlice(t, []float64{130, 130}, res.Widths, 1e-9)
	assert.Empty(t, res.Warnings)

	assert.Equal(t, []string{"Name", "Qty", "Item 1", "1", "Item 2", "2", "Item 3", "3", "Item 4", "4"}, rec.Texts(0))
	assert.Equal(t, []string{"Name", "Qty", "Item 5", "5", "TOTAL", "15"}, rec.Texts(1))
	// head 10 + one body row 20 + foot 10 below the top margin.
	assert.InDelta(t, 60.0, res.FinalY, 1e-9)
}

func TestRenderSinglePage(t *testing.T) {
	rec := canvas.NewRecorder()
	res, err := gridTable(3).Render(rec, smallPage, fixedFonts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pages)
	assert.Empty(t, rec.Filter(canvas.OpNewPage))
	assert.Equal(t, []string{"Name", "Qty", "Item 1", "1", "Item 2", "2", "Item 3", "3", "TOTAL", "15"}, rec.Texts(0))
	assert.InDelta(t, 100.0, res.FinalY, 1e-9)
}

func TestLayoutPositions(t *testing.T) {
	p, err := table.Layout(gridTable(5), smallPage, fixedFonts)
	require.NoError(t, err)
	require.Len(t, p.Pages, 2)

	first := p.Pages[0]
	require.Len(t, first.Cells, 10)
	assert.Equal(t, 20.0, first.Cells[0].X)
	assert.Equal(t, 20.0, first.Cells[0].Y)
	assert.Equal(t, 150.0, first.Cells[1].X)
	assert.Equal(t, 30.0, first.Cells[2].Y)
	assert.Equal(t, 90.0, first.Cells[8].Y)
	assert.Equal(t, 110.0, first.Bottom)

	second := p.Pages[1]
	assert.Equal(t, 20.0, second.Top)
	assert.Equal(t, table.SectionFoot, second.Cells[4].Position.Section)
	assert.Equal(t, 1, second.Cells[4].Position.Page)
}

func TestLayoutTextBaseline(t *testing.T) {
	rec := canvas.NewRecorder()
	_, err := table.Render(rec, gridTable(1), smallPage, fixedFonts)
	require.NoError(t, err)

	texts := rec.Filter(canvas.OpText)
	require.Len(t, texts, 6)
	// Body row at y=30, 20pt tall, one 10pt line centered: top 35, baseline
	// 35 + 0 + 8.
	item := texts[2]
	assert.Equal(t, "Item 1", item.Text)
	assert.InDelta(t, 20.0, item.X, 1e-9)
	assert.InDelta(t, 43.0, item.Y, 1e-9)
}

func TestLayoutStartY(t *testing.T) {
	page := pdftable.Page{Width: 300, Height: 300, Margins: pdftable.Uniform(20)}
	tb := gridTable(5).SetStartY(200)

	p, err := table.Layout(tb, page, fixedFonts)
	require.NoError(t, err)
	require.Len(t, p.Pages, 2)
	assert.Equal(t, 200.0, p.Pages[0].Top)
	// 80pt on the first page: head, three body rows and the foot reserve.
	assert.Len(t, p.Pages[0].Cells, 8)
	assert.Equal(t, 20.0, p.Pages[1].Top)

	_, err = table.Layout(gridTable(1).SetStartY(290), page, fixedFonts)
	assert.ErrorIs(t, err, pdftable.ErrInvalidParam)
	_, err = table.Layout(gridTable(1).SetStartY(-1), page, fixedFonts)
	assert.ErrorIs(t, err, pdftable.ErrInvalidParam)
}

func TestLayoutStartYNearBottom(t *testing.T) {
	page := pdftable.Page{Width: 300, Height: 300, Margins: pdftable.Uniform(20)}

	// 20pt left below startY: the head fits, the first 20pt row plus the foot
	// reserve does not.
	p, err := table.Layout(gridTable(3).SetStartY(260), page, fixedFonts)
	require.NoError(t, err)
	assert.Empty(t, p.Warnings)
	require.Len(t, p.Pages, 2)

	assert.LessOrEqual(t, p.Pages[0].Bottom, page.Height-page.Margins.Bottom)
	assert.Len(t, p.Pages[0].Cells, 2)

	assert.Equal(t, 20.0, p.Pages[1].Top)
	assert.Len(t, p.Pages[1].Cells, 2+3*2+2)
	assert.Equal(t, 100.0, p.FinalY)
}

func TestLayoutMarginOverride(t *testing.T) {
	p, err := table.Layout(gridTable(1).SetMargin(pdftable.Edges{}), smallPage, fixedFonts)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{150, 150}, p.Widths, 1e-9)
	assert.Equal(t, 0.0, p.Pages[0].Cells[0].X)

	_, err = table.Layout(gridTable(1).SetMargin(pdftable.Uniform(200)), smallPage, fixedFonts)
	assert.ErrorIs(t, err, pdftable.ErrInvalidPage)
}

func TestBorderFrame(t *testing.T) {
	tb := table.New().SetColumns(table.Column{}, table.Column{}, table.Column{})
	tb.AddRow().AddCells("a", "b", "c")
	tb.AddRow().AddCells("d", "e", "f")

	p, err := table.Layout(tb, smallPage, fixedFonts)
	require.NoError(t, err)
	require.Len(t, p.Pages, 1)
	cells := p.Pages[0].Cells
	require.Len(t, cells, 6)

	topLeft := cells[0].Borders
	assert.Equal(t, 0.5, topLeft.Left.Width)
	assert.Equal(t, table.DefaultLineColor, topLeft.Left.Color)
	assert.Equal(t, 0.0, topLeft.Right.Width)
	assert.Equal(t, 0.0, topLeft.Bottom.Width)

	for _, i := range []int{1, 4} {
		assert.Equal(t, 0.0, cells[i].Borders.Left.Width, "cell %d", i)
		assert.Equal(t, 0.0, cells[i].Borders.Right.Width, "cell %d", i)
	}

	bottomRight := cells[5].Borders
	assert.Equal(t, 0.5, bottomRight.Right.Width)
	assert.Equal(t, 1.0, bottomRight.Bottom.Width)
	for _, i := range []int{3, 4, 5} {
		assert.Equal(t, 1.0, cells[i].Borders.Bottom.Width, "cell %d", i)
		assert.True(t, cells[i].Position.LastRowInTable)
	}
}

func TestBorderFrameSkipsFoot(t *testing.T) {
	p, err := table.Layout(gridTable(1), smallPage, fixedFonts)
	require.NoError(t, err)
	cells := p.Pages[0].Cells
	require.Len(t, cells, 6)

	assert.Equal(t, 0.5, cells[0].Borders.Left.Width, "head")
	assert.Equal(t, 0.5, cells[3].Borders.Right.Width, "body")
	assert.Equal(t, 0.0, cells[4].Borders.Left.Width, "foot")
	assert.Equal(t, 0.0, cells[5].Borders.Bottom.Width, "foot")

	framed := gridTable(1).SetFrame(table.Frame{
		LeftAccentWidth: 2,
		EdgeColor:       pdftable.Black,
		Sections:        []table.Section{table.SectionFoot},
	})
	p, err = table.Layout(framed, smallPage, fixedFonts)
	require.NoError(t, err)
	cells = p.Pages[0].Cells
	assert.Equal(t, 0.0, cells[0].Borders.Left.Width)
	assert.Equal(t, 2.0, cells[4].Borders.Left.Width)
}

func TestBorderHookWins(t *testing.T) {
	red := pdftable.MustHex("#FF0000")
	var calls int
	tb := gridTable(2).SetBorderHook(func(c table.CellContext) (table.BorderOverride, error) {
		calls++
		if c.Section != table.SectionBody || !c.FirstColumn {
			return table.BorderOverride{}, nil
		}
		assert.Equal(t, 0.5, c.Borders.Left.Width)
		return table.BorderOverride{
			Left: table.EdgeOverride{Width: table.Ptr(0.0)},
			Top:  table.EdgeOverride{Width: table.Ptr(2.0), Color: &red},
			Fill: &red,
		}, nil
	})

	p, err := table.Layout(tb, smallPage, fixedFonts)
	require.NoError(t, err)
	assert.Equal(t, 8, calls)

	cell := p.Pages[0].Cells[2]
	assert.Equal(t, 0.0, cell.Borders.Left.Width)
	assert.Equal(t, table.Edge{Width: 2, Color: red}, cell.Borders.Top)
	assert.Equal(t, red, cell.Borders.Fill)
	assert.Equal(t, pdftable.Black, cell.Borders.Text)
}

func TestBorderHookErrorDrawsNothing(t *testing.T) {
	boom := errors.New("boom")
	tb := gridTable(2).SetBorderHook(func(c table.CellContext) (table.BorderOverride, error) {
		if c.Section == table.SectionFoot {
			return table.BorderOverride{}, boom
		}
		return table.BorderOverride{}, nil
	})

	rec := canvas.NewRecorder()
	_, err := table.Render(rec, tb, smallPage, fixedFonts)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, rec.Ops)
}

func TestColumnOverflowDrawsNothing(t *testing.T) {
	tb := table.New().SetColumnWidths(200, 100)
	tb.AddRow().AddCells("a", "b")

	rec := canvas.NewRecorder()
	_, err := table.Render(rec, tb, smallPage, fixedFonts)
	assert.True(t, pdftable.IsLayoutError(err, pdftable.ColumnOverflow))
	assert.Empty(t, rec.Ops)
}

func TestMeasurementErrorDrawsNothing(t *testing.T) {
	tb := table.New()
	tb.AddRow().AddCells("Ωmega")

	rec := canvas.NewRecorder()
	_, err := table.Render(rec, tb, smallPage)
	assert.ErrorIs(t, err, pdftable.ErrUnencodable)
	assert.Empty(t, rec.Ops)
}

func TestDegenerateRowIsWarning(t *testing.T) {
	tb := gridTable(2)
	tb.AddRow().AddCell("tall").SetStyle(table.Style{MinCellHeight: table.Ptr(500.0)})

	res, err := table.Render(canvas.NewRecorder(), tb, smallPage, fixedFonts)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.True(t, pdftable.IsLayoutError(res.Warnings[0], pdftable.DegenerateRow))
	assert.Equal(t, 2, res.Pages)
}

func TestDrawOrder(t *testing.T) {
	tb := table.New().SetColumnWidths(100)
	tb.AddRow().AddCell("ab").SetAlign(table.AlignRight)

	rec := canvas.NewRecorder()
	_, err := table.Render(rec, tb, smallPage, fixedFonts)
	require.NoError(t, err)

	var kinds []canvas.OpKind
	for _, op := range rec.Ops {
		kinds = append(kinds, op.Kind)
	}
	// fill, right accent, terminal rule, left accent, text
	assert.Equal(t, []canvas.OpKind{canvas.OpRect, canvas.OpLine, canvas.OpLine, canvas.OpLine, canvas.OpText}, kinds)

	right := rec.Ops[1]
	assert.Equal(t, 120.0, right.X)
	assert.Equal(t, 0.5, right.Width)
	assert.Equal(t, 1.0, rec.Ops[2].Width)

	// 20 + 100 - 5 padding - 9 text width
	assert.InDelta(t, 106.0, rec.Ops[4].X, 1e-9)
}
